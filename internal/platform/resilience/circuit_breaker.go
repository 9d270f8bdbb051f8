package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Allow while the breaker refuses traffic.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState names the externally visible breaker phases.
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker shields a flaky upstream host. A run of consecutive
// failures trips it, calls are refused until a cooldown lapses, and then a
// bounded number of probes decide whether the host has recovered.
//
// The phase is derived rather than stored: a tripped breaker is open until
// retryAt and half-open after it.
type CircuitBreaker struct {
	maxStrikes int
	cooldown   time.Duration
	maxProbes  int

	mu        sync.Mutex
	tripped   bool
	strikes   int       // consecutive failures while closed
	retryAt   time.Time // when probing may begin after a trip
	probing   int       // probes currently in flight
	probeWins int       // successful probes since the cooldown lapsed
	clock     func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = 1
	}

	return &CircuitBreaker{
		maxStrikes: failureThreshold,
		cooldown:   openTimeout,
		maxProbes:  halfOpenMaxReq,
		clock:      time.Now,
	}
}

// Allow reports whether a call may proceed. During the half-open phase it
// reserves a probe slot that RecordSuccess or RecordFailure releases.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tripped {
		return nil
	}
	if b.clock().Before(b.retryAt) {
		return ErrCircuitOpen
	}
	if b.probing >= b.maxProbes {
		return ErrCircuitOpen
	}
	b.probing++

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tripped {
		b.strikes = 0
		return
	}
	if b.probing == 0 {
		// Stale result from a call admitted before the trip.
		return
	}

	b.probing--
	b.probeWins++
	if b.probeWins >= b.maxProbes && b.probing == 0 {
		b.reset()
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tripped {
		b.strikes++
		if b.strikes >= b.maxStrikes {
			b.trip()
		}
		return
	}

	// Any failure while tripped restarts the cooldown, whether it came
	// from a probe or from a call admitted before the trip.
	b.trip()
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case !b.tripped:
		return CircuitStateClosed
	case b.clock().Before(b.retryAt):
		return CircuitStateOpen
	default:
		return CircuitStateHalfOpen
	}
}

func (b *CircuitBreaker) trip() {
	b.tripped = true
	b.retryAt = b.clock().Add(b.cooldown)
	b.strikes = 0
	b.probing = 0
	b.probeWins = 0
}

func (b *CircuitBreaker) reset() {
	b.tripped = false
	b.strikes = 0
	b.probing = 0
	b.probeWins = 0
	b.retryAt = time.Time{}
}
