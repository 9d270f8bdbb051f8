package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into a single
// execution. Followers block until the leader finishes and receive the
// leader's result. The zero value is ready to use.
type SingleFlight struct {
	mu      sync.Mutex
	pending map[string]*flightResult
}

type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn at most once per key at a time. The bool reports whether the
// result was shared from another caller's execution. Results are not
// cached: once the leader returns, the next call for the key runs again.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.pending == nil {
		g.pending = make(map[string]*flightResult)
	}
	if r, ok := g.pending[key]; ok {
		g.mu.Unlock()
		<-r.done
		return r.val, r.err, true
	}

	r := &flightResult{done: make(chan struct{})}
	g.pending[key] = r
	g.mu.Unlock()

	r.val, r.err = fn()
	close(r.done)

	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()

	return r.val, r.err, false
}
