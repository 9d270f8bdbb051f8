// Package cache provides a small keyed memo for sharing computed values:
// loaded once, served to every later reader of the same key.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qchockey/lheqstats/internal/platform/resilience"
)

// Store memoizes values by key. A ttl of zero or less pins entries for the
// life of the store, which is what a pipeline run wants: the season
// snapshot and the tables derived from it are computed once and never
// refreshed mid-run.
type Store struct {
	mu     sync.RWMutex
	values map[string]memoEntry
	ttl    time.Duration
	flight resilience.SingleFlight
}

type memoEntry struct {
	value    any
	deadline time.Time
}

func (e memoEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && !e.deadline.After(now)
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		values: make(map[string]memoEntry),
		ttl:    ttl,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		s.mu.Lock()
		if current, still := s.values[key]; still && current.expired(now) {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	e := memoEntry{value: value}
	if s.ttl > 0 {
		e.deadline = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.values[key] = e
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// GetOrLoad returns the memoized value for key, invoking loader exactly
// once across concurrent callers when the key is absent. A failed load
// memoizes nothing, so the next caller retries.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}
