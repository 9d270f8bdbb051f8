package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_LoadsOnceAcrossConcurrentCallers(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "season", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "season", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "season" {
				errCh <- errors.New("unexpected memoized value")
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesMemoizedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "credits", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "credits", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "credits", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_FailedLoadIsRetried(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("starter map unavailable")
		}
		return "starters", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "starters", loader); err == nil {
		t.Fatalf("expected the first load to fail")
	}
	v, err := store.GetOrLoad(context.Background(), "starters", loader)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if got, _ := v.(string); got != "starters" {
		t.Fatalf("unexpected retried value: %v", v)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_GetOrLoad_EmptyKeyBypassesMemo(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "", loader); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("loader called %d times, want 3", got)
	}
}

func TestStore_TTLExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Millisecond)
	store.Set(context.Background(), "teams", "stale")

	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get(context.Background(), "teams"); ok {
		t.Fatalf("expired entry must not be served")
	}
}

func TestStore_ZeroTTLPinsEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(context.Background(), "teams", "pinned")

	time.Sleep(5 * time.Millisecond)

	v, ok := store.Get(context.Background(), "teams")
	if !ok {
		t.Fatalf("pinned entry must survive")
	}
	if got, _ := v.(string); got != "pinned" {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(context.Background(), "players", "rows")
	store.Delete(context.Background(), "players")

	if _, ok := store.Get(context.Background(), "players"); ok {
		t.Fatalf("deleted entry must not be served")
	}
}
