package capability

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCachedAdapterServesRepeatCallsFromCache(t *testing.T) {
	var calls int32
	inner := AdapterFunc(func(_ context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]interface{}{"topic": args["topic"]}, nil
	})

	cached, err := NewCachedAdapter("resource_search", inner, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedAdapter failed: %v", err)
	}
	defer cached.Close()
	ctx := context.Background()

	if _, err := cached.Execute(ctx, map[string]interface{}{"topic": "recursion"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	cached.Wait()

	if _, err := cached.Execute(ctx, map[string]interface{}{"topic": "recursion"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 provider call, got %d", got)
	}

	// Different arguments miss.
	if _, err := cached.Execute(ctx, map[string]interface{}{"topic": "sorting"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 provider calls after distinct args, got %d", got)
	}
}

func TestCachedAdapterDoesNotCacheErrors(t *testing.T) {
	var calls int32
	inner := AdapterFunc(func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, context.DeadlineExceeded
	})

	cached, err := NewCachedAdapter("resource_search", inner, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedAdapter failed: %v", err)
	}
	defer cached.Close()
	ctx := context.Background()

	cached.Execute(ctx, map[string]interface{}{"topic": "recursion"})
	cached.Wait()
	cached.Execute(ctx, map[string]interface{}{"topic": "recursion"})

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected errors to pass through uncached, got %d calls", got)
	}
}
