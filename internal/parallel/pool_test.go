package parallel

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestPoolSubmitRunsEveryTask(t *testing.T) {
	pool := NewPool(4)
	defer pool.Shutdown()

	var count int64
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if err := pool.Submit(ctx, func() { atomic.AddInt64(&count, 1) }); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	pool.Shutdown()

	if got := atomic.LoadInt64(&count); got != 20 {
		t.Errorf("expected 20 completed tasks, got %d", got)
	}
	stats := pool.GetStats()
	if stats.Completed != 20 {
		t.Errorf("expected stats.Completed == 20, got %d", stats.Completed)
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Shutdown()

	if err := pool.Submit(context.Background(), func() {}); err != ErrPoolShutdown {
		t.Errorf("expected ErrPoolShutdown, got %v", err)
	}
}

func TestPoolRecoversPanickingTask(t *testing.T) {
	pool := NewPool(1)
	defer pool.Shutdown()

	done := make(chan struct{})
	if err := pool.Submit(context.Background(), func() {
		defer close(done)
		panic("boom")
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-done
	pool.Shutdown()

	if pool.GetStats().Failed != 1 {
		t.Errorf("expected 1 failed task, got %d", pool.GetStats().Failed)
	}
}

func TestRunBatchPreservesOrder(t *testing.T) {
	results := RunBatch(context.Background(), 10, 3, func(i int) int { return i * i })
	for i, r := range results {
		if r != i*i {
			t.Errorf("index %d: expected %d, got %d", i, i*i, r)
		}
	}
}

func TestRunBatchEmpty(t *testing.T) {
	if got := RunBatch(context.Background(), 0, 4, func(i int) int { return i }); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}
