package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestWorkerPool_RunsSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(2, zerolog.Nop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var ran int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		if err := pool.Submit(func() {
			atomic.AddInt32(&ran, 1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()

	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Errorf("ran = %d, want 5", got)
	}
}

func TestWorkerPool_SurvivesPanickingTask(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.Submit(func() {
		defer wg.Done()
		panic("boom")
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	wg.Wait()

	wg.Add(1)
	if err := pool.Submit(func() { wg.Done() }); err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	wg.Wait()

	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestWorkerPool_SubmitFailsWhenQueueStaysFull(t *testing.T) {
	// Never started, so nothing drains the queue (capacity 10 for one
	// worker).
	pool := NewWorkerPool(1, zerolog.Nop())

	for i := 0; i < 10; i++ {
		if err := pool.Submit(func() {}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	if err := pool.Submit(func() {}); err == nil {
		t.Fatal("expected an error for a task dropped on a full queue")
	}
}
