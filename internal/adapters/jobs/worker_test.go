package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/repstats/repstats/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingExecutor struct {
	mu   sync.Mutex
	seen []Job
	err  error
}

func (e *recordingExecutor) Execute(ctx context.Context, j Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, j)
	return e.err
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.seen)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorker_ProcessesJobs(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(8))
	exec := &recordingExecutor{}
	w := NewWorker(q, exec, WithName("test-worker"))

	go w.Run(ctx)

	q.Enqueue(ctx, NewJob("a", 1, nil, 2026, false))
	q.Enqueue(ctx, NewJob("b", 2, nil, 2026, false))

	waitFor(t, func() bool { return exec.count() == 2 })

	if err := w.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestWorker_ExecutorErrorDoesNotStopWorker(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(8))
	exec := &recordingExecutor{err: errors.New("boom")}
	w := NewWorker(q, exec)

	go w.Run(ctx)

	q.Enqueue(ctx, NewJob("a", 1, nil, 2026, false))
	q.Enqueue(ctx, NewJob("b", 2, nil, 2026, false))

	waitFor(t, func() bool { return exec.count() == 2 })

	if err := w.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestWorker_StopsWhenQueueCloses(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(8))
	exec := &recordingExecutor{}
	w := NewWorker(q, exec)

	go w.Run(ctx)

	q.Enqueue(ctx, NewJob("a", 1, nil, 2026, false))
	waitFor(t, func() bool { return exec.count() == 1 })

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after queue close")
	}
}

func TestPool_DrainsQueueAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(32))
	exec := &recordingExecutor{}
	p := NewPool(4, q, exec)

	p.Start(ctx)

	for i := 0; i < 20; i++ {
		if !q.Enqueue(ctx, NewJob("k", uint64(i), nil, 2026, false)) {
			t.Fatalf("enqueue %d failed", i)
		}
	}

	waitFor(t, func() bool { return exec.count() == 20 })

	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestPool_ShutdownClosesQueue(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(4))
	p := NewPool(2, q, &recordingExecutor{})

	p.Start(ctx)

	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue closed after pool shutdown")
	}
}
