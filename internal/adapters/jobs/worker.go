package jobs

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/repstats/repstats/pkg/logger"
	"github.com/repstats/repstats/pkg/metrics"
)

// Shutdown timing constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 10 * time.Second
)

// Executor runs a single refresh job. The application service implements
// this to fetch, aggregate and commit results for the job's key.
type Executor interface {
	Execute(ctx context.Context, j Job) error
}

// Worker drains the queue and hands each job to the executor.
type Worker struct {
	queue    Queue
	executor Executor
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker bound to a queue and executor.
func NewWorker(queue Queue, executor Executor, opts ...WorkerOption) *Worker {
	w := &Worker{
		queue:    queue,
		executor: executor,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run processes jobs until the context is cancelled, shutdown is
// signalled, or the queue's channel is closed.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown signals the worker to stop and waits for it to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-time.After(workerShutdownTimeout):
		return ErrShutdownTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) process(ctx context.Context, j Job) {
	start := time.Now()
	metrics.RecordRefreshJob()

	if err := w.executor.Execute(ctx, j); err != nil {
		metrics.RecordRefreshFailure()
		w.logger.Error(ctx, "refresh job failed",
			logger.String("job_id", j.ID),
			logger.String("key", j.Key),
			logger.Uint64("generation", j.Generation),
			logger.Error(err))
		return
	}

	metrics.UpdateQueueSize(w.queue.Len(ctx))
	w.logger.Debug(ctx, "refresh job completed",
		logger.String("job_id", j.ID),
		logger.String("key", j.Key),
		logger.Duration("elapsed", time.Since(start)))
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*Worker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count
// defaults to the number of CPUs.
func NewPool(workerCount int, queue Queue, executor Executor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("refresh-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(queue, executor, WithName("refresh-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Warn(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
