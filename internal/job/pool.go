package job

import (
	"context"
	"log/slog"
	"sync"
)

const defaultQueueSize = 256

// Processor drives one claimed job to a terminal state.
type Processor interface {
	Process(ctx context.Context, jobID string)
}

// Pool runs a fixed number of goroutines that execute queued jobs. Jobs are
// never run on the goroutine that accepted the submission.
type Pool struct {
	proc    Processor
	workers int
	queue   chan string
}

// NewPool creates a pool with the given number of workers.
func NewPool(proc Processor, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		proc:    proc,
		workers: workers,
		queue:   make(chan string, defaultQueueSize),
	}
}

// Enqueue schedules a job without blocking. It reports false when the queue
// is full; the caller surfaces that instead of stalling the request path.
func (p *Pool) Enqueue(jobID string) bool {
	select {
	case p.queue <- jobID:
		return true
	default:
		return false
	}
}

// Run starts worker goroutines and blocks until ctx is cancelled and all
// workers have drained.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := range p.workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-p.queue:
			slog.Info("worker: processing job", "worker", id, "job", jobID)
			p.proc.Process(ctx, jobID)
		}
	}
}
