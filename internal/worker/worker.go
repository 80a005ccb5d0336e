// Package worker runs fire-and-forget background jobs on a bounded pool.
package worker

import (
	"context"
	"fmt"
	"sync"

	"newslistener/internal/logger"
)

// Job is a unit of background work. It must report failure through its error
// return; the pool logs it but has nowhere else to surface it.
type Job = func(ctx context.Context) error

// Pool executes submitted jobs on a fixed number of goroutines. Submission
// never blocks the caller beyond queue capacity; job progress is observable
// only through whatever state the job itself persists.
type Pool struct {
	jobs   chan queued
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

type queued struct {
	name string
	job  Job
}

// NewPool starts a pool with the given number of workers and queue capacity.
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan queued, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for q := range p.jobs {
		p.execute(q)
	}
}

// execute isolates one job so a panic cannot take down the worker.
func (p *Pool) execute(q queued) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Background job panicked", fmt.Errorf("%v", r), "job", q.name)
		}
	}()
	if err := q.job(p.ctx); err != nil {
		logger.Error("Background job failed", err, "job", q.name)
	}
}

// Submit queues a job for execution. It returns an error only when the pool
// has been stopped or the queue is full.
func (p *Pool) Submit(name string, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return fmt.Errorf("worker pool is stopped")
	}
	select {
	case p.jobs <- queued{name: name, job: job}:
		return nil
	default:
		return fmt.Errorf("worker queue is full")
	}
}

// Stop refuses new work and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}
