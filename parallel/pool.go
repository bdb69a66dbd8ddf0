// Package parallel runs independent jobs, one file each, on a bounded number
// of goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Job processes one unit of work. A returned error is counted and does not
// stop other jobs.
type Job func(ctx context.Context) error

// Stats counts finished jobs.
type Stats struct {
	Done    uint64
	Failed  uint64
	Skipped uint64 // submitted after the context was cancelled
}

// Pool runs submitted jobs. With a single worker jobs run inline in Submit.
type Pool struct {
	ctx  context.Context
	wg   sync.WaitGroup
	jobs chan Job
	stop func()

	done, failed, skipped atomic.Uint64
}

// Start starts a pool of numWorkers goroutines. numWorkers < 1 uses
// GOMAXPROCS.
func Start(ctx context.Context, numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{ctx: ctx, stop: func() {}}
	if numWorkers == 1 {
		return p
	}

	p.jobs = make(chan Job, numWorkers)
	for range numWorkers {
		p.wg.Go(func() {
			for job := range p.jobs {
				p.run(job)
			}
		})
	}
	p.stop = sync.OnceFunc(func() { close(p.jobs) })
	return p
}

func (p *Pool) run(job Job) {
	if p.ctx.Err() != nil {
		p.skipped.Add(1)
		return
	}
	if err := job(p.ctx); err != nil {
		p.failed.Add(1)
		return
	}
	p.done.Add(1)
}

// Submit queues job, blocking while every worker is busy. It must not be
// called after Wait.
func (p *Pool) Submit(job Job) {
	if p.jobs == nil {
		p.run(job)
		return
	}
	p.jobs <- job
}

// Wait stops accepting jobs, waits for queued ones and returns the counts.
func (p *Pool) Wait() Stats {
	p.stop()
	p.wg.Wait()
	return Stats{
		Done:    p.done.Load(),
		Failed:  p.failed.Load(),
		Skipped: p.skipped.Load(),
	}
}
