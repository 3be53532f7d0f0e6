// Package parallel runs independent pixalg jobs concurrently.
//
// A pixalg Runtime is single-goroutine, so parallelism happens one level
// up: each job owns its own runtime and rasters, and a Batch bounds how
// many jobs run at once.
//
// Thread safety: Batch is safe for concurrent use.
package parallel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one independent unit of work.
type Job func(ctx context.Context) error

// Batch runs jobs on a bounded number of goroutines.
type Batch struct {
	workers int
}

// NewBatch creates a batch runner with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewBatch(workers int) *Batch {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Batch{workers: workers}
}

// Workers returns the maximum number of jobs run at once.
func (b *Batch) Workers() int {
	return b.workers
}

// Run runs every job and waits for all of them. The returned slice holds
// each job's error at the job's index. A failing job does not stop the
// others; a cancelled ctx is passed through to jobs not yet finished.
func (b *Batch) Run(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	if len(jobs) == 0 {
		return errs
	}

	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, job := range jobs {
		g.Go(func() error {
			errs[i] = runJob(ctx, i, job)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// RunFailFast runs jobs until the first failure, which cancels the
// context passed to the remaining jobs. It returns the first error.
func (b *Batch) RunFailFast(ctx context.Context, jobs []Job) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, job := range jobs {
		g.Go(func() error {
			return runJob(gctx, i, job)
		})
	}
	return g.Wait()
}

// runJob runs job, turning a panic into an error so one bad job cannot
// take down the batch.
func runJob(ctx context.Context, i int, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parallel: job %d panicked: %v", i, r)
		}
	}()
	if job == nil {
		return nil
	}
	return job(ctx)
}
