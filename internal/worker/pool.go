// Package worker bounds the pipeline's external request concurrency.
package worker

import (
	"context"
	"sync"
)

// Pool executes index-addressed jobs with bounded concurrency and a fail-fast
// all-or-nothing contract: the first error cancels everything in flight, jobs
// not yet started never run, and the caller gets exactly one error. With one
// worker (the default) execution is strictly sequential in index order —
// job i+1 starts only after job i completes.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool's concurrency bound
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes fn for every index in [0, n). Each invocation is responsible
// for depositing its own result by index; Run only sequences execution and
// collapses failures into a single error.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, p.workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for i := 0; i < n; i++ {
		select {
		case <-runCtx.Done():
		case sem <- struct{}{}:
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := fn(runCtx, i); err != nil {
					fail(err)
				}
			}(i)
		}

		// A cancelled run submits nothing further.
		if runCtx.Err() != nil {
			break
		}
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
