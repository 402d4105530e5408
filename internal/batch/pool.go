// Package batch finds input images and processes them on a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// job is a single item of work.
type job[T any] struct {
	index int
	item  T
}

// result is the outcome of a single job.
type result[R any] struct {
	index int
	value R
	err   error
}

// Map runs fn over items on up to workers goroutines (0 means
// runtime.NumCPU()) and returns the results in input order. Every item is
// processed even when some fail; the error of the lowest failing index is
// returned, wrapped with its index. Cancelling ctx stops handing out work.
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out, nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(items))

	jobs := make(chan job[T])
	results := make(chan result[R], len(items))

	// Start workers
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				v, err := fn(ctx, j.item)
				results <- result[R]{index: j.index, value: v, err: err}
			}
		}()
	}

	// Send jobs
	go func() {
		defer close(jobs)
		for i, it := range items {
			select {
			case jobs <- job[T]{index: i, item: it}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Collect results
	go func() {
		wg.Wait()
		close(results)
	}()

	errs := make([]error, len(items))
	for r := range results {
		out[r.index] = r.value
		errs[r.index] = r.err
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	for i, err := range errs {
		if err != nil {
			return out, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return out, nil
}
