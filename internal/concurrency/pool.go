// Package concurrency provides the small bounded worker pool used
// wherever the pipeline fans out over independent per-item work (trace
// import, per-trace analysis, per-bucket context correlation).
package concurrency

import (
	"runtime"
	"sync"
)

// Workers returns a sensible bounded worker count for n independent
// items: the number of available CPUs, capped at n so small batches
// never spin up more goroutines than items to process.
func Workers(n int) int {
	w := runtime.NumCPU()
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Map runs fn over every item using a bounded pool of workers goroutines
// and returns results in the same order as items, regardless of which
// goroutine finishes first — callers get the same result slice every
// run, independent of scheduling. The first error found when scanning
// results by item index (not completion order) is returned; all items
// still run to completion since they're independent of one another.
func Map[T, R any](items []T, workers int, fn func(idx int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if workers < 1 {
		workers = 1
	}

	type job struct {
		idx int
		in  T
	}

	jobs := make(chan job)
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r, err := fn(j.idx, j.in)
				results[j.idx] = r
				errs[j.idx] = err
			}
		}()
	}

	for i, it := range items {
		jobs <- job{idx: i, in: it}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
