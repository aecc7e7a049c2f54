// Package parallel fans independent per-sample work out across CPU cores.
//
// Every helper hands workers disjoint index ranges; callers write results into
// index-addressed slots, so output order never depends on completion order.
package parallel

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

// DefaultThreshold is the item count below which work runs on the calling goroutine.
const DefaultThreshold = 256

// Workers returns the worker count used for items units of work.
func Workers(items int) int {
	n := runtime.NumCPU()
	if n > items {
		n = items
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Parallelize divides items into one contiguous range per worker and runs fn
// on each range concurrently.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(items)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn(i) for every i in [0, items) and returns the first error.
// Panics inside fn are recovered and reported as *errors.PanicError carrying
// the sample index. Below threshold the loop runs sequentially.
func ForEach(items, threshold int, op string, fn func(i int) error) error {
	call := func(i int) (err error) {
		defer errors.RecoverSample(&err, op, i)
		return fn(i)
	}

	if items <= threshold {
		for i := 0; i < items; i++ {
			if err := call(i); err != nil {
				return err
			}
		}
		return nil
	}

	numWorkers := Workers(items)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var g errgroup.Group
	for start := 0; start < items; start += chunkSize {
		s, e := start, start+chunkSize
		if e > items {
			e = items
		}
		g.Go(func() error {
			for i := s; i < e; i++ {
				if err := call(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
