// Package parallel provides the worker helpers used for cross-validation
// folds and independent model runs.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across the available CPU cores and runs fn on
// each contiguous range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(runtime.NumCPU(), items, fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker cap. Workers
// never exceed the number of items; n <= 0 means one worker per CPU core.
func ParallelizeWorkers(n, items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > items {
		n = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + n - 1) / n

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
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

// ParallelizeWithThreshold runs sequentially when items is at or below
// threshold, in parallel otherwise. Small fold counts are not worth the
// goroutine overhead.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
