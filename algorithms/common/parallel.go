package common

import (
	"runtime"
	"sync"
)

// minChunk is the smallest amount of work handed to a single worker
const minChunk = 256

// ParallelFill evaluates fn for every index in [0, n) and returns the results in order.
// The index range is split into contiguous chunks, one goroutine per chunk. fn must be
// safe to call concurrently and must not depend on other indices.
func ParallelFill(n int, fn func(i int) float64) []float64 {
	out := make([]float64, max(n, 0))
	if n <= 0 {
		return out
	}

	workers := runtime.GOMAXPROCS(0)
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}

	if workers <= 1 {
		for i := range n {
			out[i] = fn(i)
		}
		return out
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = fn(i)
			}
		}(start, end)
	}
	wg.Wait()

	return out
}
