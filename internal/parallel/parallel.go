// Package parallel spreads independent kernel rows across worker goroutines.
// Kernels hand it their outermost loop; small workloads run sequentially so
// scalar-sized tensors never pay goroutine overhead.
package parallel

import (
	"runtime"
	"sync"
)

// minWork is the total element count below which Rows stays sequential.
const minWork = 1 << 14

var workers = runtime.GOMAXPROCS(0)

// Rows runs f(r) for every r in [0, rows). Iterations must be independent:
// each r has to touch disjoint output elements. rowCost is the approximate
// number of elements one iteration processes; rows*rowCost decides whether
// fanning out is worth it.
func Rows(rows, rowCost int, f func(r int)) {
	if workers < 2 || rows < 2 || rows*rowCost < minWork {
		for r := 0; r < rows; r++ {
			f(r)
		}
		return
	}

	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < rows; start += chunk {
		end := start + chunk
		if end > rows {
			end = rows
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for r := s; r < e; r++ {
				f(r)
			}
		}(start, end)
	}
	wg.Wait()
}
