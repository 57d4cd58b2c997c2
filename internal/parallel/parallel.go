// Package parallel provides a chunked data-parallel range helper.
//
// Workers operate on disjoint index ranges and results are merged by
// index, so callers stay deterministic regardless of scheduling order.
package parallel

import (
	"runtime"
	"sync"
)

// Execute runs work(start, end) over [0, n) split in nbTasks chunks and
// waits for completion. If no task count is given it defaults to
// runtime.NumCPU().
func Execute(n int, work func(start, end int), maxCpus ...int) {

	nbTasks := runtime.NumCPU()
	if len(maxCpus) == 1 {
		nbTasks = maxCpus[0]
		if nbTasks < 1 {
			nbTasks = 1
		} else if nbTasks > 512 {
			nbTasks = 512
		}
	}

	if nbTasks == 1 {
		work(0, n)
		return
	}

	nbIterationsPerCpus := n / nbTasks

	// more CPUs than tasks: a CPU works on exactly one iteration
	if nbIterationsPerCpus < 1 {
		nbIterationsPerCpus = 1
		nbTasks = n
	}

	var wg sync.WaitGroup

	extraTasks := n - (nbTasks * nbIterationsPerCpus)
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		_start := i*nbIterationsPerCpus + extraTasksOffset
		_end := _start + nbIterationsPerCpus
		if extraTasks > 0 {
			_end++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(_start, _end)
			wg.Done()
		}()
	}

	wg.Wait()
}
