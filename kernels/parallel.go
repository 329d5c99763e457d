package kernels

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum agent count to fan integration out to
// worker goroutines. Below this, single-threaded is faster due to
// goroutine overhead.
const parallelThreshold = 64

// IntegrateAllParallel is IntegrateAll with the agent range chunked
// across GOMAXPROCS goroutines. Agents own disjoint index pairs, so
// chunks never alias and the result is identical to the serial kernel.
func IntegrateAllParallel(positions, velocities, accelerations []float32, dt, minSpeed, maxSpeed, drag float32) {
	count := len(positions) / 2
	if count < parallelThreshold {
		integrateRange(positions, velocities, accelerations, 0, count, dt, minSpeed, maxSpeed, drag)
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	chunkSize := (count + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, count)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i0, i1 int) {
			defer wg.Done()
			integrateRange(positions, velocities, accelerations, i0, i1, dt, minSpeed, maxSpeed, drag)
		}(start, end)
	}
	wg.Wait()
}
