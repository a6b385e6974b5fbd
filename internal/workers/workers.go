// Package workers wraps github.com/pbenner/threadpool with static
// contiguous partitioning and worker-id-ordered reduction: floating-point
// summation is not associative, so every parallel accumulation in this
// module produces one partial per worker, in that worker's own index
// order, and combines the partials in worker-id order regardless of
// which worker happens to finish first.
package workers

import "github.com/pbenner/threadpool"

// Range is a half-open contiguous index range [Begin, End) owned by one
// worker.
type Range struct {
	Begin, End int
}

// Partition splits [0, n) into up to numWorkers contiguous, near-equal
// chunks. Never returns more chunks than numWorkers, and never an empty
// chunk unless n == 0.
func Partition(n, numWorkers int) []Range {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if n <= 0 {
		return nil
	}
	if numWorkers > n {
		numWorkers = n
	}
	base := n / numWorkers
	rem := n % numWorkers
	ranges := make([]Range, numWorkers)
	pos := 0
	for w := 0; w < numWorkers; w++ {
		size := base
		if w < rem {
			size++
		}
		ranges[w] = Range{Begin: pos, End: pos + size}
		pos += size
	}
	return ranges
}

// Run partitions [0, n) statically across pool's threads and invokes work
// once per partition (not once per index): work receives the worker index
// and its owned Range. It blocks until every partition has completed and
// returns the first error encountered, if any. A nil pool runs everything
// on the calling goroutine as a single
// partition, which keeps single-threaded callers (tests, Pool: 1) free of
// any goroutine overhead.
func Run(pool threadpool.ThreadPool, n int, work func(worker int, r Range) error) error {
	numThreads := 1
	if pool.NumberOfThreads() > 0 {
		numThreads = pool.NumberOfThreads()
	}
	ranges := Partition(n, numThreads)
	if len(ranges) == 0 {
		return nil
	}
	return pool.RangeJob(0, len(ranges), func(w int, p threadpool.ThreadPool, erf func() error) error {
		return work(w, ranges[w])
	})
}
