package search

import (
	"sync"
	"sync/atomic"
)

// directoryQueue is the shared collection of directories waiting to be
// processed. Any worker may enqueue or dequeue concurrently; the queue
// synchronizes internally so callers never coordinate around it. The
// slice-backed FIFO gives traversal a breadth-first tendency, which is an
// implementation detail, not a contract.
//
// depth mirrors len(items) so the progress monitor can observe the queue
// without contending for the lock a worker might be holding.
type directoryQueue struct {
	mu    sync.Mutex
	items []string
	depth atomic.Int64
}

func newDirectoryQueue() *directoryQueue {
	return &directoryQueue{}
}

// Enqueue appends one pending directory. It never blocks and never fails.
func (q *directoryQueue) Enqueue(path string) {
	q.mu.Lock()
	q.items = append(q.items, path)
	q.depth.Add(1)
	q.mu.Unlock()
}

// TryDequeue pops the oldest pending directory. It never waits for future
// work: an empty queue reports false immediately, and what a worker does
// with that is the worker's policy.
func (q *directoryQueue) TryDequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false
	}
	path := q.items[0]
	q.items = q.items[1:]
	q.depth.Add(-1)
	return path, true
}

// Depth reports the approximate number of pending directories without
// taking the queue lock.
func (q *directoryQueue) Depth() int {
	return int(q.depth.Load())
}
