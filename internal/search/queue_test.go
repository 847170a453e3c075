package search

import (
	"fmt"
	"sync"
	"testing"
)

func TestDirectoryQueue_EnqueueDequeue(t *testing.T) {
	q := newDirectoryQueue()

	if _, ok := q.TryDequeue(); ok {
		t.Fatal("expected empty queue to report no work")
	}

	q.Enqueue("/a")
	q.Enqueue("/b")
	q.Enqueue("/c")

	if got := q.Depth(); got != 3 {
		t.Fatalf("expected depth 3, got %d", got)
	}

	first, ok := q.TryDequeue()
	if !ok || first != "/a" {
		t.Fatalf("expected /a first, got %q (ok=%v)", first, ok)
	}

	second, ok := q.TryDequeue()
	if !ok || second != "/b" {
		t.Fatalf("expected /b second, got %q (ok=%v)", second, ok)
	}

	if got := q.Depth(); got != 1 {
		t.Fatalf("expected depth 1 after two dequeues, got %d", got)
	}
}

func TestDirectoryQueue_TryDequeueNeverWaits(t *testing.T) {
	q := newDirectoryQueue()

	q.Enqueue("/only")
	if _, ok := q.TryDequeue(); !ok {
		t.Fatal("expected one item")
	}

	// The queue is now empty. TryDequeue must report that immediately even
	// though a later Enqueue could add more work.
	if path, ok := q.TryDequeue(); ok {
		t.Fatalf("expected empty report, got %q", path)
	}

	q.Enqueue("/later")
	if _, ok := q.TryDequeue(); !ok {
		t.Fatal("expected the later item to be available")
	}
}

func TestDirectoryQueue_ConcurrentEnqueue(t *testing.T) {
	const producers = 8
	const perProducer = 500

	q := newDirectoryQueue()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(fmt.Sprintf("/p%d/d%d", p, i))
			}
		}(p)
	}
	wg.Wait()

	if got := q.Depth(); got != producers*perProducer {
		t.Fatalf("expected depth %d, got %d", producers*perProducer, got)
	}

	seen := make(map[string]bool, producers*perProducer)
	for {
		path, ok := q.TryDequeue()
		if !ok {
			break
		}
		if seen[path] {
			t.Fatalf("path %q dequeued twice", path)
		}
		seen[path] = true
	}

	if len(seen) != producers*perProducer {
		t.Fatalf("expected %d unique paths, got %d", producers*perProducer, len(seen))
	}
	if got := q.Depth(); got != 0 {
		t.Fatalf("expected depth 0 after draining, got %d", got)
	}
}

func TestDirectoryQueue_ConcurrentMixed(t *testing.T) {
	const workers = 4
	const items = 1000

	q := newDirectoryQueue()
	for i := 0; i < items; i++ {
		q.Enqueue(fmt.Sprintf("/seed/%d", i))
	}

	var mu sync.Mutex
	drained := make(map[string]bool, items)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				path, ok := q.TryDequeue()
				if !ok {
					return
				}
				mu.Lock()
				if drained[path] {
					mu.Unlock()
					t.Errorf("path %q dequeued twice", path)
					return
				}
				drained[path] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(drained) != items {
		t.Fatalf("expected %d drained paths, got %d", items, len(drained))
	}
}
