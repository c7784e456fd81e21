package extractor

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	var counter int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}
	pool.Wait()

	if counter != 100 {
		t.Errorf("Expected 100 jobs executed, got %d", counter)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var mu sync.Mutex
	active, peak := 0, 0
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		})
	}
	pool.Wait()

	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent jobs, observed %d", peak)
	}
}

func TestWorkerPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("Expected positive default worker count, got %d", pool.workers)
	}
}

func TestWorkerPoolWaitBeforeSubmit(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Close()

	// Wait on an empty pool must not block.
	pool.Wait()

	done := false
	pool.Submit(func() { done = true })
	pool.Wait()
	if !done {
		t.Error("Expected submitted job to have run after Wait")
	}
}
