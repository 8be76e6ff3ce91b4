// Package worker_pool bounds the concurrency of independent tasks with
// a semaphore. Results come back in task order regardless of completion
// order.
package worker_pool

import (
	"context"
	"runtime"
	"sync"
)

// Task is a unit of work executed on a pool goroutine
type Task func(ctx context.Context) (interface{}, error)

// Result is the outcome of one task
type Result struct {
	Value interface{}
	Error error
}

// WorkerPool limits how many tasks run at once
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
}

// NewWorkerPool creates a pool admitting maxWorkers concurrent tasks.
// Zero or negative means one per CPU.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Run executes all tasks and returns their results in input order.
// Tasks that never acquire a worker before ctx is cancelled report the
// context's error; tasks already running are left to observe ctx
// themselves.
func (wp *WorkerPool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return []Result{}
	}

	results := make([]Result, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, t Task) {
			defer wg.Done()

			select {
			case wp.semaphore <- struct{}{}:
				defer func() { <-wp.semaphore }()
			case <-ctx.Done():
				results[index] = Result{Error: ctx.Err()}
				return
			}

			// The acquire select picks randomly when both channels are
			// ready, so recheck before doing any work.
			if err := ctx.Err(); err != nil {
				results[index] = Result{Error: err}
				return
			}

			value, err := t(ctx)
			results[index] = Result{Value: value, Error: err}
		}(i, task)
	}

	wg.Wait()
	return results
}

// MaxWorkers returns the concurrency bound
func (wp *WorkerPool) MaxWorkers() int {
	return wp.maxWorkers
}
