package utils

import (
	"context"
	"sort"
	"sync"
)

// Task represents a unit of work
type Task[T any] struct {
	Index  int
	Data   T
	Result any
	Err    error
}

// Worker is a function that processes a task
type Worker[T any] func(ctx context.Context, data T) (any, error)

// Pool is a worker pool for concurrent task processing
type Pool[T any] struct {
	workers int
	worker  Worker[T]
}

// NewPool creates a new worker pool. Fewer than one worker means one.
func NewPool[T any](workers int, worker Worker[T]) *Pool[T] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T]{
		workers: workers,
		worker:  worker,
	}
}

// Process runs the worker over items and returns the finished tasks in
// input order. When ctx is cancelled, Process stops handing out items and
// returns the tasks completed so far together with ctx.Err().
func (p *Pool[T]) Process(ctx context.Context, items []T) ([]*Task[T], error) {
	if len(items) == 0 {
		return []*Task[T]{}, nil
	}

	workers := p.workers
	if workers > len(items) {
		workers = len(items)
	}

	taskQueue := make(chan *Task[T])
	resultChan := make(chan *Task[T], len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskQueue {
				task.Result, task.Err = p.worker(ctx, task.Data)
				resultChan <- task
			}
		}()
	}

	go func() {
		defer close(taskQueue)
		for i, item := range items {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case taskQueue <- &Task[T]{Index: i, Data: item}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]*Task[T], 0, len(items))
	for task := range resultChan {
		results = append(results, task)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	if err := ctx.Err(); err != nil && len(results) < len(items) {
		return results, err
	}
	return results, nil
}
