// Package workerpool runs a bounded number of goroutines over a fixed list
// of work items and joins once, backing the scan planner's parallel
// manifest read: manifests are read concurrently, but the fold that
// consumes their results is always serial and always waits for every read
// to finish (or fail, or be cancelled) before proceeding.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"tablestore/pkg/tserrors"
)

// Run applies work to every item in items using at most concurrency
// goroutines, and returns their results in the same order as items. If ctx
// is cancelled before an item starts, that item's slot receives
// tserrors.ErrCancelled instead of running work. Run always returns exactly
// len(items) results; the caller inspects each result's error individually.
func Run[T, R any](ctx context.Context, items []T, concurrency int, work func(context.Context, T) (R, error)) []Result[R] {
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	type job struct {
		index int
		item  T
	}
	jobs := make(chan job, len(items))
	for i, it := range items {
		jobs <- job{index: i, item: it}
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for w := 0; w < concurrency; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					results[j.index] = Result[R]{Err: fmt.Errorf("workerpool: %w", tserrors.ErrCancelled)}
					continue
				default:
				}
				r, err := work(ctx, j.item)
				results[j.index] = Result[R]{Value: r, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}

// Result pairs one work item's output with its error, since a failure in
// one item must not silently discard the others' results.
type Result[R any] struct {
	Value R
	Err   error
}
