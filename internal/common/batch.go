package common

import (
	"context"
	"sync/atomic"
	"time"

	"travelbook/airports/internal/constants"

	"golang.org/x/sync/errgroup"
)

// BatchOutcome aggregates per-item results of RunInBatches.
type BatchOutcome struct {
	Succeeded int
	Failed    int
	Total     int
}

// RunInBatches calls fn for every item, size items at a time, waiting delay
// between batches. A failing item is counted and never stops the run. Items
// left unprocessed when ctx is cancelled count as failed.
func RunInBatches[T any](ctx context.Context, items []T, size int, delay time.Duration, fn func(context.Context, T) error) BatchOutcome {
	if size <= 0 {
		size = constants.DefaultBatchSize
	}

	var succeeded, failed atomic.Int64
	outcome := BatchOutcome{Total: len(items)}

	for start := 0; start < len(items); start += size {
		if start > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				failed.Add(int64(len(items) - start))
				outcome.Succeeded, outcome.Failed = int(succeeded.Load()), int(failed.Load())
				return outcome
			case <-time.After(delay):
			}
		}

		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var g errgroup.Group
		for _, item := range items[start:end] {
			item := item
			g.Go(func() error {
				if err := fn(ctx, item); err != nil {
					failed.Add(1)
					return nil
				}
				succeeded.Add(1)
				return nil
			})
		}
		_ = g.Wait()
	}

	outcome.Succeeded, outcome.Failed = int(succeeded.Load()), int(failed.Load())
	return outcome
}
