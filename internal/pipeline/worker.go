package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Worker fans a batch of keys out over a bounded pool of goroutines
type Worker[T any] struct {
	config  Config
	process ProcessFunc[T]
}

// NewWorker creates a new batch worker
func NewWorker[T any](cfg Config, fn ProcessFunc[T]) *Worker[T] {
	return &Worker[T]{config: cfg, process: fn}
}

// ProcessBatch runs the worker function for every key. A failing key is
// recorded in its Outcome and does not stop the batch; only cancellation of
// ctx returns an error.
func (w *Worker[T]) ProcessBatch(ctx context.Context, keys []string) ([]Outcome[T], error) {
	outcomes := make([]Outcome[T], len(keys))
	if len(keys) == 0 {
		return outcomes, nil
	}

	workerCount := w.config.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(keys) {
		workerCount = len(keys)
	}

	jobChan := make(chan int, len(keys))
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobChan {
				outcomes[idx] = w.processKey(ctx, keys[idx])
				if err := outcomes[idx].Err; err != nil {
					log.Warn().
						Err(err).
						Str("batch", w.config.Name).
						Int("worker", workerID).
						Str("key", keys[idx]).
						Msg("batch item failed")
				}
			}
		}(i)
	}

enqueue:
	for i := range keys {
		select {
		case <-ctx.Done():
			break enqueue
		case jobChan <- i:
		}
	}
	close(jobChan)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (w *Worker[T]) processKey(ctx context.Context, key string) Outcome[T] {
	attempts := w.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	out := Outcome[T]{Key: key}
	for attempt := 1; attempt <= attempts; attempt++ {
		out.Attempts = attempt
		value, err := w.process(ctx, key)
		if err == nil {
			out.Value, out.Err = value, nil
			return out
		}
		out.Err = err

		if attempt == attempts || ctx.Err() != nil {
			break
		}
		if w.config.Retryable != nil && !w.config.Retryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return out
		case <-time.After(w.config.RetryBackoff):
		}
	}
	return out
}
