package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Orchestrator runs batches through a Worker and records each run.
type Orchestrator struct {
	store RunStore
	cfg   Config
	now   func() time.Time
}

// NewOrchestrator creates a new Orchestrator. A nil store keeps runs in memory.
func NewOrchestrator(store RunStore, cfg Config) *Orchestrator {
	if store == nil {
		store = NewMemoryRunStore()
	}
	return &Orchestrator{store: store, cfg: cfg, now: time.Now}
}

func (o *Orchestrator) Store() RunStore {
	return o.store
}

// Execute processes keys with fn under a tracked run. The run is marked
// failed only when the batch itself is cancelled; per-key failures are
// counted.
func Execute[T any](ctx context.Context, o *Orchestrator, keys []string, fn ProcessFunc[T]) (*Run, []Outcome[T], error) {
	run := &Run{
		ID:        uuid.NewString(),
		Name:      o.cfg.Name,
		Status:    StatusProcessing,
		Total:     len(keys),
		StartedAt: o.now(),
	}
	if err := o.store.CreateRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("failed to record pipeline run")
	}

	log.Info().Str("run_id", run.ID).Str("batch", run.Name).Int("keys", len(keys)).Msg("batch started")

	outcomes, err := NewWorker(o.cfg, fn).ProcessBatch(ctx, keys)
	for _, out := range outcomes {
		switch {
		case out.Attempts == 0:
		case out.Err != nil:
			run.Failed++
		default:
			run.Succeeded++
		}
	}

	completed := o.now()
	run.CompletedAt = &completed
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
	}

	// The batch context may already be cancelled; record the outcome anyway.
	if uerr := o.store.UpdateRun(context.WithoutCancel(ctx), run); uerr != nil {
		log.Warn().Err(uerr).Str("run_id", run.ID).Msg("failed to update pipeline run")
	}

	log.Info().
		Str("run_id", run.ID).
		Str("status", string(run.Status)).
		Int("succeeded", run.Succeeded).
		Int("failed", run.Failed).
		Dur("duration", completed.Sub(run.StartedAt)).
		Msg("batch finished")

	if err != nil {
		return run, outcomes, fmt.Errorf("batch %s cancelled: %w", run.Name, err)
	}
	return run, outcomes, nil
}
