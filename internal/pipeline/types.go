package pipeline

import (
	"context"
	"time"
)

// ProcessFunc handles one key of a batch, typically a product id.
type ProcessFunc[T any] func(ctx context.Context, key string) (T, error)

// Config holds configuration for a batch run
type Config struct {
	Name          string
	WorkerCount   int           // Number of concurrent workers
	RetryAttempts int           // Attempts per key, including the first
	RetryBackoff  time.Duration // Backoff duration between retries
	// Retryable reports whether a failed key should be tried again. Nil
	// retries every error.
	Retryable func(error) bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		WorkerCount:   4,
		RetryAttempts: 1,
		RetryBackoff:  time.Second,
	}
}

// RunStatus represents the current state of a batch run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Run tracks a single execution of a batch
type Run struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Status       RunStatus  `json:"status" db:"status"`
	Total        int        `json:"total" db:"total"`
	Succeeded    int        `json:"succeeded" db:"succeeded"`
	Failed       int        `json:"failed" db:"failed"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
}

// Outcome is the result for one key. Outcomes are returned in input order.
type Outcome[T any] struct {
	Key      string
	Value    T
	Err      error
	Attempts int
}
