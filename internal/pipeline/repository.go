package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// RunStore records batch runs
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, name string, limit int) ([]*Run, error)
}

// Repository handles database operations for run tracking
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new run repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun creates a new run record
func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO pipeline_runs (
			id, name, status, total, succeeded, failed, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Name, run.Status, run.Total, run.Succeeded, run.Failed, run.StartedAt,
	)
	return errors.Wrap(err, "failed to create pipeline run")
}

// UpdateRun updates an existing run
func (r *Repository) UpdateRun(ctx context.Context, run *Run) error {
	query := `
		UPDATE pipeline_runs
		SET status = $1, succeeded = $2, failed = $3,
		    completed_at = $4, error_message = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.Succeeded, run.Failed, run.CompletedAt, run.ErrorMessage, run.ID,
	)
	return errors.Wrap(err, "failed to update pipeline run")
}

// ListRuns returns the most recent runs of the named batch, newest first
func (r *Repository) ListRuns(ctx context.Context, name string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, name, status, total, succeeded, failed,
		       started_at, completed_at, COALESCE(error_message, '') AS error_message
		FROM pipeline_runs
		WHERE name = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	var runs []*Run
	if err := r.db.SelectContext(ctx, &runs, query, name, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list pipeline runs")
	}
	return runs, nil
}

// MemoryRunStore keeps runs in process memory.
type MemoryRunStore struct {
	mu   sync.Mutex
	runs map[string]Run
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]Run)}
}

func (m *MemoryRunStore) CreateRun(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

func (m *MemoryRunStore) UpdateRun(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return errors.Errorf("pipeline run %s not found", run.ID)
	}
	m.runs[run.ID] = *run
	return nil
}

func (m *MemoryRunStore) ListRuns(ctx context.Context, name string, limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []*Run
	for _, r := range m.runs {
		if r.Name == name {
			r := r
			runs = append(runs, &r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
