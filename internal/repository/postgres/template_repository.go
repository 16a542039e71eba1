package postgres

import (
	"context"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type templateRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Multipliers pq.Float64Array `db:"multipliers"`
}

type templateRepository struct {
	db *DB
}

func NewTemplateRepository(db *DB) *templateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) ListTemplates(ctx context.Context) ([]forecast.SeasonalPattern, error) {
	query := `SELECT id, name, multipliers FROM seasonal_templates ORDER BY created_at, id`

	var rows []templateRow
	err := r.db.withConn(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &rows, query)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}

	patterns := make([]forecast.SeasonalPattern, 0, len(rows))
	for _, row := range rows {
		patterns = append(patterns, forecast.SeasonalPattern{
			ID:          row.ID,
			Name:        row.Name,
			Multipliers: []float64(row.Multipliers),
		})
	}
	return patterns, nil
}

func (r *templateRepository) SaveTemplate(ctx context.Context, p forecast.SeasonalPattern) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO seasonal_templates (id, name, multipliers, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (id)
			DO UPDATE SET
				name = EXCLUDED.name,
				multipliers = EXCLUDED.multipliers,
				updated_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, pq.Float64Array(p.Multipliers)); err != nil {
			return errors.Wrapf(err, "failed to save template %s", p.ID)
		}
		return nil
	})
}
