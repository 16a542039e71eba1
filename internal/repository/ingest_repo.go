package repository

import (
	"context"
	"database/sql"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// IngestRepository writes products, sales and templates over a plain
// *sql.DB so batch tools can use any registered driver.
type IngestRepository struct {
	db *sql.DB
}

func NewIngestRepository(db *sql.DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, sku, name, category, template_id, current_stock, min_stock, unit_cost, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			sku = EXCLUDED.sku,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			template_id = EXCLUDED.template_id,
			current_stock = EXCLUDED.current_stock,
			min_stock = EXCLUDED.min_stock,
			unit_cost = EXCLUDED.unit_cost,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SKU, p.Name, p.Category, p.TemplateID,
		p.CurrentStock, p.MinStock, p.UnitCost,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to upsert product %s", p.ID)
	}
	return nil
}

// ReplaceSales swaps the whole sales history of a product in one transaction.
func (r *IngestRepository) ReplaceSales(ctx context.Context, productID string, records []forecast.SalesRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE product_id = $1`, productID); err != nil {
		return 0, errors.Wrap(err, "failed to clear sales")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (product_id, sold_at, quantity, revenue, unit_price, is_wholesale, price_change_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, rec := range records {
		var marker sql.NullTime
		if rec.PriceChangeMarker != nil {
			marker = sql.NullTime{Time: *rec.PriceChangeMarker, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			productID, rec.Date, rec.Quantity, rec.Revenue, rec.UnitPrice, rec.IsWholesale, marker,
		); err != nil {
			return 0, errors.Wrap(err, "failed to insert sale")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit sales")
	}
	return len(records), nil
}

func (r *IngestRepository) UpsertTemplate(ctx context.Context, p forecast.SeasonalPattern) error {
	query := `
		INSERT INTO seasonal_templates (id, name, multipliers, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, multipliers = EXCLUDED.multipliers, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, pq.Float64Array(p.Multipliers)); err != nil {
		return errors.Wrapf(err, "failed to upsert template %s", p.ID)
	}
	return nil
}
