package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type salesRow struct {
	SoldAt          time.Time    `db:"sold_at"`
	Quantity        float64      `db:"quantity"`
	Revenue         float64      `db:"revenue"`
	UnitPrice       float64      `db:"unit_price"`
	IsWholesale     bool         `db:"is_wholesale"`
	PriceChangeDate sql.NullTime `db:"price_change_date"`
}

func (row salesRow) toRecord() forecast.SalesRecord {
	rec := forecast.SalesRecord{
		Date:        row.SoldAt,
		Quantity:    row.Quantity,
		Revenue:     row.Revenue,
		UnitPrice:   row.UnitPrice,
		IsWholesale: row.IsWholesale,
	}
	if row.PriceChangeDate.Valid {
		marker := row.PriceChangeDate.Time
		rec.PriceChangeMarker = &marker
	}
	return rec
}

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) GetSalesHistory(ctx context.Context, productID string, since time.Time) ([]forecast.SalesRecord, error) {
	query := `
		SELECT sold_at, quantity, revenue, unit_price, is_wholesale, price_change_date
		FROM sales
		WHERE product_id = $1 AND sold_at >= $2
		ORDER BY sold_at
	`

	var rows []salesRow
	err := r.db.withConn(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &rows, query, productID, since)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get sales history for %s", productID)
	}

	records := make([]forecast.SalesRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}
