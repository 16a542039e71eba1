package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const productColumns = `
	id, sku, name, category, COALESCE(template_id, '') AS template_id,
	current_stock, min_stock, unit_cost, created_at, updated_at
`

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.withConn(ctx, func() error {
		return sqlx.GetContext(ctx, r.db, &p, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &forecast.NotFoundError{Kind: "product", ID: id}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get product %s", id)
	}
	return &p, nil
}

func (r *productRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	query, args := buildProductQuery(filter)

	var products []*domain.Product
	err := r.db.withConn(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &products, query, args...)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return products, nil
}

func buildProductQuery(filter domain.ProductFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	if len(filter.IDs) > 0 {
		args = append(args, pq.Array(filter.IDs))
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	return query + " ORDER BY id", args
}
