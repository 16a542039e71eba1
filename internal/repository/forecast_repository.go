package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
)

// ProductRepository reads stocked products. GetProduct returns a
// *forecast.NotFoundError for unknown ids.
type ProductRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

// SalesRepository reads the sales history of a product, oldest first.
type SalesRepository interface {
	GetSalesHistory(ctx context.Context, productID string, since time.Time) ([]forecast.SalesRecord, error)
}

// TemplateRepository persists seasonal templates.
type TemplateRepository interface {
	ListTemplates(ctx context.Context) ([]forecast.SeasonalPattern, error)
	SaveTemplate(ctx context.Context, pattern forecast.SeasonalPattern) error
}
