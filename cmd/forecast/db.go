package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/pipeline"
	"github.com/andresuchdata/stockcast/internal/report"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/salesfile"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

type contextKey string

const dbKey contextKey = "db"

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialised")
	}
	return db, nil
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(c.Context, db); err != nil {
		return err
	}
	logger.Log.Info().Msg("schema is up to date")
	return nil
}

func runSeedTemplates(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	repo := repository.NewIngestRepository(db)
	templates := forecast.DefaultTemplates()
	for _, p := range templates {
		if err := repo.UpsertTemplate(c.Context, p); err != nil {
			return err
		}
	}

	logger.Log.Info().Int("templates", len(templates)).Msg("seeded seasonal templates")
	return nil
}

func runIngest(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	unitCost, err := decimal.NewFromString(c.String("unit-cost"))
	if err != nil {
		return fmt.Errorf("invalid --unit-cost: %w", err)
	}

	records, err := salesfile.ReadFile(c.String("sales-file"))
	if err != nil {
		return err
	}

	product := &domain.Product{
		ID:           c.String("product-id"),
		SKU:          c.String("sku"),
		Name:         c.String("name"),
		Category:     c.String("category"),
		TemplateID:   c.String("template"),
		CurrentStock: c.Float64("stock"),
		MinStock:     c.Float64("min-stock"),
		UnitCost:     unitCost,
	}
	if product.SKU == "" {
		product.SKU = product.ID
	}
	if product.Name == "" {
		product.Name = product.SKU
	}

	forecasts := cache.NewNoopForecastCache()
	if url := c.String("redis-url"); url != "" {
		client, err := cache.NewRedisClient(config.CacheConfig{RedisURL: url})
		if err != nil {
			return err
		}
		defer client.Close()
		forecasts = cache.NewForecastCache(client, 0)
	}

	n, err := ingestProduct(c.Context, repository.NewIngestRepository(db), forecasts, product, records)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Str("product_id", product.ID).
		Int("sales", n).
		Msg("product ingested")
	return nil
}

type productIngester interface {
	UpsertProduct(ctx context.Context, p *domain.Product) error
	ReplaceSales(ctx context.Context, productID string, records []forecast.SalesRecord) (int, error)
}

// ingestProduct stores the product and its sales history, then drops the
// forecasts cached over the previous history.
func ingestProduct(ctx context.Context, repo productIngester, forecasts cache.ForecastCache, product *domain.Product, records []forecast.SalesRecord) (int, error) {
	if err := repo.UpsertProduct(ctx, product); err != nil {
		return 0, err
	}

	n, err := repo.ReplaceSales(ctx, product.ID, records)
	if err != nil {
		return 0, err
	}

	if err := forecasts.InvalidateProduct(ctx, product.ID); err != nil {
		return n, fmt.Errorf("sales stored but cached forecasts of %s were not cleared: %w", product.ID, err)
	}
	return n, nil
}

func runOverview(c *cli.Context) error {
	sqlDB, err := dbFrom(c)
	if err != nil {
		return err
	}
	db := postgres.Wrap(sqlx.NewDb(sqlDB, "pgx"))

	cfg := config.ForecastConfig{
		DefaultHorizonDays: forecast.DefaultHorizonDays,
		HistoryDays:        c.Int("history-days"),
		BatchWorkers:       c.Int("workers"),
	}

	engine := forecast.NewEngine(
		forecast.NewDefaultRegistry(),
		forecast.WithLogger(logger.Component("forecast")),
	)
	svc := service.NewForecastService(
		engine,
		postgres.NewProductRepository(db),
		postgres.NewSalesRepository(db),
		postgres.NewTemplateRepository(db),
		cfg,
	).WithRunStore(pipeline.NewRepository(db.DB))

	if _, err := svc.LoadTemplates(c.Context); err != nil {
		return err
	}

	start := time.Now()
	overview, err := svc.DemandOverview(c.Context, splitIDs(c.String("product-ids")), c.Int("days"))
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("products", len(overview.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("demand overview computed")

	if path := c.String("xlsx"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteOverviewWorkbook(w, overview) }); err != nil {
			return err
		}
	}

	return printJSON(c.App.Writer, overview)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
