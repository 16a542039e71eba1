package service

import (
	"context"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/pipeline"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const overviewBatchName = "demand_overview"

type ForecastService struct {
	engine    *forecast.Engine
	products  repository.ProductRepository
	sales     repository.SalesRepository
	templates repository.TemplateRepository
	forecasts cache.ForecastCache
	overviews cache.OverviewCache
	runs      *pipeline.Orchestrator
	cfg       config.ForecastConfig
}

// NewForecastService wires the engine to its repositories. Caches default to
// no-ops and runs are tracked in memory until WithCache and WithRunStore are
// used.
func NewForecastService(
	engine *forecast.Engine,
	products repository.ProductRepository,
	sales repository.SalesRepository,
	templates repository.TemplateRepository,
	cfg config.ForecastConfig,
) *ForecastService {
	if cfg.DefaultHorizonDays <= 0 {
		cfg.DefaultHorizonDays = forecast.DefaultHorizonDays
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 365
	}

	s := &ForecastService{
		engine:    engine,
		products:  products,
		sales:     sales,
		templates: templates,
		forecasts: cache.NewNoopForecastCache(),
		overviews: cache.NewNoopOverviewCache(),
		cfg:       cfg,
	}
	s.runs = pipeline.NewOrchestrator(nil, s.batchConfig())
	return s
}

func (s *ForecastService) WithCache(forecasts cache.ForecastCache, overviews cache.OverviewCache) *ForecastService {
	if forecasts != nil {
		s.forecasts = forecasts
	}
	if overviews != nil {
		s.overviews = overviews
	}
	return s
}

func (s *ForecastService) WithRunStore(store pipeline.RunStore) *ForecastService {
	s.runs = pipeline.NewOrchestrator(store, s.batchConfig())
	return s
}

func (s *ForecastService) batchConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig(overviewBatchName)
	if s.cfg.BatchWorkers > 0 {
		cfg.WorkerCount = s.cfg.BatchWorkers
	}
	cfg.RetryAttempts = 2
	cfg.RetryBackoff = 200 * time.Millisecond
	// Bad input will not fix itself on a second attempt.
	cfg.Retryable = func(err error) bool {
		return !errors.Is(err, forecast.ErrNotFound) && !errors.Is(err, forecast.ErrValidation)
	}
	return cfg
}

func (s *ForecastService) Engine() *forecast.Engine {
	return s.engine
}

// ForecastProduct runs the engine over the stored history of a product. An
// empty templateID uses the product's template; a zero horizon uses the
// configured default.
func (s *ForecastService) ForecastProduct(ctx context.Context, productID, templateID string, horizon int) (*domain.ProductForecast, error) {
	if horizon == 0 {
		horizon = s.cfg.DefaultHorizonDays
	}
	if err := forecast.CheckHorizon("horizon_days", horizon); err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		templateID = product.TemplateID
	}
	if templateID == "" {
		templateID = forecast.DefaultTemplateID
	}

	now := s.engine.Now()
	key := cache.ForecastKey{
		ProductID:       product.ID,
		TemplateID:      templateID,
		HorizonDays:     horizon,
		CurrentStock:    product.CurrentStock,
		MinStock:        product.MinStock,
		Day:             now,
		RegistryVersion: s.engine.Registry().Version(),
	}

	if pf, ok, err := s.forecasts.GetForecast(ctx, key); err == nil && ok {
		return pf, nil
	} else if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("forecast: cache get failed")
	}

	history, err := s.sales.GetSalesHistory(ctx, product.ID, now.AddDate(0, 0, -s.cfg.HistoryDays))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load sales history for product %s", product.ID)
	}

	result, err := s.engine.GenerateForecast(forecast.Request{
		History:      history,
		CurrentStock: product.CurrentStock,
		MinStock:     product.MinStock,
		TemplateID:   templateID,
		HorizonDays:  horizon,
	})
	if err != nil {
		return nil, err
	}

	pf := &domain.ProductForecast{
		Product:     *product,
		TemplateID:  templateID,
		HorizonDays: horizon,
		GeneratedAt: now,
		Result:      result,
	}

	if err := s.forecasts.SetForecast(ctx, key, pf); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("forecast: cache set failed")
	}

	log.Debug().
		Str("product_id", product.ID).
		Str("template_id", templateID).
		Int("horizon", horizon).
		Int("history", len(history)).
		Int("alerts", len(result.Alerts)).
		Msg("product forecast generated")

	return pf, nil
}

// Simulate runs the engine over caller supplied history. Nothing is stored.
func (s *ForecastService) Simulate(ctx context.Context, sim domain.SimulationRequest) (*forecast.Result, error) {
	req := sim.ToRequest()
	if err := forecast.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.engine.GenerateForecast(req)
}

func (s *ForecastService) ListTemplates(ctx context.Context) []forecast.SeasonalPattern {
	return s.engine.Registry().List()
}

// AddTemplate validates and registers a template, then persists it. Cached
// forecasts are dropped because the registry version moved.
func (s *ForecastService) AddTemplate(ctx context.Context, p forecast.SeasonalPattern) (forecast.SeasonalPattern, error) {
	if err := s.engine.Registry().Add(p); err != nil {
		return forecast.SeasonalPattern{}, err
	}

	stored, ok := s.engine.Registry().Get(p.ID)
	if !ok {
		return forecast.SeasonalPattern{}, &forecast.NotFoundError{Kind: "seasonal template", ID: p.ID}
	}
	if err := s.persistTemplate(ctx, stored); err != nil {
		return forecast.SeasonalPattern{}, err
	}
	return stored, nil
}

// UpdateTemplate replaces the curve of an existing template.
func (s *ForecastService) UpdateTemplate(ctx context.Context, id string, multipliers []float64) (forecast.SeasonalPattern, error) {
	updated, err := s.engine.Registry().Update(id, multipliers)
	if err != nil {
		return forecast.SeasonalPattern{}, err
	}

	if err := s.persistTemplate(ctx, updated); err != nil {
		return forecast.SeasonalPattern{}, err
	}
	return updated, nil
}

func (s *ForecastService) persistTemplate(ctx context.Context, p forecast.SeasonalPattern) error {
	if s.templates != nil {
		if err := s.templates.SaveTemplate(ctx, p); err != nil {
			return errors.Wrapf(err, "failed to persist template %s", p.ID)
		}
	}

	if err := s.forecasts.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Str("template_id", p.ID).Msg("forecast: cache invalidation failed")
	}

	log.Info().Str("template_id", p.ID).Msg("seasonal template saved")
	return nil
}

// LoadTemplates copies stored templates into the registry. Stored templates
// override built-in ones with the same id. Invalid rows are skipped.
func (s *ForecastService) LoadTemplates(ctx context.Context) (int, error) {
	if s.templates == nil {
		return 0, nil
	}

	stored, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load seasonal templates")
	}

	loaded := 0
	for _, p := range stored {
		if err := s.engine.Registry().Add(p); err != nil {
			log.Warn().Err(err).Str("template_id", p.ID).Msg("skipping invalid stored template")
			continue
		}
		loaded++
	}

	log.Info().Int("templates", loaded).Msg("seasonal templates loaded")
	return loaded, nil
}

// DemandOverview condenses the forecast of every listed product, or of every
// product when productIDs is empty, over the next days days. A product that
// cannot be forecast is reported with priority unknown.
func (s *ForecastService) DemandOverview(ctx context.Context, productIDs []string, days int) (*domain.DemandOverview, error) {
	if err := forecast.CheckHorizon("days", days); err != nil {
		return nil, err
	}

	now := s.engine.Now()
	key := cache.OverviewKey{
		ProductIDs:      productIDs,
		Days:            days,
		Day:             now,
		RegistryVersion: s.engine.Registry().Version(),
	}

	if overview, ok, err := s.overviews.GetOverview(ctx, key); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("overview: cache get failed")
	}

	products, err := s.products.ListProducts(ctx, domain.ProductFilter{IDs: productIDs})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	byID := make(map[string]*domain.Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	horizon := days
	if horizon < s.cfg.DefaultHorizonDays {
		horizon = s.cfg.DefaultHorizonDays
	}

	run, outcomes, err := pipeline.Execute(ctx, s.runs, ids, func(ctx context.Context, id string) (domain.ProductOverview, error) {
		pf, err := s.ForecastProduct(ctx, id, "", horizon)
		if err != nil {
			return domain.ProductOverview{}, err
		}

		ov := forecast.Summarize(pf.Result.Forecast, pf.Product.CurrentStock, days)
		ov.Confidence = pf.Result.Diagnostics.Insights.Confidence
		return domain.ProductOverview{
			ProductID: pf.Product.ID,
			SKU:       pf.Product.SKU,
			Name:      pf.Product.Name,
			Overview:  ov,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.ProductOverview, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Err == nil {
			items = append(items, out.Value)
			continue
		}

		p := byID[out.Key]
		items = append(items, domain.ProductOverview{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			Overview: forecast.Overview{
				PeriodDays:   days,
				CurrentStock: p.CurrentStock,
				Priority:     forecast.PriorityUnknown,
			},
			Error: out.Err.Error(),
		})
	}
	domain.SortOverview(items)

	overview := &domain.DemandOverview{
		GeneratedAt: now,
		PeriodDays:  days,
		Items:       items,
		Summary:     domain.Summarize(items),
	}

	if err := s.overviews.SetOverview(ctx, key, overview); err != nil {
		log.Warn().Err(err).Msg("overview: cache set failed")
	}

	log.Info().
		Str("run_id", run.ID).
		Int("products", len(items)).
		Int("failed", run.Failed).
		Int("days", days).
		Msg("demand overview computed")

	return overview, nil
}

// Runs returns the most recent overview batches, newest first.
func (s *ForecastService) Runs(ctx context.Context, limit int) ([]*pipeline.Run, error) {
	return s.runs.Store().ListRuns(ctx, overviewBatchName, limit)
}
