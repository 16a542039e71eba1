// Package forecast estimates product demand from sales history and turns it
// into stock alerts and purchase order recommendations.
//
// Every stage is a pure function of its inputs. The only shared mutable
// state is the TemplateRegistry handed to the Engine.
package forecast

import (
	"time"

	"github.com/rs/zerolog"
)

// Engine runs the forecast pipeline:
//
//	history -> FilterRetail -> baseline, trend, price adjustment
//	        -> Project -> SimulateDepletion -> GenerateAlerts -> Recommend
type Engine struct {
	registry  *TemplateRegistry
	air       DeliveryOption
	sea       DeliveryOption
	now       func() time.Time
	weekStart time.Weekday
	log       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the source of "today". The clock's location is used for
// calendar-day grouping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDeliveryOptions overrides the air and sea lanes.
func WithDeliveryOptions(air, sea DeliveryOption) Option {
	return func(e *Engine) {
		e.air = air
		e.sea = sea
	}
}

// WithWeekStart sets the first day of a trend bucket week. Defaults to Sunday.
func WithWeekStart(day time.Weekday) Option {
	return func(e *Engine) { e.weekStart = day }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine reading templates from registry. A nil
// registry gets the default templates.
func NewEngine(registry *TemplateRegistry, opts ...Option) *Engine {
	if registry == nil {
		registry = NewDefaultRegistry()
	}

	e := &Engine{
		registry:  registry,
		air:       AirFreight,
		sea:       SeaFreight,
		now:       time.Now,
		weekStart: time.Sunday,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *TemplateRegistry {
	return e.registry
}

// Now reads the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// DeliveryOptions returns the configured air and sea lanes.
func (e *Engine) DeliveryOptions() (air, sea DeliveryOption) {
	return e.air, e.sea
}

// GenerateForecast runs the whole pipeline. It fails only on a horizon
// outside 1..MaxHorizonDays; thin or empty histories degrade to neutral
// fallbacks.
func (e *Engine) GenerateForecast(req Request) (*Result, error) {
	if err := CheckHorizon("horizon_days", req.HorizonDays); err != nil {
		return nil, err
	}

	today := e.now()
	loc := today.Location()

	retail := FilterRetail(req.History)
	baseline := EstimateBaseline(retail, loc)
	trend := EstimateTrend(retail, loc, e.weekStart)

	demand, priceAdj := baseline.Value(), noPriceAdjustment(0)
	if baseline.IsEstimated() {
		demand, priceAdj = AdjustForPrice(retail, baseline.Value(), loc)
	}

	pattern := e.lookupTemplate(req.TemplateID)
	points := Project(demand, trend, pattern, req.HorizonDays, today)

	stockout := SimulateDepletion(points, req.CurrentStock, today)
	alerts := GenerateAlerts(stockout, req.CurrentStock, req.MinStock)
	recs := Recommend(points, req.CurrentStock, req.MinStock, alerts, e.air, e.sea, today)

	diag := Diagnostics{
		RetailRecords:   len(retail),
		Baseline:        baseline,
		AdjustedDemand:  demand,
		Trend:           trend,
		PriceAdjustment: priceAdj,
		Stockout:        stockout,
		Insights:        BuildInsights(retail, loc, demand, req.CurrentStock),
	}
	if pattern != nil {
		diag.TemplateID = pattern.ID
	}

	e.log.Debug().
		Int("records", len(req.History)).
		Int("retail_records", len(retail)).
		Str("baseline_kind", string(baseline.Kind)).
		Float64("demand", demand).
		Float64("trend_ratio", trend.Ratio).
		Int("alerts", len(alerts)).
		Int("recommendations", len(recs)).
		Msg("forecast generated")

	return &Result{
		Forecast:        points,
		Alerts:          alerts,
		Recommendations: recs,
		Diagnostics:     diag,
	}, nil
}

func (e *Engine) lookupTemplate(id string) *SeasonalPattern {
	if id == "" {
		return nil
	}
	p, ok := e.registry.Get(id)
	if !ok {
		e.log.Debug().Str("template_id", id).Msg("seasonal template not found, using flat seasonality")
		return nil
	}
	return &p
}
