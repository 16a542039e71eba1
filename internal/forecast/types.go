package forecast

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one sale line of a product's history. The engine never mutates it.
type SalesRecord struct {
	Date              time.Time  `json:"date"`
	Quantity          float64    `json:"quantity" validate:"gte=0"`
	Revenue           float64    `json:"revenue" validate:"gte=0"`
	UnitPrice         float64    `json:"unit_price" validate:"gte=0"`
	IsWholesale       bool       `json:"is_wholesale"`
	PriceChangeMarker *time.Time `json:"price_change_marker,omitempty"`
}

// SeasonalPattern is a named 12-month multiplier curve, January first.
type SeasonalPattern struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name"`
	Multipliers []float64 `json:"multipliers" validate:"len=12,dive,gte=0.1,lte=3"`
}

// Factor returns the multiplier for the given calendar month.
func (p SeasonalPattern) Factor(month time.Month) float64 {
	idx := int(month) - 1
	if idx < 0 || idx >= len(p.Multipliers) {
		return 1.0
	}
	return p.Multipliers[idx]
}

func (p SeasonalPattern) clone() SeasonalPattern {
	c := p
	c.Multipliers = append([]float64(nil), p.Multipliers...)
	return c
}

// DeliveryMode is a replenishment lane.
type DeliveryMode string

const (
	DeliveryAir DeliveryMode = "air"
	DeliverySea DeliveryMode = "sea"
)

// DeliveryOption describes the lead time and cost of a delivery lane.
type DeliveryOption struct {
	Mode               DeliveryMode `json:"mode"`
	MinLeadDays        int          `json:"min_lead_days"`
	MaxLeadDays        int          `json:"max_lead_days"`
	UnitCostMultiplier float64      `json:"unit_cost_multiplier"`
}

var (
	// AirFreight is the fast lane.
	AirFreight = DeliveryOption{Mode: DeliveryAir, MinLeadDays: 14, MaxLeadDays: 21, UnitCostMultiplier: 1.5}
	// SeaFreight is the slow, cheap lane.
	SeaFreight = DeliveryOption{Mode: DeliverySea, MinLeadDays: 65, MaxLeadDays: 80, UnitCostMultiplier: 1.0}
)

// TrendLabel is the coarse direction of the weekly growth ratio.
type TrendLabel string

const (
	TrendUp     TrendLabel = "up"
	TrendDown   TrendLabel = "down"
	TrendStable TrendLabel = "stable"
)

// ForecastPoint is the projected demand of a single future day.
type ForecastPoint struct {
	Date               time.Time  `json:"date"`
	PredictedDemand    float64    `json:"predicted_demand"`
	ConfidenceLower    float64    `json:"confidence_lower"`
	ConfidenceUpper    float64    `json:"confidence_upper"`
	TrendLabel         TrendLabel `json:"trend"`
	SeasonalFactor     float64    `json:"seasonal_factor"`
	BaselineDemandUsed float64    `json:"baseline_demand"`
}

// Severity of a stock alert.
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityYellow Severity = "yellow"
	SeverityRed    Severity = "red"
)

// StockAlert is an advisory produced by the depletion simulation.
type StockAlert struct {
	Severity          Severity `json:"severity"`
	Message           string   `json:"message"`
	DaysUntilStockout int      `json:"days_until_stockout"`
	RecommendedAction string   `json:"recommended_action"`
	UrgencyScore      int      `json:"urgency_score"`
}

// OrderRecommendation is a suggested purchase order for one delivery lane.
type OrderRecommendation struct {
	Quantity            int             `json:"quantity"`
	DeliveryMode        DeliveryMode    `json:"delivery_mode"`
	OrderByDate         time.Time       `json:"order_by_date"`
	ExpectedArrivalDate time.Time       `json:"expected_arrival_date"`
	EstimatedCost       decimal.Decimal `json:"estimated_cost"`
	Rationale           string          `json:"rationale"`
}

// Request holds the inputs of one forecast run.
type Request struct {
	History      []SalesRecord `json:"history" validate:"dive"`
	CurrentStock float64       `json:"current_stock"`
	MinStock     float64       `json:"min_stock" validate:"gte=0"`
	TemplateID   string        `json:"template_id"`
	HorizonDays  int           `json:"horizon_days"`
}

// NewRequest builds a request with the default template and horizon.
func NewRequest(history []SalesRecord, currentStock, minStock float64) Request {
	return Request{
		History:      history,
		CurrentStock: currentStock,
		MinStock:     minStock,
		TemplateID:   DefaultTemplateID,
		HorizonDays:  DefaultHorizonDays,
	}
}

// Result is the output of one forecast run.
type Result struct {
	Forecast        []ForecastPoint       `json:"forecast"`
	Alerts          []StockAlert          `json:"alerts"`
	Recommendations []OrderRecommendation `json:"recommendations"`
	Diagnostics     Diagnostics           `json:"diagnostics"`
}

// Diagnostics explains how the forecast was derived.
type Diagnostics struct {
	RetailRecords   int             `json:"retail_records"`
	Baseline        Demand          `json:"baseline"`
	AdjustedDemand  float64         `json:"adjusted_demand"`
	Trend           Trend           `json:"trend"`
	PriceAdjustment PriceAdjustment `json:"price_adjustment"`
	TemplateID      string          `json:"template_id,omitempty"`
	Stockout        Stockout        `json:"stockout"`
	Insights        Insights        `json:"insights"`
}
