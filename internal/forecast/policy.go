package forecast

import "math"

// Bounds is a closed numeric interval.
type Bounds struct {
	Min float64
	Max float64
}

// Clamp pins v into the interval.
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Contains reports whether v lies inside the interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Every clamp and threshold used by the pipeline lives here so that
// stages cannot drift apart.
var (
	// Weekly growth ratio. Short noisy histories must not extrapolate wildly.
	TrendRatioBounds = Bounds{Min: 0.5, Max: 2.0}
	// Demand rescale factor after a price change.
	PriceAdjustmentBounds = Bounds{Min: 0.1, Max: 3.0}
	// Allowed seasonal multipliers.
	SeasonalMultiplierBounds = Bounds{Min: 0.1, Max: 3.0}
)

const (
	DefaultTemplateID  = "default"
	DefaultHorizonDays = 90
	MaxHorizonDays     = 3650
	MonthsPerPattern   = 12

	// Retail filter: quantity above max(floor, factor*mean) is treated as bulk.
	WholesaleQuantityFloor  = 10.0
	WholesaleMeanMultiplier = 3.0

	TrendMinRecords = 14
	TrendMinWeeks   = 4
	TrendUpRatio    = 1.05
	TrendDownRatio  = 0.95

	// Price elasticity window on each side of a price change.
	ElasticityWindowDays = 7

	// Confidence band widens linearly from base to base+span over the horizon.
	UncertaintyBase = 0.2
	UncertaintySpan = 0.3

	CriticalStockoutDays = 30
	WarningStockoutDays  = 90
	UrgencyCritical      = 10
	UrgencyBelowMinimum  = 9
	UrgencyWarning       = 6

	RecommendationWindowDays = 90
	SafetyStockFactor        = 1.5
	AirShare                 = 0.3
	SeaShare                 = 0.7

	// Demand overview.
	OverviewSafetyFactor = 1.2
)
