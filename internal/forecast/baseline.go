package forecast

import (
	"sort"
	"time"
)

// DemandKind tags whether a baseline could be estimated at all.
type DemandKind string

const (
	DemandEstimated    DemandKind = "estimated"
	DemandInsufficient DemandKind = "insufficient"
)

// Demand is the typical daily demand of a product. An Insufficient demand
// has no usable history behind it and must not be read as a confident zero.
type Demand struct {
	Kind  DemandKind `json:"kind"`
	Units float64    `json:"units"`
	Days  int        `json:"days"`
}

// Estimated wraps a median computed over days distinct sale days.
func Estimated(units float64, days int) Demand {
	return Demand{Kind: DemandEstimated, Units: units, Days: days}
}

// Insufficient is the baseline of an empty history.
func Insufficient() Demand {
	return Demand{Kind: DemandInsufficient}
}

func (d Demand) IsEstimated() bool {
	return d.Kind == DemandEstimated
}

// Value returns the daily units, 0 when insufficient.
func (d Demand) Value() float64 {
	if !d.IsEstimated() {
		return 0
	}
	return d.Units
}

// EstimateBaseline returns the median of per-day quantity totals. For an
// even number of days the upper of the two middle values (index n/2) is
// used, with no interpolation.
func EstimateBaseline(records []SalesRecord, loc *time.Location) Demand {
	totals := dailyTotals(records, loc)
	if len(totals) == 0 {
		return Insufficient()
	}

	values := make([]float64, 0, len(totals))
	for _, q := range totals {
		values = append(values, q)
	}
	return Estimated(medianAtHalf(values), len(values))
}

func dailyTotals(records []SalesRecord, loc *time.Location) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[dayKey(r.Date, loc)] += r.Quantity
	}
	return totals
}

func medianAtHalf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
