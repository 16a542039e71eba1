package forecast

import (
	"math"
	"sort"
	"time"
)

// Trend is a weekly multiplicative growth estimate.
type Trend struct {
	Ratio    float64 `json:"ratio"`
	RawRatio float64 `json:"raw_ratio"`
	Slope    float64 `json:"slope"`
	Weeks    int     `json:"weeks"`
	Fitted   bool    `json:"fitted"`
	Clamped  bool    `json:"clamped"`
}

// NeutralTrend is used whenever the history is too short to fit a slope.
func NeutralTrend(weeks int) Trend {
	return Trend{Ratio: 1.0, RawRatio: 1.0, Weeks: weeks}
}

// Multiplier returns ratio^(day/7), the trend effect day days ahead.
func (t Trend) Multiplier(day int) float64 {
	return math.Pow(t.Ratio, float64(day)/7.0)
}

// Label classifies the ratio with fixed thresholds.
func (t Trend) Label() TrendLabel {
	switch {
	case t.Ratio > TrendUpRatio:
		return TrendUp
	case t.Ratio < TrendDownRatio:
		return TrendDown
	default:
		return TrendStable
	}
}

// EstimateTrend fits an OLS line through weekly quantity totals and turns
// the slope into a clamped weekly growth ratio 1 + slope/meanWeekly.
func EstimateTrend(records []SalesRecord, loc *time.Location, weekStart time.Weekday) Trend {
	if len(records) < TrendMinRecords {
		return NeutralTrend(0)
	}

	weekly := weeklyTotals(records, loc, weekStart)
	n := len(weekly)
	if n < TrendMinWeeks {
		return NeutralTrend(n)
	}

	slope, mean := olsSlope(weekly)
	if mean <= 0 || math.IsNaN(slope) {
		return NeutralTrend(n)
	}

	raw := 1 + slope/mean
	ratio := TrendRatioBounds.Clamp(raw)
	return Trend{
		Ratio:    ratio,
		RawRatio: raw,
		Slope:    slope,
		Weeks:    n,
		Fitted:   true,
		Clamped:  ratio != raw,
	}
}

// weeklyTotals returns quantity per week bucket in chronological order.
func weeklyTotals(records []SalesRecord, loc *time.Location, weekStart time.Weekday) []float64 {
	buckets := make(map[string]float64)
	for _, r := range records {
		buckets[dayKey(weekStartOf(r.Date, loc, weekStart), loc)] += r.Quantity
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals := make([]float64, len(keys))
	for i, k := range keys {
		totals[i] = buckets[k]
	}
	return totals
}

func weekStartOf(t time.Time, loc *time.Location, weekStart time.Weekday) time.Time {
	day := calendarDay(t, loc)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// olsSlope regresses ys against their index and returns slope and mean(ys).
func olsSlope(ys []float64) (slope, mean float64) {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	return (n*sumXY - sumX*sumY) / denom, sumY / n
}
