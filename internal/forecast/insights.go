package forecast

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

const (
	seasonalityMinDays      = 14
	seasonalityPeriodDays   = 7
	seasonalityStrengthGate = 0.2
	stableSlope             = 0.01
	confidenceWindowDays    = 30
	confidenceFloor         = 0.1
	confidenceDefault       = 0.5
	lowConfidence           = 0.3
)

// Direction of the daily sales trend.
const (
	DirectionGrowing   = "growing"
	DirectionDeclining = "declining"
	DirectionStable    = "stable"
)

// Insights are advisory statistics about the history. They do not feed the
// projection.
type Insights struct {
	HistoryDays       int               `json:"history_days"`
	DaysOfCover       float64           `json:"days_of_cover"`
	WeeklySeasonality WeeklySeasonality `json:"weekly_seasonality"`
	DailyTrend        DailyTrend        `json:"daily_trend"`
	Confidence        float64           `json:"confidence"`
	Notes             []string          `json:"notes"`
}

type WeeklySeasonality struct {
	Detected   bool      `json:"detected"`
	PeriodDays int       `json:"period_days,omitempty"`
	Strength   float64   `json:"strength"`
	Pattern    []float64 `json:"pattern,omitempty"`
}

type DailyTrend struct {
	Direction string  `json:"direction"`
	Strength  float64 `json:"strength"`
	Slope     float64 `json:"slope"`
}

// BuildInsights analyses the retail history for the given stock position.
func BuildInsights(records []SalesRecord, loc *time.Location, dailyDemand, currentStock float64) Insights {
	series := DailySeries(records, loc)

	in := Insights{
		HistoryDays:       len(series),
		WeeklySeasonality: DetectWeeklySeasonality(series),
		DailyTrend:        FitDailyTrend(series),
		Confidence:        ConfidenceLevel(series),
	}
	if dailyDemand > 0 {
		in.DaysOfCover = currentStock / dailyDemand
	}

	if len(series) == 0 {
		in.Notes = []string{"No sales history available for forecasting"}
		return in
	}

	in.Notes = []string{}
	switch in.DailyTrend.Direction {
	case DirectionGrowing:
		in.Notes = append(in.Notes, "Demand is growing, consider increasing purchases")
	case DirectionDeclining:
		in.Notes = append(in.Notes, "Demand is declining, reduce stock levels")
	}
	if in.WeeklySeasonality.Detected {
		in.Notes = append(in.Notes, "Weekly seasonality detected, account for it when planning")
	}
	if in.Confidence < lowConfidence {
		in.Notes = append(in.Notes, "Low forecast confidence, more history is needed")
	}
	return in
}

// DailySeries returns quantity per day from the first to the last sale day,
// with days without sales set to 0.
func DailySeries(records []SalesRecord, loc *time.Location) []float64 {
	if len(records) == 0 {
		return nil
	}

	totals := dailyTotals(records, loc)
	first := calendarDay(records[0].Date, loc)
	last := first
	for _, r := range records[1:] {
		d := calendarDay(r.Date, loc)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var series []float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, totals[dayKey(d, loc)])
	}
	return series
}

// DetectWeeklySeasonality compares the mean of every 7th day.
func DetectWeeklySeasonality(series []float64) WeeklySeasonality {
	if len(series) < seasonalityMinDays {
		return WeeklySeasonality{}
	}

	pattern := make([]float64, seasonalityPeriodDays)
	for offset := 0; offset < seasonalityPeriodDays; offset++ {
		var sample stats.Float64Data
		for i := offset; i < len(series); i += seasonalityPeriodDays {
			sample = append(sample, series[i])
		}
		if m, err := stats.Mean(sample); err == nil {
			pattern[offset] = m
		}
	}

	hi, _ := stats.Max(pattern)
	lo, _ := stats.Min(pattern)
	var strength float64
	if hi > 0 {
		strength = (hi - lo) / hi
	}

	return WeeklySeasonality{
		Detected:   strength > seasonalityStrengthGate,
		PeriodDays: seasonalityPeriodDays,
		Strength:   strength,
		Pattern:    pattern,
	}
}

// FitDailyTrend fits a line through the series and reports its R².
func FitDailyTrend(series []float64) DailyTrend {
	if len(series) < 2 {
		return DailyTrend{Direction: DirectionStable}
	}

	slope, mean := olsSlope(series)
	intercept := mean - slope*float64(len(series)-1)/2

	var ssRes, ssTot float64
	for i, y := range series {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - mean) * (y - mean)
	}

	var r2 float64
	if ssTot > 0 {
		r2 = math.Max(0, 1-ssRes/ssTot)
	}

	direction := DirectionStable
	switch {
	case math.Abs(slope) < stableSlope:
	case slope > 0:
		direction = DirectionGrowing
	default:
		direction = DirectionDeclining
	}

	return DailyTrend{Direction: direction, Strength: r2, Slope: slope}
}

// ConfidenceLevel is 1 minus the coefficient of variation of the last 30
// days, floored at 0.1. Short series get a neutral 0.5.
func ConfidenceLevel(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	if len(series) <= confidenceWindowDays {
		return confidenceDefault
	}

	recent := stats.Float64Data(series[len(series)-confidenceWindowDays:])
	mean, err := stats.Mean(recent)
	if err != nil || mean <= 0 {
		return confidenceFloor
	}
	std, err := stats.StandardDeviationSample(recent)
	if err != nil {
		return confidenceFloor
	}
	return math.Max(confidenceFloor, 1-std/mean)
}
