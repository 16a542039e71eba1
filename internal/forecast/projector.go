package forecast

import (
	"math"
	"time"
)

// Project builds one ForecastPoint per day for days 1..horizon after today.
// A nil pattern means flat seasonality.
func Project(baseline float64, trend Trend, pattern *SeasonalPattern, horizon int, today time.Time) []ForecastPoint {
	if horizon <= 0 {
		return []ForecastPoint{}
	}

	start := calendarDay(today, today.Location())
	label := trend.Label()
	points := make([]ForecastPoint, 0, horizon)

	for i := 1; i <= horizon; i++ {
		date := start.AddDate(0, 0, i)

		seasonal := 1.0
		if pattern != nil {
			seasonal = pattern.Factor(date.Month())
		}

		predicted := math.Max(0, baseline*trend.Multiplier(i)*seasonal)
		u := Uncertainty(i, horizon)

		points = append(points, ForecastPoint{
			Date:               date,
			PredictedDemand:    predicted,
			ConfidenceLower:    math.Max(0, predicted*(1-u)),
			ConfidenceUpper:    predicted * (1 + u),
			TrendLabel:         label,
			SeasonalFactor:     seasonal,
			BaselineDemandUsed: baseline,
		})
	}

	return points
}

// Uncertainty is the relative half-width of the confidence band on day i.
func Uncertainty(day, horizon int) float64 {
	return UncertaintyBase + (float64(day)/float64(horizon))*UncertaintySpan
}
