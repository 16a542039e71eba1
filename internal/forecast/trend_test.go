package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// weeksOf builds four or more Sunday-aligned weeks of daily records where
// every day in week i sells perDay[i].
func weeksOf(perDay ...float64) []SalesRecord {
	var qty []float64
	for _, q := range perDay {
		qty = append(qty, repeat(q, 7)...)
	}
	return dailyHistory(day(2024, 1, 7), qty...)
}

func TestEstimateTrend(t *testing.T) {
	tests := []struct {
		name    string
		records []SalesRecord
		ratio   float64
		label   TrendLabel
		fitted  bool
		clamped bool
	}{
		{
			name:    "too few records",
			records: dailyHistory(day(2024, 1, 7), ones(13)...),
			ratio:   1.0,
			label:   TrendStable,
		},
		{
			name:    "too few weeks",
			records: dailyHistory(day(2024, 1, 7), ones(14)...),
			ratio:   1.0,
			label:   TrendStable,
		},
		{
			name:    "flat weeks",
			records: weeksOf(5, 5, 5, 5),
			ratio:   1.0,
			label:   TrendStable,
			fitted:  true,
		},
		{
			name:    "moderate growth",
			records: weeksOf(10, 11, 12, 13),
			ratio:   1 + 7/80.5,
			label:   TrendUp,
			fitted:  true,
		},
		{
			name:    "explosive growth is clamped",
			records: weeksOf(1, 10, 100, 1000),
			ratio:   2.0,
			label:   TrendUp,
			fitted:  true,
			clamped: true,
		},
		{
			name:    "collapse is clamped",
			records: weeksOf(1000, 100, 10, 1),
			ratio:   0.5,
			label:   TrendDown,
			fitted:  true,
			clamped: true,
		},
		{
			name:    "all zero quantities",
			records: weeksOf(0, 0, 0, 0),
			ratio:   1.0,
			label:   TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := EstimateTrend(tt.records, time.UTC, time.Sunday)

			assert.InDelta(t, tt.ratio, trend.Ratio, 1e-9)
			assert.Equal(t, tt.label, trend.Label())
			assert.Equal(t, tt.fitted, trend.Fitted)
			assert.Equal(t, tt.clamped, trend.Clamped)
			assert.True(t, TrendRatioBounds.Contains(trend.Ratio))
		})
	}
}

func TestTrend_Multiplier(t *testing.T) {
	trend := Trend{Ratio: 2}

	assert.InDelta(t, 1.0, trend.Multiplier(0), 1e-12)
	assert.InDelta(t, 2.0, trend.Multiplier(7), 1e-12)
	assert.InDelta(t, 4.0, trend.Multiplier(14), 1e-12)
	assert.Equal(t, 1.0, NeutralTrend(0).Multiplier(30))
}

func TestWeekStartOf(t *testing.T) {
	wednesday := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, day(2024, 1, 7), weekStartOf(wednesday, time.UTC, time.Sunday))
	assert.Equal(t, day(2024, 1, 8), weekStartOf(wednesday, time.UTC, time.Monday))
	assert.Equal(t, day(2024, 1, 7), weekStartOf(day(2024, 1, 7), time.UTC, time.Sunday))
}

func TestOLSSlope(t *testing.T) {
	slope, mean := olsSlope([]float64{70, 77, 84, 91})
	assert.InDelta(t, 7.0, slope, 1e-9)
	assert.InDelta(t, 80.5, mean, 1e-9)

	slope, mean = olsSlope([]float64{4})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 4.0, mean)
}
