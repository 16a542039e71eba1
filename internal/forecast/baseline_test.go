package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateBaseline_Median(t *testing.T) {
	tests := []struct {
		name     string
		records  []SalesRecord
		expected float64
		days     int
	}{
		{
			name:     "even number of days uses index n/2",
			records:  dailyHistory(day(2024, 1, 1), 9, 2, 4, 4),
			expected: 4,
			days:     4,
		},
		{
			name:     "odd number of days",
			records:  dailyHistory(day(2024, 1, 1), 5, 1, 3),
			expected: 3,
			days:     3,
		},
		{
			name: "records on the same day are summed",
			records: []SalesRecord{
				{Date: day(2024, 1, 1).Add(9 * time.Hour), Quantity: 5},
				{Date: day(2024, 1, 1).Add(17 * time.Hour), Quantity: 4},
				{Date: day(2024, 1, 2), Quantity: 2},
				{Date: day(2024, 1, 3), Quantity: 4},
				{Date: day(2024, 1, 4), Quantity: 4},
			},
			expected: 4,
			days:     4,
		},
		{
			name:     "single spike does not move the median",
			records:  dailyHistory(day(2024, 1, 1), 3, 3, 3, 3, 300),
			expected: 3,
			days:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EstimateBaseline(tt.records, time.UTC)
			assert.True(t, d.IsEstimated())
			assert.Equal(t, tt.expected, d.Value())
			assert.Equal(t, tt.days, d.Days)
		})
	}
}

func TestEstimateBaseline_EmptyIsInsufficient(t *testing.T) {
	d := EstimateBaseline(nil, time.UTC)

	assert.False(t, d.IsEstimated())
	assert.Equal(t, DemandInsufficient, d.Kind)
	assert.Equal(t, 0.0, d.Value())
}

func TestDemand_ValueHidesUnitsWhenInsufficient(t *testing.T) {
	d := Demand{Kind: DemandInsufficient, Units: 7}
	assert.Equal(t, 0.0, d.Value())
	assert.Equal(t, 7.0, Estimated(7, 1).Value())
}
