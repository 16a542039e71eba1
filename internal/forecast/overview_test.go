package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		stock, demand float64
		expected      Priority
	}{
		{stock: 0, demand: 10, expected: PriorityCritical},
		{stock: -4, demand: 0, expected: PriorityCritical},
		{stock: 4, demand: 10, expected: PriorityHigh},
		{stock: 5, demand: 10, expected: PriorityMedium},
		{stock: 9, demand: 10, expected: PriorityMedium},
		{stock: 10, demand: 10, expected: PriorityLow},
		{stock: 1, demand: 0, expected: PriorityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyPriority(tt.stock, tt.demand), "stock=%v demand=%v", tt.stock, tt.demand)
	}
}

func TestSummarize(t *testing.T) {
	points := flatPoints(2, 90)

	o := Summarize(points, 30, 30)

	assert.Equal(t, 30, o.PeriodDays)
	assert.InDelta(t, 60.0, o.PredictedDemand, 1e-9)
	assert.InDelta(t, 42.0, o.RecommendedOrder, 1e-9)
	assert.Equal(t, PriorityMedium, o.Priority)
	assert.Equal(t, PriorityHigh, Summarize(points, 29, 30).Priority)
}

func TestSummarize_CapsAtHorizonAndFloorsOrder(t *testing.T) {
	o := Summarize(flatPoints(1, 10), 500, 30)

	assert.Equal(t, 10, o.PeriodDays)
	assert.InDelta(t, 10.0, o.PredictedDemand, 1e-9)
	assert.Zero(t, o.RecommendedOrder)
	assert.Equal(t, PriorityLow, o.Priority)
}
