package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// priceChangeHistory sells beforeQty/day at beforePrice for the seven days
// before 2024-02-15 and afterQty/day at afterPrice from the 15th to the 22nd.
func priceChangeHistory(beforeQty, beforePrice, afterQty, afterPrice float64) []SalesRecord {
	marker := day(2024, 2, 15)
	var records []SalesRecord
	for i := 7; i >= 1; i-- {
		records = append(records, SalesRecord{
			Date:      marker.AddDate(0, 0, -i),
			Quantity:  beforeQty,
			UnitPrice: beforePrice,
		})
	}
	for i := 0; i <= 7; i++ {
		r := SalesRecord{
			Date:      marker.AddDate(0, 0, i),
			Quantity:  afterQty,
			UnitPrice: afterPrice,
		}
		if i == 0 {
			m := marker
			r.PriceChangeMarker = &m
		}
		records = append(records, r)
	}
	return records
}

func TestAdjustForPrice_PriceIncrease(t *testing.T) {
	records := priceChangeHistory(10, 10, 8, 12)

	demand, adj := AdjustForPrice(records, 10, time.UTC)

	assert.True(t, adj.Applied)
	assert.Equal(t, 1, adj.Samples)
	assert.InDelta(t, -1.0, adj.Elasticity, 1e-9)
	assert.InDelta(t, 180.0/166.0, adj.PriceRatio, 1e-9)
	assert.InDelta(t, 1-(180.0/166.0-1), adj.Factor, 1e-9)
	assert.InDelta(t, 10*(1-(180.0/166.0-1)), demand, 1e-9)
}

func TestAdjustForPrice_FactorIsClamped(t *testing.T) {
	records := priceChangeHistory(1, 10, 50, 9)

	demand, adj := AdjustForPrice(records, 4, time.UTC)

	assert.True(t, adj.Applied)
	assert.Equal(t, PriceAdjustmentBounds.Max, adj.Factor)
	assert.InDelta(t, 12.0, demand, 1e-9)
}

func TestAdjustForPrice_NoUsableSamples(t *testing.T) {
	tests := []struct {
		name    string
		records []SalesRecord
	}{
		{name: "no markers", records: dailyHistory(day(2024, 1, 1), 1, 2, 3)},
		{name: "unchanged price", records: priceChangeHistory(10, 10, 8, 10)},
		{name: "zero sales before", records: priceChangeHistory(0, 10, 8, 12)},
		{name: "zero price before", records: priceChangeHistory(10, 0, 8, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			demand, adj := AdjustForPrice(tt.records, 7, time.UTC)

			assert.Equal(t, 7.0, demand)
			assert.False(t, adj.Applied)
			assert.Equal(t, 1.0, adj.Factor)
		})
	}
}

func TestPriceLevels_LatestByDate(t *testing.T) {
	records := []SalesRecord{
		{Date: day(2024, 1, 3), UnitPrice: 30},
		{Date: day(2024, 1, 1), UnitPrice: 10},
		{Date: day(2024, 1, 2), UnitPrice: 20},
	}

	mean, latest := priceLevels(records)

	assert.InDelta(t, 20.0, mean, 1e-9)
	assert.Equal(t, 30.0, latest)
}
