package forecast

import "time"

// PriceAdjustment records how the baseline was rescaled for the current price.
type PriceAdjustment struct {
	Samples    int     `json:"samples"`
	Elasticity float64 `json:"elasticity"`
	PriceRatio float64 `json:"price_ratio"`
	Factor     float64 `json:"factor"`
	Applied    bool    `json:"applied"`
}

func noPriceAdjustment(samples int) PriceAdjustment {
	return PriceAdjustment{Samples: samples, PriceRatio: 1, Factor: 1}
}

// AdjustForPrice estimates price elasticity from the sales around every
// price-change marker and rescales baseline by
// 1 + elasticity*(latestPrice/meanPrice - 1), clamped.
func AdjustForPrice(records []SalesRecord, baseline float64, loc *time.Location) (float64, PriceAdjustment) {
	var (
		total   float64
		samples int
	)
	for _, r := range records {
		if r.PriceChangeMarker == nil {
			continue
		}
		if e, ok := elasticityAround(records, r, loc); ok {
			total += e
			samples++
		}
	}

	if samples == 0 {
		return baseline, noPriceAdjustment(0)
	}

	meanPrice, latestPrice := priceLevels(records)
	if meanPrice <= 0 {
		return baseline, noPriceAdjustment(samples)
	}

	avg := total / float64(samples)
	ratio := latestPrice / meanPrice
	factor := PriceAdjustmentBounds.Clamp(1 + avg*(ratio-1))

	return baseline * factor, PriceAdjustment{
		Samples:    samples,
		Elasticity: avg,
		PriceRatio: ratio,
		Factor:     factor,
		Applied:    true,
	}
}

// elasticityAround compares mean quantity over the days strictly before the
// marker with the days from the marker through ElasticityWindowDays later.
func elasticityAround(records []SalesRecord, change SalesRecord, loc *time.Location) (float64, bool) {
	marker := calendarDay(*change.PriceChangeMarker, loc)
	from := marker.AddDate(0, 0, -ElasticityWindowDays)
	to := marker.AddDate(0, 0, ElasticityWindowDays)

	var (
		beforeQty, afterQty float64
		beforeN, afterN     int
		priceBefore         float64
	)
	for _, r := range records {
		day := calendarDay(r.Date, loc)
		switch {
		case !day.Before(from) && day.Before(marker):
			if beforeN == 0 {
				priceBefore = r.UnitPrice
			}
			beforeQty += r.Quantity
			beforeN++
		case !day.Before(marker) && !day.After(to):
			afterQty += r.Quantity
			afterN++
		}
	}

	if beforeN == 0 || afterN == 0 {
		return 0, false
	}

	priceAfter := change.UnitPrice
	avgBefore := beforeQty / float64(beforeN)
	avgAfter := afterQty / float64(afterN)
	if priceBefore == priceAfter || priceBefore == 0 || avgBefore == 0 {
		return 0, false
	}

	quantityChange := (avgAfter - avgBefore) / avgBefore
	priceChange := (priceAfter - priceBefore) / priceBefore
	return quantityChange / priceChange, true
}

// priceLevels returns the mean unit price and the price of the most recent record.
func priceLevels(records []SalesRecord) (mean, latest float64) {
	var (
		sum        float64
		latestDate time.Time
	)
	for i, r := range records {
		sum += r.UnitPrice
		if i == 0 || !r.Date.Before(latestDate) {
			latestDate = r.Date
			latest = r.UnitPrice
		}
	}
	return sum / float64(len(records)), latest
}
