package forecast

import "time"

// FilterRetail drops wholesale lines and bulk quantities so they do not
// distort per-unit demand. The bulk threshold is max(10, 3*mean) over the
// whole input, wholesale lines included.
func FilterRetail(records []SalesRecord) []SalesRecord {
	if len(records) == 0 {
		return []SalesRecord{}
	}

	var total float64
	for _, r := range records {
		total += r.Quantity
	}
	threshold := bulkThreshold(total / float64(len(records)))

	retail := make([]SalesRecord, 0, len(records))
	for _, r := range records {
		if r.IsWholesale || r.Quantity > threshold {
			continue
		}
		retail = append(retail, r)
	}
	return retail
}

func bulkThreshold(meanQuantity float64) float64 {
	t := WholesaleMeanMultiplier * meanQuantity
	if t < WholesaleQuantityFloor {
		return WholesaleQuantityFloor
	}
	return t
}

// calendarDay strips the time of day in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
