package forecast

import "time"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// dailyHistory returns one record per day starting at start, with
// quantities taken from qty in order.
func dailyHistory(start time.Time, qty ...float64) []SalesRecord {
	records := make([]SalesRecord, 0, len(qty))
	for i, q := range qty {
		records = append(records, SalesRecord{
			Date:      start.AddDate(0, 0, i).Add(10 * time.Hour),
			Quantity:  q,
			Revenue:   q * 10,
			UnitPrice: 10,
		})
	}
	return records
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ones(n int) []float64 {
	return repeat(1, n)
}
