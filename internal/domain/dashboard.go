package domain

import "github.com/andresuchdata/stockcast/internal/forecast"

// PrioritySummary represents the summary card data for one priority bucket
type PrioritySummary struct {
	Priority         forecast.Priority `json:"priority"`
	Count            int               `json:"count"`
	PredictedDemand  float64           `json:"predicted_demand"`
	RecommendedOrder float64           `json:"recommended_order"`
}

// Summarize groups overview rows by priority, most urgent first. Buckets
// without products are omitted.
func Summarize(items []ProductOverview) []PrioritySummary {
	buckets := make(map[forecast.Priority]*PrioritySummary)
	for _, it := range items {
		b, ok := buckets[it.Priority]
		if !ok {
			b = &PrioritySummary{Priority: it.Priority}
			buckets[it.Priority] = b
		}
		b.Count++
		b.PredictedDemand += it.PredictedDemand
		b.RecommendedOrder += it.RecommendedOrder
	}

	out := make([]PrioritySummary, 0, len(buckets))
	for _, p := range priorityOrder {
		if b, ok := buckets[p]; ok {
			out = append(out, *b)
		}
	}
	return out
}
