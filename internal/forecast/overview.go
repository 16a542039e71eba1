package forecast

import "math"

// Priority ranks how urgently a product needs replenishment.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityUnknown  Priority = "unknown"
)

// Overview condenses a forecast into period demand and an order size.
type Overview struct {
	PeriodDays       int      `json:"period_days"`
	CurrentStock     float64  `json:"current_stock"`
	PredictedDemand  float64  `json:"predicted_demand"`
	RecommendedOrder float64  `json:"recommended_order"`
	Confidence       float64  `json:"confidence"`
	Priority         Priority `json:"priority"`
}

// Summarize sums predicted demand over the first days points.
func Summarize(points []ForecastPoint, currentStock float64, days int) Overview {
	if days > len(points) {
		days = len(points)
	}
	if days < 0 {
		days = 0
	}

	var demand float64
	for _, p := range points[:days] {
		demand += p.PredictedDemand
	}

	return Overview{
		PeriodDays:       days,
		CurrentStock:     currentStock,
		PredictedDemand:  demand,
		RecommendedOrder: math.Max(0, demand*OverviewSafetyFactor-currentStock),
		Priority:         ClassifyPriority(currentStock, demand),
	}
}

// ClassifyPriority compares stock on hand with demand for the period.
func ClassifyPriority(stock, demand float64) Priority {
	switch {
	case stock <= 0:
		return PriorityCritical
	case stock < demand*0.5:
		return PriorityHigh
	case stock < demand:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
