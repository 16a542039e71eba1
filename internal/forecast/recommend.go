package forecast

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OrderQuantity is the shortfall against demand over the recommendation
// window plus safety stock.
func OrderQuantity(points []ForecastPoint, currentStock, minStock float64) float64 {
	window := len(points)
	if window > RecommendationWindowDays {
		window = RecommendationWindowDays
	}

	var demand float64
	for _, p := range points[:window] {
		demand += p.PredictedDemand
	}

	target := demand + SafetyStockFactor*minStock
	return math.Max(0, target-currentStock)
}

// Recommend splits the order quantity across delivery lanes. The air lane
// gets AirShare only when a red alert exists; the sea lane always gets
// SeaShare, so without a red alert the air share is not reassigned.
func Recommend(points []ForecastPoint, currentStock, minStock float64, alerts []StockAlert, air, sea DeliveryOption, today time.Time) []OrderRecommendation {
	qty := OrderQuantity(points, currentStock, minStock)
	if qty <= 0 {
		return []OrderRecommendation{}
	}

	orderDay := calendarDay(today, today.Location())
	recs := make([]OrderRecommendation, 0, 2)

	if hasRedAlert(alerts) {
		recs = append(recs, laneRecommendation(qty, AirShare, air, orderDay,
			"Urgent order to prevent a stockout before the main shipment arrives"))
	}
	recs = append(recs, laneRecommendation(qty, SeaShare, sea, orderDay,
		"Main replenishment order covering demand and safety stock"))

	return recs
}

func laneRecommendation(qty, share float64, lane DeliveryOption, orderDay time.Time, rationale string) OrderRecommendation {
	portion := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(share))

	return OrderRecommendation{
		Quantity:            int(portion.Ceil().IntPart()),
		DeliveryMode:        lane.Mode,
		OrderByDate:         orderDay,
		ExpectedArrivalDate: orderDay.AddDate(0, 0, lane.MaxLeadDays),
		EstimatedCost:       portion.Mul(decimal.NewFromFloat(lane.UnitCostMultiplier)),
		Rationale:           rationale,
	}
}
