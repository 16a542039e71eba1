package forecast

import (
	"fmt"
	"sort"
	"time"
)

const (
	ActionUrgentAir   = "urgent air-freight order"
	ActionPlanSea     = "plan a sea-freight order"
	ActionImmediately = "immediate order"
)

// Stockout is the outcome of walking the forecast against current stock.
type Stockout struct {
	Found bool       `json:"found"`
	Day   int        `json:"day"`
	Date  *time.Time `json:"date,omitempty"`
}

// SimulateDepletion subtracts predicted demand day by day and reports the
// first day the running stock reaches zero or below. Stock that is already
// exhausted is reported as day 0.
func SimulateDepletion(points []ForecastPoint, currentStock float64, today time.Time) Stockout {
	if currentStock <= 0 {
		d := calendarDay(today, today.Location())
		return Stockout{Found: true, Day: 0, Date: &d}
	}

	running := currentStock
	for i, p := range points {
		running -= p.PredictedDemand
		if running <= 0 {
			d := p.Date
			return Stockout{Found: true, Day: i + 1, Date: &d}
		}
	}
	return Stockout{}
}

// GenerateAlerts applies the tiered alert policy. Checks are independent so
// several alerts may be returned, highest urgency first.
func GenerateAlerts(stockout Stockout, currentStock, minStock float64) []StockAlert {
	alerts := make([]StockAlert, 0, 2)

	if stockout.Found {
		switch {
		case stockout.Day <= CriticalStockoutDays:
			alerts = append(alerts, StockAlert{
				Severity:          SeverityRed,
				Message:           fmt.Sprintf("Critical stock level: product runs out in %d days", stockout.Day),
				DaysUntilStockout: stockout.Day,
				RecommendedAction: ActionUrgentAir,
				UrgencyScore:      UrgencyCritical,
			})
		case stockout.Day <= WarningStockoutDays:
			alerts = append(alerts, StockAlert{
				Severity:          SeverityYellow,
				Message:           fmt.Sprintf("Low stock level: product runs out in %d days", stockout.Day),
				DaysUntilStockout: stockout.Day,
				RecommendedAction: ActionPlanSea,
				UrgencyScore:      UrgencyWarning,
			})
		}
	}

	if currentStock <= minStock {
		alerts = append(alerts, StockAlert{
			Severity:          SeverityRed,
			Message:           "Minimum stock level reached",
			DaysUntilStockout: 0,
			RecommendedAction: ActionImmediately,
			UrgencyScore:      UrgencyBelowMinimum,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].UrgencyScore > alerts[j].UrgencyScore
	})
	return alerts
}

func hasRedAlert(alerts []StockAlert) bool {
	for _, a := range alerts {
		if a.Severity == SeverityRed {
			return true
		}
	}
	return false
}
