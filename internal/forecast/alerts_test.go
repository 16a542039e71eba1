package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPoints(perDay float64, horizon int) []ForecastPoint {
	return Project(perDay, NeutralTrend(0), nil, horizon, day(2024, 3, 1))
}

func TestSimulateDepletion(t *testing.T) {
	today := day(2024, 3, 1)
	points := flatPoints(10, 90)

	tests := []struct {
		name  string
		stock float64
		found bool
		day   int
	}{
		{name: "runs out on day 10", stock: 100, found: true, day: 10},
		{name: "exact boundary day 30", stock: 300, found: true, day: 30},
		{name: "just past boundary", stock: 301, found: true, day: 31},
		{name: "lasts the whole horizon", stock: 1000, found: false},
		{name: "already empty", stock: 0, found: true, day: 0},
		{name: "negative stock", stock: -5, found: true, day: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SimulateDepletion(points, tt.stock, today)

			assert.Equal(t, tt.found, s.Found)
			assert.Equal(t, tt.day, s.Day)
			if tt.found {
				require.NotNil(t, s.Date)
				assert.Equal(t, today.AddDate(0, 0, tt.day), *s.Date)
			} else {
				assert.Nil(t, s.Date)
			}
		})
	}
}

func TestGenerateAlerts(t *testing.T) {
	today := day(2024, 3, 1)
	points := flatPoints(10, 90)

	tests := []struct {
		name       string
		stock      float64
		minStock   float64
		severities []Severity
		urgencies  []int
	}{
		{
			name:       "critical stockout",
			stock:      100,
			minStock:   10,
			severities: []Severity{SeverityRed},
			urgencies:  []int{UrgencyCritical},
		},
		{
			name:       "day 31 is only a warning",
			stock:      301,
			minStock:   10,
			severities: []Severity{SeverityYellow},
			urgencies:  []int{UrgencyWarning},
		},
		{
			name:       "no stockout within horizon",
			stock:      1000,
			minStock:   10,
			severities: []Severity{},
			urgencies:  []int{},
		},
		{
			name:       "below minimum without stockout",
			stock:      1000,
			minStock:   1000,
			severities: []Severity{SeverityRed},
			urgencies:  []int{UrgencyBelowMinimum},
		},
		{
			name:       "both alerts ordered by urgency",
			stock:      50,
			minStock:   60,
			severities: []Severity{SeverityRed, SeverityRed},
			urgencies:  []int{UrgencyCritical, UrgencyBelowMinimum},
		},
		{
			name:       "warning ranks below minimum alert",
			stock:      450,
			minStock:   500,
			severities: []Severity{SeverityRed, SeverityYellow},
			urgencies:  []int{UrgencyBelowMinimum, UrgencyWarning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stockout := SimulateDepletion(points, tt.stock, today)
			alerts := GenerateAlerts(stockout, tt.stock, tt.minStock)

			severities := make([]Severity, 0, len(alerts))
			urgencies := make([]int, 0, len(alerts))
			for _, a := range alerts {
				severities = append(severities, a.Severity)
				urgencies = append(urgencies, a.UrgencyScore)
			}
			assert.Equal(t, tt.severities, severities)
			assert.Equal(t, tt.urgencies, urgencies)
		})
	}
}

func TestGenerateAlerts_CriticalDetails(t *testing.T) {
	stockout := SimulateDepletion(flatPoints(10, 90), 100, day(2024, 3, 1))

	alerts := GenerateAlerts(stockout, 100, 10)

	require.Len(t, alerts, 1)
	assert.Equal(t, 10, alerts[0].DaysUntilStockout)
	assert.Equal(t, ActionUrgentAir, alerts[0].RecommendedAction)
	assert.Contains(t, alerts[0].Message, "10 days")
}

func TestGenerateAlerts_EmptyStock(t *testing.T) {
	stockout := SimulateDepletion(flatPoints(0, 90), 0, day(2024, 3, 1))

	alerts := GenerateAlerts(stockout, 0, 5)

	require.Len(t, alerts, 2)
	assert.Equal(t, 0, alerts[0].DaysUntilStockout)
	assert.Equal(t, UrgencyCritical, alerts[0].UrgencyScore)
	assert.Equal(t, ActionImmediately, alerts[1].RecommendedAction)
}
