package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/pkg/errors"
)

var csvHeader = []string{"date", "predicted_demand", "confidence_lower", "confidence_upper", "trend", "seasonal_factor", "baseline_demand"}

// WriteForecastCSV writes the forecast series, one row per day.
func WriteForecastCSV(w io.Writer, points []forecast.ForecastPoint) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return errors.Wrap(err, "report: failed to write csv header")
	}

	for _, p := range points {
		record := []string{
			p.Date.Format(dateLayout),
			fmt.Sprintf("%.2f", p.PredictedDemand),
			fmt.Sprintf("%.2f", p.ConfidenceLower),
			fmt.Sprintf("%.2f", p.ConfidenceUpper),
			string(p.TrendLabel),
			fmt.Sprintf("%.2f", p.SeasonalFactor),
			fmt.Sprintf("%.2f", p.BaselineDemandUsed),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "report: failed to write csv row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "report: failed to flush csv")
}
