// Package report renders forecasts and demand overviews as spreadsheets.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	SheetForecast        = "Forecast"
	SheetAlerts          = "Alerts"
	SheetRecommendations = "Recommendations"
	SheetOverview        = "Overview"
	SheetSummary         = "Summary"

	dateLayout = "2006-01-02"

	// ContentType is the MIME type of the workbooks written here.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	forecastHeader = []string{"Date", "Predicted Demand", "Lower", "Upper", "Trend", "Seasonal Factor", "Baseline"}
	alertHeader    = []string{"Severity", "Message", "Days Until Stockout", "Recommended Action", "Urgency"}
	orderHeader    = []string{"Delivery", "Quantity", "Order By", "Expected Arrival", "Estimated Cost", "Rationale"}
	overviewHeader = []string{"Product ID", "SKU", "Name", "Priority", "Current Stock", "Predicted Demand", "Recommended Order", "Confidence", "Error"}
	summaryHeader  = []string{"Priority", "Products", "Predicted Demand", "Recommended Order"}
)

// WriteWorkbook writes the forecast of a product as an XLSX workbook with
// Forecast, Alerts and Recommendations sheets.
func WriteWorkbook(w io.Writer, pf *domain.ProductForecast) error {
	if pf == nil || pf.Result == nil {
		return errors.New("report: forecast has no result")
	}

	f := excelize.NewFile()
	defer f.Close()

	res := pf.Result

	rows := make([][]interface{}, 0, len(res.Forecast))
	for _, p := range res.Forecast {
		rows = append(rows, []interface{}{
			p.Date.Format(dateLayout),
			round2(p.PredictedDemand),
			round2(p.ConfidenceLower),
			round2(p.ConfidenceUpper),
			string(p.TrendLabel),
			p.SeasonalFactor,
			round2(p.BaselineDemandUsed),
		})
	}
	if err := writeSheet(f, SheetForecast, forecastHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, a := range res.Alerts {
		rows = append(rows, []interface{}{
			strings.ToUpper(string(a.Severity)),
			a.Message,
			a.DaysUntilStockout,
			a.RecommendedAction,
			a.UrgencyScore,
		})
	}
	if err := writeSheet(f, SheetAlerts, alertHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range res.Recommendations {
		rows = append(rows, []interface{}{
			string(r.DeliveryMode),
			r.Quantity,
			r.OrderByDate.Format(dateLayout),
			r.ExpectedArrivalDate.Format(dateLayout),
			r.EstimatedCost.Round(2).InexactFloat64(),
			r.Rationale,
		})
	}
	if err := writeSheet(f, SheetRecommendations, orderHeader, rows); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Forecast %s", productLabel(pf.Product)),
		Subject: fmt.Sprintf("%d day forecast, template %s", pf.HorizonDays, pf.TemplateID),
		Created: pf.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}); err != nil {
		return errors.Wrap(err, "report: failed to set document properties")
	}

	return finish(f, w)
}

// WriteOverviewWorkbook writes a demand overview with an Overview sheet and
// a per-priority Summary sheet.
func WriteOverviewWorkbook(w io.Writer, overview *domain.DemandOverview) error {
	if overview == nil {
		return errors.New("report: overview is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]interface{}, 0, len(overview.Items))
	for _, it := range overview.Items {
		rows = append(rows, []interface{}{
			it.ProductID,
			it.SKU,
			it.Name,
			string(it.Priority),
			it.CurrentStock,
			round2(it.PredictedDemand),
			round2(it.RecommendedOrder),
			round2(it.Confidence),
			it.Error,
		})
	}
	if err := writeSheet(f, SheetOverview, overviewHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, s := range overview.Summary {
		rows = append(rows, []interface{}{
			string(s.Priority),
			s.Count,
			round2(s.PredictedDemand),
			round2(s.RecommendedOrder),
		})
	}
	if err := writeSheet(f, SheetSummary, summaryHeader, rows); err != nil {
		return err
	}

	return finish(f, w)
}

// writeSheet fills sheet with a bold, frozen header row followed by rows.
// The first sheet written replaces the default one.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return errors.Wrapf(err, "report: failed to write %s header", sheet)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "report: bad cell reference")
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "report: failed to write %s row %d", sheet, i+2)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "report: failed to create header style")
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return errors.Wrapf(err, "report: failed to style %s header", sheet)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func ensureSheet(f *excelize.File, sheet string) error {
	sheets := f.GetSheetList()
	if len(sheets) == 1 && sheets[0] == "Sheet1" {
		return errors.Wrap(f.SetSheetName("Sheet1", sheet), "report: failed to rename default sheet")
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrapf(err, "report: failed to create sheet %s", sheet)
	}
	return nil
}

func finish(f *excelize.File, w io.Writer) error {
	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "report: failed to write workbook")
	}
	return nil
}

func productLabel(p domain.Product) string {
	if p.SKU != "" {
		return p.SKU
	}
	return p.ID
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
