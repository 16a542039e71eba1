// Package salesfile reads sales history exports (CSV or XLSX) into sales
// records.
package salesfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Columns of a sales export. Only date and quantity are required.
const (
	ColDate            = "date"
	ColQuantity        = "quantity"
	ColRevenue         = "revenue"
	ColUnitPrice       = "unit_price"
	ColIsWholesale     = "is_wholesale"
	ColPriceChangeDate = "price_change_date"
)

var Header = []string{ColDate, ColQuantity, ColRevenue, ColUnitPrice, ColIsWholesale, ColPriceChangeDate}

// ReadFile loads a .csv or .xlsx export. For workbooks the first sheet is read.
func ReadFile(path string) ([]forecast.SalesRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readWorkbook(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sales file %s", path)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return records, nil
}

// ReadCSV parses a sales export with a header row.
func ReadCSV(r io.Reader) ([]forecast.SalesRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "invalid csv")
	}
	return parseRows(rows)
}

func readWorkbook(path string) ([]forecast.SalesRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]forecast.SalesRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("sales file is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{ColDate, ColQuantity} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Errorf("missing required column %q", required)
		}
	}

	records := make([]forecast.SalesRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, cols map[string]int) (forecast.SalesRecord, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var (
		rec forecast.SalesRecord
		err error
	)

	if rec.Date, err = ParseDate(field(ColDate)); err != nil {
		return rec, errors.Wrap(err, ColDate)
	}
	if rec.Quantity, err = parseNumber(field(ColQuantity)); err != nil {
		return rec, errors.Wrap(err, ColQuantity)
	}
	if rec.Revenue, err = parseNumber(field(ColRevenue)); err != nil {
		return rec, errors.Wrap(err, ColRevenue)
	}
	if rec.UnitPrice, err = parseNumber(field(ColUnitPrice)); err != nil {
		return rec, errors.Wrap(err, ColUnitPrice)
	}
	if rec.UnitPrice == 0 && rec.Quantity > 0 {
		rec.UnitPrice = rec.Revenue / rec.Quantity
	}

	if raw := field(ColIsWholesale); raw != "" {
		switch strings.ToLower(raw) {
		case "1", "true", "yes", "y":
			rec.IsWholesale = true
		case "0", "false", "no", "n":
		default:
			return rec, errors.Errorf("%s: invalid boolean %q", ColIsWholesale, raw)
		}
	}

	if raw := field(ColPriceChangeDate); raw != "" {
		marker, err := ParseDate(raw)
		if err != nil {
			return rec, errors.Wrap(err, ColPriceChangeDate)
		}
		rec.PriceChangeMarker = &marker
	}

	return rec, nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339. Plain dates are UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date %q", raw)
	}
	return t, nil
}

func parseNumber(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", raw)
	}
	if v < 0 {
		return 0, errors.Errorf("must not be negative, got %q", raw)
	}
	return v, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
