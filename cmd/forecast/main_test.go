package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSalesCSV(t *testing.T, dir string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,quantity,revenue,unit_price\n")
	start := time.Date(2024, time.February, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 56; i++ {
		fmt.Fprintf(&b, "%s,3,30,10\n", start.AddDate(0, 0, i).Format("2006-01-02"))
	}

	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	sales := writeSalesCSV(t, dir)
	csvOut := filepath.Join(dir, "forecast.csv")
	xlsxOut := filepath.Join(dir, "forecast.xlsx")

	var out bytes.Buffer
	err := newApp(&out).Run([]string{
		"forecast", "--log-level", "error",
		"run",
		"--sales-csv", sales,
		"--stock", "20",
		"--min-stock", "10",
		"--horizon", "14",
		"--today", "2024-04-01",
		"--csv", csvOut,
		"--xlsx", xlsxOut,
	})
	require.NoError(t, err)

	var res forecast.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Forecast, 14)
	assert.InDelta(t, 3.0, res.Forecast[0].PredictedDemand, 1e-9)
	assert.Equal(t, "2024-04-02", res.Forecast[0].Date.Format("2006-01-02"))
	assert.NotEmpty(t, res.Alerts)

	f, err := os.Open(csvOut)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 15)

	info, err := os.Stat(xlsxOut)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	sales := writeSalesCSV(t, dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"run", "--sales-csv", filepath.Join(dir, "nope.csv")}, "failed to open sales file"},
		{"bad today", []string{"run", "--sales-csv", sales, "--today", "yesterday"}, "invalid --today"},
		{"negative min stock", []string{"run", "--sales-csv", sales, "--min-stock", "-1"}, "min_stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			args := append([]string{"forecast", "--log-level", "error"}, tt.args...)
			err := newApp(&out).Run(args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTemplatesCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run([]string{"forecast", "templates"}))

	var templates []forecast.SeasonalPattern
	require.NoError(t, json.Unmarshal(out.Bytes(), &templates))
	require.Len(t, templates, len(forecast.DefaultTemplates()))
	assert.Equal(t, forecast.DefaultTemplateID, templates[len(templates)-1].ID)
}

func TestParseWeekStart(t *testing.T) {
	assert.Equal(t, time.Monday, parseWeekStart("monday"))
	assert.Equal(t, time.Saturday, parseWeekStart("Sat"))
	assert.Equal(t, time.Sunday, parseWeekStart("someday"))
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b,"))
	assert.Nil(t, splitIDs(""))
}

type fakeIngester struct {
	products []string
	sales    map[string]int
	fail     error
}

func (f *fakeIngester) UpsertProduct(ctx context.Context, p *domain.Product) error {
	f.products = append(f.products, p.ID)
	return nil
}

func (f *fakeIngester) ReplaceSales(ctx context.Context, productID string, records []forecast.SalesRecord) (int, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	if f.sales == nil {
		f.sales = make(map[string]int)
	}
	f.sales[productID] = len(records)
	return len(records), nil
}

type recordingCache struct {
	entries     map[string]*domain.ProductForecast
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string]*domain.ProductForecast)}
}

func (c *recordingCache) GetForecast(ctx context.Context, key cache.ForecastKey) (*domain.ProductForecast, bool, error) {
	pf, ok := c.entries[key.ProductID]
	return pf, ok, nil
}

func (c *recordingCache) SetForecast(ctx context.Context, key cache.ForecastKey, pf *domain.ProductForecast) error {
	c.entries[key.ProductID] = pf
	return nil
}

func (c *recordingCache) InvalidateProduct(ctx context.Context, productID string) error {
	c.invalidated = append(c.invalidated, productID)
	delete(c.entries, productID)
	return nil
}

func (c *recordingCache) InvalidateAll(ctx context.Context) error {
	c.entries = make(map[string]*domain.ProductForecast)
	return nil
}

func TestIngestProduct_ClearsCachedForecasts(t *testing.T) {
	ctx := context.Background()
	fc := newRecordingCache()
	require.NoError(t, fc.SetForecast(ctx, cache.ForecastKey{ProductID: "p1"}, &domain.ProductForecast{}))
	require.NoError(t, fc.SetForecast(ctx, cache.ForecastKey{ProductID: "p2"}, &domain.ProductForecast{}))

	repo := &fakeIngester{}
	records := []forecast.SalesRecord{{Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Quantity: 3}}

	n, err := ingestProduct(ctx, repo, fc, &domain.Product{ID: "p1"}, records)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"p1"}, fc.invalidated)

	_, ok, _ := fc.GetForecast(ctx, cache.ForecastKey{ProductID: "p1"})
	assert.False(t, ok)
	_, ok, _ = fc.GetForecast(ctx, cache.ForecastKey{ProductID: "p2"})
	assert.True(t, ok)
}

func TestIngestProduct_KeepsCacheWhenSalesFail(t *testing.T) {
	ctx := context.Background()
	fc := newRecordingCache()
	repo := &fakeIngester{fail: errors.New("deadlock detected")}

	_, err := ingestProduct(ctx, repo, fc, &domain.Product{ID: "p1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
	assert.Empty(t, fc.invalidated)
}
