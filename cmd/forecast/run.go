package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/report"
	"github.com/andresuchdata/stockcast/internal/salesfile"
	"github.com/andresuchdata/stockcast/pkg/logger"
	"github.com/urfave/cli/v2"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Forecast a single product offline from a sales export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sales-csv", Aliases: []string{"sales-file"}, Required: true, Usage: "Sales export (.csv or .xlsx)"},
			&cli.Float64Flag{Name: "stock", Usage: "Current stock on hand"},
			&cli.Float64Flag{Name: "min-stock", Usage: "Minimum stock level"},
			&cli.StringFlag{Name: "template", Value: forecast.DefaultTemplateID, Usage: "Seasonal template id"},
			&cli.IntFlag{Name: "horizon", Value: forecast.DefaultHorizonDays, Usage: "Forecast horizon in days"},
			&cli.StringFlag{Name: "today", Usage: "Forecast as of this date (YYYY-MM-DD), defaults to now"},
			&cli.StringFlag{Name: "week-start", Value: "sunday", Usage: "First day of a trend week"},
			&cli.StringFlag{Name: "xlsx", Usage: "Also write the forecast workbook to this path"},
			&cli.StringFlag{Name: "csv", Usage: "Also write the forecast series to this path"},
		},
		Action: runForecast,
	}
}

func runForecast(c *cli.Context) error {
	history, err := salesfile.ReadFile(c.String("sales-csv"))
	if err != nil {
		return err
	}

	now := time.Now()
	if raw := c.String("today"); raw != "" {
		if now, err = salesfile.ParseDate(raw); err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
	}

	engine := forecast.NewEngine(
		forecast.NewDefaultRegistry(),
		forecast.WithClock(func() time.Time { return now }),
		forecast.WithWeekStart(parseWeekStart(c.String("week-start"))),
		forecast.WithLogger(logger.Component("forecast")),
	)

	req := forecast.Request{
		History:      history,
		CurrentStock: c.Float64("stock"),
		MinStock:     c.Float64("min-stock"),
		TemplateID:   c.String("template"),
		HorizonDays:  c.Int("horizon"),
	}
	if err := forecast.ValidateRequest(req); err != nil {
		return err
	}

	result, err := engine.GenerateForecast(req)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("records", len(history)).
		Int("alerts", len(result.Alerts)).
		Int("recommendations", len(result.Recommendations)).
		Msg("forecast generated")

	if path := c.String("xlsx"); path != "" {
		pf := &domain.ProductForecast{
			Product:     domain.Product{ID: "offline"},
			TemplateID:  req.TemplateID,
			HorizonDays: req.HorizonDays,
			GeneratedAt: now,
			Result:      result,
		}
		if err := writeFile(path, func(w io.Writer) error { return report.WriteWorkbook(w, pf) }); err != nil {
			return err
		}
	}
	if path := c.String("csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteForecastCSV(w, result.Forecast) }); err != nil {
			return err
		}
	}

	return printJSON(c.App.Writer, result)
}

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "List the built-in seasonal templates",
		Action: func(c *cli.Context) error {
			return printJSON(c.App.Writer, forecast.DefaultTemplates())
		},
	}
}

func parseWeekStart(s string) time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(name, s) || strings.EqualFold(name[:3], s) {
			return d
		}
	}
	return time.Sunday
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Log.Info().Str("path", path).Msg("report written")
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
