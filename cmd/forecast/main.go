package main

import (
	"io"
	"os"

	"github.com/andresuchdata/stockcast/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "forecast",
		Usage:  "Demand forecasting and replenishment planning",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "console or json",
				Value:   "console",
				EnvVars: []string{"SERVER_LOG_FORMAT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetOutput(os.Stderr, c.String("log-format"))
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			runCommand(),
			templatesCommand(),
			{
				Name:  "overview",
				Usage: "Demand overview for stored products",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{Name: "days", Value: 30, Usage: "Overview period in days"},
					&cli.StringFlag{Name: "product-ids", Usage: "Comma separated product ids, all products when empty"},
					&cli.IntFlag{Name: "workers", Value: 4, Usage: "Concurrent product forecasts"},
					&cli.IntFlag{Name: "history-days", Value: 365, Usage: "Days of sales history to read"},
					&cli.StringFlag{Name: "xlsx", Usage: "Also write the overview workbook to this path"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runOverview,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:   "seed-templates",
				Usage:  "Store the built-in seasonal templates",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSeedTemplates,
			},
			{
				Name:  "ingest",
				Usage: "Upsert a product and replace its sales history from a CSV or XLSX export",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "product-id", Required: true},
					&cli.StringFlag{Name: "sku"},
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "template", Usage: "Seasonal template id"},
					&cli.Float64Flag{Name: "stock", Usage: "Current stock on hand"},
					&cli.Float64Flag{Name: "min-stock", Usage: "Minimum stock level"},
					&cli.StringFlag{Name: "unit-cost", Value: "0", Usage: "Unit purchase cost"},
					&cli.StringFlag{Name: "sales-file", Required: true, Usage: "Sales export (.csv or .xlsx)"},
					&cli.StringFlag{Name: "redis-url", EnvVars: []string{"REDIS_URL"}, Usage: "Forecast cache to clear for the product"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runIngest,
			},
		},
	}
}

func main() {
	_ = godotenv.Load(".env")

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("forecast command failed")
	}
}
