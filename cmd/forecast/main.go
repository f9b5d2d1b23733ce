// Command forecast resolves a place, fetches its weather once and prints a
// text report (or the raw bundle as JSON). It reads the same environment as
// the dashboard service.
//
// Usage:
//
//	go run ./cmd/forecast -q "Paris" -unit imperial
//	go run ./cmd/forecast -q "Tokyo" -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/weather-dashboard-service/internal/app"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	query := flag.String("q", "", "place to look up, e.g. \"Paris\" or \"Springfield, IL\"")
	unitFlag := flag.String("unit", string(domain.UnitMetric), "metric or imperial")
	asJSON := flag.Bool("json", false, "print the raw bundle as JSON")
	flag.Parse()

	if strings.TrimSpace(*query) == "" {
		flag.Usage()
		os.Exit(2)
	}
	unit, err := domain.ParseUnit(*unitFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: read .env: %v\n", err)
	}

	if code := run(*query, unit, *asJSON, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(query string, unit domain.Unit, asJSON bool, out io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		return 1
	}
	// Diagnostics go to stderr so -json output stays parseable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// A one-shot run exports no metrics, so they stay unregistered.
	a := app.New(cfg, observability.NewMetricsForTesting(), logger)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.ProviderTimeout)
	defer cancel()

	loc, err := a.Resolver.Resolve(ctx, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "location %q not found\n", query)
		return 1
	}
	bundle, err := a.Fetcher.Fetch(ctx, loc.Coordinate, unit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %s\n", dashboard.Describe(err))
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle); err != nil {
			fmt.Fprintf(os.Stderr, "encode bundle: %v\n", err)
			return 1
		}
		return 0
	}
	printReport(out, loc, bundle)
	return 0
}

func printReport(out io.Writer, loc domain.GeocodingResult, b domain.Bundle) {
	c := b.Current
	fmt.Fprintf(out, "=== %s (%s, via %s) ===\n\n", loc.Label, loc.Coordinate, loc.Source)
	fmt.Fprintf(out, "  %-14s %s, %s\n", "Now", domain.FormatTemp(c.Temp, b.Unit), c.Condition.Description)
	fmt.Fprintf(out, "  %-14s %s\n", "Feels like", domain.FormatTemp(c.FeelsLike, b.Unit))
	fmt.Fprintf(out, "  %-14s %.0f%%\n", "Humidity", c.Humidity)
	fmt.Fprintf(out, "  %-14s %.1f %s\n", "Wind", c.WindSpeed, b.Unit.WindSymbol())
	fmt.Fprintf(out, "  %-14s %d (%s)\n", "Air quality", b.AirQuality.AQI, b.AirQuality.Label)
	fmt.Fprintf(out, "  %-14s %.1f (%s, simulated)\n", "Pollen", b.Pollen.Overall, domain.PollenLevel(b.Pollen.Overall))

	if dates := domain.SortedDates(b.Daily); len(dates) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Daily:")
		for _, d := range dates {
			agg := b.Daily[d]
			fmt.Fprintf(out, "    %s  %8s / %-8s %-16s rain %3.0f%%\n", d,
				domain.FormatTemp(agg.MaxTemp, b.Unit), domain.FormatTemp(agg.MinTemp, b.Unit),
				agg.DominantCondition, agg.AvgPrecipProbability*100)
		}
	}

	if trend, ok := domain.SummarizeTrend(c.Temp, b.Forecast); ok {
		fmt.Fprintf(out, "\n  Trend: %s (next mean %s), rain risk %.0f%%\n",
			trend.Direction, domain.FormatTemp(trend.NextMeanTemp, b.Unit), trend.PrecipRiskPct)
	}

	fmt.Fprintln(out)
	if len(b.Alerts) == 0 {
		fmt.Fprintln(out, "  No weather alerts.")
	}
	for _, alert := range b.Alerts {
		fmt.Fprintf(out, "  ALERT %s\n", alert.Message)
	}
	for _, w := range b.Warnings {
		fmt.Fprintf(out, "  note: %s\n", w)
	}
}
