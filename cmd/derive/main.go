// Command derive runs one refresh outside the service: it loads the price and
// salary sources, derives the affordability dataset and writes the records to
// stdout. It uses the same source and domain packages as the service, so its
// output matches what the API serves.
//
// Usage:
//
//	go run ./cmd/derive \
//	  -price data/ceny_mieszkan.csv \
//	  -salary data/wynagrodzenia.csv \
//	  -format json \
//	  -xlsx out/affordability.xlsx
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/housing-affordability-etl/internal/adapter/source"
	"github.com/couchcryptid/housing-affordability-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/housing-affordability-etl/internal/config"
	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
	"github.com/couchcryptid/housing-affordability-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	price := flag.String("price", "data/ceny_mieszkan.csv", "price source: file path or http(s) URL")
	salary := flag.String("salary", "data/wynagrodzenia.csv", "salary source: file path or http(s) URL")
	format := flag.String("format", "json", "stdout format: json or csv")
	xlsxOut := flag.String("xlsx", "", "optional workbook output path")
	sourceFormat := flag.String("source-format", config.FormatAuto, "source format: auto, csv or xlsx")
	charset := flag.String("charset", "utf-8", "source charset (WHATWG label)")
	delimiter := flag.String("delimiter", ",", "source CSV delimiter")
	sheet := flag.String("sheet", "", "source workbook sheet; empty selects the first")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request HTTP timeout")
	generatedAt := flag.String("generated-at", "", "fixed RFC 3339 timestamp for reproducible output")
	flag.Parse()

	if *format != "json" && *format != "csv" {
		flag.Usage()
		return fmt.Errorf("invalid -format %q: want json or csv", *format)
	}
	if len([]rune(*delimiter)) != 1 {
		return fmt.Errorf("invalid -delimiter %q: want a single character", *delimiter)
	}

	if *generatedAt != "" {
		ts, err := time.Parse(time.RFC3339, *generatedAt)
		if err != nil {
			return fmt.Errorf("invalid -generated-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(ts))
		defer domain.SetClock(nil)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := source.Options{
		Format:    *sourceFormat,
		Charset:   *charset,
		Delimiter: []rune(*delimiter)[0],
		Sheet:     *sheet,
	}
	loader := source.NewLoader(source.NewRouter(*timeout, logger), *price, *salary, opts, logger)

	pair, err := loader.LoadGrids(context.Background())
	if err != nil {
		return err
	}
	ds := pipeline.NewTransformer(logger).Transform(context.Background(), pair)

	switch *format {
	case "csv":
		err = writeCSV(os.Stdout, ds.Records)
	default:
		err = writeJSON(os.Stdout, ds.Records)
	}
	if err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	if *xlsxOut != "" {
		if err := writeWorkbook(*xlsxOut, ds); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		log.Printf("wrote workbook: %s", *xlsxOut)
	}

	printStats(ds)
	return nil
}

func writeJSON(w io.Writer, records []domain.DerivedRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeCSV(w io.Writer, records []domain.DerivedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"region", "year", "price", "salary", "affordability",
		"price_growth_pct", "salary_growth_pct", "price_index", "salary_index",
	}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			string(r.Region),
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.FormatFloat(r.Salary, 'f', -1, 64),
			strconv.FormatFloat(r.Affordability, 'f', -1, 64),
			optional(r.PriceGrowthPct),
			optional(r.SalaryGrowthPct),
			strconv.Itoa(r.PriceIndex),
			strconv.Itoa(r.SalaryIndex),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optional(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func writeWorkbook(path string, ds domain.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := xlsx.WriteWorkbook(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(ds domain.Dataset) {
	r := ds.Report
	fmt.Fprintln(os.Stderr, "\n=== Derivation summary ===")
	fmt.Fprintf(os.Stderr, "Price:  %d rows, %d keys, %d unrecognized labels, %d rejected cells\n",
		r.Price.Rows, r.PriceKeys, len(r.Price.UnrecognizedLabels), r.Price.RejectedCells)
	fmt.Fprintf(os.Stderr, "Salary: %d rows, %d keys, %d unrecognized labels, %d rejected cells\n",
		r.Salary.Rows, r.SalaryKeys, len(r.Salary.UnrecognizedLabels), r.Salary.RejectedCells)
	fmt.Fprintf(os.Stderr, "Joined: %d records across %d regions\n", r.Joined, len(ds.Regions))

	for _, s := range ds.Summaries {
		fmt.Fprintf(os.Stderr, "  %-20s %d-%d  price %+d%%  salary %+d%%  gap %d (%s)  affordability %+.1f%% (%s)\n",
			s.Region, s.FirstYear, s.LastYear,
			s.PriceTotalGrowthPct, s.SalaryTotalGrowthPct,
			s.IndexGap, s.GapTrend,
			s.AffordabilityChangePct, s.Assessment)
	}
}
