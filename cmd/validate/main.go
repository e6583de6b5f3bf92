// Command validate performs integrity checks on a derived affordability
// dataset: it re-derives the records from the price and salary sources and
// verifies the join, the per-region baselines, parity with a committed JSON
// fixture and that derivation is repeatable.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -price data/ceny_mieszkan.csv \
//	  -salary data/wynagrodzenia.csv \
//	  -fixture data/derived.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/housing-affordability-etl/internal/adapter/source"
	"github.com/couchcryptid/housing-affordability-etl/internal/config"
	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	price := flag.String("price", "data/ceny_mieszkan.csv", "price source: file path or http(s) URL")
	salary := flag.String("salary", "data/wynagrodzenia.csv", "salary source: file path or http(s) URL")
	fixture := flag.String("fixture", "", "optional path to a derived-records JSON fixture")
	charset := flag.String("charset", "utf-8", "source charset (WHATWG label)")
	flag.Parse()

	if *price == "" || *salary == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*price, *salary, *fixture, *charset); code != 0 {
		os.Exit(code)
	}
}

func run(pricePath, salaryPath, fixturePath, charset string) int {
	fmt.Println("=== Housing Affordability Integrity Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := source.Options{Format: config.FormatAuto, Charset: charset, Delimiter: ','}
	loader := source.NewLoader(source.NewRouter(10*time.Second, logger), pricePath, salaryPath, opts, logger)

	pair, err := loader.LoadGrids(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load sources: %v\n", err)
		return 1
	}

	var fixture []domain.DerivedRecord
	if fixturePath != "" {
		if fixture, err = loadJSON[domain.DerivedRecord](fixturePath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
			return 1
		}
	}

	records := domain.Derive(domain.Join(tables(pair)))

	// ── Run validation phases ──
	phases := []*phase{
		validateJoinIntersection(pair, records),
		validateBaselines(records),
		validateFixtureParity(records, fixture, fixturePath != ""),
		validateIdempotence(pair, records),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d derived, %d regions, %d fixture\n",
		len(records), len(domain.RegionsOf(records)), len(fixture))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func tables(pair domain.GridPair) (*domain.Table, *domain.Table) {
	price, _ := domain.BuildTable(pair.Price)
	salary, _ := domain.BuildTable(pair.Salary)
	return price, salary
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// validateJoinIntersection checks that the output is exactly the set of keys
// present in both tables, with the source values carried through.
func validateJoinIntersection(pair domain.GridPair, records []domain.DerivedRecord) *phase {
	p := &phase{name: "Join intersection"}
	price, salary := tables(pair)

	expected := 0
	for _, region := range price.Regions() {
		for _, year := range price.Years(region) {
			if _, ok := salary.Get(domain.Key{Region: region, Year: year}); ok {
				expected++
			}
		}
	}
	if len(records) != expected {
		p.errorf("record count: got %d, want %d keys present in both sources", len(records), expected)
	}

	seen := make(map[domain.Key]bool, len(records))
	for i, r := range records {
		k := domain.Key{Region: r.Region, Year: r.Year}
		if seen[k] {
			p.errorf("record %d: duplicate key %s/%d", i, r.Region, r.Year)
		}
		seen[k] = true

		if !slices.Contains(domain.Regions(), r.Region) {
			p.errorf("record %d: region %q is not canonical", i, r.Region)
		}
		if v, ok := price.Get(k); !ok || v != r.Price {
			p.errorf("record %d (%s/%d): price %g does not match source", i, r.Region, r.Year, r.Price)
		}
		if v, ok := salary.Get(k); !ok || v != r.Salary {
			p.errorf("record %d (%s/%d): salary %g does not match source", i, r.Region, r.Year, r.Salary)
		}
	}
	return p
}

// validateBaselines checks ordering, the base-year indices and the growth and
// affordability formulas for every region.
func validateBaselines(records []domain.DerivedRecord) *phase {
	p := &phase{name: "Baseline invariants"}

	for _, region := range domain.RegionsOf(records) {
		seq := domain.RecordsFor(records, region)
		for i, r := range seq {
			if r.Price <= 0 || r.Salary <= 0 {
				p.errorf("%s/%d: non-positive value (price %g, salary %g)", region, r.Year, r.Price, r.Salary)
				continue
			}
			if math.Abs(r.Affordability-r.Salary/r.Price) > 1e-12 {
				p.errorf("%s/%d: affordability %g != salary/price", region, r.Year, r.Affordability)
			}
			if i == 0 {
				if r.PriceIndex != 100 || r.SalaryIndex != 100 {
					p.errorf("%s/%d: baseline indices %d/%d, want 100/100", region, r.Year, r.PriceIndex, r.SalaryIndex)
				}
				if r.PriceGrowthPct != nil || r.SalaryGrowthPct != nil {
					p.errorf("%s/%d: baseline year has growth values", region, r.Year)
				}
				continue
			}

			prev := seq[i-1]
			if r.Year <= prev.Year {
				p.errorf("%s: years not strictly ascending (%d after %d)", region, r.Year, prev.Year)
			}
			if r.PriceGrowthPct == nil || r.SalaryGrowthPct == nil {
				p.errorf("%s/%d: missing growth values", region, r.Year)
			}
			if want := expectedIndex(r.Price, seq[0].Price); r.PriceIndex != want {
				p.errorf("%s/%d: price index %d, want %d", region, r.Year, r.PriceIndex, want)
			}
			if want := expectedIndex(r.Salary, seq[0].Salary); r.SalaryIndex != want {
				p.errorf("%s/%d: salary index %d, want %d", region, r.Year, r.SalaryIndex, want)
			}
		}
	}
	return p
}

func expectedIndex(value, base float64) int {
	return int(math.Floor(value/base*100 + 0.5))
}

// validateFixtureParity compares the derived records with the committed
// fixture, allowing for float noise from JSON round-tripping.
func validateFixtureParity(records, fixture []domain.DerivedRecord, enabled bool) *phase {
	p := &phase{name: "Fixture parity"}
	if !enabled {
		p.skipped = true
		return p
	}
	if diff := cmp.Diff(fixture, records, cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); diff != "" {
		p.errorf("derived records differ from fixture (-fixture +derived):\n%s", diff)
	}
	return p
}

// validateIdempotence derives the same grids a second time and requires an
// identical result.
func validateIdempotence(pair domain.GridPair, first []domain.DerivedRecord) *phase {
	p := &phase{name: "Idempotence"}
	second := domain.Derive(domain.Join(tables(pair)))
	if diff := cmp.Diff(first, second); diff != "" {
		p.errorf("second derivation differs (-first +second):\n%s", diff)
	}
	return p
}
