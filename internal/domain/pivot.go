package domain

import (
	"fmt"
	"slices"
)

// Metric names a column of DerivedRecord for pivoting.
type Metric string

const (
	MetricPrice         Metric = "price"
	MetricSalary        Metric = "salary"
	MetricAffordability Metric = "affordability"
	MetricPriceGrowth   Metric = "price_growth"
	MetricSalaryGrowth  Metric = "salary_growth"
	MetricPriceIndex    Metric = "price_index"
	MetricSalaryIndex   Metric = "salary_index"
)

// Metrics lists every pivotable metric.
var Metrics = []Metric{
	MetricPrice, MetricSalary, MetricAffordability,
	MetricPriceGrowth, MetricSalaryGrowth,
	MetricPriceIndex, MetricSalaryIndex,
}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !slices.Contains(Metrics, m) {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return m, nil
}

// PivotRow is one year of a pivot: the metric's value per region. Regions
// without a value that year are absent from Values.
type PivotRow struct {
	Year   int                `json:"year"`
	Values map[Region]float64 `json:"values"`
}

// Pivot reshapes records into one row per year (ascending) for a metric, the
// layout chart consumers expect.
func Pivot(records []DerivedRecord, m Metric) []PivotRow {
	byYear := make(map[int]map[Region]float64)
	for _, r := range records {
		v, ok := metricValue(r, m)
		if !ok {
			continue
		}
		row, exists := byYear[r.Year]
		if !exists {
			row = make(map[Region]float64)
			byYear[r.Year] = row
		}
		row[r.Region] = v
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	slices.Sort(years)

	out := make([]PivotRow, 0, len(years))
	for _, y := range years {
		out = append(out, PivotRow{Year: y, Values: byYear[y]})
	}
	return out
}

func metricValue(r DerivedRecord, m Metric) (float64, bool) {
	switch m {
	case MetricPrice:
		return r.Price, true
	case MetricSalary:
		return r.Salary, true
	case MetricAffordability:
		return r.Affordability, true
	case MetricPriceGrowth:
		return optional(r.PriceGrowthPct)
	case MetricSalaryGrowth:
		return optional(r.SalaryGrowthPct)
	case MetricPriceIndex:
		return float64(r.PriceIndex), true
	case MetricSalaryIndex:
		return float64(r.SalaryIndex), true
	default:
		return 0, false
	}
}

func optional(p *int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}
