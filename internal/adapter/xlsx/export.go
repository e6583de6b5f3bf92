package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

// Sheet names of an exported workbook. Pivot sheets are named after their
// metric.
const (
	RecordsSheet   = "records"
	SummariesSheet = "summaries"
)

var recordsHeader = []any{
	"region", "year", "price", "salary", "affordability",
	"price_growth_pct", "salary_growth_pct", "price_index", "salary_index",
}

var summariesHeader = []any{
	"region", "first_year", "last_year", "years",
	"price_total_growth_pct", "salary_total_growth_pct",
	"index_gap", "gap_trend", "implication",
	"affordability_change_pct", "assessment",
	"affordability_mean", "affordability_median", "affordability_min",
	"affordability_max", "affordability_std_dev",
}

// WriteWorkbook writes ds as a workbook with a records sheet, a summaries
// sheet and one pivot sheet per metric.
func WriteWorkbook(w io.Writer, ds domain.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeRecords(f, ds.Records); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummariesSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", SummariesSheet, err)
	}
	if err := writeSummaries(f, ds.Summaries); err != nil {
		return err
	}

	for _, m := range domain.Metrics {
		sheet := string(m)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writePivot(f, sheet, ds.Regions, domain.Pivot(ds.Records, m)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRecords(f *excelize.File, records []domain.DerivedRecord) error {
	if err := setRow(f, RecordsSheet, 1, recordsHeader); err != nil {
		return err
	}
	for i, r := range records {
		row := []any{
			string(r.Region), r.Year, r.Price, r.Salary, r.Affordability,
			optionalCell(r.PriceGrowthPct), optionalCell(r.SalaryGrowthPct),
			r.PriceIndex, r.SalaryIndex,
		}
		if err := setRow(f, RecordsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummaries(f *excelize.File, summaries []domain.RegionSummary) error {
	if err := setRow(f, SummariesSheet, 1, summariesHeader); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{
			string(s.Region), s.FirstYear, s.LastYear, s.Years,
			s.PriceTotalGrowthPct, s.SalaryTotalGrowthPct,
			s.IndexGap, s.GapTrend, s.Implication,
			s.AffordabilityChangePct, s.Assessment,
			s.Affordability.Mean, s.Affordability.Median, s.Affordability.Min,
			s.Affordability.Max, s.Affordability.StdDev,
		}
		if err := setRow(f, SummariesSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writePivot(f *excelize.File, sheet string, regions []domain.Region, rows []domain.PivotRow) error {
	header := make([]any, 0, len(regions)+1)
	header = append(header, "year")
	for _, r := range regions {
		header = append(header, string(r))
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, pr := range rows {
		row := make([]any, 0, len(regions)+1)
		row = append(row, pr.Year)
		for _, region := range regions {
			if v, ok := pr.Values[region]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// optionalCell leaves the cell blank for a missing growth value.
func optionalCell(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
