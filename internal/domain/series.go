package domain

import (
	"slices"
	"strconv"
	"strings"
)

// Key identifies one observation of a series.
type Key struct {
	Region Region `json:"region"`
	Year   int    `json:"year"`
}

// Table is a sparse, immutable mapping from (region, year) to a positive
// value, built from one source grid by BuildTable.
type Table struct {
	order  []Region
	values map[Key]float64
}

// BuildReport describes what BuildTable discarded. None of it is an error.
type BuildReport struct {
	Rows               int      `json:"rows"`
	UnrecognizedLabels []string `json:"unrecognized_labels,omitempty"`
	InvalidYearColumns []string `json:"invalid_year_columns,omitempty"`
	RejectedCells      int      `json:"rejected_cells"`
	Overwritten        []Key    `json:"overwritten,omitempty"`
}

// BuildTable parses a grid into a Table.
//
// Header cells 1..N are parsed as integer years; a column whose header does
// not parse is skipped entirely. Each data row's first cell is normalized with
// NormalizeRegion and the row is skipped when unrecognized. Value cells are
// parsed with ParseValue; rejected cells leave their key absent.
//
// Duplicate keys are resolved last-write-wins in file order (top to bottom,
// left to right), whether they come from two rows whose labels normalize to
// the same region or from a repeated year column. Each overwrite is listed in
// the report.
func BuildTable(g Grid) (*Table, BuildReport) {
	t := &Table{values: make(map[Key]float64)}
	var report BuildReport

	header := g.Header()
	rows := g.DataRows()
	report.Rows = len(rows)
	if len(header) < 2 || len(rows) == 0 {
		return t, report
	}

	years := make([]int, len(header))
	valid := make([]bool, len(header))
	for col := 1; col < len(header); col++ {
		y, err := strconv.Atoi(strings.TrimSpace(header[col]))
		if err != nil {
			report.InvalidYearColumns = append(report.InvalidYearColumns, header[col])
			continue
		}
		years[col] = y
		valid[col] = true
	}

	seen := make(map[Region]bool)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		region, ok := NormalizeRegion(row[0])
		if !ok {
			report.UnrecognizedLabels = append(report.UnrecognizedLabels, row[0])
			continue
		}
		if !seen[region] {
			seen[region] = true
			t.order = append(t.order, region)
		}

		// Cells beyond the header width have no year and are ignored.
		last := min(len(row), len(header))
		for col := 1; col < last; col++ {
			if !valid[col] {
				continue
			}
			v, ok := ParseValue(row[col])
			if !ok {
				report.RejectedCells++
				continue
			}
			k := Key{Region: region, Year: years[col]}
			if _, dup := t.values[k]; dup {
				report.Overwritten = append(report.Overwritten, k)
			}
			t.values[k] = v
		}
	}
	return t, report
}

// Get returns the value stored for k.
func (t *Table) Get(k Key) (float64, bool) {
	v, ok := t.values[k]
	return v, ok
}

// Len returns the number of stored observations.
func (t *Table) Len() int {
	return len(t.values)
}

// Regions returns the recognized regions in order of first appearance.
func (t *Table) Regions() []Region {
	return slices.Clone(t.order)
}

// Years returns the years stored for region, ascending.
func (t *Table) Years(region Region) []int {
	var years []int
	for k := range t.values {
		if k.Region == region {
			years = append(years, k.Year)
		}
	}
	slices.Sort(years)
	return years
}
