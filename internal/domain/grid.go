package domain

import (
	"encoding/csv"
	"strings"
)

// Grid is a tokenized table: row 0 is the header, rows 1..N are data rows.
// Rows may have different lengths.
type Grid [][]string

// GridPair holds the two source grids of one refresh.
type GridPair struct {
	Price  Grid
	Salary Grid
}

// utf8BOM is stripped from the start of the text; spreadsheet exports add it.
const utf8BOM = "\ufeff"

// ParseGrid tokenizes comma-delimited text. See ParseGridDelimited.
func ParseGrid(text string) Grid {
	return ParseGridDelimited(text, ',')
}

// ParseGridDelimited tokenizes delimited text into a Grid. Quoted fields may
// contain the delimiter. Empty input yields an empty grid. Cell contents are
// not validated; tokenizing stops at the first unrecoverable syntax error and
// keeps the rows read so far.
func ParseGridDelimited(text string, comma rune) Grid {
	text = strings.TrimPrefix(text, utf8BOM)
	if strings.TrimSpace(text) == "" {
		return Grid{}
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	grid := Grid{}
	for {
		record, err := r.Read()
		if err != nil {
			// io.EOF, or a syntax error LazyQuotes could not absorb.
			break
		}
		grid = append(grid, record)
	}
	return grid
}

// Header returns the header row, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// DataRows returns rows 1..N, or nil when the grid has no data rows.
func (g Grid) DataRows() [][]string {
	if len(g) < 2 {
		return nil
	}
	return g[1:]
}
