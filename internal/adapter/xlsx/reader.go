// Package xlsx reads source grids from workbooks and exports derived datasets
// as workbooks.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

// ErrSheetNotFound is returned when the requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ReadGrid returns the rows of one sheet as a grid. An empty sheet name
// selects the first sheet. Text cells are returned as stored. Numeric cells
// are returned unformatted with a decimal comma ("8000,5"), the notation
// domain.ParseValue reads.
func ReadGrid(data []byte, sheet string) (domain.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Grid{}, nil
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if rows == nil {
		return domain.Grid{}, nil
	}
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("read cell %s!%s: %w", sheet, cell, err)
			}
			row[c] = cellText(typ, value)
		}
	}
	return domain.Grid(rows), nil
}

// cellText rewrites the raw value of a numeric cell into decimal-comma
// notation. Other cells pass through.
func cellText(typ excelize.CellType, raw string) string {
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		return raw
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
