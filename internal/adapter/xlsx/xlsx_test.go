package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

func workbookBytes(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, v := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadGrid_FirstSheet(t *testing.T) {
	data := workbookBytes(t, map[string][][]any{
		"ceny": {
			{"Nazwa", "2020", "2021"},
			{"MAZOWIECKIE", "10 000,50", "11 000"},
		},
		"inne": {{"x"}},
	}, "ceny", "inne")

	grid, err := ReadGrid(data, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Grid{
		{"Nazwa", "2020", "2021"},
		{"MAZOWIECKIE", "10 000,50", "11 000"},
	}, grid)
}

func TestReadGrid_NumericCells(t *testing.T) {
	data := workbookBytes(t, map[string][][]any{
		"ceny": {
			{"Nazwa", 2020, 2021, 2022},
			{"MAZOWIECKIE", 8000.5, 12345.67, 1e23},
		},
	}, "ceny")

	grid, err := ReadGrid(data, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Grid{
		{"Nazwa", "2020", "2021", "2022"},
		{"MAZOWIECKIE", "8000,5", "12345,67", "100000000000000000000000"},
	}, grid)

	tbl, _ := domain.BuildTable(grid)
	v, ok := tbl.Get(domain.Key{Region: domain.Mazowieckie, Year: 2020})
	require.True(t, ok)
	assert.InDelta(t, 8000.5, v, 1e-9)
	v, ok = tbl.Get(domain.Key{Region: domain.Mazowieckie, Year: 2021})
	require.True(t, ok)
	assert.InDelta(t, 12345.67, v, 1e-9)
}

func TestReadGrid_NumericCellsKeepNumberFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Nazwa", 2020}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Opolskie", 8000.5}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", style))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grid, err := ReadGrid(buf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.Grid{{"Nazwa", "2020"}, {"Opolskie", "8000,5"}}, grid)
}

func TestReadGrid_NamedSheet(t *testing.T) {
	data := workbookBytes(t, map[string][][]any{
		"opis":  {{"notes"}},
		"place": {{"Nazwa", "2020"}, {"Śląskie", "6000"}},
	}, "opis", "place")

	grid, err := ReadGrid(data, "place")
	require.NoError(t, err)
	assert.Equal(t, domain.Grid{{"Nazwa", "2020"}, {"Śląskie", "6000"}}, grid)
}

func TestReadGrid_MissingSheet(t *testing.T) {
	data := workbookBytes(t, map[string][][]any{"a": {{"x"}}}, "a")

	_, err := ReadGrid(data, "missing")
	require.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadGrid_NotAWorkbook(t *testing.T) {
	_, err := ReadGrid([]byte("Nazwa,2020\n"), "")
	assert.Error(t, err)
}

func TestWriteWorkbook(t *testing.T) {
	ds := domain.BuildDataset(domain.GridPair{
		Price: domain.ParseGrid("Nazwa,2020,2021\nMAZOWIECKIE,10000,11000\nŚLĄSKIE,6000,6600\n"),
		Salary: domain.ParseGrid("Nazwa,2020,2021\nMazowieckie,5000,5500\n" +
			"Śląskie,4000,4100\n"),
	})
	require.Len(t, ds.Records, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, ds))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	expectedSheets := []string{RecordsSheet, SummariesSheet}
	for _, m := range domain.Metrics {
		expectedSheets = append(expectedSheets, string(m))
	}
	assert.Equal(t, expectedSheets, f.GetSheetList())

	records, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "region", records[0][0])
	assert.Equal(t, "salary_index", records[0][8])
	assert.Equal(t, []string{"Mazowieckie", "2020"}, records[1][:2])
	assert.Equal(t, "", records[1][5], "first year has no growth")
	assert.Equal(t, "10", records[2][5])
	assert.Equal(t, "110", records[2][7])

	summaries, err := f.GetRows(SummariesSheet)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Mazowieckie", summaries[1][0])
	assert.Equal(t, "Śląskie", summaries[2][0])

	pivot, err := f.GetRows(string(domain.MetricPriceIndex))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "Mazowieckie", "Śląskie"},
		{"2020", "100", "100"},
		{"2021", "110", "110"},
	}, pivot)
}
