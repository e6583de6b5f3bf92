package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	g := ParseGrid(`,2015,2016,2017
MAZOWIECKIE,"8 000,00","8 500,00","9 200,00"
ŚLĄSKIE,"6 500,00",,"7 400,00"
POLSKA,"6 000,00","6 300,00","6 800,00"
`)

	tbl, report := BuildTable(g)

	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, []Region{Mazowieckie, Slaskie}, tbl.Regions())
	assert.Equal(t, []int{2015, 2016, 2017}, tbl.Years(Mazowieckie))
	assert.Equal(t, []int{2015, 2017}, tbl.Years(Slaskie))

	v, ok := tbl.Get(Key{Region: Mazowieckie, Year: 2016})
	require.True(t, ok)
	assert.InDelta(t, 8500.0, v, 1e-9)

	_, ok = tbl.Get(Key{Region: Slaskie, Year: 2016})
	assert.False(t, ok, "empty cell leaves the key absent")

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, []string{"POLSKA"}, report.UnrecognizedLabels)
	assert.Equal(t, 1, report.RejectedCells)
	assert.Empty(t, report.InvalidYearColumns)
	assert.Empty(t, report.Overwritten)
}

func TestBuildTable_InvalidYearColumn(t *testing.T) {
	g := ParseGrid(`,2015,Rok?,2017
Opolskie,100,200,300
`)

	tbl, report := BuildTable(g)

	assert.Equal(t, []int{2015, 2017}, tbl.Years(Opolskie))
	assert.Equal(t, []string{"Rok?"}, report.InvalidYearColumns)
	assert.Zero(t, report.RejectedCells, "cells of an invalid column are not inspected")
}

func TestBuildTable_YearHeaderWhitespace(t *testing.T) {
	g := Grid{{"", " 2015 ", "2016"}, {"Lubuskie", "1", "2"}}

	tbl, _ := BuildTable(g)
	assert.Equal(t, []int{2015, 2016}, tbl.Years(Lubuskie))
}

func TestBuildTable_NonPositiveAndGarbage(t *testing.T) {
	g := Grid{
		{"", "2015", "2016", "2017", "2018"},
		{"Podlaskie", "0", "abc", "", "4 100,00"},
	}

	tbl, report := BuildTable(g)

	assert.Equal(t, []int{2018}, tbl.Years(Podlaskie))
	assert.Equal(t, 3, report.RejectedCells)
}

func TestBuildTable_RaggedRows(t *testing.T) {
	g := Grid{
		{"", "2015", "2016"},
		{"Pomorskie", "6200"},
		{"Lubelskie", "5000", "5100", "9999", "9999"},
	}

	tbl, _ := BuildTable(g)

	assert.Equal(t, []int{2015}, tbl.Years(Pomorskie))
	assert.Equal(t, []int{2015, 2016}, tbl.Years(Lubelskie), "cells past the header are ignored")
	assert.Equal(t, 3, tbl.Len())
}

func TestBuildTable_DuplicateRegionLastRowWins(t *testing.T) {
	g := Grid{
		{"", "2015", "2016"},
		{"MAZOWIECKIE", "8000", "8500"},
		{"Mazowieckie,", "8100", ""},
	}

	tbl, report := BuildTable(g)

	v, _ := tbl.Get(Key{Region: Mazowieckie, Year: 2015})
	assert.InDelta(t, 8100.0, v, 1e-9)
	v, _ = tbl.Get(Key{Region: Mazowieckie, Year: 2016})
	assert.InDelta(t, 8500.0, v, 1e-9, "rejected cell does not erase an earlier value")

	assert.Equal(t, []Region{Mazowieckie}, tbl.Regions())
	assert.Equal(t, []Key{{Region: Mazowieckie, Year: 2015}}, report.Overwritten)
}

func TestBuildTable_DuplicateYearColumnLastColumnWins(t *testing.T) {
	g := Grid{
		{"", "2015", "2015"},
		{"Opolskie", "100", "200"},
	}

	tbl, report := BuildTable(g)

	v, _ := tbl.Get(Key{Region: Opolskie, Year: 2015})
	assert.InDelta(t, 200.0, v, 1e-9)
	assert.Len(t, report.Overwritten, 1)
}

func TestBuildTable_EmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{"nil grid", nil},
		{"empty grid", Grid{}},
		{"header only", Grid{{"", "2015"}}},
		{"header without years", Grid{{""}, {"Opolskie", "100"}}},
		{"empty rows", Grid{{"", "2015"}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, _ := BuildTable(tt.grid)
			require.NotNil(t, tbl)
			assert.Zero(t, tbl.Len())
			assert.Empty(t, tbl.Regions())
		})
	}
}
