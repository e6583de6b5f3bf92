package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
	"github.com/couchcryptid/housing-affordability-etl/internal/pipeline"
)

func readSampleGrid(t *testing.T, name string) domain.Grid {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "data", name))
	require.NoError(t, err)
	return domain.ParseGrid(string(data))
}

func TestAffordabilityTransformer_WithSampleData(t *testing.T) {
	pair := domain.GridPair{
		Price:  readSampleGrid(t, "ceny_mieszkan.csv"),
		Salary: readSampleGrid(t, "wynagrodzenia.csv"),
	}

	ds := pipeline.NewTransformer(discardLogger()).Transform(context.Background(), pair)

	assert.Equal(t, []domain.Region{
		domain.Mazowieckie, domain.Slaskie, domain.Wielkopolskie, domain.Malopolskie, domain.Dolnoslaskie,
	}, ds.Regions)
	require.Len(t, ds.Records, 50)

	assert.Equal(t, []string{"POLSKA"}, ds.Report.Price.UnrecognizedLabels)
	assert.Equal(t, []string{"Uwagi"}, ds.Report.Salary.InvalidYearColumns)
	assert.Equal(t, 9, ds.Report.Salary.RejectedCells)
	assert.Equal(t, 70, ds.Report.PriceKeys)
	assert.Equal(t, 51, ds.Report.SalaryKeys)

	first := ds.Records[0]
	assert.Equal(t, 2015, first.Year)
	assert.Nil(t, first.PriceGrowthPct)
	assert.Equal(t, 100, first.PriceIndex)
	assert.Equal(t, 100, first.SalaryIndex)

	last := ds.Records[9]
	assert.Equal(t, domain.Mazowieckie, last.Region)
	assert.Equal(t, 2024, last.Year)
	assert.InDelta(t, 16800, last.Price, 1e-9)
	assert.InDelta(t, 7500, last.Salary, 1e-9)
	assert.InDelta(t, 7500.0/16800.0, last.Affordability, 1e-12)
	require.NotNil(t, last.PriceGrowthPct)
	assert.Equal(t, 11, *last.PriceGrowthPct)
	require.NotNil(t, last.SalaryGrowthPct)
	assert.Equal(t, 7, *last.SalaryGrowthPct)
	assert.Equal(t, 210, last.PriceIndex)
	assert.Equal(t, 167, last.SalaryIndex)

	require.Len(t, ds.Summaries, 5)
	maz := ds.Summaries[0]
	assert.Equal(t, domain.Mazowieckie, maz.Region)
	assert.Equal(t, 110, maz.PriceTotalGrowthPct)
	assert.Equal(t, 67, maz.SalaryTotalGrowthPct)
	assert.Equal(t, 43, maz.IndexGap)
	assert.Equal(t, domain.GapRising, maz.GapTrend)
	assert.Equal(t, domain.ImplicationCritical, maz.Implication)
	assert.InDelta(t, -20.6, maz.AffordabilityChangePct, 1e-9)
	assert.Equal(t, domain.AssessmentSignificantDeterioration, maz.Assessment)

	trend := domain.Trend(ds.Summaries, []domain.Region{domain.Mazowieckie, domain.Slaskie})
	assert.InDelta(t, -19.8, trend.ChangePct, 1e-9)
	assert.Equal(t, domain.DirectionDecrease, trend.Direction)
}
