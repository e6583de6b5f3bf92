package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

// AffordabilityTransformer implements Transformer using the domain core and
// logs what each source lost on the way.
type AffordabilityTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an AffordabilityTransformer.
func NewTransformer(logger *slog.Logger) *AffordabilityTransformer {
	return &AffordabilityTransformer{logger: logger}
}

func (t *AffordabilityTransformer) Transform(_ context.Context, pair domain.GridPair) domain.Dataset {
	ds := domain.BuildDataset(pair)

	t.logReport("price", ds.Report.Price)
	t.logReport("salary", ds.Report.Salary)

	if ds.Empty() {
		t.logger.Warn("no region-year present in both sources",
			"price_keys", ds.Report.PriceKeys,
			"salary_keys", ds.Report.SalaryKeys,
		)
	}
	return ds
}

func (t *AffordabilityTransformer) logReport(source string, r domain.BuildReport) {
	for _, label := range r.UnrecognizedLabels {
		t.logger.Warn("region label not recognized, row skipped", "source", source, "label", label)
	}
	for _, column := range r.InvalidYearColumns {
		t.logger.Warn("year column not an integer, column skipped", "source", source, "column", column)
	}
	for _, k := range r.Overwritten {
		t.logger.Warn("duplicate region-year, later value kept", "source", source, "region", k.Region, "year", k.Year)
	}
}
