package domain

import "time"

// LoadReport collects the per-source build reports and join counts of one
// refresh.
type LoadReport struct {
	Price      BuildReport `json:"price"`
	Salary     BuildReport `json:"salary"`
	PriceKeys  int         `json:"price_keys"`
	SalaryKeys int         `json:"salary_keys"`
	Joined     int         `json:"joined"`
}

// Dataset is the immutable result of one refresh, handed to presentation
// consumers.
type Dataset struct {
	Records     []DerivedRecord `json:"records"`
	Regions     []Region        `json:"regions"`
	Summaries   []RegionSummary `json:"summaries"`
	Report      LoadReport      `json:"report"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// BuildDataset runs the core over both grids: table construction, join,
// derivation and summaries. Malformed input only shrinks the result; an empty
// grid yields an empty dataset.
func BuildDataset(pair GridPair) Dataset {
	price, priceReport := BuildTable(pair.Price)
	salary, salaryReport := BuildTable(pair.Salary)

	records := Derive(Join(price, salary))

	return Dataset{
		Records:   records,
		Regions:   RegionsOf(records),
		Summaries: Summarize(records),
		Report: LoadReport{
			Price:      priceReport,
			Salary:     salaryReport,
			PriceKeys:  price.Len(),
			SalaryKeys: salary.Len(),
			Joined:     len(records),
		},
		GeneratedAt: clock.Now().UTC(),
	}
}

// Empty reports whether the dataset holds no records.
func (d Dataset) Empty() bool {
	return len(d.Records) == 0
}
