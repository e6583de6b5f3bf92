package domain

import "math"

// DerivedRecord extends a JoinedRecord with the comparable metrics.
// Growth fields are nil for the first year of a region's sequence.
type DerivedRecord struct {
	Region          Region  `json:"region"`
	Year            int     `json:"year"`
	Price           float64 `json:"price"`
	Salary          float64 `json:"salary"`
	Affordability   float64 `json:"affordability"`
	PriceGrowthPct  *int    `json:"price_growth_pct,omitempty"`
	SalaryGrowthPct *int    `json:"salary_growth_pct,omitempty"`
	PriceIndex      int     `json:"price_index"`
	SalaryIndex     int     `json:"salary_index"`
}

// Derive computes affordability, year-over-year growth and base-year indices
// for a joined sequence grouped by region and sorted by year, as returned by
// Join. Growth compares against the previous record of the same region in the
// sequence, which need not be the previous calendar year. Indices use the
// region's first record as the baseline.
func Derive(joined []JoinedRecord) []DerivedRecord {
	out := make([]DerivedRecord, 0, len(joined))

	var base, prev JoinedRecord
	for i, j := range joined {
		first := i == 0 || joined[i-1].Region != j.Region
		if first {
			base = j
		}

		d := DerivedRecord{
			Region:        j.Region,
			Year:          j.Year,
			Price:         j.Price,
			Salary:        j.Salary,
			Affordability: j.Salary / j.Price,
			PriceIndex:    roundHalfUp(j.Price / base.Price * 100),
			SalaryIndex:   roundHalfUp(j.Salary / base.Salary * 100),
		}
		if !first {
			d.PriceGrowthPct = growthPct(prev.Price, j.Price)
			d.SalaryGrowthPct = growthPct(prev.Salary, j.Salary)
		}

		out = append(out, d)
		prev = j
	}
	return out
}

// RegionsOf returns the distinct regions of records in order of appearance.
func RegionsOf(records []DerivedRecord) []Region {
	out := []Region{}
	seen := make(map[Region]bool)
	for _, r := range records {
		if seen[r.Region] {
			continue
		}
		seen[r.Region] = true
		out = append(out, r.Region)
	}
	return out
}

// RecordsFor returns the records of one region, preserving order.
func RecordsFor(records []DerivedRecord, region Region) []DerivedRecord {
	var out []DerivedRecord
	for _, r := range records {
		if r.Region == region {
			out = append(out, r)
		}
	}
	return out
}

func growthPct(previous, current float64) *int {
	g := roundHalfUp((current - previous) / previous * 100)
	return &g
}

// roundHalfUp rounds to the nearest integer with ties toward +Inf, so -2.5
// rounds to -2. math.Round would give -3. Results outside the int range
// saturate.
func roundHalfUp(x float64) int {
	r := math.Floor(x + 0.5)
	switch {
	case r >= math.MaxInt64:
		return math.MaxInt
	case r <= math.MinInt64:
		return math.MinInt
	}
	return int(r)
}
