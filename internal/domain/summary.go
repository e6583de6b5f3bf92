package domain

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Gap trend and implication labels, keyed on the index gap at the last year.
const (
	GapRising   = "rising"
	GapModerate = "moderate"
	GapSmall    = "small"

	ImplicationCritical = "critical"
	ImplicationWarning  = "warning"
	ImplicationStable   = "stable"
)

// Affordability change assessments.
const (
	AssessmentImprovement              = "improvement"
	AssessmentDeterioration            = "deterioration"
	AssessmentSignificantDeterioration = "significant_deterioration"
)

// Trend directions across a region selection.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
	DirectionStable   = "stable"
)

// AffordabilityStats describes the distribution of a region's affordability.
type AffordabilityStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// RegionSummary condenses one region's derived sequence.
type RegionSummary struct {
	Region                 Region             `json:"region"`
	FirstYear              int                `json:"first_year"`
	LastYear               int                `json:"last_year"`
	Years                  int                `json:"years"`
	PriceTotalGrowthPct    int                `json:"price_total_growth_pct"`
	SalaryTotalGrowthPct   int                `json:"salary_total_growth_pct"`
	IndexGap               int                `json:"index_gap"`
	GapTrend               string             `json:"gap_trend"`
	Implication            string             `json:"implication"`
	AffordabilityChangePct float64            `json:"affordability_change_pct"`
	Assessment             string             `json:"assessment"`
	Affordability          AffordabilityStats `json:"affordability"`

	// affordabilityChange is the unrounded change; assessment and trends
	// are computed from it.
	affordabilityChange float64
}

// AffordabilityTrend is the mean affordability change over a region selection.
type AffordabilityTrend struct {
	Regions   []Region `json:"regions"`
	ChangePct float64  `json:"change_pct"`
	Direction string   `json:"direction"`
}

// Summarize builds one summary per region of records, in output order.
func Summarize(records []DerivedRecord) []RegionSummary {
	regions := RegionsOf(records)
	out := make([]RegionSummary, 0, len(regions))
	for _, region := range regions {
		out = append(out, summarizeRegion(region, RecordsFor(records, region)))
	}
	return out
}

func summarizeRegion(region Region, seq []DerivedRecord) RegionSummary {
	first, last := seq[0], seq[len(seq)-1]

	gap := last.PriceIndex - last.SalaryIndex
	change := (last.Affordability - first.Affordability) / first.Affordability * 100

	return RegionSummary{
		Region:                 region,
		FirstYear:              first.Year,
		LastYear:               last.Year,
		Years:                  len(seq),
		PriceTotalGrowthPct:    roundHalfUp((last.Price - first.Price) / first.Price * 100),
		SalaryTotalGrowthPct:   roundHalfUp((last.Salary - first.Salary) / first.Salary * 100),
		IndexGap:               gap,
		GapTrend:               classifyGap(gap),
		Implication:            classifyImplication(gap),
		AffordabilityChangePct: roundTenth(change),
		Assessment:             assessChange(change),
		Affordability:          affordabilityStats(seq),
		affordabilityChange:    change,
	}
}

// Trend averages the affordability change of the selected regions. Regions
// without a summary are ignored; an empty selection is stable at zero.
func Trend(summaries []RegionSummary, selected []Region) AffordabilityTrend {
	byRegion := make(map[Region]RegionSummary, len(summaries))
	for _, s := range summaries {
		byRegion[s.Region] = s
	}

	trend := AffordabilityTrend{Regions: []Region{}, Direction: DirectionStable}
	var changes []float64
	for _, r := range selected {
		s, ok := byRegion[r]
		if !ok {
			continue
		}
		trend.Regions = append(trend.Regions, r)
		changes = append(changes, s.affordabilityChange)
	}
	if len(changes) == 0 {
		return trend
	}

	mean, err := stats.Mean(changes)
	if err != nil {
		return trend
	}
	trend.ChangePct = roundTenth(mean)
	switch {
	case mean > 5:
		trend.Direction = DirectionIncrease
	case mean < -5:
		trend.Direction = DirectionDecrease
	}
	return trend
}

func classifyGap(gap int) string {
	switch {
	case gap > 20:
		return GapRising
	case gap > 10:
		return GapModerate
	default:
		return GapSmall
	}
}

func classifyImplication(gap int) string {
	switch {
	case gap > 20:
		return ImplicationCritical
	case gap > 10:
		return ImplicationWarning
	default:
		return ImplicationStable
	}
}

func assessChange(pct float64) string {
	switch {
	case pct > 0:
		return AssessmentImprovement
	case pct < -10:
		return AssessmentSignificantDeterioration
	default:
		return AssessmentDeterioration
	}
}

// affordabilityStats never fails for a non-empty sequence; the zero value is
// returned otherwise.
func affordabilityStats(seq []DerivedRecord) AffordabilityStats {
	data := make(stats.Float64Data, len(seq))
	for i, r := range seq {
		data[i] = r.Affordability
	}

	var s AffordabilityStats
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return AffordabilityStats{}
	}
	s.Median, _ = data.Median()
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.StdDev, _ = data.StandardDeviation()
	return s
}

func roundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
