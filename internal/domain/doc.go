// Package domain models regional housing price and salary time series and
// the affordability metrics derived from them.
//
// # Data Source
//
// Both inputs are spreadsheet exports of Statistics Poland (GUS) regional
// tables: average price per square metre of residential premises and average
// monthly gross salary, one row per voivodeship, one column per year. The
// exports are fetched as CSV (or the original workbook) by the source adapter
// and handed to this package as a [Grid] of text cells.
//
// # Grid Conventions
//
// Row 0 is the header: the first cell is ignored, the remaining cells are
// year labels.
//
//	,2015,2016,2017
//	MAZOWIECKIE,"8 000,00","8 500,00","9 200,00"
//
// Data rows carry a region label followed by values positionally aligned to
// the header. Ragged rows are tolerated per cell. A header cell that is not an
// integer invalidates its whole column.
//
// Region labels:
//
//	Labels arrive uppercase in one source and title-case in the other
//	("DOLNOŚLĄSKIE" vs "Dolnośląskie"), sometimes with trailing punctuation or
//	footnote markers ("Mazowieckie, ", "Łódzkie*"). See [NormalizeRegion].
//	Rows that name no voivodeship (national totals such as "POLSKA") are
//	dropped.
//
// Number format:
//
//	Polish locale: space or no-break space as thousands separator, comma as
//	decimal separator, optional currency decoration ("8 000,00 zł").
//	Everything except digits and commas is discarded before parsing, so a
//	dot is never a decimal point. See [ParseValue].
//
// # Derived Metrics
//
// Records are joined on (region, year) and, per region in year order:
//
//	affordability = salary / price            square metres per monthly salary
//	growth        = round((cur - prev) / prev * 100)   absent for the first year
//	index         = round(cur / first * 100)           100 at the first year
//
// Baselines are taken from the joined sequence, never from a single source
// table, because the join may drop a region's nominal first year. Rounding is
// half-up ([roundHalfUp]).
package domain
