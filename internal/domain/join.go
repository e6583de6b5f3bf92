package domain

// JoinedRecord is one (region, year) present in both the price and the
// salary table.
type JoinedRecord struct {
	Region Region  `json:"region"`
	Year   int     `json:"year"`
	Price  float64 `json:"price"`
	Salary float64 `json:"salary"`
}

// Join aligns the two tables on their shared keys. Records are grouped by
// region in the order regions first appear in the price table and sorted by
// year within each region. Keys present in only one table are dropped.
func Join(price, salary *Table) []JoinedRecord {
	var out []JoinedRecord
	for _, region := range price.order {
		for _, year := range price.Years(region) {
			k := Key{Region: region, Year: year}
			s, ok := salary.Get(k)
			if !ok {
				continue
			}
			p, _ := price.Get(k)
			out = append(out, JoinedRecord{Region: region, Year: year, Price: p, Salary: s})
		}
	}
	return out
}
