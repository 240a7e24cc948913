package domain

// Closing is a persisted quote, keyed by (date, code).
type Closing struct {
	ID    int64   `json:"id"`
	Date  string  `json:"date"`
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

// Stats aggregates the stored history of one instrument.
type Stats struct {
	Code         string  `json:"code"`
	TotalRecords int64   `json:"total_records"`
	MinValue     float64 `json:"min_value"`
	MaxValue     float64 `json:"max_value"`
	AvgValue     float64 `json:"avg_value"`
	FirstDate    string  `json:"first_date"`
	LastDate     string  `json:"last_date"`
}
