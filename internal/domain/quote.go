package domain

import "time"

// DateLayout is the calendar-date format stored in the closings table.
const DateLayout = "2006-01-02"

// Quote is one fetched price observation for an instrument. Date is the
// process-local calendar date at fetch time, not the market's trade date.
type Quote struct {
	Code  string
	Date  string
	Value float64
}

// Today formats now as a closing date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
