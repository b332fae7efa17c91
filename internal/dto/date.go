package dto

import (
	"time"
)

// DateLayout is the calendar-day format exchanged with the API.
const DateLayout = "2006-01-02"

type DateRangeDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a calendar date as midnight in loc. RFC3339 timestamps are
// accepted and truncated to their calendar day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}
