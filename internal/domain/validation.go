package domain

import (
	"math"
	"time"
)

const (
	MinBagCount = 1
	MaxBagCount = 50
)

// IsBagCountValid reports whether n is a whole number of bags in
// [MinBagCount, MaxBagCount]. Input arrives as a JSON number, hence float64.
func IsBagCountValid(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return false
	}
	return n >= MinBagCount && n <= MaxBagCount
}

// IsDateRangeValid reports whether r starts tomorrow or later and spans at
// least one full day. Both ends must sit at midnight of their own day.
func IsDateRangeValid(r DateRange, now time.Time) bool {
	if r.From.IsZero() || r.To.IsZero() {
		return false
	}
	if !r.From.Equal(StartOfDay(r.From)) || !r.To.Equal(StartOfDay(r.To)) {
		return false
	}

	minFrom := Tomorrow(now)
	minTo := r.From.AddDate(0, 0, 1)

	return !r.From.Before(minFrom) && !r.To.Before(minTo)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func Tomorrow(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, 1)
}
