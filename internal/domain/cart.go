package domain

import "time"

type DateRange struct {
	From time.Time
	To   time.Time
}

// Days is the number of calendar days covered by the range.
func (r DateRange) Days() int {
	return int(StartOfDay(r.To).Sub(StartOfDay(r.From)).Round(24*time.Hour) / (24 * time.Hour))
}

// DraftCart is the reservation being configured. An empty StashpointID means
// nothing is selected.
type DraftCart struct {
	BagCount     int
	DateRange    DateRange
	StashpointID string
}

type CartField string

const (
	CartFieldBagCount  CartField = "bagCount"
	CartFieldDateRange CartField = "dateRange"
)

// CartUpdate carries the new value for exactly one cart field.
type CartUpdate struct {
	Field     CartField
	BagCount  float64
	DateRange DateRange
}

func UpdateBagCount(n float64) CartUpdate {
	return CartUpdate{Field: CartFieldBagCount, BagCount: n}
}

func UpdateDateRange(r DateRange) CartUpdate {
	return CartUpdate{Field: CartFieldDateRange, DateRange: r}
}

func NewDraftCart(now time.Time) DraftCart {
	from := Tomorrow(now)
	return DraftCart{
		BagCount:  1,
		DateRange: DateRange{From: from, To: from.AddDate(0, 0, 1)},
	}
}

// Apply returns a copy of the cart with the updated field and true, or the
// unchanged cart and false when the value does not pass validation.
func (c DraftCart) Apply(u CartUpdate, now time.Time) (DraftCart, bool) {
	switch u.Field {
	case CartFieldBagCount:
		if !IsBagCountValid(u.BagCount) {
			return c, false
		}
		c.BagCount = int(u.BagCount)
		return c, true
	case CartFieldDateRange:
		if !IsDateRangeValid(u.DateRange, now) {
			return c, false
		}
		c.DateRange = u.DateRange
		return c, true
	}
	return c, false
}

func (c DraftCart) HasStashpoint() bool {
	return c.StashpointID != ""
}

func (c DraftCart) WithStashpoint(id string) DraftCart {
	c.StashpointID = id
	return c
}

func (c DraftCart) WithoutStashpoint() DraftCart {
	c.StashpointID = ""
	return c
}
