package stashpoint

import (
	"sort"

	"stasher/internal/domain"
)

type Property string

const (
	PropertyRating         Property = "rating"
	PropertyBagPerDayPrice Property = "bagPerDayPrice"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

type Filter struct {
	Property Property
	Order    Order
}

func DefaultFilter() Filter {
	return Filter{Property: PropertyRating, Order: OrderAsc}
}

// Toggle flips the sort order.
func (f Filter) Toggle() Filter {
	if f.Order == OrderAsc {
		f.Order = OrderDesc
	} else {
		f.Order = OrderAsc
	}
	return f
}

// Sort returns the stashpoints ordered by the filter. The input slice is never
// reordered; an unknown property returns it as is.
func Sort(stashpoints []domain.Stashpoint, f Filter) []domain.Stashpoint {
	var key func(domain.Stashpoint) float64
	switch f.Property {
	case PropertyRating:
		key = func(s domain.Stashpoint) float64 { return s.Rating }
	case PropertyBagPerDayPrice:
		key = func(s domain.Stashpoint) float64 { return s.BagPerDayPrice }
	default:
		return stashpoints
	}

	out := make([]domain.Stashpoint, len(stashpoints))
	copy(out, stashpoints)

	sort.SliceStable(out, func(i, j int) bool {
		if f.Order == OrderDesc {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})
	return out
}
