package booking

import (
	"stasher/internal/domain"
	"stasher/internal/request"
	"stasher/internal/stashpoint"
)

// State is everything the booking view renders. Values are snapshots; the
// controller never mutates a State it has handed out.
type State struct {
	Cart        domain.DraftCart
	Stashpoints request.Status[[]domain.Stashpoint]
	Quote       request.Status[domain.PriceQuote]
	Booking     request.Status[domain.Booking]
}

func NewState(cart domain.DraftCart) State {
	return State{
		Cart:        cart,
		Stashpoints: request.Loading[[]domain.Stashpoint](),
		Quote:       request.Idle[domain.PriceQuote](),
		Booking:     request.Idle[domain.Booking](),
	}
}

// View returns the fetched stashpoints ordered by f with the selected row
// marked. It is empty until the stashpoint fetch succeeds.
func (s State) View(f stashpoint.Filter) []stashpoint.Row {
	list, ok := s.Stashpoints.Value()
	if !ok {
		return nil
	}
	return stashpoint.NewView(list, f, s.Cart.StashpointID)
}

// SelectedStashpoint resolves the cart's weak reference against the fetched
// collection.
func (s State) SelectedStashpoint() (domain.Stashpoint, bool) {
	list, ok := s.Stashpoints.Value()
	if !ok || !s.Cart.HasStashpoint() {
		return domain.Stashpoint{}, false
	}
	return stashpoint.Find(list, s.Cart.StashpointID)
}
