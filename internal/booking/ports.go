package booking

import (
	"context"

	"stasher/internal/domain"
)

// API is the booking backend as seen by the controller. Errors are either
// transport failures or payload validation failures; both end in a failed
// request slot.
type API interface {
	FetchStashpoints(ctx context.Context) ([]domain.Stashpoint, error)
	RequestQuote(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error)
	CreateBooking(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error)
	SubmitPayment(ctx context.Context, bookingID string) (*domain.Payment, error)
}
