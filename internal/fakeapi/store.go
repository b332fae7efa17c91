package fakeapi

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"stasher/internal/domain"
	apperrors "stasher/internal/errors"
)

// Store holds the fixture stashpoints and the bookings made against them.
type Store struct {
	stashpoints []StashpointFixture
	byID        map[string]StashpointFixture

	mu       sync.Mutex
	bookings map[string]domain.Booking
	payments map[string]domain.Payment
}

func NewStore(f *Fixtures) *Store {
	byID := make(map[string]StashpointFixture, len(f.Stashpoints))
	for _, sp := range f.Stashpoints {
		byID[sp.ID] = sp
	}
	return &Store{
		stashpoints: f.Stashpoints,
		byID:        byID,
		bookings:    make(map[string]domain.Booking),
		payments:    make(map[string]domain.Payment),
	}
}

func (s *Store) Stashpoints() []domain.Stashpoint {
	out := make([]domain.Stashpoint, len(s.stashpoints))
	for i, sp := range s.stashpoints {
		out[i] = sp.toDomain()
	}
	return out
}

// Quote prices a cart as bags × days × the stashpoint's daily rate.
func (s *Store) Quote(cart domain.DraftCart) (domain.PriceQuote, error) {
	sp, ok := s.byID[cart.StashpointID]
	if !ok {
		return domain.PriceQuote{}, apperrors.NewNotFoundError("stashpoint " + cart.StashpointID + " not found")
	}
	total := float64(cart.BagCount) * float64(cart.DateRange.Days()) * sp.BagPerDayPrice
	return domain.PriceQuote{
		TotalPrice:   math.Round(total*100) / 100,
		CurrencyCode: sp.CurrencyCode,
	}, nil
}

func (s *Store) CreateBooking(cart domain.DraftCart) (domain.Booking, error) {
	quote, err := s.Quote(cart)
	if err != nil {
		return domain.Booking{}, err
	}

	b := domain.Booking{
		ID:           uuid.NewString(),
		Stashpoint:   s.byID[cart.StashpointID].toDomain(),
		DateRange:    cart.DateRange,
		BagCount:     cart.BagCount,
		TotalPrice:   quote.TotalPrice,
		CurrencyCode: quote.CurrencyCode,
	}

	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()
	return b, nil
}

// Pay settles a booking. Stashpoints flagged in the fixtures decline every
// payment.
func (s *Store) Pay(bookingID string) (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return domain.Payment{}, apperrors.NewNotFoundError("booking " + bookingID + " not found")
	}

	status := domain.PaymentStatusSucceeded
	if s.byID[b.Stashpoint.ID].DeclinePayments {
		status = domain.PaymentStatusFailed
	}
	p := domain.Payment{ID: uuid.NewString(), BookingID: bookingID, Status: status}
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) Booking(id string) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}
