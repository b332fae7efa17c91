package booking

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stasher/internal/domain"
	apperrors "stasher/internal/errors"
	"stasher/internal/stashpoint"
)

var testNow = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// Mock implementations
type mockAPI struct {
	FetchStashpointsFunc func(ctx context.Context) ([]domain.Stashpoint, error)
	RequestQuoteFunc     func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error)
	CreateBookingFunc    func(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error)
	SubmitPaymentFunc    func(ctx context.Context, bookingID string) (*domain.Payment, error)

	fetchCalls   atomic.Int32
	quoteCalls   atomic.Int32
	bookingCalls atomic.Int32
	paymentCalls atomic.Int32
}

func (m *mockAPI) FetchStashpoints(ctx context.Context) ([]domain.Stashpoint, error) {
	m.fetchCalls.Add(1)
	return m.FetchStashpointsFunc(ctx)
}

func (m *mockAPI) RequestQuote(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
	m.quoteCalls.Add(1)
	return m.RequestQuoteFunc(ctx, cart)
}

func (m *mockAPI) CreateBooking(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error) {
	m.bookingCalls.Add(1)
	return m.CreateBookingFunc(ctx, cart)
}

func (m *mockAPI) SubmitPayment(ctx context.Context, bookingID string) (*domain.Payment, error) {
	m.paymentCalls.Add(1)
	return m.SubmitPaymentFunc(ctx, bookingID)
}

var kingsCross = domain.Stashpoint{
	ID:             "sp-x",
	Name:           "Kings Cross Cafe",
	Address:        "1 Euston Road",
	Rating:         4.6,
	BagPerDayPrice: 6.5,
	CurrencyCode:   "GBP",
}

func newHappyAPI() *mockAPI {
	return &mockAPI{
		FetchStashpointsFunc: func(ctx context.Context) ([]domain.Stashpoint, error) {
			return []domain.Stashpoint{kingsCross}, nil
		},
		RequestQuoteFunc: func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
			return &domain.PriceQuote{TotalPrice: 42.50, CurrencyCode: "GBP"}, nil
		},
		CreateBookingFunc: func(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error) {
			return &domain.Booking{
				ID:           "bk-1",
				Stashpoint:   kingsCross,
				DateRange:    cart.DateRange,
				BagCount:     cart.BagCount,
				TotalPrice:   42.50,
				CurrencyCode: "GBP",
			}, nil
		},
		SubmitPaymentFunc: func(ctx context.Context, bookingID string) (*domain.Payment, error) {
			return &domain.Payment{ID: "pay-1", BookingID: bookingID, Status: domain.PaymentStatusSucceeded}, nil
		},
	}
}

func newTestController(t *testing.T, api API) *Controller {
	t.Helper()
	c := NewController(api, fixedClock, zap.NewNop())
	t.Cleanup(c.Close)
	return c
}

func TestController_InitialState(t *testing.T) {
	c := newTestController(t, newHappyAPI())

	s := c.State()

	assert.Equal(t, domain.NewDraftCart(testNow), s.Cart)
	assert.True(t, s.Stashpoints.IsLoading)
	assert.False(t, s.Quote.IsLoading)
	assert.False(t, s.Booking.IsLoading)
}

func TestController_LoadSuccess(t *testing.T) {
	api := newHappyAPI()
	c := newTestController(t, api)

	c.Load()
	c.Load()
	c.Wait()

	s := c.State()
	assert.False(t, s.Stashpoints.IsLoading)
	assert.False(t, s.Stashpoints.IsError)
	list, ok := s.Stashpoints.Value()
	require.True(t, ok)
	assert.Equal(t, []domain.Stashpoint{kingsCross}, list)
	assert.Equal(t, int32(1), api.fetchCalls.Load(), "stashpoints are fetched exactly once")
}

func TestController_LoadFailureIsTerminal(t *testing.T) {
	api := newHappyAPI()
	api.FetchStashpointsFunc = func(ctx context.Context) ([]domain.Stashpoint, error) {
		return nil, apperrors.NewValidationError("invalid Stashpoints payload")
	}
	c := newTestController(t, api)

	c.Load()
	c.Wait()
	c.Load()
	c.Wait()

	s := c.State()
	assert.True(t, s.Stashpoints.IsError)
	assert.False(t, s.Stashpoints.IsLoading)
	assert.Equal(t, "invalid Stashpoints payload", s.Stashpoints.ErrorMessage)
	assert.Nil(t, s.Stashpoints.Data)
	assert.Equal(t, int32(1), api.fetchCalls.Load())
}

func TestController_SelectTriggersQuote(t *testing.T) {
	api := newHappyAPI()
	var sent domain.DraftCart
	api.RequestQuoteFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
		sent = cart
		return &domain.PriceQuote{TotalPrice: 13, CurrencyCode: "GBP"}, nil
	}
	c := newTestController(t, api)

	c.SelectStashpoint("sp-x")
	assert.True(t, c.State().Quote.IsLoading)
	c.Wait()

	s := c.State()
	assert.Equal(t, "sp-x", sent.StashpointID)
	assert.Equal(t, s.Cart, sent)
	assert.False(t, s.Quote.IsLoading)
	assert.Equal(t, 13.0, s.Quote.Data.TotalPrice)
}

func TestController_InvalidUpdateIsNoop(t *testing.T) {
	api := newHappyAPI()
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.Wait()
	before := c.State()
	calls := api.quoteCalls.Load()

	assert.False(t, c.UpdateCart(domain.UpdateBagCount(0)))
	assert.False(t, c.UpdateCart(domain.UpdateBagCount(3.5)))
	assert.False(t, c.UpdateCart(domain.UpdateDateRange(domain.DateRange{
		From: domain.StartOfDay(testNow),
		To:   domain.StartOfDay(testNow).AddDate(0, 0, 2),
	})))
	c.Wait()

	assert.Equal(t, before, c.State())
	assert.Equal(t, calls, api.quoteCalls.Load(), "rejected edits must not request a quote")
}

func TestController_ValidUpdateRequotes(t *testing.T) {
	api := newHappyAPI()
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.Wait()

	assert.True(t, c.UpdateCart(domain.UpdateBagCount(4)))
	c.Wait()

	assert.Equal(t, 4, c.State().Cart.BagCount)
	assert.Equal(t, int32(2), api.quoteCalls.Load())
}

func TestController_UpdateWithoutSelectionDoesNotQuote(t *testing.T) {
	api := newHappyAPI()
	c := newTestController(t, api)

	assert.True(t, c.UpdateCart(domain.UpdateBagCount(2)))
	c.Wait()

	assert.Equal(t, int32(0), api.quoteCalls.Load())
	assert.Nil(t, c.State().Quote.Data)
}

func TestController_RefetchKeepsPreviousQuoteVisible(t *testing.T) {
	api := newHappyAPI()
	release := make(chan struct{})
	api.RequestQuoteFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
		if cart.BagCount == 2 {
			<-release
		}
		return &domain.PriceQuote{TotalPrice: float64(cart.BagCount) * 10, CurrencyCode: "GBP"}, nil
	}
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.Wait()

	c.UpdateCart(domain.UpdateBagCount(2))

	s := c.State()
	assert.True(t, s.Quote.IsLoading)
	require.NotNil(t, s.Quote.Data)
	assert.Equal(t, 10.0, s.Quote.Data.TotalPrice)

	close(release)
	c.Wait()
	assert.Equal(t, 20.0, c.State().Quote.Data.TotalPrice)
}

func TestController_StaleQuoteResponseIsDiscarded(t *testing.T) {
	api := newHappyAPI()
	gates := map[int]chan struct{}{
		1: make(chan struct{}),
		2: make(chan struct{}),
	}
	api.RequestQuoteFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
		<-gates[cart.BagCount]
		return &domain.PriceQuote{TotalPrice: float64(cart.BagCount) * 10, CurrencyCode: "GBP"}, nil
	}
	c := newTestController(t, api)

	// A carries one bag, B two; B resolves first.
	c.SelectStashpoint("sp-x")
	require.True(t, c.UpdateCart(domain.UpdateBagCount(2)))

	close(gates[2])
	require.Eventually(t, func() bool {
		s := c.State()
		return !s.Quote.IsLoading && s.Quote.Data != nil
	}, time.Second, 5*time.Millisecond)

	close(gates[1])
	c.Wait()

	s := c.State()
	assert.False(t, s.Quote.IsLoading)
	assert.Equal(t, 20.0, s.Quote.Data.TotalPrice, "quote must belong to the latest cart")
}

func TestController_StaleQuoteDoesNotEndLoading(t *testing.T) {
	api := newHappyAPI()
	gates := map[int]chan struct{}{
		1: make(chan struct{}),
		2: make(chan struct{}),
	}
	api.RequestQuoteFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
		<-gates[cart.BagCount]
		return &domain.PriceQuote{TotalPrice: float64(cart.BagCount) * 10, CurrencyCode: "GBP"}, nil
	}
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.UpdateCart(domain.UpdateBagCount(2))

	close(gates[1])
	// Give the stale response time to arrive; it must leave the slot loading.
	time.Sleep(20 * time.Millisecond)
	s := c.State()
	assert.True(t, s.Quote.IsLoading)
	assert.Nil(t, s.Quote.Data)

	close(gates[2])
	c.Wait()
	assert.Equal(t, 20.0, c.State().Quote.Data.TotalPrice)
}

func TestController_QuoteTransportFailure(t *testing.T) {
	api := newHappyAPI()
	api.RequestQuoteFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
		return nil, apperrors.NewTransportError("POST /api/quotes", 0, "", errors.New("connection refused"))
	}
	c := newTestController(t, api)

	c.SelectStashpoint("sp-x")
	c.Wait()

	s := c.State()
	assert.False(t, s.Quote.IsLoading)
	assert.True(t, s.Quote.IsError)
	assert.Contains(t, s.Quote.ErrorMessage, "connection refused")
}

func TestController_ClearSelectionClearsQuote(t *testing.T) {
	c := newTestController(t, newHappyAPI())
	c.SelectStashpoint("sp-x")
	c.Wait()
	require.NotNil(t, c.State().Quote.Data)

	c.ClearSelection()
	c.Wait()

	s := c.State()
	assert.False(t, s.Cart.HasStashpoint())
	assert.Nil(t, s.Quote.Data)
	assert.False(t, s.Quote.IsLoading)
}

func TestController_ClearSelectionDropsPendingQuote(t *testing.T) {
	api := newHappyAPI()
	release := make(chan struct{})
	api.RequestQuoteFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
		<-release
		return &domain.PriceQuote{TotalPrice: 5, CurrencyCode: "GBP"}, nil
	}
	c := newTestController(t, api)

	c.SelectStashpoint("sp-x")
	c.ClearSelection()
	close(release)
	c.Wait()

	assert.Nil(t, c.State().Quote.Data)
}

func TestController_PurchaseWithoutSelectionIsNoop(t *testing.T) {
	api := newHappyAPI()
	c := newTestController(t, api)

	c.Purchase()
	c.Wait()

	assert.Equal(t, int32(0), api.bookingCalls.Load())
	assert.False(t, c.State().Booking.IsLoading)
}

func TestController_BookingSucceedsPaymentFails(t *testing.T) {
	api := newHappyAPI()
	api.SubmitPaymentFunc = func(ctx context.Context, bookingID string) (*domain.Payment, error) {
		return nil, apperrors.NewValidationError("invalid Payment payload", apperrors.ValidationDetail{Field: "status", Message: "payment was declined"})
	}
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.Wait()

	c.Purchase()
	c.Wait()

	s := c.State()
	require.NotNil(t, s.Booking.Data)
	assert.Equal(t, "bk-1", s.Booking.Data.ID)
	assert.True(t, s.Booking.IsError)
	assert.False(t, s.Booking.IsLoading)
	assert.Equal(t, "invalid Payment payload: status payment was declined", s.Booking.ErrorMessage)
	assert.Equal(t, int32(1), api.paymentCalls.Load())
}

func TestController_BookingFailureSkipsPayment(t *testing.T) {
	api := newHappyAPI()
	api.CreateBookingFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error) {
		return nil, apperrors.NewTransportError("POST /api/bookings", 409, "stashpoint is full", nil)
	}
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.Wait()

	c.Purchase()
	c.Wait()

	s := c.State()
	assert.True(t, s.Booking.IsError)
	assert.Nil(t, s.Booking.Data)
	assert.Contains(t, s.Booking.ErrorMessage, "stashpoint is full")
	assert.Equal(t, int32(0), api.paymentCalls.Load())

	// the user retries by purchasing again
	api.CreateBookingFunc = newHappyAPI().CreateBookingFunc
	c.Purchase()
	c.Wait()
	assert.False(t, c.State().Booking.IsError)
	assert.NotNil(t, c.State().Booking.Data)
}

func TestController_PurchaseIgnoredWhileInFlight(t *testing.T) {
	api := newHappyAPI()
	release := make(chan struct{})
	happy := api.CreateBookingFunc
	api.CreateBookingFunc = func(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error) {
		<-release
		return happy(ctx, cart)
	}
	c := newTestController(t, api)
	c.SelectStashpoint("sp-x")
	c.Wait()

	c.Purchase()
	c.Purchase()
	assert.True(t, c.State().Booking.IsLoading)

	close(release)
	c.Wait()
	assert.Equal(t, int32(1), api.bookingCalls.Load())
}

func TestController_CartEditClearsCompletedBooking(t *testing.T) {
	c := newTestController(t, newHappyAPI())
	c.SelectStashpoint("sp-x")
	c.Wait()
	c.Purchase()
	c.Wait()
	require.NotNil(t, c.State().Booking.Data)

	c.UpdateCart(domain.UpdateBagCount(2))

	assert.Nil(t, c.State().Booking.Data)
	c.Wait()
	assert.Nil(t, c.State().Booking.Data)
}

func TestController_EndToEnd(t *testing.T) {
	api := newHappyAPI()
	c := newTestController(t, api)

	c.Load()
	c.Wait()
	rows := c.State().View(stashpoint.DefaultFilter())
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Selected)

	c.SelectStashpoint(rows[0].Stashpoint.ID)
	c.Wait()

	s := c.State()
	assert.Equal(t, 1, s.Cart.BagCount)
	assert.Equal(t, domain.NewDraftCart(testNow).DateRange, s.Cart.DateRange)
	assert.True(t, s.View(stashpoint.DefaultFilter())[0].Selected)
	assert.Equal(t, 42.50, s.Quote.Data.TotalPrice)
	assert.Equal(t, "GBP", s.Quote.Data.CurrencyCode)
	selected, ok := s.SelectedStashpoint()
	assert.True(t, ok)
	assert.Equal(t, kingsCross, selected)

	c.Purchase()
	c.Wait()

	s = c.State()
	assert.False(t, s.Booking.IsLoading)
	assert.False(t, s.Booking.IsError)
	require.NotNil(t, s.Booking.Data)
	assert.Equal(t, "bk-1", s.Booking.Data.ID)
	assert.Equal(t, kingsCross, s.Booking.Data.Stashpoint)
	assert.Equal(t, int32(1), api.paymentCalls.Load())
}

func TestController_Subscribe(t *testing.T) {
	c := newTestController(t, newHappyAPI())

	updates, cancel := c.Subscribe()
	defer cancel()

	first := <-updates
	assert.True(t, first.Stashpoints.IsLoading)

	c.Load()
	c.Wait()

	var last State
	require.Eventually(t, func() bool {
		select {
		case last = <-updates:
		default:
		}
		return last.Stashpoints.HasData()
	}, time.Second, 5*time.Millisecond)
}

func TestController_CloseEndsSubscriptions(t *testing.T) {
	c := NewController(newHappyAPI(), fixedClock, zap.NewNop())
	updates, cancel := c.Subscribe()
	<-updates

	c.Close()
	cancel()

	_, open := <-updates
	assert.False(t, open)

	c.SelectStashpoint("sp-x")
	assert.False(t, c.State().Cart.HasStashpoint(), "closed controllers ignore triggers")
}

func TestController_CloseAbortsPendingRequests(t *testing.T) {
	api := newHappyAPI()
	api.FetchStashpointsFunc = func(ctx context.Context) ([]domain.Stashpoint, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := NewController(api, fixedClock, zap.NewNop())
	c.Load()

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}
