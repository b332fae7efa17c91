package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"stasher/internal/domain"
	"stasher/internal/infrastructure/metrics"
	"stasher/internal/request"
)

const (
	outcomeBooked        = "booked"
	outcomeBookingFailed = "booking_failed"
	outcomePaymentFailed = "payment_failed"
)

// Clock returns the current time in the zone that defines "today".
type Clock func() time.Time

// Controller owns one booking session: the draft cart and the stashpoint,
// quote and booking request slots. Triggers return immediately; responses are
// folded into the state from background goroutines under a single lock.
type Controller struct {
	api    API
	now    Clock
	logger *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	loadOnce sync.Once
	inflight sync.WaitGroup

	mu          sync.Mutex
	state       State
	closed      bool
	quoteGen    uint64
	cancelQuote context.CancelFunc
	subscribers map[int]chan State
	nextSubID   int
}

func NewController(api API, now Clock, logger *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:         api,
		now:         now,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		state:       NewState(domain.NewDraftCart(now())),
		subscribers: make(map[int]chan State),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches the stashpoint collection. Only the first call has an effect;
// a failed fetch stays failed for the lifetime of the controller.
func (c *Controller) Load() {
	c.loadOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}

		c.state.Stashpoints = c.state.Stashpoints.Refetch()
		c.publishLocked()

		c.goAsync(func() {
			list, err := c.api.FetchStashpoints(c.ctx)

			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed {
				return
			}
			if err != nil {
				c.logger.Error("loading stashpoints failed", zap.Error(err))
				c.state.Stashpoints = request.Failed[[]domain.Stashpoint](err.Error())
			} else {
				c.logger.Info("stashpoints loaded", zap.Int("count", len(list)))
				c.state.Stashpoints = request.Succeeded(list)
			}
			c.publishLocked()
		})
	})
}

// UpdateCart applies a bag count or date range change. Invalid values leave
// the cart untouched and report false.
func (c *Controller) UpdateCart(u domain.CartUpdate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	cart, ok := c.state.Cart.Apply(u, c.now())
	if !ok {
		c.logger.Debug("cart update rejected", zap.String("field", string(u.Field)))
		return false
	}
	c.setCartLocked(cart)
	return true
}

func (c *Controller) SelectStashpoint(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.setCartLocked(c.state.Cart.WithStashpoint(id))
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.setCartLocked(c.state.Cart.WithoutStashpoint())
}

// Purchase books the current cart and pays for the booking. It does nothing
// without a selected stashpoint or while a purchase is already in flight.
func (c *Controller) Purchase() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.state.Cart.HasStashpoint() || c.state.Booking.IsLoading {
		return
	}

	cart := c.state.Cart
	logger := c.logger.With(zap.String("stashpointId", cart.StashpointID), zap.Int("bagCount", cart.BagCount))
	logger.Info("purchase started")

	c.state.Booking = c.state.Booking.Refetch()
	c.publishLocked()

	c.goAsync(func() {
		booking, err := c.api.CreateBooking(c.ctx, cart)
		if err != nil {
			logger.Warn("booking failed", zap.Error(err))
			c.finishPurchase(request.Failed[domain.Booking](err.Error()), outcomeBookingFailed)
			return
		}

		logger = logger.With(zap.String("bookingId", booking.ID))
		if _, err := c.api.SubmitPayment(c.ctx, booking.ID); err != nil {
			logger.Warn("payment failed", zap.Error(err))
			c.finishPurchase(request.Failed[domain.Booking](err.Error()).WithData(*booking), outcomePaymentFailed)
			return
		}

		logger.Info("booking paid")
		c.finishPurchase(request.Succeeded(*booking), outcomeBooked)
	})
}

// Subscribe streams a snapshot after every state change, starting with the
// current one. Slow readers only ever see the latest snapshot.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan State, 1)
	ch <- c.state
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// Wait blocks until every request issued so far has been folded into the
// state.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close aborts outstanding requests, waits for their goroutines and ends all
// subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, sub := range c.subscribers {
		delete(c.subscribers, id)
		close(sub)
	}
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()
}

func (c *Controller) setCartLocked(cart domain.DraftCart) {
	c.state.Cart = cart
	c.refreshQuoteLocked()
	c.publishLocked()
}

// refreshQuoteLocked reacts to a cart change. Every call starts a new quote
// generation, so a response from an earlier one is dropped on arrival.
func (c *Controller) refreshQuoteLocked() {
	c.quoteGen++
	gen := c.quoteGen
	if c.cancelQuote != nil {
		c.cancelQuote()
		c.cancelQuote = nil
	}

	cart := c.state.Cart
	if !cart.HasStashpoint() {
		c.state.Quote = request.Idle[domain.PriceQuote]()
		return
	}

	if c.state.Booking.HasData() {
		c.state.Booking = c.state.Booking.WithoutData()
	}
	c.state.Quote = c.state.Quote.Refetch()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelQuote = cancel

	c.goAsync(func() {
		defer cancel()
		quote, err := c.api.RequestQuote(ctx, cart)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		if gen != c.quoteGen {
			metrics.StaleQuotesDiscarded.Inc()
			c.logger.Debug("discarding stale quote", zap.Uint64("generation", gen), zap.Uint64("latest", c.quoteGen))
			return
		}
		c.cancelQuote = nil
		if err != nil {
			c.logger.Warn("quote failed", zap.String("stashpointId", cart.StashpointID), zap.Error(err))
		}
		c.state.Quote = request.Resolve(quote, err)
		c.publishLocked()
	})
}

func (c *Controller) finishPurchase(status request.Status[domain.Booking], outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	metrics.BookingsCompleted.WithLabelValues(outcome).Inc()
	c.state.Booking = status
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	for _, sub := range c.subscribers {
		select {
		case <-sub:
		default:
		}
		sub <- c.state
	}
}

func (c *Controller) goAsync(fn func()) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn()
	}()
}
