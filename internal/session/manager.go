package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stasher/internal/booking"
	"stasher/internal/infrastructure/metrics"
	"stasher/internal/stashpoint"
)

var (
	ErrClosed          = errors.New("session manager is closed")
	ErrTooManySessions = errors.New("session limit reached")
)

const orderToggle = "toggle"

// ControllerFactory builds the booking controller backing a new session. The
// logger already carries the session id.
type ControllerFactory func(logger *zap.Logger) (*booking.Controller, error)

// Options bounds what a Manager holds. Zero IdleTimeout or MaxSessions turn
// the respective limit off.
type Options struct {
	PurchaseRate  float64
	PurchaseBurst int
	IdleTimeout   time.Duration
	MaxSessions   int
}

// Session is one browser's booking flow.
type Session struct {
	ID         string
	Controller *booking.Controller

	purchases *rate.Limiter
	clock     func() time.Time
	lastSeen  atomic.Int64
	streams   atomic.Int32

	mu     sync.Mutex
	filter stashpoint.Filter
}

// AllowPurchase reports whether the session may submit another purchase now.
func (s *Session) AllowPurchase() bool {
	return s.purchases.Allow()
}

// ListFilter applies a list query to the filter the session remembers and
// returns the result. Empty values keep the current setting and the order
// "toggle" flips it.
func (s *Session) ListFilter(property, order string) stashpoint.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if property != "" {
		s.filter.Property = stashpoint.Property(property)
	}
	switch o := stashpoint.Order(order); o {
	case stashpoint.OrderAsc, stashpoint.OrderDesc:
		s.filter.Order = o
	case orderToggle:
		s.filter = s.filter.Toggle()
	}
	return s.filter
}

// OpenStream marks a live event stream. Sessions with an open stream are never
// evicted as idle; the returned func releases the mark.
func (s *Session) OpenStream() func() {
	s.streams.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.touch()
			s.streams.Add(-1)
		})
	}
}

func (s *Session) touch() {
	s.lastSeen.Store(s.clock().UnixNano())
}

func (s *Session) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Manager keeps one booking controller per session id.
type Manager struct {
	newController ControllerFactory
	opts          Options
	clock         func() time.Time
	logger        *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	stop      chan struct{}
	sweepDone chan struct{}
}

func NewManager(factory ControllerFactory, opts Options, logger *zap.Logger) *Manager {
	return newManager(factory, opts, time.Now, logger)
}

func newManager(factory ControllerFactory, opts Options, clock func() time.Time, logger *zap.Logger) *Manager {
	m := &Manager{
		newController: factory,
		opts:          opts,
		clock:         clock,
		logger:        logger,
		sessions:      make(map[string]*Session),
		stop:          make(chan struct{}),
	}
	if opts.IdleTimeout > 0 {
		m.sweepDone = make(chan struct{})
		go m.sweep(sweepInterval(opts.IdleTimeout))
	}
	return m
}

func sweepInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}

// Get returns a live session and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.touch()
	}
	return s, ok
}

// Create starts a new session and kicks off its stashpoint fetch.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	logger := m.logger.With(zap.String("sessionId", id))
	ctrl, err := m.newController(logger)
	if err != nil {
		return nil, fmt.Errorf("creating booking controller: %w", err)
	}
	s := &Session{
		ID:         id,
		Controller: ctrl,
		purchases:  rate.NewLimiter(rate.Limit(m.opts.PurchaseRate), m.opts.PurchaseBurst),
		clock:      m.clock,
		filter:     stashpoint.DefaultFilter(),
	}
	s.touch()
	m.sessions[id] = s
	metrics.ActiveSessions.Inc()

	s.Controller.Load()
	logger.Info("session started")
	return s, nil
}

// Remove ends a session, aborting whatever it still has in flight.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		metrics.ActiveSessions.Dec()
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Controller.Close()
	m.logger.Info("session ended", zap.String("sessionId", id))
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the idle sweep, ends every session and refuses new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.stop)
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	metrics.ActiveSessions.Sub(float64(len(sessions)))
	m.mu.Unlock()

	if m.sweepDone != nil {
		<-m.sweepDone
	}
	closeAll(sessions)
	m.logger.Info("sessions closed", zap.Int("count", len(sessions)))
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.sweepDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

// evictIdle ends every session without an open stream that has not been seen
// for the idle timeout.
func (m *Manager) evictIdle() int {
	now := m.clock()

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.streams.Load() == 0 && s.idleFor(now) >= m.opts.IdleTimeout {
			delete(m.sessions, id)
			idle = append(idle, s)
		}
	}
	metrics.ActiveSessions.Sub(float64(len(idle)))
	m.mu.Unlock()

	if len(idle) > 0 {
		closeAll(idle)
		m.logger.Info("idle sessions evicted", zap.Int("count", len(idle)))
	}
	return len(idle)
}

func closeAll(sessions []*Session) {
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Controller.Close()
		}(s)
	}
	wg.Wait()
}
