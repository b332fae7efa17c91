package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"stasher/internal/booking"
	"stasher/internal/config"
	"stasher/internal/infrastructure/stasherapi"
)

// NewModule wires the session server. Each session gets its own API client so
// cookies set by the booking API never cross sessions.
func NewModule(cfg *config.Config, logger *zap.Logger) (*Controller, *Manager, error) {
	loc, err := cfg.Session.TimeLocation()
	if err != nil {
		return nil, nil, fmt.Errorf("loading session location: %w", err)
	}
	clock := func() time.Time { return time.Now().In(loc) }

	factory := func(l *zap.Logger) (*booking.Controller, error) {
		client, err := stasherapi.New(cfg.API.BaseURL, cfg.API.RequestTimeout, loc, l)
		if err != nil {
			return nil, err
		}
		return booking.NewController(client, clock, l), nil
	}

	manager := NewManager(factory, Options{
		PurchaseRate:  cfg.Session.PurchaseRate,
		PurchaseBurst: cfg.Session.PurchaseBurst,
		IdleTimeout:   cfg.Session.IdleTimeout,
		MaxSessions:   cfg.Session.MaxSessions,
	}, logger)
	ctrl := NewController(manager, cfg.Session.CookieName, loc, cfg.Server.CORSAllowedOrigins, logger)
	return ctrl, manager, nil
}
