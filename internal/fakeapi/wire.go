package fakeapi

import (
	"fmt"

	"go.uber.org/zap"

	"stasher/internal/config"
)

func NewModule(cfg *config.Config, logger *zap.Logger) (*Controller, error) {
	fixtures, err := LoadFixtures(cfg.FakeAPI.FixturesPath)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Session.TimeLocation()
	if err != nil {
		return nil, fmt.Errorf("loading location: %w", err)
	}
	logger.Info("fixtures loaded", zap.Int("stashpoints", len(fixtures.Stashpoints)))
	return NewController(NewStore(fixtures), loc, logger), nil
}
