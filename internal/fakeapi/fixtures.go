package fakeapi

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"stasher/internal/domain"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type StashpointFixture struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Address         string  `yaml:"address"`
	Rating          float64 `yaml:"rating"`
	BagPerDayPrice  float64 `yaml:"bag_per_day_price"`
	CurrencyCode    string  `yaml:"currency_code"`
	DeclinePayments bool    `yaml:"decline_payments"`
}

func (f StashpointFixture) toDomain() domain.Stashpoint {
	return domain.Stashpoint{
		ID:             f.ID,
		Name:           f.Name,
		Address:        f.Address,
		Rating:         f.Rating,
		BagPerDayPrice: f.BagPerDayPrice,
		CurrencyCode:   f.CurrencyCode,
	}
}

type Fixtures struct {
	Stashpoints []StashpointFixture `yaml:"stashpoints"`
}

// LoadFixtures reads fixtures from path, or the built-in set when path is
// empty.
func LoadFixtures(path string) (*Fixtures, error) {
	data := defaultFixtures
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading fixtures: %w", err)
		}
	}
	return ParseFixtures(data)
}

func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	seen := make(map[string]bool, len(f.Stashpoints))
	for i, sp := range f.Stashpoints {
		if sp.ID == "" {
			return nil, fmt.Errorf("stashpoint %d has no id", i)
		}
		if seen[sp.ID] {
			return nil, fmt.Errorf("duplicate stashpoint id %q", sp.ID)
		}
		seen[sp.ID] = true
	}
	return &f, nil
}
