package dto

import (
	"strconv"

	"stasher/internal/domain"
)

type StashpointDTO struct {
	ID             *string  `json:"id"`
	Name           *string  `json:"name"`
	Address        *string  `json:"address"`
	Rating         *float64 `json:"rating"`
	BagPerDayPrice *float64 `json:"bagPerDayPrice"`
	CurrencyCode   *string  `json:"currencyCode"`
}

func (s StashpointDTO) toDomain(c *detailCollector) domain.Stashpoint {
	sp := domain.Stashpoint{
		ID:             c.requireString("id", s.ID),
		Name:           c.requireString("name", s.Name),
		Rating:         c.requireNumber("rating", s.Rating),
		BagPerDayPrice: c.requireNumber("bagPerDayPrice", s.BagPerDayPrice),
		CurrencyCode:   c.requireCurrency("currencyCode", s.CurrencyCode),
	}
	if s.Address != nil {
		sp.Address = *s.Address
	}
	if sp.BagPerDayPrice < 0 {
		c.add("bagPerDayPrice", "must not be negative")
	}
	return sp
}

// DecodeStashpoints validates a GET /api/stashpoints response.
func DecodeStashpoints(body []byte) ([]domain.Stashpoint, error) {
	var raw []StashpointDTO
	if err := unmarshalPayload("Stashpoints", body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		c := &detailCollector{}
		c.add("body", "must be an array")
		return nil, c.err("Stashpoints")
	}

	c := &detailCollector{}
	out := make([]domain.Stashpoint, 0, len(raw))
	for i, item := range raw {
		c.prefix = "[" + strconv.Itoa(i) + "]."
		out = append(out, item.toDomain(c))
	}
	if err := c.err("Stashpoints"); err != nil {
		return nil, err
	}
	return out, nil
}

type StashpointResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Rating         float64 `json:"rating"`
	BagPerDayPrice float64 `json:"bagPerDayPrice"`
	CurrencyCode   string  `json:"currencyCode"`
}

func NewStashpointResponse(sp domain.Stashpoint) StashpointResponse {
	return StashpointResponse{
		ID:             sp.ID,
		Name:           sp.Name,
		Address:        sp.Address,
		Rating:         sp.Rating,
		BagPerDayPrice: sp.BagPerDayPrice,
		CurrencyCode:   sp.CurrencyCode,
	}
}
