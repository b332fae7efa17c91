package dto

import "stasher/internal/domain"

type PriceQuoteDTO struct {
	TotalPrice   *float64 `json:"totalPrice"`
	CurrencyCode *string  `json:"currencyCode"`
}

func DecodePriceQuote(body []byte) (*domain.PriceQuote, error) {
	var raw PriceQuoteDTO
	if err := unmarshalPayload("PriceQuote", body, &raw); err != nil {
		return nil, err
	}

	c := &detailCollector{}
	quote := &domain.PriceQuote{
		TotalPrice:   c.requireNumber("totalPrice", raw.TotalPrice),
		CurrencyCode: c.requireCurrency("currencyCode", raw.CurrencyCode),
	}
	if quote.TotalPrice < 0 {
		c.add("totalPrice", "must not be negative")
	}
	if err := c.err("PriceQuote"); err != nil {
		return nil, err
	}
	return quote, nil
}

type PriceQuoteResponse struct {
	TotalPrice   float64 `json:"totalPrice"`
	CurrencyCode string  `json:"currencyCode"`
}

func NewPriceQuoteResponse(q domain.PriceQuote) PriceQuoteResponse {
	return PriceQuoteResponse{
		TotalPrice:   q.TotalPrice,
		CurrencyCode: q.CurrencyCode,
	}
}
