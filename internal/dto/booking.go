package dto

import (
	"time"

	"stasher/internal/domain"
)

type BookingDTO struct {
	ID         *string        `json:"id"`
	Stashpoint *StashpointDTO `json:"stashpoint"`
	DateRange  *struct {
		From *string `json:"from"`
		To   *string `json:"to"`
	} `json:"dateRange"`
	BagCount     *float64 `json:"bagCount"`
	TotalPrice   *float64 `json:"totalPrice"`
	CurrencyCode *string  `json:"currencyCode"`
}

// DecodeBooking validates a POST /api/bookings response. Dates are read as
// calendar days in loc.
func DecodeBooking(body []byte, loc *time.Location) (*domain.Booking, error) {
	var raw BookingDTO
	if err := unmarshalPayload("Booking", body, &raw); err != nil {
		return nil, err
	}

	c := &detailCollector{}
	booking := &domain.Booking{
		ID:           c.requireString("id", raw.ID),
		TotalPrice:   c.requireNumber("totalPrice", raw.TotalPrice),
		CurrencyCode: c.requireCurrency("currencyCode", raw.CurrencyCode),
	}

	bagCount := c.requireNumber("bagCount", raw.BagCount)
	if raw.BagCount != nil && !domain.IsBagCountValid(bagCount) {
		c.add("bagCount", "must be a whole number between 1 and 50")
	}
	booking.BagCount = int(bagCount)

	if raw.Stashpoint == nil {
		c.add("stashpoint", "is required")
	} else {
		c.prefix = "stashpoint."
		booking.Stashpoint = raw.Stashpoint.toDomain(c)
		c.prefix = ""
	}

	if raw.DateRange == nil {
		c.add("dateRange", "is required")
	} else {
		booking.DateRange = domain.DateRange{
			From: c.requireDate("dateRange.from", raw.DateRange.From, loc),
			To:   c.requireDate("dateRange.to", raw.DateRange.To, loc),
		}
	}

	if err := c.err("Booking"); err != nil {
		return nil, err
	}
	return booking, nil
}

type BookingResponse struct {
	ID           string             `json:"id"`
	Stashpoint   StashpointResponse `json:"stashpoint"`
	DateRange    DateRangeDTO       `json:"dateRange"`
	BagCount     int                `json:"bagCount"`
	TotalPrice   float64            `json:"totalPrice"`
	CurrencyCode string             `json:"currencyCode"`
}

func NewBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		Stashpoint: NewStashpointResponse(b.Stashpoint),
		DateRange: DateRangeDTO{
			From: FormatDate(b.DateRange.From),
			To:   FormatDate(b.DateRange.To),
		},
		BagCount:     b.BagCount,
		TotalPrice:   b.TotalPrice,
		CurrencyCode: b.CurrencyCode,
	}
}
