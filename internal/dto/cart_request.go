package dto

import "stasher/internal/domain"

// CartRequest is the body of POST /api/quotes and POST /api/bookings.
type CartRequest struct {
	BagCount     int          `json:"bagCount"`
	DateRange    DateRangeDTO `json:"dateRange"`
	StashpointID string       `json:"stashpointId"`
}

func NewCartRequest(cart domain.DraftCart) CartRequest {
	return CartRequest{
		BagCount: cart.BagCount,
		DateRange: DateRangeDTO{
			From: FormatDate(cart.DateRange.From),
			To:   FormatDate(cart.DateRange.To),
		},
		StashpointID: cart.StashpointID,
	}
}

type PaymentRequest struct {
	BookingID string `json:"bookingId"`
}
