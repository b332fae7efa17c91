package dto

import "stasher/internal/domain"

type PaymentDTO struct {
	ID        *string `json:"id"`
	BookingID *string `json:"bookingId"`
	Status    *string `json:"status"`
}

// DecodePayment validates a POST /api/payments response. A payment the server
// reports as failed is a decode failure as far as the booking is concerned.
func DecodePayment(body []byte) (*domain.Payment, error) {
	var raw PaymentDTO
	if err := unmarshalPayload("Payment", body, &raw); err != nil {
		return nil, err
	}

	c := &detailCollector{}
	payment := &domain.Payment{
		ID:        c.requireString("id", raw.ID),
		BookingID: c.requireString("bookingId", raw.BookingID),
	}
	if raw.Status != nil {
		payment.Status = *raw.Status
	}
	if payment.Status == domain.PaymentStatusFailed {
		c.add("status", "payment was declined")
	}
	if err := c.err("Payment"); err != nil {
		return nil, err
	}
	return payment, nil
}

type PaymentResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

func NewPaymentResponse(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		BookingID: p.BookingID,
		Status:    p.Status,
	}
}
