package domain

type PriceQuote struct {
	TotalPrice   float64
	CurrencyCode string
}

type Booking struct {
	ID           string
	Stashpoint   Stashpoint
	DateRange    DateRange
	BagCount     int
	TotalPrice   float64
	CurrencyCode string
}

type Payment struct {
	ID        string
	BookingID string
	Status    string
}

const (
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
)
