package dto

import (
	"encoding/json"
	"time"

	"stasher/internal/domain"
	apperrors "stasher/internal/errors"
	"stasher/internal/request"
)

type StatusResponse[T any] struct {
	IsLoading    bool   `json:"isLoading"`
	IsError      bool   `json:"isError"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Data         *T     `json:"data,omitempty"`
}

func NewStatusResponse[T, R any](s request.Status[T], conv func(T) R) StatusResponse[R] {
	out := StatusResponse[R]{
		IsLoading:    s.IsLoading,
		IsError:      s.IsError,
		ErrorMessage: s.ErrorMessage,
	}
	if v, ok := s.Value(); ok {
		r := conv(v)
		out.Data = &r
	}
	return out
}

type CartResponse struct {
	BagCount     int          `json:"bagCount"`
	DateRange    DateRangeDTO `json:"dateRange"`
	StashpointID string       `json:"stashpointId,omitempty"`
}

func NewCartResponse(c domain.DraftCart) CartResponse {
	return CartResponse{
		BagCount: c.BagCount,
		DateRange: DateRangeDTO{
			From: FormatDate(c.DateRange.From),
			To:   FormatDate(c.DateRange.To),
		},
		StashpointID: c.StashpointID,
	}
}

type StateResponse struct {
	SessionID          string                               `json:"sessionId,omitempty"`
	Cart               CartResponse                         `json:"cart"`
	Stashpoints        StatusResponse[[]StashpointResponse] `json:"stashpoints"`
	Quote              StatusResponse[PriceQuoteResponse]   `json:"quote"`
	Booking            StatusResponse[BookingResponse]      `json:"booking"`
	// SelectedStashpoint is the cart's selection resolved against the fetched
	// list; absent until both exist.
	SelectedStashpoint *StashpointResponse                  `json:"selectedStashpoint,omitempty"`
}

type StashpointRowResponse struct {
	StashpointResponse
	Selected bool `json:"selected"`
}

type StashpointListResponse struct {
	Property string                  `json:"property"`
	Order    string                  `json:"order"`
	Rows     []StashpointRowResponse `json:"rows"`
}

// CartUpdateRequest is the body of PATCH /session/cart, one field at a time.
type CartUpdateRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ToDomain maps the request to a cart update. Only structurally broken bodies
// are errors; out-of-range values are left to the cart to reject, and dates
// that do not parse become zero dates that the cart rejects the same way.
func (r CartUpdateRequest) ToDomain(loc *time.Location) (domain.CartUpdate, error) {
	switch domain.CartField(r.Key) {
	case domain.CartFieldBagCount:
		var n float64
		if err := json.Unmarshal(r.Value, &n); err != nil {
			return domain.CartUpdate{}, apperrors.NewValidationError("invalid cart update", apperrors.ValidationDetail{
				Field:   "value",
				Message: "bagCount must be a number",
			})
		}
		return domain.UpdateBagCount(n), nil
	case domain.CartFieldDateRange:
		var raw DateRangeDTO
		if err := json.Unmarshal(r.Value, &raw); err != nil {
			return domain.CartUpdate{}, apperrors.NewValidationError("invalid cart update", apperrors.ValidationDetail{
				Field:   "value",
				Message: "dateRange must be an object with from and to",
			})
		}
		from, _ := ParseDate(raw.From, loc)
		to, _ := ParseDate(raw.To, loc)
		return domain.UpdateDateRange(domain.DateRange{From: from, To: to}), nil
	}
	return domain.CartUpdate{}, apperrors.NewValidationError("invalid cart update", apperrors.ValidationDetail{
		Field:   "key",
		Message: "key must be bagCount or dateRange",
	})
}

type SelectionRequest struct {
	StashpointID string `json:"stashpointId"`
}

type CartUpdateResponse struct {
	Accepted bool          `json:"accepted"`
	State    StateResponse `json:"state"`
}
