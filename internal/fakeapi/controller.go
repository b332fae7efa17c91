// Package fakeapi serves the booking API from fixtures for local development
// and tests. Pricing is bags × days × daily rate; nothing is persisted.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stasher/internal/domain"
	"stasher/internal/dto"
	apperrors "stasher/internal/errors"
)

type Controller struct {
	store  *Store
	loc    *time.Location
	logger *zap.Logger
}

func NewController(store *Store, loc *time.Location, logger *zap.Logger) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{
		store:  store,
		loc:    loc,
		logger: logger,
	}
}

// Mount registers the API routes on r.
func (c *Controller) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/stashpoints", c.HandleListStashpoints)
		r.Post("/quotes", c.HandleQuote)
		r.Post("/bookings", c.HandleCreateBooking)
		r.Post("/payments", c.HandleSubmitPayment)
	})
}

// Routes is a standalone router for the API, used under httptest.
func (c *Controller) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	c.Mount(r)
	return r
}

func (c *Controller) HandleListStashpoints(w http.ResponseWriter, r *http.Request) {
	list := c.store.Stashpoints()
	resp := make([]dto.StashpointResponse, len(list))
	for i, sp := range list {
		resp[i] = dto.NewStashpointResponse(sp)
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleQuote(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	cart, ok := c.decodeCart(w, r, logger)
	if !ok {
		return
	}

	quote, err := c.store.Quote(cart)
	if err != nil {
		c.handleStoreError(w, err, logger)
		return
	}
	logger.Debug("quote issued", zap.String("stashpointId", cart.StashpointID), zap.Float64("totalPrice", quote.TotalPrice))
	c.writeJSON(w, http.StatusOK, dto.NewPriceQuoteResponse(quote))
}

func (c *Controller) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	cart, ok := c.decodeCart(w, r, logger)
	if !ok {
		return
	}

	b, err := c.store.CreateBooking(cart)
	if err != nil {
		c.handleStoreError(w, err, logger)
		return
	}
	logger.Info("booking created", zap.String("bookingId", b.ID))
	c.writeJSON(w, http.StatusCreated, dto.NewBookingResponse(b))
}

func (c *Controller) HandleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeInvalidJSON(w)
		return
	}
	if req.BookingID == "" {
		c.writeValidationError(w, "bookingId is required", apperrors.ValidationDetail{
			Field:   "bookingId",
			Message: "bookingId must not be empty",
		})
		return
	}

	p, err := c.store.Pay(req.BookingID)
	if err != nil {
		c.handleStoreError(w, err, logger)
		return
	}
	logger.Info("payment processed", zap.String("bookingId", p.BookingID), zap.String("status", p.Status))
	c.writeJSON(w, http.StatusCreated, dto.NewPaymentResponse(p))
}

func (c *Controller) decodeCart(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (domain.DraftCart, bool) {
	var req dto.CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeInvalidJSON(w)
		return domain.DraftCart{}, false
	}

	cart, err := c.validateCartRequest(req)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return domain.DraftCart{}, false
	}
	return cart, true
}

func (c *Controller) validateCartRequest(req dto.CartRequest) (domain.DraftCart, error) {
	var details []apperrors.ValidationDetail

	if req.BagCount < domain.MinBagCount || req.BagCount > domain.MaxBagCount {
		details = append(details, apperrors.ValidationDetail{
			Field:   "bagCount",
			Message: "bagCount must be between 1 and 50",
		})
	}

	if req.StashpointID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "stashpointId",
			Message: "stashpointId is required",
		})
	}

	from, fromErr := dto.ParseDate(req.DateRange.From, c.loc)
	if fromErr != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "dateRange.from",
			Message: "dateRange.from must be a calendar date (YYYY-MM-DD)",
		})
	}
	to, toErr := dto.ParseDate(req.DateRange.To, c.loc)
	if toErr != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "dateRange.to",
			Message: "dateRange.to must be a calendar date (YYYY-MM-DD)",
		})
	}
	if fromErr == nil && toErr == nil && !to.After(from) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "dateRange.to",
			Message: "dateRange.to must be after dateRange.from",
		})
	}

	if len(details) > 0 {
		return domain.DraftCart{}, apperrors.NewValidationError("validation failed", details...)
	}

	return domain.DraftCart{
		BagCount:     req.BagCount,
		DateRange:    domain.DateRange{From: from, To: to},
		StashpointID: req.StashpointID,
	}, nil
}

func (c *Controller) requestLogger(r *http.Request) *zap.Logger {
	traceID := r.Header.Get("X-Request-Id")
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return c.logger.With(zap.String("traceId", traceID), zap.String("path", r.URL.Path))
}

func (c *Controller) handleStoreError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		logger.Warn("not found", zap.Error(err))
		c.writeJSON(w, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: err.Error()})
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeInvalidJSON(w http.ResponseWriter) {
	c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be valid JSON",
	})
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
