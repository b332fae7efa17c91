// Package stasherapi talks JSON over HTTP to the booking API.
package stasherapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stasher/internal/domain"
	"stasher/internal/dto"
	apperrors "stasher/internal/errors"
	"stasher/internal/infrastructure/metrics"
)

const (
	CallFetchStashpoints = "fetch_stashpoints"
	CallRequestQuote     = "request_quote"
	CallCreateBooking    = "create_booking"
	CallSubmitPayment    = "submit_payment"

	maxResponseBytes = 1 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	loc        *time.Location
	logger     *zap.Logger
}

// New returns a client that keeps cookies across calls. A zero timeout leaves
// each call bounded only by the caller's context.
func New(baseURL string, timeout time.Duration, loc *time.Location, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return NewWithHTTPClient(baseURL, &http.Client{Jar: jar}, timeout, loc, logger), nil
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration, loc *time.Location, logger *zap.Logger) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
		loc:        loc,
		logger:     logger,
	}
}

func (c *Client) FetchStashpoints(ctx context.Context) ([]domain.Stashpoint, error) {
	body, err := c.do(ctx, CallFetchStashpoints, http.MethodGet, "/api/stashpoints", nil)
	if err != nil {
		return nil, err
	}
	stashpoints, err := dto.DecodeStashpoints(body)
	c.observeDecode(CallFetchStashpoints, err)
	return stashpoints, err
}

func (c *Client) RequestQuote(ctx context.Context, cart domain.DraftCart) (*domain.PriceQuote, error) {
	body, err := c.do(ctx, CallRequestQuote, http.MethodPost, "/api/quotes", dto.NewCartRequest(cart))
	if err != nil {
		return nil, err
	}
	quote, err := dto.DecodePriceQuote(body)
	c.observeDecode(CallRequestQuote, err)
	return quote, err
}

func (c *Client) CreateBooking(ctx context.Context, cart domain.DraftCart) (*domain.Booking, error) {
	body, err := c.do(ctx, CallCreateBooking, http.MethodPost, "/api/bookings", dto.NewCartRequest(cart))
	if err != nil {
		return nil, err
	}
	booking, err := dto.DecodeBooking(body, c.loc)
	c.observeDecode(CallCreateBooking, err)
	return booking, err
}

func (c *Client) SubmitPayment(ctx context.Context, bookingID string) (*domain.Payment, error) {
	body, err := c.do(ctx, CallSubmitPayment, http.MethodPost, "/api/payments", dto.PaymentRequest{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	payment, err := dto.DecodePayment(body)
	c.observeDecode(CallSubmitPayment, err)
	return payment, err
}

func (c *Client) do(ctx context.Context, call, method, path string, payload any) ([]byte, error) {
	requestID := uuid.NewString()
	logger := c.logger.With(zap.String("call", call), zap.String("requestId", requestID))
	label := method + " " + path

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.NewInternalError("encoding request body", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, apperrors.NewInternalError("building request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn("request failed", zap.Error(err))
		metrics.APIRequestsTotal.WithLabelValues(call, metrics.OutcomeTransportError).Inc()
		return nil, apperrors.NewTransportError(label, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		logger.Warn("reading response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		metrics.APIRequestsTotal.WithLabelValues(call, metrics.OutcomeTransportError).Inc()
		return nil, apperrors.NewTransportError(label, resp.StatusCode, "", err)
	}
	if len(body) > maxResponseBytes {
		logger.Warn("response too large", zap.Int("status", resp.StatusCode), zap.Int("limit", maxResponseBytes))
		metrics.APIRequestsTotal.WithLabelValues(call, metrics.OutcomeTransportError).Inc()
		return nil, apperrors.NewTransportError(label, resp.StatusCode, "response too large", nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(body, resp.Status)
		logger.Warn("unexpected response status", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		metrics.APIRequestsTotal.WithLabelValues(call, metrics.OutcomeTransportError).Inc()
		return nil, apperrors.NewTransportError(label, resp.StatusCode, msg, nil)
	}

	logger.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) observeDecode(call string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeDecodeError
		c.logger.Warn("response failed validation", zap.String("call", call), zap.Error(err))
	}
	metrics.APIRequestsTotal.WithLabelValues(call, outcome).Inc()
}

// serverMessage pulls a human readable message out of an error body, falling
// back to the HTTP status text.
func serverMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return status
}
