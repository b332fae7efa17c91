package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stasher_api_requests_total",
		Help: "Calls to the booking API by call and outcome.",
	},
		[]string{"call", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stasher_api_request_duration_seconds",
		Help:    "Latency of calls to the booking API.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"call"},
	)

	StaleQuotesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stasher_stale_quotes_discarded_total",
		Help: "Quote responses dropped because a newer quote request was issued.",
	})

	BookingsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stasher_bookings_completed_total",
		Help: "Purchase flows that reached a final state, by outcome.",
	},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stasher_active_sessions",
		Help: "Booking sessions currently held by the session server.",
	})
)
