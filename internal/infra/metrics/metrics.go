package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handspeak_gateway_calls_total",
			Help: "Total number of AI gateway calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handspeak_gateway_call_duration_seconds",
			Help:    "Latency of AI gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	alertsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handspeak_alerts_sent_total",
			Help: "Emergency contact alerts sent by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// ObserveGatewayCall records one completed AI gateway call.
func ObserveGatewayCall(operation, outcome string, elapsed time.Duration) {
	gatewayCallsTotal.WithLabelValues(operation, outcome).Inc()
	gatewayCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveAlert records one emergency alert send attempt.
func ObserveAlert(outcome string) {
	alertsSentTotal.WithLabelValues(outcome).Inc()
}
