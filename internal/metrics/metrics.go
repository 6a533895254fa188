package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paypal_webhook_events_total",
			Help: "Webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)
	TipsSettled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tips_settled_total",
			Help: "Tips written to the ledger",
		},
	)
	TicketsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jackpot_tickets_issued_total",
			Help: "Jackpot tickets issued from tips",
		},
	)
	SettlementPartialFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tip_settlement_partial_failures_total",
			Help: "Best-effort settlement steps that failed and were skipped",
		},
		[]string{"step"},
	)

	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	FeedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jackpot_feed_clients",
			Help: "Connected jackpot feed websocket clients",
		},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(WebhookEvents)
	prometheus.MustRegister(TipsSettled)
	prometheus.MustRegister(TicketsIssued)
	prometheus.MustRegister(SettlementPartialFailures)
	prometheus.MustRegister(Uploads)
	prometheus.MustRegister(FeedClients)
}
