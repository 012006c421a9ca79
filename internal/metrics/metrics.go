package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrackingPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadside", Name: "tracking_polls_total", Help: "Tracking polls by resulting order status"},
		[]string{"status"},
	)
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadside", Name: "order_status_transitions_total", Help: "Order status transitions"},
		[]string{"from", "to"},
	)
	PlaceholderOrdersTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "roadside", Name: "placeholder_orders_total", Help: "Orders synthesized for unknown ids"},
	)
	NearbyFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadside", Name: "nearby_fallbacks_total", Help: "Nearby searches served from the fallback list"},
		[]string{"reason"},
	)
	NearbyCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadside", Name: "nearby_cache_total", Help: "Nearby cache lookups"},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roadside", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roadside",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
