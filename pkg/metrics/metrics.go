package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "livaro", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "livaro", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	RecordsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "livaro", Name: "records_stored_total", Help: "Number of records written by collection."},
		[]string{"collection"},
	)
	RecordQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "livaro", Name: "record_queries_total", Help: "Number of list queries by collection."},
		[]string{"collection"},
	)
	GatewayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "livaro", Name: "gateway_errors_total", Help: "Number of failed store operations by collection and operation."},
		[]string{"collection", "op"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "livaro", Name: "http_request_duration_seconds", Help: "HTTP request latency by route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RecordsStored)
	reg.MustRegister(RecordQueries)
	reg.MustRegister(GatewayErrors)
	reg.MustRegister(HTTPRequestDuration)
}
