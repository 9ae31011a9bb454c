package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "carshare", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "carshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RidesStartedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carshare", Name: "rides_started_total", Help: "Total rides started"})
	RidesClosedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carshare", Name: "rides_closed_total", Help: "Total rides closed, explicit or implicit"})
	CostsTotal        = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carshare", Name: "cost_events_total", Help: "Total cost events recorded"})
	WearPaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carshare", Name: "wear_payments_total", Help: "Total wear payments recorded"})

	OcrRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "carshare", Name: "ocr_requests_total", Help: "Odometer OCR calls by outcome"},
		[]string{"outcome"},
	)
)
