package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinelight_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinelight_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	QuotationRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinelight_quotation_recomputes_total",
		Help: "Quotation total recomputations after a child mutation.",
	})

	QuotationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinelight_quotations_created_total",
		Help: "Quotations created.",
	})
)
