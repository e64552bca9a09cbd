package lsp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bxls_lsp_requests_total",
		Help: "LSP requests by method and outcome (ok, error, cancelled, panic)",
	}, []string{"method", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bxls_lsp_request_duration_seconds",
		Help:    "LSP request handling time by method",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"method"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bxls_lsp_notifications_total",
		Help: "LSP notifications handled by method",
	}, []string{"method"})
)
