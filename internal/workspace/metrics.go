package workspace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parseCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bxls_parse_cache_lookups_total",
		Help: "Parse cache lookups by result (hit, miss, stale)",
	}, []string{"result"})

	parseCacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bxls_parse_cache_evictions_total",
		Help: "Documents dropped from the parse cache by reason",
	}, []string{"reason"})

	scanFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bxls_scan_files_total",
		Help: "Files processed by workspace scans by final status",
	}, []string{"status"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bxls_scan_duration_seconds",
		Help:    "Wall time of complete workspace scans",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	reportReplacements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bxls_diagnostic_reports_total",
		Help: "Diagnostic report replacements",
	})
)
