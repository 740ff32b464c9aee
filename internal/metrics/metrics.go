package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const ApplicationName = "walletpass"

// result label values for PassesGenerated
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// pipeline stage label values for StageDuration
const (
	StagePayload  = "payload"
	StageManifest = "manifest"
	StageSign     = "sign"
	StageArchive  = "archive"
)

var PassesGenerated = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "walletpass_passes_generated_total",
		Help:        "pass generation count by result (success/failure) and error code",
		ConstLabels: prometheus.Labels{"service": ApplicationName},
	},
	[]string{"result", "code"},
)

var StageDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:        "walletpass_stage_duration_seconds",
		Help:        "pass pipeline stage duration (in seconds) by stage",
		ConstLabels: prometheus.Labels{"service": ApplicationName},
		Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"stage"},
)

var ArchiveBytes = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:        "walletpass_archive_bytes",
		Help:        "size of generated .pkpass archives in bytes",
		ConstLabels: prometheus.Labels{"service": ApplicationName},
		Buckets:     prometheus.ExponentialBuckets(4096, 2, 8),
	},
)

var StagingCleanupFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name:        "walletpass_staging_cleanup_failures_total",
		Help:        "number of staging directories that could not be removed",
		ConstLabels: prometheus.Labels{"service": ApplicationName},
	},
)
