package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// RegisterPassMetrics registers the pass collectors with the default registry.
// Safe to call more than once.
func RegisterPassMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			PassesGenerated,
			StageDuration,
			ArchiveBytes,
			StagingCleanupFailures,
		)
	})
}
