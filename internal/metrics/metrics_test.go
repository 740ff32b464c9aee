package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterPassMetricsIsIdempotent(t *testing.T) {
	RegisterPassMetrics()
	RegisterPassMetrics()

	err := prometheus.Register(PassesGenerated)
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		t.Errorf("expected AlreadyRegisteredError, got %T: %v", err, err)
	}
}
