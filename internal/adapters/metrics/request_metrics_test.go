package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
)

type probeCommand struct{}

func TestRequestName(t *testing.T) {
	assert.Equal(t, "probeCommand", RequestName(&probeCommand{}))
	assert.Equal(t, "probeCommand", RequestName(probeCommand{}))
	assert.Equal(t, "unknown", RequestName(nil))
}

func TestRequestMetricsMiddleware_RecordsOutcomes(t *testing.T) {
	// Arrange
	collector := NewRequestMetricsCollector()
	middleware := RequestMetricsMiddleware(collector)
	results := []error{nil, errors.New("ship is in transit"), context.Canceled}

	// Act
	for _, result := range results {
		result := result
		_, err := middleware(context.Background(), &probeCommand{}, func(ctx context.Context, request common.Request) (common.Response, error) {
			return nil, result
		})
		require.Equal(t, result, err)
	}

	// Assert
	for _, outcome := range []string{outcomeOK, outcomeFailed, outcomeCancelled} {
		assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("probeCommand", outcome)), outcome)
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.inFlight.WithLabelValues("probeCommand")))
}

func TestRequestMetricsMiddleware_NilCollectorPassesThrough(t *testing.T) {
	middleware := RequestMetricsMiddleware(nil)

	response, err := middleware(context.Background(), &probeCommand{}, func(ctx context.Context, request common.Request) (common.Response, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", response)
}
