package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
)

// RequestMetricsMiddleware records every request passing through the mediator.
// A nil collector makes it a pass-through.
func RequestMetricsMiddleware(collector *RequestMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := RequestName(request)
		collector.started(name)
		start := time.Now()

		response, err := next(ctx, request)

		collector.finished(name, time.Since(start).Seconds(), err)
		return response, err
	}
}

// RequestName labels a request by its bare type name: *mining.MineCommand is "MineCommand"
func RequestName(request common.Request) string {
	if request == nil {
		return "unknown"
	}
	name := fmt.Sprintf("%T", request)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return strings.TrimPrefix(name, "*")
}
