package telemetry

import (
	"context"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys. Keep values low-cardinality: route patterns, not ids.
const (
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelOperation = "operation"
)

// WithProfilingLabels runs fn with pyroscope labels attached to its goroutine.
// keyValues are alternating key, value pairs; empty values and a trailing odd key are dropped.
func WithProfilingLabels(ctx context.Context, fn func(context.Context), keyValues ...string) {
	pairs := make([]string, 0, len(keyValues))
	for i := 0; i+1 < len(keyValues); i += 2 {
		if keyValues[i] == "" || keyValues[i+1] == "" {
			continue
		}
		pairs = append(pairs, keyValues[i], keyValues[i+1])
	}
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}
