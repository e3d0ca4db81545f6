package replay

import (
	"time"

	"github.com/hupe1980/kalman"
	"github.com/hupe1980/kalman/resource"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to every filter and used for the
// per-trace summary. Pass nil to disable logging.
func WithLogger(logger *kalman.Logger) Option {
	return func(r *Runner) {
		if logger == nil {
			logger = kalman.NoopLogger()
		}
		r.logger = logger
	}
}

// WithMetricsCollector sets the collector shared by all filters.
func WithMetricsCollector(mc kalman.MetricsCollector) Option {
	return func(r *Runner) {
		if mc == nil {
			mc = kalman.NoopMetricsCollector{}
		}
		r.metrics = mc
	}
}

// WithController shares memory, slot and I/O budgets with other runners.
func WithController(rc *resource.Controller) Option {
	return func(r *Runner) {
		r.rc = rc
	}
}

// WithHeapArenas backs arenas with Go memory instead of anonymous mappings.
func WithHeapArenas() Option {
	return func(r *Runner) {
		r.heap = true
	}
}

// WithAcquireTimeout bounds how long a job waits for arena memory.
// Default: 30s.
func WithAcquireTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.acquireTimeout = d
	}
}

// WithTracerProvider sets the OpenTelemetry provider. The global provider is
// used by default.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(r *Runner) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}
