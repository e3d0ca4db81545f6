package kalman

import "log/slog"

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Filter.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring
// Predict and Update calls. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kalman.BasicMetricsCollector{}
//	kf, _ := kalman.New(a, model, kalman.WithMetricsCollector(metrics))
//	// ... use kf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Updates: %d, Avg latency: %dns\n", stats.UpdateCount, stats.UpdateAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for filter calls.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kalman.NewJSONLogger(slog.LevelDebug)
//	kf, _ := kalman.New(a, model, kalman.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
