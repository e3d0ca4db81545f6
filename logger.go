package kalman

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with filter-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName adds a name field to the logger (the trace or track being filtered).
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithDims adds the state dimensionality to the logger.
func (l *Logger) WithDims(dims int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dims", dims),
	}
}

// LogPredict logs a predict step from the filter time from to t.
func (l *Logger) LogPredict(ctx context.Context, from, t uint64, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "predict completed",
			"from", from,
			"time", t,
		)
	case isRejection(err):
		l.WarnContext(ctx, "predict rejected",
			"from", from,
			"time", t,
			"error", err,
		)
	default:
		l.ErrorContext(ctx, "predict failed",
			"from", from,
			"time", t,
			"error", err,
		)
	}
}

// LogUpdate logs a measurement update at time t.
func (l *Logger) LogUpdate(ctx context.Context, t uint64, obsDims int, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "update completed",
			"time", t,
			"obs_dims", obsDims,
		)
	case isRejection(err):
		l.WarnContext(ctx, "update rejected",
			"time", t,
			"obs_dims", obsDims,
			"error", err,
		)
	default:
		l.ErrorContext(ctx, "update failed",
			"time", t,
			"obs_dims", obsDims,
			"error", err,
		)
	}
}

// LogReplay logs the outcome of replaying one trace.
func (l *Logger) LogReplay(ctx context.Context, name string, samples, rejected int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "replay failed",
			"name", name,
			"samples", samples,
			"error", err,
		)
	case rejected > 0:
		l.WarnContext(ctx, "replay completed with rejected samples",
			"name", name,
			"samples", samples,
			"rejected", rejected,
			"accepted", samples-rejected,
		)
	default:
		l.InfoContext(ctx, "replay completed",
			"name", name,
			"samples", samples,
		)
	}
}
