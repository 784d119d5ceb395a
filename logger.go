package fsynth

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with fsynth-specific context.
// This provides structured logging with consistent field names across
// the enumerator and search driver.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns the logger unchanged; reserved for future
// context-scoped fields (request ID, trace ID).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{
		Logger: l.Logger.With(),
	}
}

// WithSerial adds a serial-number field to the logger.
func (l *Logger) WithSerial(sn string) *Logger {
	return &Logger{
		Logger: l.Logger.With("serial", sn),
	}
}

// WithDepth adds a max-depth field to the logger.
func (l *Logger) WithDepth(depth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("max_depth", depth),
	}
}

// LogIteration logs a single enumerator advance at debug level.
func (l *Logger) LogIteration(ctx context.Context, iterations uint64, repr string) {
	l.DebugContext(ctx, "enumerator advanced",
		"iterations", iterations,
		"function", repr,
	)
}

// LogAdmission logs a candidate's admission or rejection from the pool.
func (l *Logger) LogAdmission(ctx context.Context, repr string, admitted bool, distance uint64) {
	if admitted {
		l.InfoContext(ctx, "candidate admitted to pool",
			"function", repr,
			"distance", distance,
		)
	} else {
		l.DebugContext(ctx, "candidate rejected",
			"function", repr,
			"distance", distance,
		)
	}
}

// LogStateTransition logs a search driver state machine transition.
func (l *Logger) LogStateTransition(ctx context.Context, from, to string) {
	l.InfoContext(ctx, "state transition",
		"from", from,
		"to", to,
	)
}

// LogSnapshot logs a save/load of the driver's persisted state.
func (l *Logger) LogSnapshot(ctx context.Context, op string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot operation failed",
			"op", op,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot operation completed",
			"op", op,
		)
	}
}

// LogEnumerationExhausted logs that the enumerator has visited the full
// canonical space up to the configured depth.
func (l *Logger) LogEnumerationExhausted(ctx context.Context, iterations uint64) {
	l.InfoContext(ctx, "enumeration exhausted",
		"iterations", iterations,
	)
}
