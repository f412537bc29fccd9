package common

import "context"

// RoutineLogger is the logging surface routines see. The ship and
// routine names travel in the bound logger, not in every call.
type RoutineLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

type loggerKey struct{}

// WithLogger binds logger to ctx for every handler the request reaches
func WithLogger(ctx context.Context, logger RoutineLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the bound logger, or one that discards everything
func LoggerFromContext(ctx context.Context) RoutineLogger {
	if logger, ok := ctx.Value(loggerKey{}).(RoutineLogger); ok && logger != nil {
		return logger
	}
	return discardLogger{}
}

type discardLogger struct{}

func (discardLogger) Log(string, string, map[string]interface{}) {}
