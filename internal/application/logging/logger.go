package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
)

// ShipLogger adapts common.RoutineLogger onto slog.
// Fields bound with With are attached to every record.
type ShipLogger struct {
	logger *slog.Logger
}

var _ common.RoutineLogger = (*ShipLogger)(nil)

// NewShipLogger wraps an slog logger
func NewShipLogger(logger *slog.Logger) *ShipLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShipLogger{logger: logger}
}

// Log emits one record. Level names follow the routines: DEBUG, INFO, WARN/WARNING, ERROR.
func (l *ShipLogger) Log(level, message string, metadata map[string]interface{}) {
	attrs := make([]any, 0, len(metadata)*2)
	for k, v := range metadata {
		attrs = append(attrs, k, v)
	}
	l.logger.Log(context.Background(), parseLevel(level), message, attrs...)
}

// With returns a child logger carrying the given fields
func (l *ShipLogger) With(fields map[string]interface{}) *ShipLogger {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	return &ShipLogger{logger: l.logger.With(attrs...)}
}

// ForShip returns a child logger bound to a ship symbol
func (l *ShipLogger) ForShip(shipSymbol string) *ShipLogger {
	return l.With(map[string]interface{}{"ship_symbol": shipSymbol})
}

// Slog exposes the underlying logger
func (l *ShipLogger) Slog() *slog.Logger {
	return l.logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger from configuration. The returned closer
// releases the log file when output is "file".
func New(cfg config.LoggingConfig) (*ShipLogger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)

	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = &syncWriter{w: f}
		closer = f
	default:
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return NewShipLogger(slog.New(handler)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// syncWriter serialises writes from concurrent ship goroutines
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
