// Package observability wraps the process-wide structured logger. It is
// a thin layer over zap.SugaredLogger — built once in cmd/ibhealth and
// threaded through the orchestrator via a small Logger field (analyzers
// do not log) — rather than a bare *zap.Logger, so call sites can use the
// key-value Infow/Warnw/Errorw shape without a With(...) chain at every
// log line.
package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the process-wide structured logger handle.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a Logger at the given level ("debug", "info", "warn",
// "error"), using zap's production JSON encoder config.
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	var zl zap.AtomicLevel
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zl

	zl2, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{s: zl2.Sugar()}, nil
}

// Nop returns a Logger that discards everything, for callers (tests,
// library use outside the CLI) that don't want log output.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// Sync flushes any buffered log entries; call via defer after New.
func (l *Logger) Sync() error {
	if l == nil || l.s == nil {
		return nil
	}
	return l.s.Sync()
}

// With returns a Logger with the given key-value pairs attached to every
// subsequent entry — used to scope a logger to one orchestrator run via
// its request ID.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{s: l.s.With(keysAndValues...)}
}

func (l *Logger) Infow(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.s.Infow(msg, keysAndValues...)
}

func (l *Logger) Warnw(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.s.Warnw(msg, keysAndValues...)
}

func (l *Logger) Errorw(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.s.Errorw(msg, keysAndValues...)
}
