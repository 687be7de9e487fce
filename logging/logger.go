package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface for Vaidya. This allows users
// to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Config configures construction of a PipelineLogger.
type Config struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
	SessionID string
}

// DefaultConfig returns a baseline JSON info level configuration.
func DefaultConfig() *Config {
	return &Config{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// PipelineLogger wraps slog.Logger adding contextual cloning helpers and
// orchestration convenience methods. It is cheap to copy via With* methods.
type PipelineLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	sessionID string
}

// NewLogger builds a PipelineLogger from a config (or defaults if nil).
func NewLogger(cfg *Config) *PipelineLogger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &PipelineLogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component, sessionID: cfg.SessionID}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent sets the logical component (scheduler, retriever, orchestrator, ...).
func (l *PipelineLogger) WithComponent(c string) *PipelineLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession attaches the session identifier.
func (l *PipelineLogger) WithSession(sid string) *PipelineLogger {
	nl := *l
	nl.sessionID = sid
	return &nl
}

func (l *PipelineLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+2)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.sessionID != "" {
		out = append(out, slog.String("session_id", l.sessionID))
	}
	return append(out, extra...)
}

func (l *PipelineLogger) logWith(level slog.Level, allowed bool, msg string, args ...any) {
	if !allowed {
		return
	}
	base := l.attrs()
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			base = append(base, slog.Any(k, args[i+1]))
		}
	}
	l.logger.LogAttrs(context.Background(), level, msg, base...)
}

// Debug logs at debug level.
func (l *PipelineLogger) Debug(msg string, args ...any) {
	l.logWith(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *PipelineLogger) Info(msg string, args ...any) {
	l.logWith(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *PipelineLogger) Warn(msg string, args ...any) {
	l.logWith(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *PipelineLogger) Error(msg string, args ...any) {
	l.logWith(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// LogTurn records the outcome of one agent turn.
func (l *PipelineLogger) LogTurn(agent string, sequence int, produced bool, dur time.Duration, err error) {
	attrs := l.attrs(
		slog.String("agent", agent),
		slog.Int("sequence", sequence),
		slog.Bool("produced", produced),
		slog.Duration("duration", dur),
	)
	level := slog.LevelInfo
	msg := "turn completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelWarn
		msg = "turn failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogRetrieval records similarity search latency and result size.
func (l *PipelineLogger) LogRetrieval(k, hits int, dur time.Duration, err error) {
	attrs := l.attrs(slog.Int("k", k), slog.Int("hits", hits), slog.Duration("duration", dur))
	level := slog.LevelInfo
	msg := "retrieval completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelWarn
		msg = "retrieval degraded to empty context"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogSuspension records a session entering or leaving the awaiting-user state.
func (l *PipelineLogger) LogSuspension(agent, fieldHint string, resumed bool) {
	msg := "session suspended"
	if resumed {
		msg = "session resumed"
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, msg,
		l.attrs(slog.String("agent", agent), slog.String("field_hint", fieldHint))...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
