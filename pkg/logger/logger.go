package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "request_id"
	// SessionIDKey is the context key for the dashboard session ID.
	SessionIDKey contextKey = "session_id"
)

// Logger is a structured logger wrapper around slog
type Logger struct {
	*slog.Logger
}

// Options controls handler selection and verbosity.
type Options struct {
	Env    string // "production" forces JSON output
	Format string // "json" or "text"; empty picks by Env
	Level  string // debug, info, warn, error; empty picks by Env
}

// New creates a logger for env, reading LOG_FORMAT and LOG_LEVEL from the environment.
func New(env string, output io.Writer) *Logger {
	return NewWithOptions(Options{
		Env:    env,
		Format: os.Getenv("LOG_FORMAT"),
		Level:  os.Getenv("LOG_LEVEL"),
	}, output)
}

// NewWithOptions creates a logger with explicit options.
func NewWithOptions(o Options, output io.Writer) *Logger {
	level := defaultLevel(o.Env)
	if o.Level != "" {
		level = ParseLevel(o.Level, level)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			// keep only filename:line
			if a.Key == slog.SourceKey {
				if src, ok := a.Value.Any().(*slog.Source); ok {
					file := src.File
					if idx := strings.LastIndex(file, "/"); idx >= 0 {
						file = file[idx+1:]
					}
					a.Value = slog.StringValue(fmt.Sprintf("%s:%d", file, src.Line))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if o.Env == "production" || o.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a new logger with default settings (stdout)
func NewDefault(env string) *Logger {
	return New(env, os.Stdout)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithOptions(Options{Env: "test"}, io.Discard)
}

// ParseLevel maps a level name to slog.Level, returning fallback for unknown names.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}

func defaultLevel(env string) slog.Level {
	if env == "production" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// WithContext adds request and session identifiers found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	result := l
	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		result = &Logger{Logger: result.With("request_id", requestID)}
	}
	if sessionID := ctx.Value(SessionIDKey); sessionID != nil {
		result = &Logger{Logger: result.With("session_id", sessionID)}
	}
	return result
}

// WithField creates a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Logger: l.With(key, value),
	}
}

// WithComponent tags every record with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

// WithError creates a new logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.With("error", err.Error()),
	}
}

// WithDuration creates a new logger with a duration_ms field
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{
		Logger: l.With("duration_ms", d.Milliseconds()),
	}
}
