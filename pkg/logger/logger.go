// Package logger provides a structured, levelled logger built on log/slog.
//
// In production the output is JSON for log aggregators; in development it is
// human-readable text. When MONGO_URI is configured, every record is also
// shipped asynchronously to MongoDB (see mongo_handler.go).
//
// WithCtx returns a logger pre-tagged with the request ID, so every log line
// from a handler is automatically correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("download issued", "product_id", id)
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/kalakriti/config"
)

var L *slog.Logger

func init() {
	Setup()
}

// Setup (re)builds the default logger from config. Called once from init;
// call again after config.Load() when MONGO_URI shipping is wanted.
func Setup() {
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	switch config.AppEnv() {
	case "production", "prod":
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	if uri := config.MongoURI(); uri != "" {
		mh, err := NewMongoHandler(uri, "kalakriti", "logs")
		if err != nil {
			slog.New(handler).Warn("logger: mongo sink disabled", "error", err)
		} else {
			handler = NewMultiHandler(handler, mh)
		}
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request-scoped logger stored by the Logger middleware,
// or the base logger when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware; not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level on the base logger.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level on the base logger.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level on the base logger.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level on the base logger.
func Error(msg string, args ...any) { L.Error(msg, args...) }
