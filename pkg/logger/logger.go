// Package logger provides the storefront's structured logger built on log/slog.
//
// Handlers log through WithCtx so every line carries the request ID set by
// the Logger middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("cart updated", "product_id", id, "quantity", qty)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/gamevault/storefront/config"
)

// L is the process-wide base logger.
var L *slog.Logger

func init() {
	Setup(config.AppEnv(), os.Stdout)
}

// Setup replaces the base logger. Production environments get JSON output at
// INFO; everything else gets human-readable text at DEBUG.
func Setup(env string, w io.Writer) {
	var handler slog.Handler

	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the per-request logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
