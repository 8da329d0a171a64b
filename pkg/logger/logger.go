// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the request-scoped logger placed in the context by the
// request logging middleware, so every line a handler writes carries the
// request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID, "total", order.TotalPrice)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/storefront/config"
)

var L *slog.Logger

var activeMongo *MongoHandler

func init() {
	L = slog.New(baseHandler(os.Stdout))
	slog.SetDefault(L)
}

func baseHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Boot attaches the MongoDB sink when LOG_MONGO_URI is set. A sink that
// cannot connect is reported and skipped; stdout logging keeps working.
func Boot() {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}

	h, err := NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
	if err != nil {
		L.Warn("logger: mongo sink disabled", "error", err)
		return
	}

	activeMongo = h
	L = slog.New(NewMultiHandler(baseHandler(os.Stdout), h))
	slog.SetDefault(L)
	L.Info("logger: mongo sink attached", "collection", config.LogMongoCollection())
}

// Shutdown flushes the MongoDB sink, if any.
func Shutdown() {
	if activeMongo != nil {
		activeMongo.Close()
	}
}

// ── Context-aware logger ─────────────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log into ctx. Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ── Short-hand helpers ───────────────────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor maps an HTTP status to the level its access log line uses.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
