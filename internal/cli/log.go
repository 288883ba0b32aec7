package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Loaded 3 projects (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports engine, store and HTTP events to the CLI logger at
// debug level. Failures are logged as warnings.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnTablesLoad(_ context.Context, source string, features int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("feature tables rejected", "source", source, "err", err)
		return
	}
	h.logger.Debug("feature tables loaded", "source", source, "features", features, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnResolve(_ context.Context, mutation string, changes int, rejected bool, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("mutation resolved", "mutation", mutation, "changes", changes, "rejected", rejected, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnLoad(_ context.Context, backend, id string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("project load failed", "backend", backend, "id", id, "err", err)
		return
	}
	h.logger.Debug("project loaded", "backend", backend, "id", id, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnSave(_ context.Context, backend, id string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("project save failed", "backend", backend, "id", id, "err", err)
		return
	}
	h.logger.Debug("project saved", "backend", backend, "id", id, "bytes", size, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnDelete(_ context.Context, backend, id string, err error) {
	if err != nil {
		h.logger.Warn("project delete failed", "backend", backend, "id", id, "err", err)
		return
	}
	h.logger.Debug("project deleted", "backend", backend, "id", id)
}

func (h *logHooks) OnRequest(context.Context, string, string) {}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	if status >= 500 {
		h.logger.Warn("request failed", "method", method, "path", path, "status", status)
		return
	}
	h.logger.Debug("request served", "method", method, "path", path, "status", status, "duration", d.Round(time.Microsecond))
}
