package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// stage times one step of a command and logs it at debug level when done,
// e.g. "layout done ticks=301 elapsed=1.234s".
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(ctx context.Context, name string) stage {
	return stage{logger: loggerFromContext(ctx), name: name, start: time.Now()}
}

func (s stage) done(keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Debug(s.name+" done", keyvals...)
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports pipeline, cache and session events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("Loading network", "source", source)
}

func (h logHooks) OnLoadComplete(_ context.Context, source string, nodes, links int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("Load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("Loaded network", "source", source, "nodes", nodes, "links", links, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.logger.Debug("Starting layout", "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, ticks int, d time.Duration, err error) {
	h.logger.Debug("Layout finished", "ticks", ticks, "duration", d.Round(time.Millisecond), "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("Rendering", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("Rendered", "formats", formats, "duration", d.Round(time.Millisecond), "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("Cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("Cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("Cached", "type", keyType, "bytes", size)
}

func (h logHooks) OnSessionOpen(_ context.Context, id string, nodes int) {
	h.logger.Debug("Session hook: open", "id", id, "nodes", nodes)
}

func (h logHooks) OnSessionClose(_ context.Context, id string, lifetime time.Duration) {
	h.logger.Debug("Session hook: close", "id", id, "lifetime", lifetime.Round(time.Millisecond))
}

func (h logHooks) OnInteraction(_ context.Context, id, kind string, err error) {
	if err != nil {
		h.logger.Debug("Interaction failed", "id", id, "kind", kind, "err", err)
		return
	}
	h.logger.Debug("Interaction", "id", id, "kind", kind)
}
