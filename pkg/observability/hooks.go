// Package observability lets binaries observe the pipeline, the caches and
// viewer sessions without those packages knowing about loggers or metrics.
//
// The CLI registers a logging implementation before running a command:
//
//	observability.SetPipelineHooks(logHooks{logger})
//	observability.SetSessionHooks(logHooks{logger})
//
// and the pipeline reports each stage:
//
//	observability.Pipeline().OnLayoutStart(ctx, len(m.Nodes))
//	observability.Pipeline().OnLayoutComplete(ctx, ticks, time.Since(start), err)
//
// Until hooks are registered every call is a no-op.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load, layout and render stages.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nodeCount, linkCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, ticks int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from interactive viewer sessions.
type SessionHooks interface {
	// OnSessionOpen records a new session.
	OnSessionOpen(ctx context.Context, sessionID string, nodeCount int)

	// OnSessionClose records a session ending.
	OnSessionClose(ctx context.Context, sessionID string, lifetime time.Duration)

	// OnInteraction records one user interaction (hover, click, drag, ...).
	OnInteraction(ctx context.Context, sessionID, kind string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnSessionOpen(context.Context, string, int)            {}
func (NoopSessionHooks) OnSessionClose(context.Context, string, time.Duration) {}
func (NoopSessionHooks) OnInteraction(context.Context, string, string, error)  {}

// =============================================================================
// Registry
// =============================================================================

// hook holds the registered implementation of one hook interface.
type hook[T any] struct {
	noop T
	p    atomic.Pointer[T]
}

func (h *hook[T]) get() T {
	if p := h.p.Load(); p != nil {
		return *p
	}
	return h.noop
}

func (h *hook[T]) set(v T) { h.p.Store(&v) }

func (h *hook[T]) reset() { h.p.Store(nil) }

var (
	pipelineHooks = hook[PipelineHooks]{noop: NoopPipelineHooks{}}
	cacheHooks    = hook[CacheHooks]{noop: NoopCacheHooks{}}
	sessionHooks  = hook[SessionHooks]{noop: NoopSessionHooks{}}
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.set(h)
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetSessionHooks registers session hooks. Nil is ignored.
func SetSessionHooks(h SessionHooks) {
	if h != nil {
		sessionHooks.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineHooks.get() }
func Cache() CacheHooks       { return cacheHooks.get() }
func Session() SessionHooks   { return sessionHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	sessionHooks.reset()
}
