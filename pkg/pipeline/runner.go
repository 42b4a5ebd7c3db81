package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/marchallab/netview/pkg/cache"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/observability"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer uses
// DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → build → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load + build
	loadStart := time.Now()
	doc, m, docHash, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.DocumentHash = docHash
	result.Model = m
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(m.Nodes)
	result.Stats.LinkCount = len(m.Links)
	result.Stats.PathCount = m.Paths().Len()

	r.Logger.Info("loaded network",
		"nodes", len(m.Nodes),
		"links", len(m.Links),
		"paths", m.Paths().Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, m, docHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.Ticks = layout.Ticks
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"ticks", layout.Ticks,
		"alpha", layout.Alpha,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the document and builds its model.
func (r *Runner) Load(ctx context.Context, opts Options) (graph.Document, *network.Model, string, error) {
	source := opts.Network
	if source == "" {
		source = "inline"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	doc, hash, err := Load(ctx, opts)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, 0, time.Since(start), err)
		return graph.Document{}, nil, "", err
	}
	m, err := Build(doc, opts)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, 0, time.Since(start), err)
		return graph.Document{}, nil, "", err
	}
	hooks.OnLoadComplete(ctx, source, len(m.Nodes), len(m.Links), time.Since(start), nil)
	return doc, m, hash, nil
}

// LayoutWithCacheInfo computes the layout of m, or returns the cached one,
// and reports whether the cache was hit. docHash identifies the document m
// was built from.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m *network.Model, docHash string, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(m.Nodes))
	start := time.Now()
	layout, err := ComputeLayout(ctx, m, opts)
	hooks.OnLayoutComplete(ctx, layout.Ticks, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if data, err := graph.MarshalLayout(layout); err == nil {
		r.store(ctx, "layout", key, data, cache.TTLLayout)
	}
	return layout, false, nil
}

// RenderWithCacheInfo renders the requested formats, or returns cached
// artifacts, and reports whether every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes to the cache, retrying transient failures. Cache write errors
// never fail a run.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
