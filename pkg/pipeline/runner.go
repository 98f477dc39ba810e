package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/cache"
	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/layout"
	"github.com/matzehuels/erdlayout/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different diagrams.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the default lifetime of layout and render entries.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute reads the diagram at path, lays it out and renders opts.Formats.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	parseStart := time.Now()
	d, err := r.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	parseTime := time.Since(parseStart)

	result, err := r.Run(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Timing.Parse = parseTime
	return result, nil
}

// Run lays out d in place and renders opts.Formats.
func (r *Runner) Run(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{
		Diagram:     d,
		DiagramHash: cache.Hash(diagram.Fingerprint(d)),
	}

	layoutStart := time.Now()
	stats, hit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats = stats
	result.CacheInfo.LayoutHit = hit
	result.Timing.Layout = time.Since(layoutStart)

	r.logger(opts).Info("computed layout",
		"entities", stats.Nodes,
		"relationships", stats.Edges,
		"crossings", stats.Crossings,
		"cached", hit,
		"duration", result.Timing.Layout)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Timing.Render = time.Since(renderStart)

	r.logger(opts).Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Timing.Render)

	return result, nil
}

// Parse reads a JSON or YAML diagram file.
func (r *Runner) Parse(ctx context.Context, path string) (*diagram.Diagram, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, path)
	start := time.Now()

	d, err := diagram.ReadFile(path)
	if err != nil {
		hooks.OnParseComplete(ctx, path, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnParseComplete(ctx, path, len(d.Entities()), time.Since(start), nil)
	return d, nil
}

type cachedLayout struct {
	Stats    layout.Stats    `json:"stats"`
	Document json.RawMessage `json:"document"`
}

// LayoutWithCacheInfo lays out d in place and reports whether the result
// came from the cache. A cached layout is applied by element order, so it
// only hits for diagrams with the same fingerprint.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d *diagram.Diagram, opts Options) (layout.Stats, bool, error) {
	key := r.Keyer.LayoutKey(cache.Hash(diagram.Fingerprint(d)), opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if stats, ok := r.fromCache(ctx, key, d); ok {
			hooks.OnCacheHit(ctx, "layout")
			return stats, true, nil
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	stats, err := Layout(ctx, d, opts.LayoutConfig(), r.logger(opts))
	if err != nil {
		return layout.Stats{}, false, err
	}

	var doc bytes.Buffer
	if err := diagram.Write(d, &doc); err == nil {
		if data, err := json.Marshal(cachedLayout{Stats: stats, Document: doc.Bytes()}); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.LayoutTTL)); err != nil {
				r.logger(opts).Warn("cache write failed", "err", err)
			} else {
				hooks.OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return stats, false, nil
}

func (r *Runner) fromCache(ctx context.Context, key string, d *diagram.Diagram) (layout.Stats, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return layout.Stats{}, false
	}
	var cached cachedLayout
	if err := json.Unmarshal(data, &cached); err != nil {
		return layout.Stats{}, false
	}
	src, err := diagram.Read(bytes.NewReader(cached.Document))
	if err != nil {
		return layout.Stats{}, false
	}
	if err := d.Apply(src); err != nil {
		return layout.Stats{}, false
	}
	return cached.Stats, true
}

// Layout lays out d in place without caching.
func Layout(ctx context.Context, d *diagram.Diagram, cfg layout.Config, logger *log.Logger) (layout.Stats, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, d.Name, len(d.Entities()))

	l := layout.New(cfg, layout.WithLogger(logger))
	err := d.Populate(l)
	if err == nil {
		err = l.Layout()
	}
	hooks.OnLayoutComplete(ctx, d.Name, l.Stats(), err)
	if err != nil {
		return layout.Stats{}, err
	}
	return l.Stats(), nil
}

// RenderWithCacheInfo renders every requested format of the laid-out d and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *diagram.Diagram, opts Options) (map[string][]byte, bool, error) {
	var doc bytes.Buffer
	if err := diagram.Write(d, &doc); err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(doc.Bytes())
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				hooks.OnCacheHit(ctx, "render")
				artifacts[format] = data
				continue
			}
			hooks.OnCacheMiss(ctx, "render")
		}
		allCached = false

		data, err := Render(ctx, d, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.RenderTTL)); err == nil {
			hooks.OnCacheSet(ctx, "render", len(data))
		}
	}
	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
