package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tidytree/pkg/cache"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/observability"
)

const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options. Cache failures are logged and never fail
// a run.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs the complete decode → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	result := &Result{DocHash: src.Hash()}

	decodeStart := time.Now()
	doc, err := r.Decode(ctx, src)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.DecodeTime = time.Since(decodeStart)

	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, doc, result.DocHash, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Nodes = layout.Stats.Nodes
	result.Stats.ContourSteps = layout.Stats.ContourSteps
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"nodes", layout.Stats.Nodes,
		"contour_steps", layout.Stats.ContourSteps,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Decode parses a source into a document.
func (r *Runner) Decode(ctx context.Context, src Source) (*literal.Document, error) {
	return Decode(ctx, src)
}

// LayoutWithCacheInfo computes the fitted layout of a document with caching
// and returns cache hit info. docHash identifies the document content.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *literal.Document, docHash string, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.ApplyDocument(doc.Options)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, opts.Logger, keyTypeLayout, cacheKey); hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				return cached, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "error", err)
		}
	}

	layout, err := GenerateLayout(ctx, doc, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	layout.ID = LayoutID(cacheKey)

	if data, err := graph.MarshalLayout(layout); err == nil {
		r.cacheSet(ctx, opts.Logger, keyTypeLayout, cacheKey, data, cache.TTLLayout)
	}
	return layout, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc *literal.Document, docHash string, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, doc, docHash, opts)
	return l, err
}

// Steps lays out every derivation step of a document. Unless set, the fit
// hints default to StepMinSpan and StepMinDepth so all steps share a scale.
func (r *Runner) Steps(ctx context.Context, doc *literal.Document, docHash string, opts Options) ([]graph.Layout, error) {
	if doc.Steps() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document has no derivation")
	}
	opts.ApplyDocument(doc.Options)
	if opts.MinSpan == 0 && !opts.IsPinned("min_span") {
		opts.MinSpan = StepMinSpan
	}
	if opts.MinDepth == 0 && !opts.IsPinned("min_depth") {
		opts.MinDepth = StepMinDepth
	}

	out := make([]graph.Layout, doc.Steps())
	for i := range out {
		stepOpts := opts
		stepOpts.Step = i + 1
		l, err := r.Layout(ctx, doc, docHash, stepOpts)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit := r.cacheGet(ctx, opts.Logger, keyTypeArtifact, key)
			if !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := RenderLayout(ctx, layout, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.cacheSet(ctx, opts.Logger, keyTypeArtifact, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheGet(ctx context.Context, logger *log.Logger, keyType, key string) ([]byte, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	switch {
	case err != nil:
		hooks.OnCacheError(ctx, keyType, err)
		logger.Warn("cache read failed", "type", keyType, "error", err)
		return nil, false
	case hit:
		hooks.OnCacheHit(ctx, keyType)
		return data, true
	default:
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
}

func (r *Runner) cacheSet(ctx context.Context, logger *log.Logger, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		observability.Cache().OnCacheError(ctx, keyType, err)
		logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
