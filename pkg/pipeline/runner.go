package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openpmx/vpc/pkg/cache"
	"github.com/openpmx/vpc/pkg/observability"
	"github.com/openpmx/vpc/pkg/plot"
	"github.com/openpmx/vpc/pkg/plot/sink"
	"github.com/openpmx/vpc/pkg/result"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
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

// Execute runs the complete load → assemble → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	res := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	bundle, raw, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Bundle = bundle
	res.BundleHash = cache.Hash(raw)
	res.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded bundle",
		"modality", bundle.Modality,
		"duration", res.Stats.LoadTime)

	// Stage 2: Assemble
	assembleStart := time.Now()
	spec, specHit, err := r.AssembleWithCacheInfo(ctx, bundle, res.BundleHash, opts)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	res.Spec = spec
	res.Stats.AssembleTime = time.Since(assembleStart)
	res.Stats.LayerCount = len(spec.Layers)
	res.CacheInfo.SpecHit = specHit

	r.Logger.Info("assembled plot",
		"layers", len(spec.Layers),
		"duration", res.Stats.AssembleTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, spec, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(renderStart)
	res.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// Load reads and validates the result bundle, returning the parsed bundle
// plus the raw bytes used for cache keys.
func (r *Runner) Load(ctx context.Context, opts Options) (*result.Bundle, []byte, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}

	source := opts.Input
	if len(opts.Raw) > 0 {
		source = "<raw>"
	}
	observability.Assembly().OnLoadStart(ctx, source)
	start := time.Now()

	raw := opts.Raw
	if len(raw) == 0 {
		data, err := os.ReadFile(opts.Input)
		if err != nil {
			observability.Assembly().OnLoadComplete(ctx, source, "", time.Since(start), err)
			return nil, nil, err
		}
		raw = data
	}

	bundle, err := result.Read(bytes.NewReader(raw))
	if err != nil {
		observability.Assembly().OnLoadComplete(ctx, source, "", time.Since(start), err)
		return nil, nil, err
	}
	if bundle.Name == "" && opts.Input != "" {
		bundle.Name = strippedName(opts.Input)
	}

	observability.Assembly().OnLoadComplete(ctx, source, string(bundle.Modality), time.Since(start), nil)
	return bundle, raw, nil
}

// AssembleWithCacheInfo assembles the plot specification with caching and
// returns cache hit info.
func (r *Runner) AssembleWithCacheInfo(ctx context.Context, bundle *result.Bundle, bundleHash string, opts Options) (*plot.Spec, bool, error) {
	r.applyLogger(&opts)
	cacheKey := r.Keyer.SpecKey(bundleHash, opts.SpecKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached plot.Spec
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "spec")
				return &cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "spec")
	}

	// Assemble
	observability.Assembly().OnAssembleStart(ctx, string(bundle.Modality))
	start := time.Now()
	spec, err := plot.Assemble(bundle, opts.PlotConfig())
	observability.Assembly().OnAssembleComplete(ctx, string(bundle.Modality), specLayers(spec), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := json.Marshal(spec); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.SpecTTL)
			observability.Cache().OnCacheSet(ctx, "spec", len(data))
		}
	}

	return spec, false, nil
}

// Assemble is a convenience wrapper that discards the cache hit info.
func (r *Runner) Assemble(ctx context.Context, bundle *result.Bundle, bundleHash string, opts Options) (*plot.Spec, error) {
	spec, _, err := r.AssembleWithCacheInfo(ctx, bundle, bundleHash, opts)
	return spec, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, spec *plot.Spec, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from the spec itself
	specData, err := json.Marshal(spec)
	if err != nil {
		return nil, false, fmt.Errorf("serialize spec for cache key: %w", err)
	}
	specHash := cache.Hash(specData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(specHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	observability.Assembly().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := r.render(spec, opts)
	observability.Assembly().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(specHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, spec *plot.Spec, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, spec, opts)
	return artifacts, err
}

// render produces each requested format from the assembled spec.
func (r *Runner) render(spec *plot.Spec, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			out[format] = sink.RenderSVG(spec, sink.WithSVGSize(opts.Width, opts.Height))
		case FormatJSON:
			sinkOpts := []sink.JSONOption{}
			if opts.Input != "" {
				sinkOpts = append(sinkOpts, sink.WithJSONSource(filepath.Base(opts.Input)))
			}
			data, err := sink.RenderJSON(spec, sinkOpts...)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			out[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func specLayers(spec *plot.Spec) int {
	if spec == nil {
		return 0
	}
	return len(spec.Layers)
}

// strippedName derives a display name from a bundle path.
func strippedName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
