// Package pipeline provides the core plot production pipeline.
//
// This package implements the complete load → assemble → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate a result bundle from disk or raw bytes
//  2. Assemble: Build the declarative plot specification from the bundle
//  3. Render: Generate output in various formats (SVG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "run42.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openpmx/vpc/pkg/cache"
	"github.com/openpmx/vpc/pkg/plot"
	"github.com/openpmx/vpc/pkg/plot/sink"
	"github.com/openpmx/vpc/pkg/result"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = sink.DefaultWidth

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = sink.DefaultHeight
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the plot pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Input string `json:"input,omitempty"` // Path to a result bundle file
	Raw   []byte `json:"raw,omitempty"`   // Raw bundle bytes (takes precedence over Input)

	// Assemble options
	Show              map[string]bool `json:"show,omitempty"`
	Smooth            bool            `json:"smooth,omitempty"`
	LogX              bool            `json:"log_x,omitempty"`
	LogY              bool            `json:"log_y,omitempty"`
	Title             string          `json:"title,omitempty"`
	XLab              string          `json:"xlab,omitempty"`
	YLab              string          `json:"ylab,omitempty"`
	Facet             string          `json:"facet,omitempty"`
	SurvivalAsPercent bool            `json:"survival_as_percent,omitempty"`
	PredCorrected     bool            `json:"pred_corrected,omitempty"`
	Verbose           bool            `json:"verbose,omitempty"`

	// Theme is an optional theme override. The zero value keeps the default
	// theme; partial themes are merged per category.
	Theme *plot.Theme `json:"theme,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Bundle is the loaded result bundle.
	Bundle *result.Bundle

	// BundleHash is the content hash of the raw bundle bytes.
	BundleHash string

	// Spec is the assembled plot specification.
	Spec *plot.Spec

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LayerCount   int
	LoadTime     time.Duration
	AssembleTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SpecHit   bool // Whether the assembled spec came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a bundle.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" && len(o.Raw) == 0 {
		return fmt.Errorf("input path or raw bundle is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// PlotConfig converts pipeline options to the assembly configuration.
func (o *Options) PlotConfig() plot.Config {
	cfg := plot.Config{
		Show:              o.Show,
		Smooth:            o.Smooth,
		LogX:              o.LogX,
		LogY:              o.LogY,
		Title:             o.Title,
		XLab:              o.XLab,
		YLab:              o.YLab,
		Facet:             o.Facet,
		SurvivalAsPercent: o.SurvivalAsPercent,
		PredCorrected:     o.PredCorrected,
		Verbose:           o.Verbose,
		Logger:            o.Logger,
	}
	if o.Theme != nil {
		cfg.Theme = o.Theme
	}
	return cfg
}

// SpecKeyOpts returns cache key options for spec assembly.
func (o *Options) SpecKeyOpts() cache.SpecKeyOpts {
	return cache.SpecKeyOpts{
		Show:          o.Show,
		Smooth:        o.Smooth,
		LogX:          o.LogX,
		LogY:          o.LogY,
		Title:         o.Title,
		XLab:          o.XLab,
		YLab:          o.YLab,
		Facet:         o.Facet,
		Percent:       o.SurvivalAsPercent,
		PredCorrected: o.PredCorrected,
		ThemeHash:     o.themeHash(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
	}
}

// themeHash fingerprints the theme override for cache keys.
func (o *Options) themeHash() string {
	if o.Theme == nil {
		return ""
	}
	data, err := plot.EncodeTheme(*o.Theme)
	if err != nil {
		return "override"
	}
	return cache.Hash(data)
}
