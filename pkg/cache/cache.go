// Package cache provides pluggable caching for plot assembly artifacts.
//
// # Overview
//
// Assembling a plot specification from a result bundle is deterministic, so
// repeated runs over the same bundle and options can reuse earlier output.
// The package separates two concerns:
//
//   - Cache: a byte-level store with TTL semantics. Backends exist for the
//     filesystem (CLI usage), Redis (server usage), and a no-op null cache.
//   - Keyer: deterministic key construction from the inputs that actually
//     change the output (bundle hash, assembly options, render format).
//
// # Key Hierarchy
//
// Keys form a pipeline: the bundle hash keys the parsed bundle, the spec key
// adds the assembly options, and the artifact key adds the render format.
// Changing any input upstream invalidates everything downstream.
package cache

import (
	"context"
	"sort"
	"time"
)

// Default TTLs per entry kind. Specs are cheap to rebuild, so they expire
// faster than rendered artifacts.
const (
	SpecTTL     = 6 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte-level store with TTL semantics. Get reports a miss with
// found=false and a nil error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SpecKeyOpts captures the assembly options that affect the produced plot
// specification.
type SpecKeyOpts struct {
	Show          map[string]bool
	Smooth        bool
	LogX          bool
	LogY          bool
	Title         string
	XLab          string
	YLab          string
	Facet         string
	Percent       bool
	PredCorrected bool
	ThemeHash     string
}

// ArtifactKeyOpts captures the render options that affect the final bytes.
type ArtifactKeyOpts struct {
	Format string
	Width  float64
	Height float64
}

// Keyer builds deterministic cache keys for the assembly pipeline stages.
type Keyer interface {
	// BundleKey keys a parsed result bundle by its content hash.
	BundleKey(bundleHash string) string

	// SpecKey keys an assembled plot specification.
	SpecKey(bundleHash string, opts SpecKeyOpts) string

	// ArtifactKey keys a rendered artifact.
	ArtifactKey(specHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BundleKey generates a key for a parsed bundle.
func (k *DefaultKeyer) BundleKey(bundleHash string) string {
	return hashKey("bundle", bundleHash)
}

// SpecKey generates a key for an assembled specification.
func (k *DefaultKeyer) SpecKey(bundleHash string, opts SpecKeyOpts) string {
	return hashKey("spec", bundleHash, sortedShow(opts.Show), opts.Smooth, opts.LogX, opts.LogY,
		opts.Title, opts.XLab, opts.YLab, opts.Facet, opts.Percent, opts.PredCorrected, opts.ThemeHash)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(specHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", specHash, opts.Format, opts.Width, opts.Height)
}

// sortedShow flattens a show overlay into a stable form. Map iteration order
// must not leak into key material.
func sortedShow(show map[string]bool) []string {
	if len(show) == 0 {
		return nil
	}
	keys := make([]string, 0, len(show))
	for k := range show {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		if show[k] {
			out[i] = k + "=true"
		} else {
			out[i] = k + "=false"
		}
	}
	return out
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
