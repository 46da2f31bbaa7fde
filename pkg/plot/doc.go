// Package plot assembles declarative layer stacks for Visual Predictive
// Checks.
//
// # Overview
//
// A Visual Predictive Check (VPC) compares observed data against data
// simulated from a pharmacometric model, summarized into percentile bands
// over an independent variable (typically time). This package consumes the
// pre-aggregated [result.Bundle] produced by an upstream aggregation stage
// and decides, from a set of display flags, which statistical bands, lines,
// and facets to render. The output is an ordered stack of [Layer] values
// plus facet and axis directives: a [Spec] any rendering backend can fold
// into its native plot object.
//
// # Pipeline
//
//	bundle, err := result.ReadFile("vpc.json")
//	spec, err := plot.Assemble(bundle, plot.Config{Smooth: true})
//	svg := sink.RenderSVG(spec)
//
// # Modalities
//
// Continuous, censored, and categorical bundles share one assembly path:
// simulated percentile bands, observed percentile lines, raw observation
// points, and bin separators, each gated by a [Show] flag. Time-to-event
// bundles follow a separate path: per-replicate survival overlays,
// Kaplan-Meier confidence areas, censoring ticks, and step-function curves.
//
// # Purity
//
// Assembly is a pure function of the bundle and configuration: no I/O, no
// shared mutable state, deterministic layer order and styling. Concurrent
// calls are safe as long as each receives its own Config.
package plot
