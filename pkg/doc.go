// Package pkg provides the core libraries for VPC plot assembly.
//
// # Overview
//
// A visual predictive check (VPC) compares observed data against the
// spread of model simulations. This module takes precomputed VPC
// statistics and turns them into renderable plot descriptions. The pkg
// directory is organized into four main areas:
//
//  1. [result] - Bundle loading and validation (binned statistics)
//  2. [plot] - Assembly (bundle + config → layered plot spec) and theming
//  3. [plot/sink] - Output formats (SVG, JSON)
//  4. [pipeline] - Orchestration (load → assemble → render) with caching
//
// # Architecture
//
// The typical data flow:
//
//	result.Bundle (JSON)
//	         ↓
//	    [result] package (decode + validate)
//	         ↓
//	    [plot] package (layer assembly, faceting, theming)
//	         ↓
//	    [plot/sink] package (SVG/JSON output)
//
// # Quick Start
//
// Load a bundle and render it to SVG:
//
//	import (
//	    "os"
//	    "github.com/openpmx/vpc/pkg/plot"
//	    "github.com/openpmx/vpc/pkg/plot/sink"
//	    "github.com/openpmx/vpc/pkg/result"
//	)
//
//	// 1. Load the statistics bundle
//	f, _ := os.Open("vpc.json")
//	bundle, _ := result.Read(f)
//
//	// 2. Assemble the plot
//	spec, _ := plot.Assemble(bundle, plot.Config{})
//
//	// 3. Render to SVG
//	svg := sink.RenderSVG(spec)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [result] - Statistics bundle types for the three modalities
// (continuous, categorical, time-to-event) with strict structural
// validation on load.
//
// [plot] - Turns a bundle into an ordered layer stack. Handles show
// flags, prediction-interval areas, smooth versus rectangular bands,
// stratification and faceting, log scales, and theme resolution.
//
// [plot/sink] - Serializes an assembled spec to standalone SVG or to a
// JSON envelope for downstream tooling.
//
// ## Infrastructure
//
// [pipeline] - Complete assembly pipeline (load → assemble → render)
// used by CLI and API. Caches assembled specs and rendered artifacts.
//
// [cache] - Cache interface with file, Redis, and null backends plus
// the deterministic key hierarchy (bundle → spec → artifact).
//
// [store] - Persistence for assembled plots. MemoryStore for tests and
// single-process use, MongoStore for the API server.
//
// [errors] - Structured errors with stable codes and user-facing
// messages.
//
// [observability] - Hook registry for assembly and cache events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/plot/...     # Specific package
//
// [result]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/result
// [plot]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/plot
// [plot/sink]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/plot/sink
// [pipeline]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/cache
// [store]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/store
// [errors]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/errors
// [observability]: https://pkg.go.dev/github.com/openpmx/vpc/pkg/observability
package pkg
