// Package sink converts assembled plot specifications to output artifacts.
//
// # Overview
//
// A [plot.Spec] is a declarative layer stack; sinks fold it into concrete
// formats:
//
//   - [RenderJSON] emits the specification as a JSON document, the primary
//     interchange format. External rendering backends (ggplot-style tooling,
//     browser canvases) consume this directly.
//   - [RenderSVG] is the built-in demonstration backend: it lays the layer
//     stack out into facet panels and draws ribbons, rectangles, lines, step
//     functions, points, and rug ticks with the styles resolved during
//     assembly.
//
// Both sinks are pure: identical specs produce identical bytes, and neither
// mutates the spec.
package sink
