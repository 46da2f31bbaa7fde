package plot

import (
	charmlog "github.com/charmbracelet/log"
)

// Config carries the user-facing assembly options. The zero value is usable:
// default show flags, default theme, wrap faceting, no transforms.
type Config struct {
	// Show holds partial overrides for the display flags; see [ResolveShow]
	// for the recognized keys. Unrecognized keys abort assembly.
	Show map[string]bool

	// Theme is a [Theme] or *[Theme] with partial style overrides. Values of
	// any other type silently fall back to the default theme.
	Theme any

	// Smooth draws bands as continuous ribbons anchored at bin midpoints
	// instead of discrete rectangles anchored at bin extents.
	Smooth bool

	// Log-scale transforms, applied after all layers and faceting.
	LogX bool
	LogY bool

	// Title and axis labels. Empty strings select modality-specific
	// defaults.
	Title string
	XLab  string
	YLab  string

	// Facet orientation preference: "wrap" (default), "rows", or "columns".
	Facet string

	// SurvivalAsPercent renders the time-to-event y axis as a 0-100
	// percentage with fixed breaks.
	SurvivalAsPercent bool

	// PredCorrected marks the bundle as prediction-corrected, which only
	// changes the default y-axis label. The correction itself happens
	// upstream during aggregation.
	PredCorrected bool

	// Verbose enables diagnostic emission for locally recovered conditions
	// (e.g. step-function degradation).
	Verbose bool

	// Logger receives diagnostics when Verbose is set. Defaults to the
	// package-default logger.
	Logger *charmlog.Logger
}

// logger returns the configured logger, falling back to the default.
func (c Config) logger() *charmlog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return charmlog.Default()
}

// diagf emits a diagnostic when verbose logging is enabled.
func (c Config) diagf(format string, args ...any) {
	if c.Verbose {
		c.logger().Warnf(format, args...)
	}
}
