package plot

import "github.com/openpmx/vpc/pkg/result"

// =============================================================================
// Geometry and Category Constants
// =============================================================================

// Geom identifies the drawable primitive of a layer.
type Geom string

// Supported layer geometries.
const (
	GeomLine   Geom = "line"   // connected polyline through (X, Y)
	GeomStep   Geom = "step"   // right-continuous step function through (X, Y)
	GeomRibbon Geom = "ribbon" // area between (X, Y0) and (X, Y1)
	GeomRect   Geom = "rect"   // rectangles spanning (X0..X1, Y0..Y1)
	GeomPoint  Geom = "point"  // scatter markers at (X, Y)
	GeomRug    Geom = "rug"    // tick marks at X values along the axis
)

// Category names the theme category a layer draws its style from.
type Category string

// Theme categories. Every layer references exactly one of these.
const (
	CategoryObs           Category = "obs"
	CategoryObsMedian     Category = "obs_median"
	CategoryObsCI         Category = "obs_ci"
	CategorySimMedian     Category = "sim_median"
	CategorySimPI         Category = "sim_pi"
	CategoryBinSeparators Category = "bin_separators"
)

// FieldRef names a stratum field of the aggregated tables. Facet axes and
// hue mappings reference stratum fields through these instead of re-checking
// column presence at render time.
type FieldRef string

// Stratum field references.
const (
	FieldNone      FieldRef = ""
	FieldCombined  FieldRef = "strat"
	FieldPrimary   FieldRef = "strat1"
	FieldSecondary FieldRef = "strat2"
)

// Value extracts the referenced field from a stratum. Single-column
// stratifications store their value in the combined field, so the primary
// reference falls back to it.
func (f FieldRef) Value(s result.Stratum) string {
	switch f {
	case FieldCombined:
		return s.Combined
	case FieldPrimary:
		if s.Primary != "" {
			return s.Primary
		}
		return s.Combined
	case FieldSecondary:
		return s.Secondary
	}
	return ""
}

// =============================================================================
// Layer
// =============================================================================

// Datum is one record of a layer's data. Which coordinates are meaningful
// depends on the layer geometry: lines, steps, points, and rugs use X/Y,
// ribbons use X with Y0/Y1, rects use X0/X1 with Y0/Y1.
type Datum struct {
	X  float64 `json:"x,omitempty"`
	X0 float64 `json:"x0,omitempty"`
	X1 float64 `json:"x1,omitempty"`
	Y  float64 `json:"y,omitempty"`
	Y0 float64 `json:"y0,omitempty"`
	Y1 float64 `json:"y1,omitempty"`

	Stratum   result.Stratum `json:"stratum,omitempty"`
	Hue       string         `json:"hue,omitempty"`       // value of the color-mapped field
	Replicate int            `json:"replicate,omitempty"` // simulation replicate (TTE overlay)
}

// Layer is a single drawable directive: a geometry, its data, and a resolved
// style. Layers are immutable once constructed; a rendering backend folds
// the ordered layer slice into its native plot object bottom-up.
type Layer struct {
	Name     string   `json:"name"`               // stable identifier, e.g. "sim.median.ci"
	Category Category `json:"category"`           // theme category the style came from
	Geom     Geom     `json:"geom"`               //
	Style    Style    `json:"style"`              // fully resolved style attributes
	ColorBy  FieldRef `json:"color_by,omitempty"` // stratum field mapped to hue, if any
	Data     []Datum  `json:"data"`
}

// =============================================================================
// Facet Directive
// =============================================================================

// FacetKind identifies the paneling arrangement of a plot.
type FacetKind string

// Facet arrangements.
const (
	FacetNone     FacetKind = "none"
	FacetWrap     FacetKind = "wrap"
	FacetGridRow  FacetKind = "grid_row"
	FacetGridCol  FacetKind = "grid_col"
	FacetGridBoth FacetKind = "grid_both"
)

// Facet is the paneling directive attached to a Spec. Row/Col carry the
// display names of the faceted stratification columns; RowField/ColField say
// which stratum field keys each axis so backends never have to re-derive it.
type Facet struct {
	Kind     FacetKind `json:"kind"`
	Row      string    `json:"row,omitempty"`
	Col      string    `json:"col,omitempty"`
	RowField FieldRef  `json:"row_field,omitempty"`
	ColField FieldRef  `json:"col_field,omitempty"`
}

// PanelKey returns the (row, col) panel assignment for a stratum under this
// facet directive. Wrap layouts use only the col key.
func (f Facet) PanelKey(s result.Stratum) (row, col string) {
	return f.RowField.Value(s), f.ColField.Value(s)
}

// =============================================================================
// Spec
// =============================================================================

// Spec is the complete declarative plot specification: the ordered layer
// stack plus facet directive, axis labels, and scale transforms. It has no
// behavior of its own; rendering backends interpret it.
type Spec struct {
	Modality result.Modality `json:"modality"`
	Layers   []Layer         `json:"layers"`
	Facet    Facet           `json:"facet"`

	Title string `json:"title,omitempty"`
	XLab  string `json:"xlab,omitempty"`
	YLab  string `json:"ylab,omitempty"`

	LogX bool `json:"log_x,omitempty"`
	LogY bool `json:"log_y,omitempty"`

	// Time-to-event only: render the y axis as a 0-100 percentage.
	YPercent bool      `json:"y_percent,omitempty"`
	YBreaks  []float64 `json:"y_breaks,omitempty"`

	// ColorColumn is the display name of the column behind the hue scale,
	// empty when no color stratification applies. LegendTitle stays empty
	// for color stratification; the field records that this was deliberate.
	ColorColumn string `json:"color_column,omitempty"`
	LegendTitle string `json:"legend_title"`
}

// Layer returns the first layer with the given name, or nil.
func (s *Spec) Layer(name string) *Layer {
	for i := range s.Layers {
		if s.Layers[i].Name == name {
			return &s.Layers[i]
		}
	}
	return nil
}

// HasLayer reports whether a layer with the given name is present.
func (s *Spec) HasLayer(name string) bool { return s.Layer(name) != nil }
