package sink

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/openpmx/vpc/pkg/plot"
)

// Default frame dimensions in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Margins around the panel area, leaving room for titles and axis labels.
const (
	marginLeft   = 60.0
	marginRight  = 20.0
	marginTop    = 40.0
	marginBottom = 50.0
	panelGap     = 14.0
	stripHeight  = 18.0
)

// Hue palette for color stratification, applied to sorted distinct values
// so the assignment is deterministic.
var huePalette = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#a65628", "#f781bf", "#999999",
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width  float64
	height float64
}

// WithSVGSize overrides the default frame dimensions.
func WithSVGSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width = w; r.height = h }
}

// RenderSVG folds the layer stack into an SVG document: facet panels laid
// out per the facet directive, layers drawn bottom-up with their resolved
// styles. Identical specs produce identical bytes.
func RenderSVG(spec *plot.Spec, opts ...SVGOption) []byte {
	r := svgRenderer{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(&r)
	}

	panels := layoutPanels(spec)
	xmin, xmax, ymin, ymax := dataRange(spec)
	hues := hueColors(spec)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, `<rect width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", r.width, r.height)

	if spec.Title != "" {
		fmt.Fprintf(&buf, `<text x="%.1f" y="22" text-anchor="middle" font-size="15" font-family="sans-serif">%s</text>`+"\n",
			r.width/2, escape(spec.Title))
	}

	plotW := r.width - marginLeft - marginRight
	plotH := r.height - marginTop - marginBottom
	panelW := (plotW - panelGap*float64(panels.ncols-1)) / float64(panels.ncols)
	panelH := (plotH - panelGap*float64(panels.nrows-1)) / float64(panels.nrows)

	for _, p := range panels.panels {
		px := marginLeft + float64(p.colIdx)*(panelW+panelGap)
		py := marginTop + float64(p.rowIdx)*(panelH+panelGap)
		renderPanel(&buf, spec, p, px, py, panelW, panelH, xmin, xmax, ymin, ymax, hues)
	}

	// Axis labels.
	if spec.XLab != "" {
		fmt.Fprintf(&buf, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="12" font-family="sans-serif">%s</text>`+"\n",
			marginLeft+plotW/2, r.height-12, escape(spec.XLab))
	}
	if spec.YLab != "" {
		fmt.Fprintf(&buf, `<text x="16" y="%.1f" text-anchor="middle" font-size="12" font-family="sans-serif" transform="rotate(-90 16 %.1f)">%s</text>`+"\n",
			marginTop+plotH/2, marginTop+plotH/2, escape(spec.YLab))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// =============================================================================
// Panel Layout
// =============================================================================

type panel struct {
	rowKey, colKey string
	rowIdx, colIdx int
	label          string
}

type panelGrid struct {
	panels []panel
	nrows  int
	ncols  int
}

// layoutPanels partitions the spec's data into facet panels. Wrap layouts
// fill a near-square grid; grid layouts key panels by their stratum values.
func layoutPanels(spec *plot.Spec) panelGrid {
	f := spec.Facet
	if f.Kind == plot.FacetNone {
		return panelGrid{panels: []panel{{}}, nrows: 1, ncols: 1}
	}

	rowKeys := map[string]bool{}
	colKeys := map[string]bool{}
	for _, l := range spec.Layers {
		for _, d := range l.Data {
			rk, ck := f.PanelKey(d.Stratum)
			rowKeys[rk] = true
			colKeys[ck] = true
		}
	}
	rows := sortedKeys(rowKeys)
	cols := sortedKeys(colKeys)

	switch f.Kind {
	case plot.FacetWrap:
		n := len(cols)
		if n == 0 {
			return panelGrid{panels: []panel{{}}, nrows: 1, ncols: 1}
		}
		ncols := int(math.Ceil(math.Sqrt(float64(n))))
		nrows := (n + ncols - 1) / ncols
		g := panelGrid{nrows: nrows, ncols: ncols}
		for i, ck := range cols {
			g.panels = append(g.panels, panel{
				colKey: ck,
				rowIdx: i / ncols,
				colIdx: i % ncols,
				label:  ck,
			})
		}
		return g

	case plot.FacetGridRow:
		g := panelGrid{nrows: max(len(rows), 1), ncols: 1}
		for i, rk := range rows {
			g.panels = append(g.panels, panel{rowKey: rk, rowIdx: i, label: rk})
		}
		return g

	case plot.FacetGridCol:
		g := panelGrid{nrows: 1, ncols: max(len(cols), 1)}
		for i, ck := range cols {
			g.panels = append(g.panels, panel{colKey: ck, colIdx: i, label: ck})
		}
		return g

	case plot.FacetGridBoth:
		g := panelGrid{nrows: max(len(rows), 1), ncols: max(len(cols), 1)}
		for ri, rk := range rows {
			for ci, ck := range cols {
				g.panels = append(g.panels, panel{
					rowKey: rk, colKey: ck,
					rowIdx: ri, colIdx: ci,
					label: joinNonEmpty(rk, ck),
				})
			}
		}
		return g
	}

	return panelGrid{panels: []panel{{}}, nrows: 1, ncols: 1}
}

// =============================================================================
// Panel Rendering
// =============================================================================

func renderPanel(buf *bytes.Buffer, spec *plot.Spec, p panel, px, py, pw, ph, xmin, xmax, ymin, ymax float64, hues map[string]string) {
	areaTop := py
	if p.label != "" {
		fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#e8e8e8"/>`+"\n", px, py, pw, stripHeight)
		fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="11" font-family="sans-serif">%s</text>`+"\n",
			px+pw/2, py+13, escape(p.label))
		areaTop += stripHeight
		ph -= stripHeight
	}

	sx := func(x float64) float64 {
		return px + (xval(spec, x)-xval(spec, xmin))/(xval(spec, xmax)-xval(spec, xmin))*pw
	}
	sy := func(y float64) float64 {
		return areaTop + ph - (yval(spec, y)-yval(spec, ymin))/(yval(spec, ymax)-yval(spec, ymin))*ph
	}

	fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#cccccc"/>`+"\n",
		px, areaTop, pw, ph)

	for _, l := range spec.Layers {
		data := panelData(spec, l, p)
		if len(data) == 0 {
			continue
		}
		renderLayer(buf, l, data, sx, sy, areaTop, ph, hues)
	}
}

// panelData filters a layer's data down to one panel. Separator layers have
// no stratum and appear in every panel.
func panelData(spec *plot.Spec, l plot.Layer, p panel) []plot.Datum {
	if spec.Facet.Kind == plot.FacetNone || l.Geom == plot.GeomRug {
		return l.Data
	}
	var out []plot.Datum
	for _, d := range l.Data {
		rk, ck := spec.Facet.PanelKey(d.Stratum)
		if matchKey(rk, p.rowKey, spec.Facet.Kind != plot.FacetGridCol && spec.Facet.Kind != plot.FacetWrap) &&
			matchKey(ck, p.colKey, spec.Facet.Kind != plot.FacetGridRow) {
			out = append(out, d)
		}
	}
	return out
}

func matchKey(val, want string, keyed bool) bool {
	if !keyed {
		return true
	}
	return val == want
}

func renderLayer(buf *bytes.Buffer, l plot.Layer, data []plot.Datum, sx, sy func(float64) float64, areaTop, ph float64, hues map[string]string) {
	switch l.Geom {
	case plot.GeomRibbon:
		for _, group := range hueGroups(l, data) {
			renderRibbon(buf, l, group, sx, sy, hues)
		}
	case plot.GeomRect:
		for _, d := range data {
			fill := fillColor(l, d, hues)
			fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="%.3f"/>`+"\n",
				sx(d.X0), sy(d.Y1), sx(d.X1)-sx(d.X0), sy(d.Y0)-sy(d.Y1), fill, l.Style.Alpha)
		}
	case plot.GeomLine, plot.GeomStep:
		for _, group := range hueGroups(l, data) {
			renderPath(buf, l, group, sx, sy, hues, l.Geom == plot.GeomStep)
		}
	case plot.GeomPoint:
		for _, d := range data {
			color := strokeColor(l, d, hues)
			if l.Style.Shape == plot.ShapeTick {
				fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f"/>`+"\n",
					sx(d.X), sy(d.Y)-4, sx(d.X), sy(d.Y)+4, color, l.Style.Alpha)
				continue
			}
			fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.1f" fill="%s" fill-opacity="%.3f"/>`+"\n",
				sx(d.X), sy(d.Y), 1.5+l.Style.Size, color, l.Style.Alpha)
		}
	case plot.GeomRug:
		for _, d := range data {
			fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f"/>`+"\n",
				sx(d.X), areaTop+ph-8, sx(d.X), areaTop+ph, l.Style.Color, l.Style.Alpha)
		}
	}
}

// hueGroups splits data by hue value so each group is drawn as its own
// path. Layers without a hue mapping form a single group.
func hueGroups(l plot.Layer, data []plot.Datum) [][]plot.Datum {
	if l.ColorBy == plot.FieldNone {
		return [][]plot.Datum{data}
	}
	byHue := map[string][]plot.Datum{}
	for _, d := range data {
		byHue[d.Hue] = append(byHue[d.Hue], d)
	}
	var out [][]plot.Datum
	for _, k := range sortedKeys(boolKeys(byHue)) {
		out = append(out, byHue[k])
	}
	return out
}

func renderRibbon(buf *bytes.Buffer, l plot.Layer, data []plot.Datum, sx, sy func(float64) float64, hues map[string]string) {
	if len(data) == 0 {
		return
	}
	sorted := append([]plot.Datum(nil), data...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var pts bytes.Buffer
	for _, d := range sorted {
		fmt.Fprintf(&pts, "%.2f,%.2f ", sx(d.X), sy(d.Y1))
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		fmt.Fprintf(&pts, "%.2f,%.2f ", sx(sorted[i].X), sy(sorted[i].Y0))
	}
	fmt.Fprintf(buf, `<polygon points="%s" fill="%s" fill-opacity="%.3f"/>`+"\n",
		pts.String(), fillColor(l, sorted[0], hues), l.Style.Alpha)
}

func renderPath(buf *bytes.Buffer, l plot.Layer, data []plot.Datum, sx, sy func(float64) float64, hues map[string]string, step bool) {
	if len(data) == 0 {
		return
	}
	sorted := append([]plot.Datum(nil), data...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var pts bytes.Buffer
	for i, d := range sorted {
		if step && i > 0 {
			// Right-continuous step: hold the previous y until this x.
			fmt.Fprintf(&pts, "%.2f,%.2f ", sx(d.X), sy(sorted[i-1].Y))
		}
		fmt.Fprintf(&pts, "%.2f,%.2f ", sx(d.X), sy(d.Y))
	}
	fmt.Fprintf(buf, `<polyline points="%s" fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="%.1f"%s/>`+"\n",
		pts.String(), strokeColor(l, sorted[0], hues), l.Style.Alpha, l.Style.Size*1.4, dashArray(l.Style.LineType))
}

// =============================================================================
// Scales and Styling
// =============================================================================

// dataRange scans every layer for the spanned x and y extents.
func dataRange(spec *plot.Spec) (xmin, xmax, ymin, ymax float64) {
	var xs, ys []float64
	for _, l := range spec.Layers {
		for _, d := range l.Data {
			switch l.Geom {
			case plot.GeomRect:
				xs = append(xs, d.X0, d.X1)
				ys = append(ys, d.Y0, d.Y1)
			case plot.GeomRibbon:
				xs = append(xs, d.X)
				ys = append(ys, d.Y0, d.Y1)
			case plot.GeomRug:
				xs = append(xs, d.X)
			default:
				xs = append(xs, d.X)
				ys = append(ys, d.Y)
			}
		}
	}
	xmin, xmax = rangeOf(xs, 0, 1)
	ymin, ymax = rangeOf(ys, 0, 1)
	return xmin, xmax, ymin, ymax
}

// rangeOf computes [min, max] of vals with a fallback for empty or
// degenerate input.
func rangeOf(vals []float64, fallbackMin, fallbackMax float64) (float64, float64) {
	lo, errLo := stats.Min(vals)
	hi, errHi := stats.Max(vals)
	if errLo != nil || errHi != nil || lo == hi {
		return fallbackMin, fallbackMax
	}
	return lo, hi
}

// xval and yval apply the axis transforms to a data value.
func xval(spec *plot.Spec, v float64) float64 {
	if spec.LogX && v > 0 {
		return math.Log10(v)
	}
	return v
}

func yval(spec *plot.Spec, v float64) float64 {
	if spec.LogY && v > 0 {
		return math.Log10(v)
	}
	if spec.YPercent {
		return v * 100
	}
	return v
}

func strokeColor(l plot.Layer, d plot.Datum, hues map[string]string) string {
	if l.ColorBy != plot.FieldNone {
		if c, ok := hues[d.Hue]; ok {
			return c
		}
	}
	return l.Style.Color
}

func fillColor(l plot.Layer, d plot.Datum, hues map[string]string) string {
	if l.ColorBy != plot.FieldNone {
		if c, ok := hues[d.Hue]; ok {
			return c
		}
	}
	if l.Style.Fill != "" {
		return l.Style.Fill
	}
	return l.Style.Color
}

func dashArray(lt plot.LineType) string {
	switch lt {
	case plot.LineDashed:
		return ` stroke-dasharray="6 4"`
	case plot.LineDotted:
		return ` stroke-dasharray="2 3"`
	}
	return ""
}

// hueColors assigns palette colors to the sorted distinct hue values.
func hueColors(spec *plot.Spec) map[string]string {
	vals := map[string]bool{}
	for _, l := range spec.Layers {
		if l.ColorBy == plot.FieldNone {
			continue
		}
		for _, d := range l.Data {
			if d.Hue != "" {
				vals[d.Hue] = true
			}
		}
	}
	out := map[string]string{}
	for i, v := range sortedKeys(vals) {
		out[v] = huePalette[i%len(huePalette)]
	}
	return out
}

// =============================================================================
// Helpers
// =============================================================================

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolKeys(m map[string][]plot.Datum) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " / " + b
}

func escape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
