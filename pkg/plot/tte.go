package plot

import (
	"math"

	"github.com/openpmx/vpc/pkg/result"
)

// Layer names produced by the time-to-event builder.
const (
	LayerSimKMReplicates = "sim.km.replicates"
	LayerSimKMArea       = "sim.km.area"
	LayerCensoring       = "obs.censoring"
	LayerSimKMMedian     = "sim.km.median"
	LayerObsKMCI         = "obs.km.ci"
	LayerObsKM           = "obs.km"
)

func kmLower(r result.KMBin) *float64  { return r.Lower }
func kmMedian(r result.KMBin) *float64 { return r.Median }
func kmUpper(r result.KMBin) *float64  { return r.Upper }

func kmPresent(rows []result.KMBin, stats ...func(result.KMBin) *float64) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		for _, s := range stats {
			if s(r) == nil {
				return false
			}
		}
	}
	return true
}

// replicateAlpha computes the per-curve opacity for the replicate overlay so
// dense replicate sets do not saturate the canvas.
func replicateAlpha(n int) float64 {
	return math.Min(0.1, 20/float64(n))
}

// buildTimeToEvent assembles the layer stack for time-to-event bundles.
// The simulated band is always drawn as an area; discrete low/high
// percentile lines do not apply to survival curves.
func buildTimeToEvent(b *result.Bundle, show Show, th Theme, plan Plan, cfg Config) []Layer {
	var layers []Layer
	hue := plan.Hue
	areaGeom := GeomRect
	if cfg.Smooth {
		areaGeom = GeomRibbon
	}

	// Faint overlay of every individual simulated survival curve.
	if show.SimKM && len(b.Replicates) > 0 {
		style := strokeStyle(th.Style(CategorySimPI))
		style.Alpha = replicateAlpha(len(b.Replicates))
		style.LineType = LineSolid
		var data []Datum
		for _, rc := range b.Replicates {
			for _, p := range rc.Points {
				data = append(data, Datum{
					X: p.Time, Y: p.Value,
					Stratum:   p.Stratum,
					Hue:       hue.Value(p.Stratum),
					Replicate: rc.Replicate,
				})
			}
		}
		layers = append(layers, Layer{
			Name:     LayerSimKMReplicates,
			Category: CategorySimPI,
			Geom:     GeomStep,
			Style:    style,
			ColorBy:  hue,
			Data:     data,
		})
	}

	// Simulated confidence area between the outer survival bounds.
	if kmPresent(b.SimKM, kmLower, kmUpper) {
		data := make([]Datum, len(b.SimKM))
		for i, r := range b.SimKM {
			d := Datum{Y0: *r.Lower, Y1: *r.Upper, Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
			if cfg.Smooth {
				d.X = r.Bin.Mid
			} else {
				d.X0 = r.Bin.Min
				d.X1 = r.Bin.Max
			}
			data[i] = d
		}
		layers = append(layers, Layer{
			Name:     LayerSimKMArea,
			Category: CategorySimPI,
			Geom:     areaGeom,
			Style:    th.Style(CategorySimPI),
			ColorBy:  hue,
			Data:     data,
		})
	}

	// Censoring ticks.
	if len(b.Censored) > 0 {
		style := th.Style(CategoryObs)
		style.Shape = ShapeTick
		data := make([]Datum, len(b.Censored))
		for i, p := range b.Censored {
			data[i] = Datum{X: p.Time, Y: p.Value, Stratum: p.Stratum, Hue: hue.Value(p.Stratum)}
		}
		layers = append(layers, Layer{
			Name:     LayerCensoring,
			Category: CategoryObs,
			Geom:     GeomPoint,
			Style:    style,
			ColorBy:  hue,
			Data:     data,
		})
	}

	// Simulated median survival curve, dashed. Continuous line when smooth,
	// step function otherwise.
	if show.SimMedian && kmPresent(b.SimKM, kmMedian) {
		geom := GeomStep
		if cfg.Smooth {
			geom = GeomLine
		}
		style := th.Style(CategorySimMedian)
		style.LineType = LineDashed
		data := make([]Datum, len(b.SimKM))
		for i, r := range b.SimKM {
			data[i] = Datum{X: r.Bin.Mid, Y: *r.Median, Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
		}
		layers = append(layers, Layer{
			Name:     LayerSimKMMedian,
			Category: CategorySimMedian,
			Geom:     geom,
			Style:    style,
			ColorBy:  hue,
			Data:     data,
		})
	}

	// Observed Kaplan-Meier confidence ribbon.
	if show.ObsCI && obsKMBoundsPresent(b.ObsKM) {
		groupBy := hue
		if groupBy == FieldNone {
			groupBy = FieldCombined
		}
		data := make([]Datum, len(b.ObsKM))
		for i, r := range b.ObsKM {
			data[i] = Datum{X: r.Time, Y0: *r.Lower, Y1: *r.Upper, Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
		}
		layers = append(layers, Layer{
			Name:     LayerObsKMCI,
			Category: CategoryObsCI,
			Geom:     GeomRibbon,
			Style:    areaStyle(th.Style(CategoryObsCI)),
			ColorBy:  groupBy,
			Data:     data,
		})
	}

	// Observed survival curve. Step interpolation is undefined when a
	// stratum has a single row; the whole render degrades to a line then.
	if show.ObsDV && len(b.ObsKM) > 0 {
		geom := GeomStep
		if n := minStratumRows(b.ObsKM); n <= 1 {
			geom = GeomLine
			cfg.diagf("observed survival curve drawn as line: a stratum has %d row(s), too few for a step function", n)
		}
		data := make([]Datum, len(b.ObsKM))
		for i, r := range b.ObsKM {
			data[i] = Datum{X: r.Time, Y: r.Survival, Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
		}
		layers = append(layers, Layer{
			Name:     LayerObsKM,
			Category: CategoryObsMedian,
			Geom:     geom,
			Style:    th.Style(CategoryObsMedian),
			ColorBy:  hue,
			Data:     data,
		})
	}

	// Separators sit at the pre-merge boundaries for time-to-event plots.
	if show.BinSep {
		if cuts := b.Bins.SeparatorCuts(true); len(cuts) > 0 {
			layers = append(layers, binSepLayer(cuts, th))
		}
	}

	return layers
}

func obsKMBoundsPresent(rows []result.KMStep) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if r.Lower == nil || r.Upper == nil {
			return false
		}
	}
	return true
}

// minStratumRows returns the row count of the smallest stratum in the
// observed Kaplan-Meier table.
func minStratumRows(rows []result.KMStep) int {
	counts := make(map[result.Stratum]int)
	for _, r := range rows {
		counts[r.Stratum]++
	}
	min := len(rows)
	for _, n := range counts {
		if n < min {
			min = n
		}
	}
	return min
}
