package plot

import "github.com/openpmx/vpc/pkg/result"

// Layer names produced by the continuous builder. Names are stable
// identifiers used by rendering backends and tests.
const (
	LayerSimPIArea   = "sim.pi.area"
	LayerSimMedianCI = "sim.median.ci"
	LayerSimPILow    = "sim.pi.low"
	LayerSimPIUp     = "sim.pi.up"
	LayerSimPILowCI  = "sim.pi.low.ci"
	LayerSimPIUpCI   = "sim.pi.up.ci"
	LayerSimMedian   = "sim.median"
	LayerObsMedian   = "obs.median"
	LayerObsCILow    = "obs.ci.low"
	LayerObsCIUp     = "obs.ci.up"
	LayerObsPoints   = "obs.points"
	LayerBinSep      = "bin.separators"
)

// Statistic accessors for the simulated summary table. Each picks one
// percentile-of-percentile column; nil means the aggregation stage did not
// compute it.
type simStat func(result.SimBin) *float64

func simLowerLo(r result.SimBin) *float64  { return r.Lower.Lo }
func simLowerMed(r result.SimBin) *float64 { return r.Lower.Med }
func simLowerUp(r result.SimBin) *float64  { return r.Lower.Up }
func simMedLo(r result.SimBin) *float64    { return r.Median.Lo }
func simMedMed(r result.SimBin) *float64   { return r.Median.Med }
func simMedUp(r result.SimBin) *float64    { return r.Median.Up }
func simUpperLo(r result.SimBin) *float64  { return r.Upper.Lo }
func simUpperMed(r result.SimBin) *float64 { return r.Upper.Med }
func simUpperUp(r result.SimBin) *float64  { return r.Upper.Up }

// simPresent reports whether every row carries all the given statistics.
// A statistic behaves like a table column: either present for the whole
// table or absent.
func simPresent(rows []result.SimBin, stats ...simStat) bool {
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

type obsStat func(result.ObsBin) *float64

func obsMedian(r result.ObsBin) *float64 { return r.Median }
func obsLower(r result.ObsBin) *float64  { return r.Lower }
func obsUpper(r result.ObsBin) *float64  { return r.Upper }

func obsPresent(rows []result.ObsBin, stats ...obsStat) bool {
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

// buildContinuous assembles the layer stack for continuous, censored, and
// categorical bundles. Every flag gates its layer independently except the
// band-selection group: pi_as_area collapses the simulated bands into a
// single area and suppresses sim_median_ci, pi, and pi_ci outright.
func buildContinuous(b *result.Bundle, show Show, th Theme, plan Plan, cfg Config) []Layer {
	var layers []Layer
	hue := plan.Hue
	areaGeom := GeomRect
	if cfg.Smooth {
		areaGeom = GeomRibbon
	}

	if b.HasSim() {
		if show.PIAsArea {
			if simPresent(b.Sim, simLowerMed, simUpperMed) {
				layers = append(layers, Layer{
					Name:     LayerSimPIArea,
					Category: CategorySimPI,
					Geom:     areaGeom,
					Style:    th.Style(CategorySimPI),
					ColorBy:  hue,
					Data:     simAreaData(b.Sim, simLowerMed, simUpperMed, cfg.Smooth, hue),
				})
			}
		} else {
			if show.SimMedianCI && simPresent(b.Sim, simMedLo, simMedUp) {
				layers = append(layers, Layer{
					Name:     LayerSimMedianCI,
					Category: CategorySimMedian,
					Geom:     areaGeom,
					Style:    areaStyle(th.Style(CategorySimMedian)),
					ColorBy:  hue,
					Data:     simAreaData(b.Sim, simMedLo, simMedUp, cfg.Smooth, hue),
				})
			}
			if show.PI && simPresent(b.Sim, simLowerMed, simUpperMed) {
				style := strokeStyle(th.Style(CategorySimPI))
				layers = append(layers,
					Layer{Name: LayerSimPILow, Category: CategorySimPI, Geom: GeomLine, Style: style, ColorBy: hue, Data: simLineData(b.Sim, simLowerMed, hue)},
					Layer{Name: LayerSimPIUp, Category: CategorySimPI, Geom: GeomLine, Style: style, ColorBy: hue, Data: simLineData(b.Sim, simUpperMed, hue)},
				)
			}
			if show.PICI && simPresent(b.Sim, simLowerLo, simLowerUp, simUpperLo, simUpperUp) {
				style := th.Style(CategorySimPI)
				layers = append(layers,
					Layer{Name: LayerSimPILowCI, Category: CategorySimPI, Geom: areaGeom, Style: style, ColorBy: hue, Data: simAreaData(b.Sim, simLowerLo, simLowerUp, cfg.Smooth, hue)},
					Layer{Name: LayerSimPIUpCI, Category: CategorySimPI, Geom: areaGeom, Style: style, ColorBy: hue, Data: simAreaData(b.Sim, simUpperLo, simUpperUp, cfg.Smooth, hue)},
				)
			}
		}

		if show.SimMedian && simPresent(b.Sim, simMedMed) {
			layers = append(layers, Layer{
				Name:     LayerSimMedian,
				Category: CategorySimMedian,
				Geom:     GeomLine,
				Style:    th.Style(CategorySimMedian),
				ColorBy:  hue,
				Data:     simLineData(b.Sim, simMedMed, hue),
			})
		}
	}

	if b.HasObs() {
		if show.ObsMedian && obsPresent(b.Obs, obsMedian) {
			layers = append(layers, Layer{
				Name:     LayerObsMedian,
				Category: CategoryObsMedian,
				Geom:     GeomLine,
				Style:    th.Style(CategoryObsMedian),
				ColorBy:  hue,
				Data:     obsLineData(b.Obs, obsMedian, hue),
			})
		}
		// Outer percentile bounds are optional; their absence silently
		// disables the layer rather than erroring.
		if show.ObsCI && obsPresent(b.Obs, obsLower, obsUpper) {
			style := th.Style(CategoryObsCI)
			layers = append(layers,
				Layer{Name: LayerObsCILow, Category: CategoryObsCI, Geom: GeomLine, Style: style, ColorBy: hue, Data: obsLineData(b.Obs, obsLower, hue)},
				Layer{Name: LayerObsCIUp, Category: CategoryObsCI, Geom: GeomLine, Style: style, ColorBy: hue, Data: obsLineData(b.Obs, obsUpper, hue)},
			)
		}
	}

	if show.ObsDV && len(b.Points) > 0 {
		data := make([]Datum, len(b.Points))
		for i, p := range b.Points {
			data[i] = Datum{X: p.X, Y: p.Y, Stratum: p.Stratum, Hue: hue.Value(p.Stratum)}
		}
		layers = append(layers, Layer{
			Name:     LayerObsPoints,
			Category: CategoryObs,
			Geom:     GeomPoint,
			Style:    th.Style(CategoryObs),
			ColorBy:  hue,
			Data:     data,
		})
	}

	if show.BinSep {
		if cuts := b.Bins.SeparatorCuts(false); len(cuts) > 0 {
			layers = append(layers, binSepLayer(cuts, th))
		}
	}

	return layers
}

// binSepLayer builds the rug layer marking bin boundaries.
func binSepLayer(cuts []float64, th Theme) Layer {
	data := make([]Datum, len(cuts))
	for i, c := range cuts {
		data[i] = Datum{X: c}
	}
	return Layer{
		Name:     LayerBinSep,
		Category: CategoryBinSeparators,
		Geom:     GeomRug,
		Style:    th.Style(CategoryBinSeparators),
		Data:     data,
	}
}

// simAreaData builds ribbon or rect data between two statistics. Smooth
// ribbons anchor at bin midpoints; rects span the bin extents.
func simAreaData(rows []result.SimBin, lo, up simStat, smooth bool, hue FieldRef) []Datum {
	data := make([]Datum, len(rows))
	for i, r := range rows {
		d := Datum{Y0: *lo(r), Y1: *up(r), Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
		if smooth {
			d.X = r.Bin.Mid
		} else {
			d.X0 = r.Bin.Min
			d.X1 = r.Bin.Max
		}
		data[i] = d
	}
	return data
}

// simLineData builds line data at bin midpoints for one statistic.
func simLineData(rows []result.SimBin, stat simStat, hue FieldRef) []Datum {
	data := make([]Datum, len(rows))
	for i, r := range rows {
		data[i] = Datum{X: r.Bin.Mid, Y: *stat(r), Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
	}
	return data
}

func obsLineData(rows []result.ObsBin, stat obsStat, hue FieldRef) []Datum {
	data := make([]Datum, len(rows))
	for i, r := range rows {
		data[i] = Datum{X: r.Bin.Mid, Y: *stat(r), Stratum: r.Stratum, Hue: hue.Value(r.Stratum)}
	}
	return data
}

// strokeStyle adapts an area style for line rendering: the area fill and
// its transparency do not apply to strokes.
func strokeStyle(s Style) Style {
	s.Fill = ""
	s.Alpha = 1
	return s
}

// areaStyle adapts a line style for area rendering: use the line color as
// fill with a band transparency.
func areaStyle(s Style) Style {
	if s.Fill == "" {
		s.Fill = s.Color
	}
	s.Alpha = 0.25
	return s
}
