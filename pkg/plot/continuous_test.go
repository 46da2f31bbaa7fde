package plot

import (
	"reflect"
	"sort"
	"testing"

	"github.com/openpmx/vpc/pkg/result"
)

func fp(v float64) *float64 { return &v }

// fullBand returns a band with all three statistics populated around mid.
func fullBand(mid float64) result.Band {
	return result.Band{Lo: fp(mid - 0.5), Med: fp(mid), Up: fp(mid + 0.5)}
}

// continuousBundle builds a three-bin continuous bundle with complete
// simulated and observed statistics.
func continuousBundle() *result.Bundle {
	bins := []result.Interval{
		{Min: 0, Mid: 1, Max: 2},
		{Min: 2, Mid: 3, Max: 4},
		{Min: 4, Mid: 5, Max: 6},
	}
	b := &result.Bundle{
		Modality: result.ModalityContinuous,
		Bins:     result.Bins{Cuts: []float64{0, 2, 4, 6}},
	}
	for _, iv := range bins {
		b.Sim = append(b.Sim, result.SimBin{
			Bin:    iv,
			Lower:  fullBand(2),
			Median: fullBand(5),
			Upper:  fullBand(8),
		})
		b.Obs = append(b.Obs, result.ObsBin{
			Bin:    iv,
			Median: fp(5.2),
			Lower:  fp(2.1),
			Upper:  fp(7.9),
		})
		b.Points = append(b.Points, result.Point{X: iv.Mid, Y: 5})
	}
	return b
}

func layerNames(layers []Layer) []string {
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name
	}
	return names
}

func assembleOrFatal(t *testing.T, b *result.Bundle, cfg Config) *Spec {
	t.Helper()
	spec, err := Assemble(b, cfg)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return spec
}

func TestContinuousDefaultLayers(t *testing.T) {
	spec := assembleOrFatal(t, continuousBundle(), Config{Smooth: true})

	want := []string{
		LayerSimMedianCI,
		LayerSimPILowCI,
		LayerSimPIUpCI,
		LayerObsMedian,
		LayerObsCILow,
		LayerObsCIUp,
		LayerBinSep,
	}
	if got := layerNames(spec.Layers); !reflect.DeepEqual(got, want) {
		t.Errorf("layers = %v, want %v", got, want)
	}
}

func TestContinuousFlagIndependence(t *testing.T) {
	// Toggling a single non-exclusive flag adds exactly one layer category
	// and leaves all other layers unchanged.
	base := assembleOrFatal(t, continuousBundle(), Config{Smooth: true})
	with := assembleOrFatal(t, continuousBundle(), Config{
		Smooth: true,
		Show:   map[string]bool{"obs_dv": true},
	})

	if len(with.Layers) != len(base.Layers)+1 {
		t.Fatalf("layer count = %d, want %d", len(with.Layers), len(base.Layers)+1)
	}
	if !with.HasLayer(LayerObsPoints) {
		t.Fatal("obs.points layer missing after enabling obs_dv")
	}

	var rest []Layer
	for _, l := range with.Layers {
		if l.Name != LayerObsPoints {
			rest = append(rest, l)
		}
	}
	if !reflect.DeepEqual(rest, base.Layers) {
		t.Errorf("other layers changed when toggling obs_dv:\n got %v\nwant %v",
			layerNames(rest), layerNames(base.Layers))
	}
}

func TestContinuousMutualExclusion(t *testing.T) {
	// With pi_as_area enabled the stack never contains the individual band
	// layers, for every combination of their own flags.
	for _, simMedianCI := range []bool{false, true} {
		for _, pi := range []bool{false, true} {
			for _, piCI := range []bool{false, true} {
				spec := assembleOrFatal(t, continuousBundle(), Config{Show: map[string]bool{
					"pi_as_area":    true,
					"sim_median_ci": simMedianCI,
					"pi":            pi,
					"pi_ci":         piCI,
				}})

				if !spec.HasLayer(LayerSimPIArea) {
					t.Errorf("sim.pi.area missing (sim_median_ci=%v pi=%v pi_ci=%v)", simMedianCI, pi, piCI)
				}
				for _, banned := range []string{LayerSimMedianCI, LayerSimPILow, LayerSimPIUp, LayerSimPILowCI, LayerSimPIUpCI} {
					if spec.HasLayer(banned) {
						t.Errorf("layer %s present despite pi_as_area (sim_median_ci=%v pi=%v pi_ci=%v)",
							banned, simMedianCI, pi, piCI)
					}
				}
			}
		}
	}
}

func TestContinuousSmoothSymmetry(t *testing.T) {
	// The logical band set is identical between smooth and non-smooth; only
	// the geometry differs.
	show := map[string]bool{"pi": true, "sim_median": true, "obs_dv": true}
	smooth := assembleOrFatal(t, continuousBundle(), Config{Smooth: true, Show: show})
	blocky := assembleOrFatal(t, continuousBundle(), Config{Smooth: false, Show: show})

	gotSmooth := layerNames(smooth.Layers)
	gotBlocky := layerNames(blocky.Layers)
	sort.Strings(gotSmooth)
	sort.Strings(gotBlocky)
	if !reflect.DeepEqual(gotSmooth, gotBlocky) {
		t.Fatalf("layer sets differ: smooth=%v non-smooth=%v", gotSmooth, gotBlocky)
	}

	for _, name := range []string{LayerSimMedianCI, LayerSimPILowCI, LayerSimPIUpCI} {
		if g := smooth.Layer(name).Geom; g != GeomRibbon {
			t.Errorf("smooth %s geom = %v, want %v", name, g, GeomRibbon)
		}
		if g := blocky.Layer(name).Geom; g != GeomRect {
			t.Errorf("non-smooth %s geom = %v, want %v", name, g, GeomRect)
		}
	}

	// Lines keep their geometry either way.
	for _, name := range []string{LayerSimMedian, LayerObsMedian, LayerSimPILow} {
		if g := blocky.Layer(name).Geom; g != GeomLine {
			t.Errorf("non-smooth %s geom = %v, want %v", name, g, GeomLine)
		}
	}
}

func TestContinuousMissingBoundDegradation(t *testing.T) {
	b := continuousBundle()
	for i := range b.Obs {
		b.Obs[i].Lower = nil
		b.Obs[i].Upper = nil
	}

	spec := assembleOrFatal(t, b, Config{Show: map[string]bool{"obs_ci": true}})

	if spec.HasLayer(LayerObsCILow) || spec.HasLayer(LayerObsCIUp) {
		t.Error("obs.ci layers present despite missing bounds")
	}
	if !spec.HasLayer(LayerObsMedian) {
		t.Error("obs.median layer missing")
	}
}

func TestContinuousPICIRequiresBounds(t *testing.T) {
	b := continuousBundle()
	for i := range b.Sim {
		b.Sim[i].Lower.Lo = nil
		b.Sim[i].Lower.Up = nil
		b.Sim[i].Upper.Lo = nil
		b.Sim[i].Upper.Up = nil
	}

	spec := assembleOrFatal(t, b, Config{Show: map[string]bool{"pi": true, "pi_ci": true}})

	if spec.HasLayer(LayerSimPILowCI) || spec.HasLayer(LayerSimPIUpCI) {
		t.Error("pi_ci layers present despite missing confidence bounds")
	}
	// The percentile lines themselves only need the point estimates.
	if !spec.HasLayer(LayerSimPILow) || !spec.HasLayer(LayerSimPIUp) {
		t.Error("pi line layers missing")
	}
}

func TestContinuousBinSeparators(t *testing.T) {
	b := continuousBundle()
	spec := assembleOrFatal(t, b, Config{})
	sep := spec.Layer(LayerBinSep)
	if sep == nil {
		t.Fatal("bin.separators layer missing")
	}
	if len(sep.Data) != len(b.Bins.Cuts) {
		t.Errorf("separator count = %d, want %d", len(sep.Data), len(b.Bins.Cuts))
	}

	// The disabled sentinel suppresses separators entirely.
	b.Bins.Disabled = true
	spec = assembleOrFatal(t, b, Config{})
	if spec.HasLayer(LayerBinSep) {
		t.Error("bin.separators present despite disabled boundaries")
	}
}

func TestContinuousColorStratification(t *testing.T) {
	b := continuousBundle()
	b.Strat = result.Stratification{Columns: []string{"sex", "drug"}, Color: "drug"}
	for i := range b.Sim {
		b.Sim[i].Stratum = result.Stratum{Primary: "M", Secondary: "A"}
	}
	for i := range b.Obs {
		b.Obs[i].Stratum = result.Stratum{Primary: "M", Secondary: "A"}
	}

	spec := assembleOrFatal(t, b, Config{Facet: "rows"})

	want := Facet{Kind: FacetGridRow, Row: "sex", RowField: FieldPrimary}
	if spec.Facet != want {
		t.Errorf("Facet = %+v, want %+v", spec.Facet, want)
	}
	if spec.ColorColumn != "drug" {
		t.Errorf("ColorColumn = %q, want %q", spec.ColorColumn, "drug")
	}
	if spec.LegendTitle != "" {
		t.Errorf("LegendTitle = %q, want empty", spec.LegendTitle)
	}

	// The second stratification column drives the hue mapping.
	med := spec.Layer(LayerObsMedian)
	if med == nil {
		t.Fatal("obs.median layer missing")
	}
	if med.ColorBy != FieldSecondary {
		t.Errorf("ColorBy = %v, want %v", med.ColorBy, FieldSecondary)
	}
	for _, d := range med.Data {
		if d.Hue != "A" {
			t.Errorf("Hue = %q, want %q", d.Hue, "A")
		}
	}
}

func TestContinuousNoSimNoSimLayers(t *testing.T) {
	b := continuousBundle()
	b.Sim = nil

	spec := assembleOrFatal(t, b, Config{Show: map[string]bool{"sim_median": true, "pi": true}})
	for _, name := range []string{LayerSimMedian, LayerSimMedianCI, LayerSimPILow, LayerSimPIUp} {
		if spec.HasLayer(name) {
			t.Errorf("layer %s present without simulated summary", name)
		}
	}
}
