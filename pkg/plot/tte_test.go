package plot

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/openpmx/vpc/pkg/result"
)

// tteBundle builds a small time-to-event bundle with simulated and observed
// Kaplan-Meier summaries, censoring events, and four replicate curves.
func tteBundle() *result.Bundle {
	b := &result.Bundle{
		Modality: result.ModalityTimeToEvent,
		Bins: result.Bins{
			Cuts:     []float64{0, 12, 24},
			PreMerge: []float64{0, 6, 12, 18, 24},
		},
	}
	for i, iv := range []result.Interval{
		{Min: 0, Mid: 6, Max: 12},
		{Min: 12, Mid: 18, Max: 24},
	} {
		surv := 1 - 0.3*float64(i)
		b.SimKM = append(b.SimKM, result.KMBin{
			Bin:    iv,
			Lower:  fp(surv - 0.1),
			Median: fp(surv),
			Upper:  fp(surv + 0.05),
		})
	}
	for i, tm := range []float64{2, 8, 14, 20} {
		surv := 1 - 0.2*float64(i)
		b.ObsKM = append(b.ObsKM, result.KMStep{
			Time:     tm,
			Survival: surv,
			Lower:    fp(surv - 0.1),
			Upper:    fp(surv + 0.1),
		})
	}
	b.Censored = []result.SurvPoint{{Time: 10, Value: 0.8}, {Time: 22, Value: 0.5}}
	for rep := 1; rep <= 4; rep++ {
		b.Replicates = append(b.Replicates, result.ReplicateCurve{
			Replicate: rep,
			Points: []result.SurvPoint{
				{Time: 0, Value: 1},
				{Time: 12, Value: 0.7},
				{Time: 24, Value: 0.4},
			},
		})
	}
	return b
}

func TestTTEDefaultLayers(t *testing.T) {
	spec := assembleOrFatal(t, tteBundle(), Config{Smooth: true})

	want := []string{
		LayerSimKMArea,
		LayerCensoring,
		LayerObsKMCI,
		LayerBinSep,
	}
	if got := layerNames(spec.Layers); !reflect.DeepEqual(got, want) {
		t.Errorf("layers = %v, want %v", got, want)
	}
}

func TestReplicateAlpha(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{count: 200, want: 0.1},
		{count: 1000, want: 0.02},
		{count: 10, want: 0.1},
	}
	for _, tt := range tests {
		if got := replicateAlpha(tt.count); got != tt.want {
			t.Errorf("replicateAlpha(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestTTEReplicateOverlay(t *testing.T) {
	spec := assembleOrFatal(t, tteBundle(), Config{Show: map[string]bool{"sim_km": true}})

	overlay := spec.Layer(LayerSimKMReplicates)
	if overlay == nil {
		t.Fatal("sim.km.replicates layer missing")
	}
	if overlay.Geom != GeomStep {
		t.Errorf("Geom = %v, want %v", overlay.Geom, GeomStep)
	}
	// 4 replicates: alpha capped at 0.1.
	if overlay.Style.Alpha != 0.1 {
		t.Errorf("Alpha = %v, want 0.1", overlay.Style.Alpha)
	}
	// 4 replicates x 3 points each.
	if len(overlay.Data) != 12 {
		t.Errorf("data count = %d, want 12", len(overlay.Data))
	}
	if overlay.Data[0].Replicate != 1 || overlay.Data[11].Replicate != 4 {
		t.Errorf("replicate tags = %d..%d, want 1..4", overlay.Data[0].Replicate, overlay.Data[11].Replicate)
	}
}

func TestTTESimMedianGeometry(t *testing.T) {
	show := map[string]bool{"sim_median": true}

	smooth := assembleOrFatal(t, tteBundle(), Config{Smooth: true, Show: show})
	if g := smooth.Layer(LayerSimKMMedian).Geom; g != GeomLine {
		t.Errorf("smooth geom = %v, want %v", g, GeomLine)
	}

	blocky := assembleOrFatal(t, tteBundle(), Config{Smooth: false, Show: show})
	if g := blocky.Layer(LayerSimKMMedian).Geom; g != GeomStep {
		t.Errorf("non-smooth geom = %v, want %v", g, GeomStep)
	}

	// Dashed either way.
	for _, spec := range []*Spec{smooth, blocky} {
		if lt := spec.Layer(LayerSimKMMedian).Style.LineType; lt != LineDashed {
			t.Errorf("LineType = %v, want %v", lt, LineDashed)
		}
	}
}

func TestTTEStepDegradation(t *testing.T) {
	b := tteBundle()
	// One stratum with five rows, another with exactly one.
	for i := range b.ObsKM {
		b.ObsKM[i].Stratum = result.Stratum{Combined: "big"}
	}
	b.ObsKM = append(b.ObsKM,
		result.KMStep{Time: 5, Survival: 0.9, Lower: fp(0.8), Upper: fp(1), Stratum: result.Stratum{Combined: "big"}},
		result.KMStep{Time: 3, Survival: 0.7, Lower: fp(0.6), Upper: fp(0.8), Stratum: result.Stratum{Combined: "single"}},
	)

	var buf bytes.Buffer
	spec := assembleOrFatal(t, b, Config{
		Show:    map[string]bool{"obs_dv": true},
		Verbose: true,
		Logger:  charmlog.New(&buf),
	})

	// Global substitution: the whole observed curve becomes a line.
	if g := spec.Layer(LayerObsKM).Geom; g != GeomLine {
		t.Errorf("Geom = %v, want %v after degradation", g, GeomLine)
	}
	if !strings.Contains(buf.String(), "too few for a step function") {
		t.Errorf("diagnostic not emitted, log output: %q", buf.String())
	}
}

func TestTTEStepDegradationSilentWithoutVerbose(t *testing.T) {
	b := tteBundle()
	b.ObsKM = b.ObsKM[:1] // single row, single stratum

	var buf bytes.Buffer
	spec := assembleOrFatal(t, b, Config{
		Show:   map[string]bool{"obs_dv": true},
		Logger: charmlog.New(&buf),
	})

	if g := spec.Layer(LayerObsKM).Geom; g != GeomLine {
		t.Errorf("Geom = %v, want %v after degradation", g, GeomLine)
	}
	if buf.Len() != 0 {
		t.Errorf("diagnostic emitted without verbose: %q", buf.String())
	}
}

func TestTTEStepKeptWithEnoughRows(t *testing.T) {
	spec := assembleOrFatal(t, tteBundle(), Config{Show: map[string]bool{"obs_dv": true}})
	if g := spec.Layer(LayerObsKM).Geom; g != GeomStep {
		t.Errorf("Geom = %v, want %v", g, GeomStep)
	}
}

func TestTTEPercentAxis(t *testing.T) {
	spec := assembleOrFatal(t, tteBundle(), Config{SurvivalAsPercent: true})

	if !spec.YPercent {
		t.Error("YPercent = false, want true")
	}
	if want := []float64{0, 25, 50, 75, 100}; !reflect.DeepEqual(spec.YBreaks, want) {
		t.Errorf("YBreaks = %v, want %v", spec.YBreaks, want)
	}
	if spec.YLab != "Survival (%)" {
		t.Errorf("YLab = %q, want %q", spec.YLab, "Survival (%)")
	}
}

func TestTTEMeanCovariateAxis(t *testing.T) {
	b := tteBundle()
	b.MeanCovariate = "WT"

	spec := assembleOrFatal(t, b, Config{SurvivalAsPercent: true})

	if spec.YLab != "Mean (WT)" {
		t.Errorf("YLab = %q, want %q", spec.YLab, "Mean (WT)")
	}
	// Percentage rescale only applies to survival probability axes.
	if spec.YPercent {
		t.Error("YPercent = true, want false with a mean covariate")
	}
}

func TestTTEPreMergeSeparators(t *testing.T) {
	b := tteBundle()
	spec := assembleOrFatal(t, b, Config{})

	sep := spec.Layer(LayerBinSep)
	if sep == nil {
		t.Fatal("bin.separators layer missing")
	}
	if len(sep.Data) != len(b.Bins.PreMerge) {
		t.Errorf("separator count = %d, want %d (pre-merge boundaries)", len(sep.Data), len(b.Bins.PreMerge))
	}

	b.Bins.Disabled = true
	spec = assembleOrFatal(t, b, Config{})
	if spec.HasLayer(LayerBinSep) {
		t.Error("bin.separators present despite disabled boundaries")
	}
}

func TestTTERepeatedEventsForceFacet(t *testing.T) {
	b := tteBundle()
	b.RepeatedEvents = true
	for i := range b.ObsKM {
		b.ObsKM[i].Stratum = result.Stratum{Combined: "event=1"}
	}

	spec := assembleOrFatal(t, b, Config{})

	want := Facet{Kind: FacetWrap, Col: "event", ColField: FieldCombined}
	if spec.Facet != want {
		t.Errorf("Facet = %+v, want %+v", spec.Facet, want)
	}
}

func TestTTERepeatedEventsOverrideStratifiedFacet(t *testing.T) {
	b := tteBundle()
	b.RepeatedEvents = true
	b.Strat = result.Stratification{Columns: []string{"sex", "drug"}}
	for i := range b.ObsKM {
		b.ObsKM[i].Stratum = result.Stratum{
			Combined:  "F, placebo, event=1",
			Primary:   "F",
			Secondary: "placebo",
		}
	}
	for i := range b.SimKM {
		b.SimKM[i].Stratum = result.Stratum{
			Combined:  "F, placebo, event=1",
			Primary:   "F",
			Secondary: "placebo",
		}
	}

	spec := assembleOrFatal(t, b, Config{})

	// Even with two resolvable stratification columns, repeated events panel
	// by the combined stratum/event label rather than a grid.
	want := Facet{Kind: FacetWrap, Col: "sex, drug, event", ColField: FieldCombined}
	if spec.Facet != want {
		t.Errorf("Facet = %+v, want %+v", spec.Facet, want)
	}
}
