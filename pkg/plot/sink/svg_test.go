package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/openpmx/vpc/pkg/plot"
	"github.com/openpmx/vpc/pkg/result"
)

func TestRenderSVGBasics(t *testing.T) {
	out := RenderSVG(testSpec())
	s := string(out)

	if !strings.HasPrefix(s, "<svg ") {
		t.Errorf("output does not start with <svg: %.40q", s)
	}
	if !strings.Contains(s, "</svg>") {
		t.Error("output has no closing </svg>")
	}
	if !strings.Contains(s, "demo") {
		t.Error("title missing from output")
	}
	if !strings.Contains(s, "polyline") {
		t.Error("line layer produced no polyline")
	}
	if !strings.Contains(s, "#3388cc") {
		t.Error("layer stroke color missing")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	a := RenderSVG(testSpec())
	b := RenderSVG(testSpec())
	if !bytes.Equal(a, b) {
		t.Error("identical specs produced different SVG")
	}
}

func TestRenderSVGSize(t *testing.T) {
	out := RenderSVG(testSpec(), WithSVGSize(400, 300))
	if !strings.Contains(string(out), `width="400" height="300"`) {
		t.Errorf("custom size not applied: %.120q", out)
	}
}

func TestRenderSVGFacetPanels(t *testing.T) {
	spec := testSpec()
	spec.Facet = plot.Facet{Kind: plot.FacetWrap, Col: "sex", ColField: plot.FieldCombined}
	spec.Layers[0].Data = []plot.Datum{
		{X: 1, Y: 10, Stratum: result.Stratum{Combined: "sex=F"}},
		{X: 2, Y: 12, Stratum: result.Stratum{Combined: "sex=F"}},
		{X: 1, Y: 11, Stratum: result.Stratum{Combined: "sex=M"}},
		{X: 2, Y: 13, Stratum: result.Stratum{Combined: "sex=M"}},
	}

	s := string(RenderSVG(spec))
	if !strings.Contains(s, "sex=F") || !strings.Contains(s, "sex=M") {
		t.Error("facet strip labels missing")
	}
	if n := strings.Count(s, "<polyline"); n != 2 {
		t.Errorf("polyline count = %d, want one per panel (2)", n)
	}
}

func TestRenderSVGRibbon(t *testing.T) {
	spec := testSpec()
	spec.Layers = append(spec.Layers, plot.Layer{
		Name:     "sim.median.ci",
		Category: plot.CategorySimMedian,
		Geom:     plot.GeomRibbon,
		Style:    plot.Style{Fill: "#3388cc", Alpha: 0.25},
		Data: []plot.Datum{
			{X: 1, Y0: 8, Y1: 12},
			{X: 2, Y0: 10, Y1: 14},
		},
	})

	s := string(RenderSVG(spec))
	if !strings.Contains(s, "<polygon") {
		t.Error("ribbon layer produced no polygon")
	}
	if !strings.Contains(s, `fill-opacity="0.250"`) {
		t.Error("ribbon alpha not applied")
	}
}

func TestRenderSVGHuePalette(t *testing.T) {
	spec := testSpec()
	spec.Layers[0].ColorBy = plot.FieldCombined
	spec.Layers[0].Data = []plot.Datum{
		{X: 1, Y: 10, Hue: "a"},
		{X: 2, Y: 12, Hue: "a"},
		{X: 1, Y: 11, Hue: "b"},
		{X: 2, Y: 13, Hue: "b"},
	}

	s := string(RenderSVG(spec))
	if !strings.Contains(s, huePalette[0]) || !strings.Contains(s, huePalette[1]) {
		t.Error("hue palette colors missing from output")
	}
	if n := strings.Count(s, "<polyline"); n != 2 {
		t.Errorf("polyline count = %d, want one per hue (2)", n)
	}
}

func TestRenderSVGEmptySpec(t *testing.T) {
	spec := &plot.Spec{Modality: result.ModalityContinuous}
	out := RenderSVG(spec)
	if !strings.Contains(string(out), "</svg>") {
		t.Error("empty spec did not render a closed document")
	}
}
