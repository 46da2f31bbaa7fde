package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/openpmx/vpc/pkg/cache"
	"github.com/openpmx/vpc/pkg/result"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", true},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "run42.json"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	// Check defaults were set
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should default to [svg], got %v", opts.Formats)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %v, got %v", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %v, got %v", DefaultHeight, opts.Height)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing input and raw
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing input should fail")
	}

	// Raw alone is enough
	opts = Options{Raw: []byte(`{}`)}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Raw bundle should pass: %v", err)
	}
}

// testBundleJSON builds a minimal continuous result bundle.
func testBundleJSON(t *testing.T) []byte {
	t.Helper()
	fp := func(v float64) *float64 { return &v }
	band := func(lo, med, up float64) result.Band {
		return result.Band{Lo: fp(lo), Med: fp(med), Up: fp(up)}
	}
	b := result.Bundle{
		Modality: result.ModalityContinuous,
		Sim: []result.SimBin{
			{
				Bin:    result.Interval{Min: 0, Mid: 1, Max: 2},
				Lower:  band(1, 2, 3),
				Median: band(4, 5, 6),
				Upper:  band(7, 8, 9),
			},
			{
				Bin:    result.Interval{Min: 2, Mid: 3, Max: 4},
				Lower:  band(2, 3, 4),
				Median: band(5, 6, 7),
				Upper:  band(8, 9, 10),
			},
		},
		Bins: result.Bins{Cuts: []float64{0, 2, 4}},
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	return data
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Execute(ctx, Options{
		Raw:     testBundleJSON(t),
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Bundle == nil || res.Bundle.Modality != result.ModalityContinuous {
		t.Error("bundle not carried through")
	}
	if res.BundleHash == "" {
		t.Error("bundle hash not computed")
	}
	if res.Spec == nil || len(res.Spec.Layers) == 0 {
		t.Error("spec has no layers")
	}
	if len(res.Artifacts["svg"]) == 0 {
		t.Error("svg artifact missing")
	}
	if len(res.Artifacts["json"]) == 0 {
		t.Error("json artifact missing")
	}
	if res.CacheInfo.SpecHit || res.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
}

func TestRunnerExecuteCacheHit(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{Raw: testBundleJSON(t), Formats: []string{"json"}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.SpecHit {
		t.Error("first run should miss the spec cache")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.SpecHit {
		t.Error("second run should hit the spec cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if string(first.Artifacts["json"]) != string(second.Artifacts["json"]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the cache
	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if third.CacheInfo.SpecHit {
		t.Error("refresh run should not hit the spec cache")
	}
}

func TestRunnerExecuteInvalidBundle(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	_, err := runner.Execute(ctx, Options{Raw: []byte(`{"modality":"sideways"}`)})
	if err == nil {
		t.Fatal("invalid modality should fail")
	}
}
