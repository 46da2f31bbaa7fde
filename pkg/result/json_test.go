package result

import (
	"path/filepath"
	"strings"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestReadWriteFile(t *testing.T) {
	b := &Bundle{
		Modality: ModalityContinuous,
		Sim: []SimBin{{
			Bin:    Interval{Min: 0, Mid: 1, Max: 2},
			Median: Band{Lo: fp(4.5), Med: fp(5), Up: fp(5.5)},
		}},
		Obs: []ObsBin{{
			Bin:    Interval{Min: 0, Mid: 1, Max: 2},
			Median: fp(5.1),
		}},
		Bins:  Bins{Cuts: []float64{0, 2}},
		Strat: Stratification{Columns: []string{"sex"}},
	}

	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := WriteFile(b, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	if got.Modality != ModalityContinuous {
		t.Errorf("Modality = %v, want %v", got.Modality, ModalityContinuous)
	}
	if len(got.Sim) != 1 || *got.Sim[0].Median.Med != 5 {
		t.Errorf("Sim round-trip mismatch: %+v", got.Sim)
	}
	if len(got.Obs) != 1 || *got.Obs[0].Median != 5.1 {
		t.Errorf("Obs round-trip mismatch: %+v", got.Obs)
	}
	if got.Obs[0].Lower != nil {
		t.Error("absent optional bound decoded as non-nil")
	}
	if got.Strat.Columns[0] != "sex" {
		t.Errorf("Strat.Columns = %v, want [sex]", got.Strat.Columns)
	}
}

func TestReadRejectsUnknownModality(t *testing.T) {
	_, err := Read(strings.NewReader(`{"modality": "spectral"}`))
	if err == nil {
		t.Fatal("Read() error = nil, want modality error")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile() error = nil, want error")
	}
}

func TestSeparatorCuts(t *testing.T) {
	b := Bins{Cuts: []float64{0, 10, 20}, PreMerge: []float64{0, 5, 10, 15, 20}}

	if got := b.SeparatorCuts(false); len(got) != 3 {
		t.Errorf("continuous cuts = %v, want post-merge boundaries", got)
	}
	if got := b.SeparatorCuts(true); len(got) != 5 {
		t.Errorf("tte cuts = %v, want pre-merge boundaries", got)
	}

	b.Disabled = true
	if got := b.SeparatorCuts(false); got != nil {
		t.Errorf("disabled cuts = %v, want nil", got)
	}
}

func TestSplitStrataResolvable(t *testing.T) {
	b := &Bundle{
		Modality: ModalityContinuous,
		Sim:      []SimBin{{Stratum: Stratum{Combined: "M, A"}}},
	}
	if b.SplitStrataResolvable() {
		t.Error("SplitStrataResolvable() = true with combined-only strata")
	}
	if !b.CombinedStratPresent() {
		t.Error("CombinedStratPresent() = false with combined strata")
	}

	b.Sim[0].Stratum.Primary = "M"
	if !b.SplitStrataResolvable() {
		t.Error("SplitStrataResolvable() = false with split strata")
	}
}
