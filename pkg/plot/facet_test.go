package plot

import (
	"testing"

	"github.com/openpmx/vpc/pkg/errors"
)

func TestPlanFacets(t *testing.T) {
	tests := []struct {
		name    string
		in      PlanInput
		want    Facet
		wantHue FieldRef
	}{
		{
			name: "no stratification",
			in:   PlanInput{},
			want: Facet{Kind: FacetNone},
		},
		{
			name: "no stratification ignores orientation",
			in:   PlanInput{Orientation: "rows"},
			want: Facet{Kind: FacetNone},
		},
		{
			name: "single column wrap",
			in:   PlanInput{Columns: []string{"sex"}, Orientation: "wrap"},
			want: Facet{Kind: FacetWrap, Col: "sex", ColField: FieldPrimary},
		},
		{
			name: "single column default orientation wraps",
			in:   PlanInput{Columns: []string{"sex"}},
			want: Facet{Kind: FacetWrap, Col: "sex", ColField: FieldPrimary},
		},
		{
			name: "single column rows",
			in:   PlanInput{Columns: []string{"sex"}, Orientation: "rows"},
			want: Facet{Kind: FacetGridRow, Row: "sex", RowField: FieldPrimary},
		},
		{
			name: "single column columns",
			in:   PlanInput{Columns: []string{"sex"}, Orientation: "columns"},
			want: Facet{Kind: FacetGridCol, Col: "sex", ColField: FieldPrimary},
		},
		{
			name: "orientation matched by substring",
			in:   PlanInput{Columns: []string{"sex"}, Orientation: "grid_rows"},
			want: Facet{Kind: FacetGridRow, Row: "sex", RowField: FieldPrimary},
		},
		{
			name: "unknown orientation defaults to column grid",
			in:   PlanInput{Columns: []string{"sex"}, Orientation: "sideways"},
			want: Facet{Kind: FacetGridCol, Col: "sex", ColField: FieldPrimary},
		},
		{
			name: "case-sensitive row match falls through",
			in:   PlanInput{Columns: []string{"sex"}, Orientation: "ROWS"},
			want: Facet{Kind: FacetGridCol, Col: "sex", ColField: FieldPrimary},
		},
		{
			name:    "single column with color stratification",
			in:      PlanInput{Columns: []string{"sex"}, Color: "sex", Orientation: "rows"},
			want:    Facet{Kind: FacetGridRow, Row: "sex", RowField: FieldPrimary},
			wantHue: FieldCombined,
		},
		{
			name: "two columns resolvable grid rows orientation",
			in:   PlanInput{Columns: []string{"sex", "drug"}, Orientation: "rows", SplitResolvable: true},
			want: Facet{Kind: FacetGridBoth, Row: "sex", Col: "drug", RowField: FieldPrimary, ColField: FieldSecondary},
		},
		{
			name: "two columns resolvable grid column orientation",
			in:   PlanInput{Columns: []string{"sex", "drug"}, Orientation: "columns", SplitResolvable: true},
			want: Facet{Kind: FacetGridBoth, Row: "drug", Col: "sex", RowField: FieldSecondary, ColField: FieldPrimary},
		},
		{
			name:    "two columns with color on second",
			in:      PlanInput{Columns: []string{"sex", "drug"}, Color: "drug", Orientation: "rows", SplitResolvable: true},
			want:    Facet{Kind: FacetGridRow, Row: "sex", RowField: FieldPrimary},
			wantHue: FieldSecondary,
		},
		{
			name:    "two columns with color on first",
			in:      PlanInput{Columns: []string{"sex", "drug"}, Color: "sex", Orientation: "columns", SplitResolvable: true},
			want:    Facet{Kind: FacetGridCol, Col: "drug", ColField: FieldSecondary},
			wantHue: FieldPrimary,
		},
		{
			name:    "two columns combined fallback is color-only",
			in:      PlanInput{Columns: []string{"sex", "drug"}, CombinedPresent: true},
			want:    Facet{Kind: FacetNone},
			wantHue: FieldCombined,
		},
		{
			name: "repeated events force single facet layout",
			in:   PlanInput{ForceSingleFacet: true, Orientation: "wrap"},
			want: Facet{Kind: FacetWrap, Col: "event", ColField: FieldCombined},
		},
		{
			name: "repeated events override single-column facet",
			in:   PlanInput{Columns: []string{"sex"}, ForceSingleFacet: true},
			want: Facet{Kind: FacetWrap, Col: "sex, event", ColField: FieldCombined},
		},
		{
			name: "repeated events override two-column grid",
			in:   PlanInput{Columns: []string{"sex", "drug"}, SplitResolvable: true, ForceSingleFacet: true},
			want: Facet{Kind: FacetWrap, Col: "sex, drug, event", ColField: FieldCombined},
		},
		{
			name: "repeated events override honors orientation",
			in:   PlanInput{Columns: []string{"sex", "drug"}, SplitResolvable: true, ForceSingleFacet: true, Orientation: "rows"},
			want: Facet{Kind: FacetGridRow, Row: "sex, drug, event", RowField: FieldCombined},
		},
		{
			name:    "repeated events override keeps color hue",
			in:      PlanInput{Columns: []string{"sex", "drug"}, Color: "drug", SplitResolvable: true, ForceSingleFacet: true},
			want:    Facet{Kind: FacetWrap, Col: "sex, drug, event", ColField: FieldCombined},
			wantHue: FieldCombined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PlanFacets(tt.in)
			if err != nil {
				t.Fatalf("PlanFacets() error: %v", err)
			}
			if p.Facet != tt.want {
				t.Errorf("Facet = %+v, want %+v", p.Facet, tt.want)
			}
			if p.Hue != tt.wantHue {
				t.Errorf("Hue = %v, want %v", p.Hue, tt.wantHue)
			}
		})
	}
}

func TestPlanFacetsFailure(t *testing.T) {
	tests := []struct {
		name string
		in   PlanInput
	}{
		{
			name: "two columns neither split nor combined",
			in:   PlanInput{Columns: []string{"a", "b"}},
		},
		{
			name: "two columns with color but split unresolvable",
			in:   PlanInput{Columns: []string{"a", "b"}, Color: "b", CombinedPresent: true},
		},
		{
			name: "three columns",
			in:   PlanInput{Columns: []string{"a", "b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanFacets(tt.in)
			if err == nil {
				t.Fatal("PlanFacets() error = nil, want stratification error")
			}
			if !errors.Is(err, errors.ErrCodeStratification) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeStratification)
			}
		})
	}
}

func TestPlanFacetsFailureMessage(t *testing.T) {
	_, err := PlanFacets(PlanInput{Columns: []string{"a", "b"}})
	if err == nil {
		t.Fatal("PlanFacets() error = nil, want stratification error")
	}
	if got := errors.UserMessage(err); got != "Stratification unsuccessful" {
		t.Errorf("message = %q, want %q", got, "Stratification unsuccessful")
	}
}
