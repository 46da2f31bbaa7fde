package plot

import (
	"strings"

	"github.com/openpmx/vpc/pkg/errors"
	"github.com/openpmx/vpc/pkg/result"
)

// Orientation preference values. Anything containing "row" selects a
// row-oriented grid; the match is a case-sensitive substring check, kept for
// compatibility with existing configurations.
const (
	OrientWrap    = "wrap"
	OrientRows    = "rows"
	OrientColumns = "columns"
)

// Plan is the resolved stratification plan: the facet directive plus the hue
// mapping, computed once and threaded into both builders.
type Plan struct {
	Facet Facet

	// Hue names the stratum field mapped to color, FieldNone when no color
	// stratification applies. ColorColumn is the display name of the column
	// behind it.
	Hue         FieldRef
	ColorColumn string
}

// PlanInput captures everything facet planning depends on. SplitResolvable
// and CombinedPresent come from a single inspection of the aggregated tables
// ([result.Bundle.SplitStrataResolvable], [result.Bundle.CombinedStratPresent]).
type PlanInput struct {
	Columns     []string // stratification columns, 0-2 entries
	Color       string   // designated color column, "" if none
	Orientation string   // facet orientation preference

	SplitResolvable bool // split per-column stratum values present in tables
	CombinedPresent bool // combined stratum label present in tables

	// ForceSingleFacet applies a single-axis facet layout on the combined
	// stratum label regardless of the stratification column count (repeated
	// time-to-event plots panel by event number).
	ForceSingleFacet bool
}

// PlanFromBundle builds the planner input from a bundle and an orientation
// preference.
func PlanFromBundle(b *result.Bundle, orientation string) PlanInput {
	return PlanInput{
		Columns:          b.Strat.Columns,
		Color:            b.Strat.Color,
		Orientation:      orientation,
		SplitResolvable:  b.SplitStrataResolvable(),
		CombinedPresent:  b.CombinedStratPresent(),
		ForceSingleFacet: b.Modality.TimeToEvent() && b.RepeatedEvents,
	}
}

// PlanFacets resolves stratification arity, color designation, and
// orientation preference into a facet directive and hue mapping.
//
// The decision table:
//   - ForceSingleFacet: a single-axis layout on the combined stratum/event
//     label, whatever the column count. Repeated-event tables carry the
//     event number inside the combined label, so grid resolution never
//     applies to them.
//   - 0 columns: no facet.
//   - 1 column: facet on it per orientation. A designated color column is
//     additionally mapped to hue; the facet still applies.
//   - 2 columns, color designated: the remaining column must resolve to a
//     facet grid axis via the split stratum values, else planning fails.
//   - 2 columns, no color: grid on both axes when split values resolve;
//     when only the combined label is present, fall back silently to
//     color-only rendering; otherwise fail.
func PlanFacets(in PlanInput) (Plan, error) {
	if len(in.Columns) > 2 {
		return Plan{}, errors.New(errors.ErrCodeStratification,
			"stratification supports at most 2 columns, got %d", len(in.Columns))
	}

	if in.ForceSingleFacet {
		p := Plan{Facet: singleAxisFacet(eventFacetColumn(in.Columns), FieldCombined, in.Orientation)}
		if in.Color != "" {
			p.Hue = FieldCombined
			p.ColorColumn = in.Color
		}
		return p, nil
	}

	switch len(in.Columns) {
	case 0:
		p := Plan{Facet: Facet{Kind: FacetNone}}
		if in.Color != "" {
			p.Hue = FieldCombined
			p.ColorColumn = in.Color
		}
		return p, nil

	case 1:
		p := Plan{Facet: singleAxisFacet(in.Columns[0], FieldPrimary, in.Orientation)}
		if in.Color != "" {
			p.Hue = FieldCombined
			p.ColorColumn = in.Color
		}
		return p, nil

	default:
		if in.Color != "" {
			remainder, hue := splitColor(in.Columns, in.Color)
			if !in.SplitResolvable {
				return Plan{}, errors.New(errors.ErrCodeStratification, "Stratification unsuccessful")
			}
			facetField := FieldPrimary
			if hue == FieldPrimary {
				facetField = FieldSecondary
			}
			// The remainder must land on a grid axis; wrap is not an option
			// once one column is consumed by color.
			return Plan{
				Facet:       gridAxisFacet(remainder, facetField, in.Orientation),
				Hue:         hue,
				ColorColumn: in.Color,
			}, nil
		}

		if in.SplitResolvable {
			return Plan{Facet: gridBothFacet(in.Columns, in.Orientation)}, nil
		}
		if in.CombinedPresent {
			// Tables only carry the joined label: render it as hue, no panels.
			return Plan{
				Facet:       Facet{Kind: FacetNone},
				Hue:         FieldCombined,
				ColorColumn: strings.Join(in.Columns, ", "),
			}, nil
		}
		return Plan{}, errors.New(errors.ErrCodeStratification, "Stratification unsuccessful")
	}
}

// eventFacetColumn names the forced facet column: the event number alone, or
// appended to the stratification columns when any exist.
func eventFacetColumn(cols []string) string {
	if len(cols) == 0 {
		return "event"
	}
	return strings.Join(cols, ", ") + ", event"
}

// singleAxisFacet lays one column out per the orientation preference.
func singleAxisFacet(col string, field FieldRef, orientation string) Facet {
	switch {
	case orientation == "" || orientation == OrientWrap:
		return Facet{Kind: FacetWrap, Col: col, ColField: field}
	case strings.Contains(orientation, "row"):
		return Facet{Kind: FacetGridRow, Row: col, RowField: field}
	default:
		return Facet{Kind: FacetGridCol, Col: col, ColField: field}
	}
}

// gridAxisFacet is singleAxisFacet restricted to grid layouts: a row-oriented
// preference selects rows, everything else selects columns.
func gridAxisFacet(col string, field FieldRef, orientation string) Facet {
	if strings.Contains(orientation, "row") {
		return Facet{Kind: FacetGridRow, Row: col, RowField: field}
	}
	return Facet{Kind: FacetGridCol, Col: col, ColField: field}
}

// gridBothFacet assigns the two columns to grid axes. A row-oriented
// preference puts the first column on rows; anything else puts it on
// columns.
func gridBothFacet(cols []string, orientation string) Facet {
	if strings.Contains(orientation, "row") {
		return Facet{
			Kind:     FacetGridBoth,
			Row:      cols[0],
			Col:      cols[1],
			RowField: FieldPrimary,
			ColField: FieldSecondary,
		}
	}
	return Facet{
		Kind:     FacetGridBoth,
		Row:      cols[1],
		Col:      cols[0],
		RowField: FieldSecondary,
		ColField: FieldPrimary,
	}
}

// splitColor identifies which stratum field the color column occupies and
// returns the remaining facet column. The second column wins the hue mapping
// when both are designated, matching the aggregation stage's column order.
func splitColor(cols []string, color string) (remainder string, hue FieldRef) {
	if cols[0] == color {
		return cols[1], FieldPrimary
	}
	return cols[0], FieldSecondary
}
