package plot

import (
	"fmt"
	"slices"

	"github.com/openpmx/vpc/pkg/errors"
	"github.com/openpmx/vpc/pkg/result"
)

// Y-axis breaks used when survival probability is displayed as a percentage.
var percentBreaks = []float64{0, 25, 50, 75, 100}

// Assemble dispatches on the bundle modality, builds the matching layer
// stack, and attaches facet directive, axis labels, and scale transforms.
//
// Configuration and stratification errors abort the whole call; no partial
// spec is returned. Missing optional statistics silently omit the dependent
// layers, and degenerate strata are recovered with a layer substitution plus
// an optional diagnostic.
func Assemble(b *result.Bundle, cfg Config) (*Spec, error) {
	if b == nil {
		return nil, errors.New(errors.ErrCodeInvalidBundle, "nil bundle")
	}
	if !b.Modality.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidModality, "unknown modality: %q", b.Modality)
	}

	show, err := ResolveShow(cfg.Show)
	if err != nil {
		return nil, err
	}
	th := resolveTheme(cfg.Theme)

	if err := validateStrat(b.Strat); err != nil {
		return nil, err
	}
	plan, err := PlanFacets(PlanFromBundle(b, cfg.Facet))
	if err != nil {
		return nil, err
	}

	spec := &Spec{
		Modality:    b.Modality,
		Facet:       plan.Facet,
		ColorColumn: plan.ColorColumn,
		Title:       cfg.Title,
		XLab:        cfg.XLab,
		YLab:        cfg.YLab,
		LogX:        cfg.LogX,
		LogY:        cfg.LogY,
	}

	if b.Modality.TimeToEvent() {
		spec.Layers = buildTimeToEvent(b, show, th, plan, cfg)
		applyTTEAxes(spec, b, cfg)
	} else {
		spec.Layers = buildContinuous(b, show, th, plan, cfg)
		applyContinuousAxes(spec, b, cfg)
	}

	return spec, nil
}

// validateStrat checks the stratification request itself, independent of
// what the tables can resolve. A designated color column must be one of the
// stratification columns.
func validateStrat(s result.Stratification) error {
	if len(s.Columns) > 2 {
		return errors.New(errors.ErrCodeStratification,
			"stratification supports at most 2 columns, got %d", len(s.Columns))
	}
	if s.Color != "" && len(s.Columns) > 0 && !slices.Contains(s.Columns, s.Color) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"color stratification %q is not one of the stratification columns", s.Color)
	}
	return nil
}

// applyContinuousAxes fills modality defaults for unset labels.
func applyContinuousAxes(spec *Spec, b *result.Bundle, cfg Config) {
	if spec.XLab == "" {
		spec.XLab = "Time"
	}
	if spec.YLab == "" {
		switch {
		case b.Modality == result.ModalityCategorical:
			spec.YLab = "Probability"
		case cfg.PredCorrected:
			spec.YLab = "Prediction-corrected observations"
		default:
			spec.YLab = "Observations"
		}
	}
}

// applyTTEAxes fills the time-to-event axis semantics: survival probability
// by default, a covariate mean when the bundle carries one, and an optional
// percentage rescale with fixed breaks.
func applyTTEAxes(spec *Spec, b *result.Bundle, cfg Config) {
	if spec.XLab == "" {
		spec.XLab = "Time"
	}
	if spec.YLab == "" {
		switch {
		case b.MeanCovariate != "":
			spec.YLab = fmt.Sprintf("Mean (%s)", b.MeanCovariate)
		case cfg.SurvivalAsPercent:
			spec.YLab = "Survival (%)"
		default:
			spec.YLab = "Survival probability"
		}
	}
	if cfg.SurvivalAsPercent && b.MeanCovariate == "" {
		spec.YPercent = true
		spec.YBreaks = slices.Clone(percentBreaks)
	}
}
