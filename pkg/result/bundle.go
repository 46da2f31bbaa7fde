// Package result defines the aggregated data bundle consumed by plot assembly.
//
// A [Bundle] is the output of an upstream aggregation stage: observed and
// simulated data summarized into per-bin percentile statistics, plus the
// stratification and binning metadata needed to lay the plot out. Bundles are
// read-only to the rest of the toolkit; plot assembly only derives layer
// stacks from them.
//
// The JSON form of a Bundle is the interchange format between aggregation
// tools and this toolkit. See [ReadFile] and [WriteFile] for file round-trips.
package result

// Modality identifies the kind of dependent variable the bundle summarizes.
type Modality string

// Supported modalities.
const (
	ModalityContinuous  Modality = "continuous"
	ModalityCensored    Modality = "censored"
	ModalityCategorical Modality = "categorical"
	ModalityTimeToEvent Modality = "time_to_event"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	switch m {
	case ModalityContinuous, ModalityCensored, ModalityCategorical, ModalityTimeToEvent:
		return true
	}
	return false
}

// TimeToEvent reports whether m follows the time-to-event assembly path.
// All other modalities share the continuous assembly path.
func (m Modality) TimeToEvent() bool { return m == ModalityTimeToEvent }

// =============================================================================
// Bin Geometry and Stratification
// =============================================================================

// Interval is the extent of a single bin on the independent axis.
type Interval struct {
	Min float64 `json:"min"`
	Mid float64 `json:"mid"`
	Max float64 `json:"max"`
}

// Stratum carries the stratification values attached to a summary row.
//
// Combined holds the single joined stratification label the aggregation stage
// always emits. Primary and Secondary hold the split per-column values and are
// only populated when the aggregation stage could keep the two stratification
// columns apart. Plot assembly inspects which of these are populated to decide
// between grid faceting and color-only stratification.
type Stratum struct {
	Combined  string `json:"strat,omitempty"`
	Primary   string `json:"strat1,omitempty"`
	Secondary string `json:"strat2,omitempty"`
}

// Stratification describes the grouping requested by the caller: zero, one,
// or two column names, plus an optional color column. When Color is set it
// must name one of Columns; that column is rendered as hue rather than as a
// facet panel.
type Stratification struct {
	Columns []string `json:"columns,omitempty"`
	Color   string   `json:"color,omitempty"`
}

// HasColor reports whether a color stratification column is designated.
func (s Stratification) HasColor() bool { return s.Color != "" }

// Bins holds the bin boundaries the aggregation stage used.
//
// Cuts are the final (post-merge) boundaries matching the summary tables:
// len(Cuts)-1 intervals, one summary row per interval per stratum. PreMerge
// are the boundaries before any post-hoc bin combination; time-to-event
// separators are placed at these, not at Cuts. Disabled marks that the
// caller asked for no separators at all.
type Bins struct {
	Cuts     []float64 `json:"cuts,omitempty"`
	PreMerge []float64 `json:"pre_merge,omitempty"`
	Disabled bool      `json:"disabled,omitempty"`
}

// SeparatorCuts returns the boundary set to place separator ticks at, or nil
// when separators are disabled. Time-to-event plots use the pre-merge
// boundaries when available.
func (b Bins) SeparatorCuts(tte bool) []float64 {
	if b.Disabled {
		return nil
	}
	if tte && len(b.PreMerge) > 0 {
		return b.PreMerge
	}
	return b.Cuts
}

// =============================================================================
// Continuous / Censored / Categorical Tables
// =============================================================================

// Band is one simulated percentile together with its own confidence interval
// across simulation replicates. Lo and Up are the confidence bounds, Med the
// point estimate. Bounds are optional; a nil field means the aggregation
// stage did not compute that statistic.
type Band struct {
	Lo  *float64 `json:"lo,omitempty"`
	Med *float64 `json:"med,omitempty"`
	Up  *float64 `json:"up,omitempty"`
}

// SimBin is one row of the simulated summary table: percentile-of-percentile
// statistics for a single bin and stratum.
type SimBin struct {
	Bin     Interval `json:"bin"`
	Lower   Band     `json:"lower"`  // outer lower percentile (e.g. 5th)
	Median  Band     `json:"median"` // 50th percentile
	Upper   Band     `json:"upper"`  // outer upper percentile (e.g. 95th)
	Stratum Stratum  `json:"stratum,omitempty"`
}

// ObsBin is one row of the observed summary table: the observed median and
// optional outer percentile bounds for a single bin and stratum.
type ObsBin struct {
	Bin     Interval `json:"bin"`
	Median  *float64 `json:"median,omitempty"`
	Lower   *float64 `json:"lower,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
	Stratum Stratum  `json:"stratum,omitempty"`
}

// Point is a single raw observation for scatter display.
type Point struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Stratum Stratum `json:"stratum,omitempty"`
}

// =============================================================================
// Time-to-Event Tables
// =============================================================================

// SurvPoint is one point of a survival curve: time and survival probability
// (or covariate mean, when the bundle carries a mean covariate).
type SurvPoint struct {
	Time    float64 `json:"time"`
	Value   float64 `json:"value"`
	Stratum Stratum `json:"stratum,omitempty"`
}

// ReplicateCurve is the survival step function of a single simulation
// replicate, used for the faint per-replicate overlay.
type ReplicateCurve struct {
	Replicate int         `json:"replicate"`
	Points    []SurvPoint `json:"points"`
}

// KMBin is one row of the simulated Kaplan-Meier summary: the percentile band
// of survival probability across replicates for a single bin and stratum.
type KMBin struct {
	Bin     Interval `json:"bin"`
	Lower   *float64 `json:"lower,omitempty"`
	Median  *float64 `json:"median,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
	Stratum Stratum  `json:"stratum,omitempty"`
}

// KMStep is one step of the observed Kaplan-Meier curve with its optional
// confidence bounds.
type KMStep struct {
	Time     float64  `json:"time"`
	Survival float64  `json:"survival"`
	Lower    *float64 `json:"lower,omitempty"`
	Upper    *float64 `json:"upper,omitempty"`
	Stratum  Stratum  `json:"stratum,omitempty"`
}

// =============================================================================
// Bundle
// =============================================================================

// Bundle is the complete aggregation output for one plot. Exactly one of the
// continuous-family tables (Sim/Obs/Points) or the time-to-event tables
// (Replicates/SimKM/ObsKM/Censored) is populated, keyed by Modality.
//
// Bundles are immutable once produced; plot assembly never mutates them and
// the same Bundle may safely be shared across concurrent assembly calls.
type Bundle struct {
	Modality Modality       `json:"modality"`
	Name     string         `json:"name,omitempty"`
	Sim      []SimBin       `json:"sim,omitempty"`
	Obs      []ObsBin       `json:"obs,omitempty"`
	Points   []Point        `json:"points,omitempty"`
	Bins     Bins           `json:"bins"`
	Strat    Stratification `json:"stratification"`

	// Time-to-event only.
	Replicates     []ReplicateCurve `json:"replicates,omitempty"`
	SimKM          []KMBin          `json:"sim_km,omitempty"`
	ObsKM          []KMStep         `json:"obs_km,omitempty"`
	Censored       []SurvPoint      `json:"censored,omitempty"`
	RepeatedEvents bool             `json:"repeated_events,omitempty"`
	MeanCovariate  string           `json:"mean_covariate,omitempty"`
}

// HasSim reports whether simulated summary data is present.
func (b *Bundle) HasSim() bool {
	if b.Modality.TimeToEvent() {
		return len(b.SimKM) > 0
	}
	return len(b.Sim) > 0
}

// HasObs reports whether observed summary data is present.
func (b *Bundle) HasObs() bool {
	if b.Modality.TimeToEvent() {
		return len(b.ObsKM) > 0
	}
	return len(b.Obs) > 0
}

// SplitStrataResolvable reports whether the summary tables carry the split
// per-column stratification values (Primary populated), which is what allows
// a two-column stratification to resolve to a facet grid.
func (b *Bundle) SplitStrataResolvable() bool {
	for _, r := range b.Sim {
		if r.Stratum.Primary != "" {
			return true
		}
	}
	for _, r := range b.Obs {
		if r.Stratum.Primary != "" {
			return true
		}
	}
	for _, r := range b.SimKM {
		if r.Stratum.Primary != "" {
			return true
		}
	}
	for _, r := range b.ObsKM {
		if r.Stratum.Primary != "" {
			return true
		}
	}
	return false
}

// CombinedStratPresent reports whether the summary tables carry a combined
// stratification label, the fallback that turns a two-column stratification
// into color-only rendering.
func (b *Bundle) CombinedStratPresent() bool {
	for _, r := range b.Sim {
		if r.Stratum.Combined != "" {
			return true
		}
	}
	for _, r := range b.Obs {
		if r.Stratum.Combined != "" {
			return true
		}
	}
	for _, r := range b.SimKM {
		if r.Stratum.Combined != "" {
			return true
		}
	}
	for _, r := range b.ObsKM {
		if r.Stratum.Combined != "" {
			return true
		}
	}
	return false
}
