package plot

import "github.com/openpmx/vpc/pkg/errors"

// Show is the resolved set of flags controlling which optional layers appear.
// Zero value is not meaningful; obtain one from [ResolveShow] or start from
// [DefaultShow].
type Show struct {
	ObsDV       bool // raw observation scatter
	ObsCI       bool // observed outer percentile lines
	ObsMedian   bool // observed median line
	SimMedian   bool // simulated median line
	SimMedianCI bool // confidence area around the simulated median
	PI          bool // simulated outer percentile lines
	PICI        bool // confidence areas around the outer percentile lines
	PIAsArea    bool // collapse the simulated bands into a single area
	BinSep      bool // tick marks at bin boundaries
	SimKM       bool // per-replicate survival overlay (time-to-event only)
}

// DefaultShow holds the documented display defaults. It is never mutated;
// [ResolveShow] overlays user values onto a copy.
var DefaultShow = Show{
	ObsDV:       false,
	ObsCI:       true,
	ObsMedian:   true,
	SimMedian:   false,
	SimMedianCI: true,
	PI:          false,
	PICI:        true,
	PIAsArea:    false,
	BinSep:      true,
	SimKM:       false,
}

// showKeys maps the recognized override keys to setters. The key names are
// part of the external configuration contract.
var showKeys = map[string]func(*Show, bool){
	"obs_dv":        func(s *Show, v bool) { s.ObsDV = v },
	"obs_ci":        func(s *Show, v bool) { s.ObsCI = v },
	"obs_median":    func(s *Show, v bool) { s.ObsMedian = v },
	"sim_median":    func(s *Show, v bool) { s.SimMedian = v },
	"sim_median_ci": func(s *Show, v bool) { s.SimMedianCI = v },
	"pi":            func(s *Show, v bool) { s.PI = v },
	"pi_ci":         func(s *Show, v bool) { s.PICI = v },
	"pi_as_area":    func(s *Show, v bool) { s.PIAsArea = v },
	"bin_sep":       func(s *Show, v bool) { s.BinSep = v },
	"sim_km":        func(s *Show, v bool) { s.SimKM = v },
}

// showKeyOrder fixes the documented listing order for the override keys.
var showKeyOrder = []string{
	"obs_dv", "obs_ci", "obs_median",
	"sim_median", "sim_median_ci",
	"pi", "pi_ci", "pi_as_area",
	"bin_sep", "sim_km",
}

// ShowOptionNames returns the recognized override keys in documented order.
func ShowOptionNames() []string {
	out := make([]string, len(showKeyOrder))
	copy(out, showKeyOrder)
	return out
}

// DefaultShowValue reports the default for one override key and whether the
// key is recognized.
func DefaultShowValue(key string) (value, ok bool) {
	if _, known := showKeys[key]; !known {
		return false, false
	}
	switch key {
	case "obs_ci", "obs_median", "sim_median_ci", "pi_ci", "bin_sep":
		return true, true
	}
	return false, true
}

// ResolveShow overlays user overrides onto [DefaultShow] key by key and
// returns the complete flag set. Unrecognized keys are rejected with an
// INVALID_SHOW_OPTION error; a nil or empty map yields the defaults.
func ResolveShow(overrides map[string]bool) (Show, error) {
	s := DefaultShow
	for k, v := range overrides {
		set, ok := showKeys[k]
		if !ok {
			return Show{}, errors.New(errors.ErrCodeInvalidShowOption, "unrecognized show option: %q", k)
		}
		set(&s, v)
	}
	return s, nil
}
