package plot

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LineType identifies the stroke pattern of a line layer.
type LineType string

// Supported line types.
const (
	LineSolid  LineType = "solid"
	LineDashed LineType = "dashed"
	LineDotted LineType = "dotted"
)

// Shape identifies the marker of a point layer.
type Shape string

// Supported point shapes.
const (
	ShapeCircle Shape = "circle"
	ShapeTick   Shape = "tick" // vertical tick, used for censoring markers
)

// Style holds the resolved visual attributes of one layer category.
// Zero-valued fields in a user theme fall back to the built-in default for
// the category.
type Style struct {
	Color    string   `toml:"color" json:"color,omitempty"`
	Fill     string   `toml:"fill" json:"fill,omitempty"`
	LineType LineType `toml:"linetype" json:"linetype,omitempty"`
	Size     float64  `toml:"size" json:"size,omitempty"`
	Alpha    float64  `toml:"alpha" json:"alpha,omitempty"`
	Shape    Shape    `toml:"shape" json:"shape,omitempty"`
}

// Theme maps each layer category to its style attributes. Partial themes are
// fine: resolution fills unset fields from [DefaultTheme].
type Theme struct {
	Obs           Style `toml:"obs" json:"obs"`
	ObsMedian     Style `toml:"obs_median" json:"obs_median"`
	ObsCI         Style `toml:"obs_ci" json:"obs_ci"`
	SimMedian     Style `toml:"sim_median" json:"sim_median"`
	SimPI         Style `toml:"sim_pi" json:"sim_pi"`
	BinSeparators Style `toml:"bin_separators" json:"bin_separators"`
}

// DefaultTheme returns the built-in style defaults for every category.
func DefaultTheme() Theme {
	return Theme{
		Obs:           Style{Color: "#000000", Size: 1, Alpha: 0.7, Shape: ShapeCircle},
		ObsMedian:     Style{Color: "#000000", LineType: LineSolid, Size: 1, Alpha: 1},
		ObsCI:         Style{Color: "#000000", LineType: LineDashed, Size: 0.5, Alpha: 1},
		SimMedian:     Style{Color: "#3388cc", Fill: "#3388cc", LineType: LineDashed, Size: 1, Alpha: 1},
		SimPI:         Style{Color: "#3388cc", Fill: "#3388cc", LineType: LineDotted, Size: 0.5, Alpha: 0.15},
		BinSeparators: Style{Color: "#000000", Size: 0.5, Alpha: 0.3},
	}
}

// Style returns the style for a category. Unknown categories resolve to the
// observation style so every layer always has usable attributes.
func (t Theme) Style(c Category) Style {
	switch c {
	case CategoryObs:
		return t.Obs
	case CategoryObsMedian:
		return t.ObsMedian
	case CategoryObsCI:
		return t.ObsCI
	case CategorySimMedian:
		return t.SimMedian
	case CategorySimPI:
		return t.SimPI
	case CategoryBinSeparators:
		return t.BinSeparators
	}
	return t.Obs
}

// resolved overlays t onto the default theme field by field and returns the
// complete theme. Zero-valued fields inherit the default for their category.
func (t Theme) resolved() Theme {
	def := DefaultTheme()
	return Theme{
		Obs:           mergeStyle(t.Obs, def.Obs),
		ObsMedian:     mergeStyle(t.ObsMedian, def.ObsMedian),
		ObsCI:         mergeStyle(t.ObsCI, def.ObsCI),
		SimMedian:     mergeStyle(t.SimMedian, def.SimMedian),
		SimPI:         mergeStyle(t.SimPI, def.SimPI),
		BinSeparators: mergeStyle(t.BinSeparators, def.BinSeparators),
	}
}

func mergeStyle(s, def Style) Style {
	if s.Color == "" {
		s.Color = def.Color
	}
	if s.Fill == "" {
		s.Fill = def.Fill
	}
	if s.LineType == "" {
		s.LineType = def.LineType
	}
	if s.Size == 0 {
		s.Size = def.Size
	}
	if s.Alpha == 0 {
		s.Alpha = def.Alpha
	}
	if s.Shape == "" {
		s.Shape = def.Shape
	}
	return s
}

// Resolve overlays a partial theme onto the defaults and returns the
// complete theme.
func Resolve(t Theme) Theme {
	return t.resolved()
}

// resolveTheme interprets the loosely typed theme slot of a Config. Theme
// values and pointers are resolved against the defaults; anything else,
// including nil, silently falls back to the default theme. Show option
// validation is strict while theme validation is lenient; the two policies
// are deliberately kept separate.
func resolveTheme(v any) Theme {
	switch t := v.(type) {
	case Theme:
		return t.resolved()
	case *Theme:
		if t != nil {
			return t.resolved()
		}
	}
	return DefaultTheme()
}

// LoadThemeFile reads a partial theme from a TOML file. The result still
// goes through default resolution during assembly, so files only need to
// mention the attributes they change:
//
//	[sim_pi]
//	fill = "#cc3333"
//	alpha = 0.2
func LoadThemeFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme %s: %w", path, err)
	}
	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return t, nil
}

// EncodeTheme renders a theme as TOML, used by the CLI to print the default
// theme as a starting point for customization.
func EncodeTheme(t Theme) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return nil, fmt.Errorf("encode theme: %w", err)
	}
	return buf.Bytes(), nil
}
