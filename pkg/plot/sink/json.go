package sink

import (
	"encoding/json"

	"github.com/openpmx/vpc/pkg/plot"
)

// SpecVersion identifies the JSON specification schema. Bump on breaking
// changes to the layer or facet structures.
const SpecVersion = 1

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
	source  string
}

// WithJSONCompact disables indentation for machine-to-machine transfer.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONSource records the originating bundle path or identifier in the
// output for traceability.
func WithJSONSource(s string) JSONOption { return func(r *jsonRenderer) { r.source = s } }

type jsonOutput struct {
	Version int    `json:"version"`
	Source  string `json:"source,omitempty"`
	*plot.Spec
}

// RenderJSON exports the plot specification as a JSON document. This is the
// primary data interchange format: any rendering backend can fold the layer
// stack into its native plot object, and the output can be cached and
// re-rendered without re-assembly.
//
// RenderJSON returns an error only if JSON marshaling fails. It does not
// modify the spec and is safe to call concurrently.
func RenderJSON(spec *plot.Spec, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Version: SpecVersion, Source: r.source, Spec: spec}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
