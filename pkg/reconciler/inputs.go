package reconciler

import (
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// Inputs names the files of one run.
type Inputs struct {
	Stated   string `json:"stated" yaml:"stated"`
	Inferred string `json:"inferred" yaml:"inferred"`
	// Additional is optional; an empty path or a missing file contributes no rows.
	Additional string `json:"additional,omitempty" yaml:"additional,omitempty"`
	Output     string `json:"output" yaml:"output"`
}

// Validate checks that every required path is set and returns the effective
// date carried by the output file name.
func (in Inputs) Validate() (string, error) {
	for _, f := range []struct{ field, path string }{
		{"stated", in.Stated},
		{"inferred", in.Inferred},
		{"output", in.Output},
	} {
		if f.path == "" {
			return "", &errors.ValidationError{Field: f.field, Message: "path is required"}
		}
	}
	return rf2.EffectiveDate(in.Output)
}
