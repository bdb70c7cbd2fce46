package rf2

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/errors"
)

// digitRun matches a maximal run of digits.
var digitRun = regexp.MustCompile(`\d+`)

// EffectiveDate extracts the YYYYMMDD date token from the base name of path.
// The first eight-digit token that is a valid calendar date wins.
func EffectiveDate(path string) (string, error) {
	base := filepath.Base(path)
	for _, token := range digitRun.FindAllString(base, -1) {
		if len(token) != len(constants.EffectiveTimeLayout) {
			continue
		}
		if _, err := time.Parse(constants.EffectiveTimeLayout, token); err == nil {
			return token, nil
		}
	}
	return "", &errors.ValidationError{
		Field:   "output",
		Value:   path,
		Message: "file name must contain an 8-digit YYYYMMDD date",
		Err:     errors.ErrNoEffectiveDate,
	}
}
