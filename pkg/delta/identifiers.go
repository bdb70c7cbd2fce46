package delta

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/inferdelta/pkg/errors"
)

// IdentifierPolicy decides the id column of activation and addition rows.
type IdentifierPolicy string

const (
	// IdentifiersBlank leaves the id empty for the release tooling to assign.
	IdentifiersBlank IdentifierPolicy = "blank"
	// IdentifiersKeep copies the id of the source row.
	IdentifiersKeep IdentifierPolicy = "keep"
	// IdentifiersUUID assigns a fresh random UUID.
	IdentifiersUUID IdentifierPolicy = "uuid"
)

// IdentifierPolicies lists the accepted policies.
var IdentifierPolicies = []IdentifierPolicy{IdentifiersBlank, IdentifiersKeep, IdentifiersUUID}

// String returns the string representation of the policy.
func (p IdentifierPolicy) String() string {
	return string(p)
}

// ParseIdentifierPolicy parses a policy name. An empty name means blank.
func ParseIdentifierPolicy(s string) (IdentifierPolicy, error) {
	switch p := IdentifierPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return IdentifiersBlank, nil
	case IdentifiersBlank, IdentifiersKeep, IdentifiersUUID:
		return p, nil
	}
	return "", &errors.ValidationError{
		Field:   "identifiers",
		Value:   s,
		Message: fmt.Sprintf("unknown identifier policy %q (want blank, keep or uuid)", s),
	}
}

// assign returns the id for a row whose source id is original.
func (p IdentifierPolicy) assign(original string, newID func() string) string {
	switch p {
	case IdentifiersKeep:
		return original
	case IdentifiersUUID:
		if newID == nil {
			return uuid.NewString()
		}
		return newID()
	default:
		return ""
	}
}
