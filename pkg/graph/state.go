package graph

import "strings"

// Algorithm names the heuristic that chose a replacement.
type Algorithm string

const (
	// AlgorithmSameGroupChild matches the same type and group with the stated
	// destination or one of its descendants.
	AlgorithmSameGroupChild Algorithm = "same-group-child"
	// AlgorithmGroupShape matches the exact type and destination inside an
	// inferred group whose type shape equals the stated group's.
	AlgorithmGroupShape Algorithm = "group-shape"
	// AlgorithmCompatibleGroup matches inside an inferred group that carries at
	// least every type of the stated group.
	AlgorithmCompatibleGroup Algorithm = "compatible-group"
	// AlgorithmLooseCrossGroup matches the same type in any group.
	AlgorithmLooseCrossGroup Algorithm = "loose-cross-group"
	// AlgorithmProximate matches a descendant type and a descendant destination.
	AlgorithmProximate Algorithm = "proximate"
	// AlgorithmSiblingGroup follows a sibling of the same stated group into its
	// new inferred group.
	AlgorithmSiblingGroup Algorithm = "sibling-group"
)

// Cascade lists the matching algorithms in precedence order.
var Cascade = []Algorithm{
	AlgorithmSameGroupChild,
	AlgorithmGroupShape,
	AlgorithmCompatibleGroup,
	AlgorithmLooseCrossGroup,
	AlgorithmProximate,
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// Name returns a title-cased display name.
func (a Algorithm) Name() string {
	words := strings.Split(a.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// Certain reports whether a match by this algorithm is treated as definitive.
// Certain matches may displace uncertain ones.
func (a Algorithm) Certain() bool {
	switch a {
	case AlgorithmSameGroupChild, AlgorithmGroupShape, AlgorithmSiblingGroup:
		return true
	default:
		return false
	}
}

// Rank returns the 1-based cascade position, or 0 for algorithms outside the cascade.
func (a Algorithm) Rank() int {
	for i, c := range Cascade {
		if c == a {
			return i + 1
		}
	}
	return 0
}

// State is the reconciliation state of a stated relationship. It is one of
// Current, Orphaned, Matched, Suppressed or Emitted.
//
//	Current -> Orphaned -> Matched -> Suppressed
//	   |           |  ^       |
//	   |           |  +-------+ (displaced)
//	   +-----------|--------> Matched (sibling move)
//	               +--------> Emitted <- Matched
type State interface {
	Name() string
	state()
}

// Current means the relationship has an exact counterpart and needs nothing.
type Current struct{}

// Orphaned means the relationship has no counterpart and no replacement yet.
type Orphaned struct{}

// Matched means the relationship will be replaced.
type Matched struct {
	Replacement *Relationship
	Algorithm   Algorithm
}

// Suppressed means the relationship was matched but its inactivation is
// withheld, because its own triple is re-activated by Claimant's replacement.
type Suppressed struct {
	Matched
	Claimant *Relationship
}

// Emitted means the relationship's delta rows were written. Replacement is
// nil when no replacement was found.
type Emitted struct {
	Replacement *Relationship
	Algorithm   Algorithm
}

// Name implements State.
func (Current) Name() string { return "current" }

// Name implements State.
func (Orphaned) Name() string { return "orphaned" }

// Name implements State.
func (Matched) Name() string { return "matched" }

// Name implements State.
func (Suppressed) Name() string { return "suppressed" }

// Name implements State.
func (Emitted) Name() string { return "emitted" }

func (Current) state()    {}
func (Orphaned) state()   {}
func (Matched) state()    {}
func (Suppressed) state() {}
func (Emitted) state()    {}
