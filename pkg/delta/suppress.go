package delta

import (
	"slices"

	"github.com/agentstation/inferdelta/pkg/graph"
)

// Reason explains why a row was withheld.
type Reason string

const (
	// ReasonUnchanged means the replacement is the stated edge itself.
	ReasonUnchanged Reason = "unchanged"
	// ReasonContradiction means another stated edge's replacement re-activates
	// this edge's own triple.
	ReasonContradiction Reason = "contradiction"
	// ReasonRedundant means the replacement equals a stated edge that stays active.
	ReasonRedundant Reason = "redundant"
	// ReasonReAdded means an additional row re-adds this edge's triple.
	ReasonReAdded Reason = "re-added"
)

// Suppression withholds the inactivation of a stated edge, the activation of
// its replacement, or both.
type Suppression struct {
	Relationship *graph.Relationship `json:"-" yaml:"-"`
	// Claimant is the stated edge whose replacement collides with Relationship, if any.
	Claimant     *graph.Relationship `json:"-" yaml:"-"`
	Inactivation bool                `json:"inactivation" yaml:"inactivation"`
	Activation   bool                `json:"activation" yaml:"activation"`
	// Reason is the first cause decided; Reasons holds every distinct cause in decision order.
	Reason  Reason   `json:"reason" yaml:"reason"`
	Reasons []Reason `json:"reasons" yaml:"reasons"`
}

// Has reports whether reason is among the causes of the suppression.
func (s Suppression) Has(reason Reason) bool {
	return slices.Contains(s.Reasons, reason)
}

func (s *Suppression) clone() Suppression {
	out := *s
	out.Reasons = slices.Clone(s.Reasons)
	return out
}

// Suppressions is the decision set of one delta, keyed by stated edge.
type Suppressions struct {
	byRel map[*graph.Relationship]*Suppression
	order []*graph.Relationship
}

// Inactivation reports whether rel's inactivation is withheld.
func (s Suppressions) Inactivation(rel *graph.Relationship) bool {
	sup, ok := s.byRel[rel]
	return ok && sup.Inactivation
}

// Activation reports whether the activation of rel's replacement is withheld.
func (s Suppressions) Activation(rel *graph.Relationship) bool {
	sup, ok := s.byRel[rel]
	return ok && sup.Activation
}

// Get returns the suppression recorded for rel.
func (s Suppressions) Get(rel *graph.Relationship) (Suppression, bool) {
	sup, ok := s.byRel[rel]
	if !ok {
		return Suppression{}, false
	}
	return sup.clone(), true
}

// List returns every suppression in the order it was decided.
func (s Suppressions) List() []Suppression {
	out := make([]Suppression, 0, len(s.order))
	for _, rel := range s.order {
		out = append(out, s.byRel[rel].clone())
	}
	return out
}

// Len returns the number of stated edges with a suppression.
func (s Suppressions) Len() int {
	return len(s.order)
}

// add merges one decision into rel's suppression. The first claimant seen is kept.
func (s *Suppressions) add(rel, claimant *graph.Relationship, inactivation, activation bool, reason Reason) {
	sup, ok := s.byRel[rel]
	if !ok {
		sup = &Suppression{Relationship: rel, Reason: reason}
		s.byRel[rel] = sup
		s.order = append(s.order, rel)
	}
	if !sup.Has(reason) {
		sup.Reasons = append(sup.Reasons, reason)
	}
	if sup.Claimant == nil {
		sup.Claimant = claimant
	}
	sup.Inactivation = sup.Inactivation || inactivation
	sup.Activation = sup.Activation || activation
}

// Suppress decides which rows of a delta must be withheld so that no edge is
// both activated and inactivated. It reads the graphs and changes nothing.
//
// orphans are the stated edges that need replacement in canonical order.
// additions are the parsed rows of the additional file.
//
//   - A replacement equal to its own stated edge is a no-op.
//   - A replacement equal to another stated edge Z is not activated. If Z
//     itself needs replacement, Z's inactivation is withheld as well.
//   - An addition equal to an orphan withholds the orphan's inactivation.
func Suppress(stated *graph.Graph, orphans []*graph.Relationship, additions []*graph.Relationship) Suppressions {
	s := Suppressions{byRel: make(map[*graph.Relationship]*Suppression)}

	for _, x := range orphans {
		rep, _ := x.Replacement()
		if rep == nil {
			continue
		}
		if rep.Identity == x.Identity {
			s.add(x, nil, true, true, ReasonUnchanged)
			continue
		}
		z := stated.Find(rep.Identity)
		if z == nil {
			continue
		}
		if z.NeedsReplacement() {
			s.add(z, x, true, false, ReasonContradiction)
			s.add(x, z, false, true, ReasonContradiction)
		} else {
			s.add(x, z, false, true, ReasonRedundant)
		}
	}

	for _, add := range additions {
		x := stated.Find(add.Identity)
		if x != nil && x.NeedsReplacement() {
			s.add(x, nil, true, false, ReasonReAdded)
		}
	}

	return s
}
