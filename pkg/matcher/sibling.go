package matcher

import (
	"context"
	"slices"

	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
)

// moveSiblings follows moved into rep's inferred group with every other edge
// of moved's stated group, so that edges grouped by the author stay together.
// A found candidate is taken unconditionally and its previous claimant is
// displaced. Siblings without a candidate are left to later sweeps.
func (m *Matcher) moveSiblings(ctx context.Context, moved, rep *graph.Relationship) error {
	statedConcept, ok := m.stated.Concept(moved.Source)
	if !ok {
		return nil
	}
	inferredConcept, ok := m.inferred.Concept(rep.Source)
	if !ok {
		return nil
	}
	target := inferredConcept.Group(rep.Group)
	logger := logging.FromContext(ctx)

	for _, sib := range statedConcept.Group(moved.Group).Relationships {
		if sib == moved || !m.eligible(sib) {
			continue
		}
		cand := m.siblingCandidate(sib, moved, target)
		if cand == nil {
			logger.Debug().
				Str("relationship", sib.String()).
				Int("group", rep.Group).
				Msg("No sibling candidate in target group")
			continue
		}
		if current, _ := sib.Replacement(); current == cand {
			continue
		}

		if claimant := cand.ClaimedBy(); claimant != nil && claimant != sib {
			if err := claimant.Unmatch(); err != nil {
				return err
			}
			m.stats.Displaced++
			logger.Info().
				Str("relationship", sib.String()).
				Str("displaced", claimant.String()).
				Msg("Sibling move displaced an earlier claim")
		}
		if err := sib.Match(cand, graph.AlgorithmSiblingGroup); err != nil {
			return err
		}
		m.stats.SiblingMoves++
		logger.Debug().
			Str("relationship", sib.String()).
			Str("replacement", cand.String()).
			Int("from_group", moved.Group).
			Int("to_group", rep.Group).
			Msg("Moved sibling with its group")
	}
	return nil
}

// siblingCandidate picks the best edge of target for sib: an exact type and
// destination first, then one step more specific in type or destination,
// then one step more specific in both. Edges already taken by another member
// of the same stated group are skipped.
func (m *Matcher) siblingCandidate(sib, moved *graph.Relationship, target graph.Group) *graph.Relationship {
	var cands []candidate
	for _, rel := range target.Relationships {
		if c := rel.ClaimedBy(); c != nil && c != sib && c.Source == moved.Source && c.Group == moved.Group {
			continue
		}
		if d := m.siblingDistance(sib, rel); d >= 0 {
			cands = append(cands, candidate{rel: rel, distance: d})
		}
	}
	if len(cands) == 0 {
		return nil
	}
	return slices.MinFunc(cands, compareCandidates).rel
}

// siblingDistance is 0 for an exact match, 1 when either the type or the
// destination is a direct child, 2 when both are, and -1 otherwise.
func (m *Matcher) siblingDistance(sib, rel *graph.Relationship) int {
	typeStep := step(m.inferred, rel.Type, sib.Type)
	destStep := step(m.inferred, rel.Destination, sib.Destination)
	if typeStep < 0 || destStep < 0 {
		return -1
	}
	return typeStep + destStep
}

func step(g *graph.Graph, id, from int64) int {
	switch {
	case id == from:
		return 0
	case g.IsDirectChild(id, from):
		return 1
	}
	return -1
}
