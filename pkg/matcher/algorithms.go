package matcher

import (
	"cmp"
	"slices"

	"github.com/agentstation/inferdelta/pkg/graph"
)

// candidate is an inferred relationship with its hop distance from the
// stated edge it might replace.
type candidate struct {
	rel      *graph.Relationship
	distance int
}

// compareCandidates ranks by hop distance, then destination, type, group and
// row identifier.
func compareCandidates(a, b candidate) int {
	return cmp.Or(
		cmp.Compare(a.distance, b.distance),
		cmp.Compare(a.rel.Destination, b.rel.Destination),
		cmp.Compare(a.rel.Type, b.rel.Type),
		cmp.Compare(a.rel.Group, b.rel.Group),
		cmp.Compare(a.rel.ID(), b.rel.ID()),
	)
}

// ranked sorts candidates and reports whether the top two tie on distance.
func ranked(cands []candidate) ([]candidate, bool) {
	slices.SortFunc(cands, compareCandidates)
	ambiguous := len(cands) > 1 && cands[0].distance == cands[1].distance
	return cands, ambiguous
}

// candidates returns the ranked candidates of one algorithm for stated edge s.
func (m *Matcher) candidates(alg graph.Algorithm, s *graph.Relationship) []candidate {
	switch alg {
	case graph.AlgorithmSameGroupChild:
		return m.byDestination(s, m.inferred.SameGroupDescendants(s.Source, s.Type, s.Group, s.Destination))
	case graph.AlgorithmGroupShape:
		return m.groupShape(s)
	case graph.AlgorithmCompatibleGroup:
		return m.compatibleGroup(s)
	case graph.AlgorithmLooseCrossGroup:
		return m.byDestination(s, m.inferred.Descendants(s.Source, s.Type, s.Destination))
	case graph.AlgorithmProximate:
		return m.proximate(s)
	}
	return nil
}

func (m *Matcher) byDestination(s *graph.Relationship, rels []*graph.Relationship) []candidate {
	out := make([]candidate, 0, len(rels))
	for _, rel := range rels {
		out = append(out, candidate{rel: rel, distance: m.inferred.Distance(rel.Destination, s.Destination)})
	}
	return out
}

// statedTypes returns the type multiset of the stated group that s belongs
// to. An ungrouped edge stands alone.
func (m *Matcher) statedTypes(s *graph.Relationship) []int64 {
	if s.Group == 0 {
		return []int64{s.Type}
	}
	c, ok := m.stated.Concept(s.Source)
	if !ok {
		return []int64{s.Type}
	}
	return c.Group(s.Group).Types()
}

func (m *Matcher) groupShape(s *graph.Relationship) []candidate {
	if s.Group == 0 {
		return nil
	}
	var out []candidate
	for _, grp := range m.inferred.GroupsWithShape(s.Source, m.statedTypes(s)) {
		for _, rel := range grp.Relationships {
			if rel.Type == s.Type && rel.Destination == s.Destination {
				out = append(out, candidate{rel: rel})
			}
		}
	}
	return out
}

func (m *Matcher) compatibleGroup(s *graph.Relationship) []candidate {
	var out []candidate
	for _, grp := range m.inferred.GroupsContainingTypes(s.Source, m.statedTypes(s)) {
		for _, rel := range grp.Relationships {
			if rel.Type != s.Type {
				continue
			}
			if d := m.inferred.Distance(rel.Destination, s.Destination); d >= 0 {
				out = append(out, candidate{rel: rel, distance: d})
			}
		}
	}
	return out
}

func (m *Matcher) proximate(s *graph.Relationship) []candidate {
	rels := m.inferred.Proximate(s.Source, s.Type, s.Destination)
	out := make([]candidate, 0, len(rels))
	for _, rel := range rels {
		out = append(out, candidate{
			rel:      rel,
			distance: m.inferred.Distance(rel.Type, s.Type) + m.inferred.Distance(rel.Destination, s.Destination),
		})
	}
	return out
}
