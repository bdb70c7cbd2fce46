package matcher

import (
	"maps"

	"github.com/agentstation/inferdelta/pkg/graph"
)

// Stats counts matching decisions across sweeps.
type Stats struct {
	Orphans int `json:"orphans" yaml:"orphans"`
	// Accepted counts cascade matches as they were made. Later displacements do not decrement it.
	Accepted map[graph.Algorithm]int `json:"accepted" yaml:"accepted"`
	// Rejected counts unsafe candidates, one per candidate tried.
	Rejected     map[graph.Algorithm]int `json:"rejected" yaml:"rejected"`
	Ambiguous    int                     `json:"ambiguous" yaml:"ambiguous"`
	Displaced    int                     `json:"displaced" yaml:"displaced"`
	SiblingMoves int                     `json:"sibling_moves" yaml:"sibling_moves"`
	Sweeps       []SweepStats            `json:"sweeps" yaml:"sweeps"`
}

// SweepStats describes one sweep.
type SweepStats struct {
	Number   int `json:"number" yaml:"number"`
	Examined int `json:"examined" yaml:"examined"`
	Matched  int `json:"matched" yaml:"matched"`
	// Orphaned is the number of orphans without a replacement at the end of the sweep.
	Orphaned int `json:"orphaned" yaml:"orphaned"`
}

func newStats() Stats {
	return Stats{
		Accepted: make(map[graph.Algorithm]int),
		Rejected: make(map[graph.Algorithm]int),
	}
}

func (s Stats) clone() Stats {
	out := s
	out.Accepted = maps.Clone(s.Accepted)
	out.Rejected = maps.Clone(s.Rejected)
	out.Sweeps = append([]SweepStats(nil), s.Sweeps...)
	return out
}
