// Package matcher finds replacements for stated relationships that lost their
// exact counterpart in the inferred view.
//
// Orphans are matched in canonical order through a fixed cascade of
// algorithms; the first safe candidate wins. A match that lands in a
// different group pulls the rest of the stated group along with it.
package matcher

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
)

// Matcher writes replacement links onto the stated graph.
type Matcher struct {
	stated   *graph.Graph
	inferred *graph.Graph

	includeIsA       bool
	progressInterval int
	printer          *message.Printer

	stats Stats
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithIncludeIsA makes is-a edges eligible for reconciliation. By default
// they only shape the hierarchy.
func WithIncludeIsA(include bool) Option {
	return func(m *Matcher) {
		m.includeIsA = include
	}
}

// WithProgressInterval sets how many edges pass between progress logs.
// Zero disables progress logging.
func WithProgressInterval(n int) Option {
	return func(m *Matcher) {
		m.progressInterval = n
	}
}

// New creates a matcher over the two graphs.
func New(stated, inferred *graph.Graph, opts ...Option) *Matcher {
	m := &Matcher{
		stated:           stated,
		inferred:         inferred,
		progressInterval: constants.ProgressInterval,
		printer:          message.NewPrinter(language.English),
		stats:            newStats(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run performs all sweeps: orphan marking followed by matching passes.
func (m *Matcher) Run(ctx context.Context) (Stats, error) {
	if _, err := m.MarkOrphans(ctx); err != nil {
		return m.Stats(), err
	}
	for sweep := 2; sweep <= constants.Sweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return m.Stats(), err
		}
		if _, err := m.Sweep(ctx, sweep); err != nil {
			return m.Stats(), err
		}
	}
	return m.Stats(), nil
}

// eligible reports whether a stated edge takes part in reconciliation.
func (m *Matcher) eligible(rel *graph.Relationship) bool {
	return m.includeIsA || !m.stated.IsA(rel)
}

// MarkOrphans marks every eligible stated edge without an inferred twin.
func (m *Matcher) MarkOrphans(ctx context.Context) (int, error) {
	ctx = logging.WithSweep(ctx, 1)
	logger := logging.FromContext(ctx)

	rels := m.stated.Relationships()
	orphans := 0
	for i, rel := range rels {
		m.progress(ctx, i, len(rels))
		if !m.eligible(rel) || m.inferred.Twin(rel) != nil {
			continue
		}
		if err := rel.MarkOrphaned(); err != nil {
			return orphans, err
		}
		orphans++
	}

	m.stats.Orphans = orphans
	m.stats.Sweeps = append(m.stats.Sweeps, SweepStats{Number: 1, Examined: len(rels), Orphaned: orphans})
	logger.Info().
		Int("relationships", len(rels)).
		Int("orphans", orphans).
		Msg("Marked orphaned relationships")
	return orphans, nil
}

// Sweep tries to match every orphan still waiting for a replacement.
func (m *Matcher) Sweep(ctx context.Context, number int) (int, error) {
	ctx = logging.WithSweep(ctx, number)
	logger := logging.FromContext(ctx)

	pending := m.Unresolved()
	matched := 0
	for i, rel := range pending {
		m.progress(ctx, i, len(pending))
		if !rel.IsOrphaned() {
			continue
		}
		ok, err := m.match(ctx, rel)
		if err != nil {
			return matched, err
		}
		if ok {
			matched++
		}
	}

	remaining := len(m.Unresolved())
	m.stats.Sweeps = append(m.stats.Sweeps, SweepStats{
		Number:   number,
		Examined: len(pending),
		Matched:  matched,
		Orphaned: remaining,
	})
	logger.Info().
		Int("attempted", len(pending)).
		Int("matched", matched).
		Int("remaining", remaining).
		Msg("Completed matching sweep")
	return matched, nil
}

// match runs the cascade for one orphan. Within an algorithm the candidates
// are tried in ranked order and the first safe one wins; the next algorithm
// is consulted only when every candidate was rejected.
func (m *Matcher) match(ctx context.Context, s *graph.Relationship) (bool, error) {
	logger := logging.FromContext(ctx)

	for _, alg := range graph.Cascade {
		cands, ambiguous := ranked(m.candidates(alg, s))
		if len(cands) == 0 {
			continue
		}
		if ambiguous {
			m.stats.Ambiguous++
			logger.Warn().
				Str("relationship", s.String()).
				Str("algorithm", alg.String()).
				Int("candidates", len(cands)).
				Str("chosen", cands[0].rel.String()).
				Msg("Ambiguous replacement candidates, using first in canonical order")
		}

		best, err := m.firstSafe(ctx, s, cands, alg)
		if err != nil {
			return false, err
		}
		if best == nil {
			continue
		}

		if err := s.Match(best, alg); err != nil {
			return false, err
		}
		m.stats.Accepted[alg]++
		logger.Debug().
			Str("relationship", s.String()).
			Str("replacement", best.String()).
			Str("algorithm", alg.String()).
			Msg("Matched replacement")

		if movesGroup(s, best) {
			if err := m.moveSiblings(ctx, s, best); err != nil {
				return true, err
			}
		}
		return true, nil
	}

	logger.Debug().Str("relationship", s.String()).Msg("No replacement found")
	return false, nil
}

// firstSafe returns the first candidate s may take, or nil. Every rejected
// candidate counts once against alg.
func (m *Matcher) firstSafe(ctx context.Context, s *graph.Relationship, cands []candidate, alg graph.Algorithm) (*graph.Relationship, error) {
	for _, c := range cands {
		ok, err := m.safelyReplacedBy(ctx, s, c.rel, alg)
		if err != nil {
			return nil, err
		}
		if ok {
			return c.rel, nil
		}
		m.stats.Rejected[alg]++
	}
	return nil, nil
}

func movesGroup(s, rep *graph.Relationship) bool {
	return s.Group != 0 && rep.Group != 0 && s.Group != rep.Group
}

// Orphans returns every stated edge that will be inactivated, in canonical order.
func (m *Matcher) Orphans() []*graph.Relationship {
	var out []*graph.Relationship
	for _, rel := range m.stated.Relationships() {
		if rel.NeedsReplacement() {
			out = append(out, rel)
		}
	}
	return out
}

// Unresolved returns the orphans that have no replacement, in canonical order.
func (m *Matcher) Unresolved() []*graph.Relationship {
	var out []*graph.Relationship
	for _, rel := range m.stated.Relationships() {
		if rel.IsOrphaned() {
			out = append(out, rel)
		}
	}
	return out
}

// Stats returns a copy of the counters collected so far.
func (m *Matcher) Stats() Stats {
	return m.stats.clone()
}

func (m *Matcher) progress(ctx context.Context, i, total int) {
	if m.progressInterval <= 0 || i == 0 || i%m.progressInterval != 0 {
		return
	}
	logging.FromContext(ctx).Info().
		Str("progress", m.printer.Sprintf("%d of %d (%.1f%%)", i, total, 100*float64(i)/float64(total))).
		Msg("Reconciling relationships")
}
