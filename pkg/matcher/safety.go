package matcher

import (
	"context"

	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
)

// safelyReplacedBy decides whether s may take rep as its replacement.
//
// A candidate claimed by another stated edge is rejected, except that a
// certain match displaces an uncertain claim; the displaced edge becomes an
// orphan again and is retried by the next sweep. A stated edge never swaps
// one accepted replacement for another here.
func (m *Matcher) safelyReplacedBy(ctx context.Context, s, rep *graph.Relationship, alg graph.Algorithm) (bool, error) {
	logger := logging.FromContext(ctx)

	if current, _ := s.Replacement(); current != nil && current != rep {
		logger.Warn().
			Str("relationship", s.String()).
			Str("replacement", current.String()).
			Str("candidate", rep.String()).
			Msg("Relationship already has a different replacement")
		return false, nil
	}

	claimant := rep.ClaimedBy()
	if claimant == nil || claimant == s {
		return true, nil
	}

	_, claimedWith := claimant.Replacement()
	if alg.Certain() && !claimedWith.Certain() {
		if err := claimant.Unmatch(); err != nil {
			return false, err
		}
		m.stats.Displaced++
		logger.Info().
			Str("relationship", s.String()).
			Str("displaced", claimant.String()).
			Str("candidate", rep.String()).
			Str("algorithm", alg.String()).
			Msg("Certain match displaced an uncertain claim")
		return true, nil
	}

	logger.Warn().
		Str("relationship", s.String()).
		Str("candidate", rep.String()).
		Str("claimed_by", claimant.String()).
		Str("algorithm", alg.String()).
		Msg("Unsafe replacement rejected, candidate already claimed")
	return false, nil
}
