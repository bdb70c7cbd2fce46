package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inferdelta/internal/cmd/emoji"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/matcher"
	"github.com/agentstation/inferdelta/pkg/reconciler"
)

func TestReportToTableData(t *testing.T) {
	report := reconciler.Report{
		RunID:   "run-1",
		Orphans: 1200,
		Matched: []reconciler.AlgorithmCount{
			{Algorithm: graph.AlgorithmGroupShape.String(), Certain: true, Count: 3},
			{Algorithm: graph.AlgorithmLooseCrossGroup.String(), Count: 1},
		},
		Matching: matcher.Stats{
			Accepted: map[graph.Algorithm]int{graph.AlgorithmGroupShape: 4},
			Rejected: map[graph.Algorithm]int{graph.AlgorithmGroupShape: 1},
			Sweeps:   []matcher.SweepStats{{Number: 2, Examined: 5, Matched: 4, Orphaned: 1}},
		},
		Suppressions: []reconciler.SuppressionReport{
			{Relationship: "x", Reason: "re-added", Inactivation: true},
			{Relationship: "y", Claimant: "z", Reason: "contradiction", Reasons: []string{"contradiction", "re-added"}, Inactivation: true},
		},
	}

	t.Run("narrow", func(t *testing.T) {
		sections := ReportToTableData(report, false)
		require.Len(t, sections, 2)
		assert.Equal(t, "Summary", sections[0].Title)
		assert.Contains(t, sections[0].Rows, []string{"Orphans", "1,200"})

		algs := sections[1]
		require.Len(t, algs.Rows, 2)
		assert.Equal(t, []string{"Group Shape", emoji.Success, "3"}, algs.Rows[0])
		assert.Equal(t, []string{"Loose Cross Group", emoji.Warning, "1"}, algs.Rows[1])
		assert.Len(t, algs.ColumnAlignment, len(algs.Headers))
	})

	t.Run("wide", func(t *testing.T) {
		sections := ReportToTableData(report, true)
		require.Len(t, sections, 4)
		assert.Equal(t, []string{"Group Shape", emoji.Success, "3", "4", "1"}, sections[1].Rows[0])
		assert.Equal(t, "Sweeps", sections[2].Title)
		assert.Equal(t, []string{"2", "5", "4", "1"}, sections[2].Rows[0])
		assert.Equal(t, []string{"x", "re-added", emoji.Success, emoji.Optional, emoji.Optional}, sections[3].Rows[0])
		assert.Equal(t, []string{"y", "contradiction, re-added", emoji.Success, emoji.Optional, "z"}, sections[3].Rows[1])
	})
}

func TestRelationshipViews(t *testing.T) {
	stated := graph.MustBuild(t, graph.ViewStated, graph.TestRow("s1", 10, 20, 30, 1))
	inferred := graph.MustBuild(t, graph.ViewInferred, graph.TestRow("i1", 10, 21, 30, 1))

	s := stated.Relationships()[0]
	i := inferred.Relationships()[0]
	require.NoError(t, s.MarkOrphaned())
	require.NoError(t, s.Match(i, graph.AlgorithmCompatibleGroup))

	views := RelationshipViews([]*graph.Relationship{s, i})
	require.Len(t, views, 2)
	assert.Equal(t, "matched", views[0].State)
	assert.Equal(t, i.String(), views[0].Replacement)
	assert.Equal(t, "compatible-group", views[0].Algorithm)
	assert.Equal(t, "current", views[1].State)
	assert.Equal(t, s.String(), views[1].ClaimedBy)

	data := RelationshipsToTableData("Stated", []*graph.Relationship{s})
	require.Len(t, data.Rows, 1)
	assert.Equal(t, []string{"s1", "30", "20", "1", "matched", i.String(), "Compatible Group", emoji.Optional}, data.Rows[0])
}
