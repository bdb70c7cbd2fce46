package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/graph"
)

func newRel(t *testing.T, id string, source, dest, typ int64, group int) *graph.Relationship {
	t.Helper()
	rel, err := graph.NewRelationship(graph.TestRow(id, source, dest, typ, group))
	require.NoError(t, err)
	return rel
}

func TestAlgorithm(t *testing.T) {
	assert.True(t, graph.AlgorithmSameGroupChild.Certain())
	assert.True(t, graph.AlgorithmGroupShape.Certain())
	assert.True(t, graph.AlgorithmSiblingGroup.Certain())
	assert.False(t, graph.AlgorithmCompatibleGroup.Certain())
	assert.False(t, graph.AlgorithmLooseCrossGroup.Certain())
	assert.False(t, graph.AlgorithmProximate.Certain())

	for i, alg := range graph.Cascade {
		assert.Equal(t, i+1, alg.Rank())
	}
	assert.Equal(t, 0, graph.AlgorithmSiblingGroup.Rank())
	assert.Equal(t, "Loose Cross Group", graph.AlgorithmLooseCrossGroup.Name())
}

func TestRelationshipTransitions(t *testing.T) {
	t.Run("orphan matched then emitted", func(t *testing.T) {
		stated := newRel(t, "s", 100, 200, 50, 1)
		rep := newRel(t, "i", 100, 201, 50, 1)

		assert.IsType(t, graph.Current{}, stated.State())
		assert.False(t, stated.NeedsReplacement())

		require.NoError(t, stated.MarkOrphaned())
		assert.True(t, stated.IsOrphaned())
		assert.True(t, stated.NeedsReplacement())

		require.NoError(t, stated.Match(rep, graph.AlgorithmSameGroupChild))
		assert.Same(t, stated, rep.ClaimedBy())
		got, alg := stated.Replacement()
		assert.Same(t, rep, got)
		assert.Equal(t, graph.AlgorithmSameGroupChild, alg)

		require.NoError(t, stated.MarkEmitted())
		emitted, ok := stated.State().(graph.Emitted)
		require.True(t, ok)
		assert.Same(t, rep, emitted.Replacement)
	})

	t.Run("rematch releases the earlier replacement", func(t *testing.T) {
		stated := newRel(t, "s", 100, 200, 50, 1)
		first := newRel(t, "i1", 100, 201, 50, 1)
		second := newRel(t, "i2", 100, 202, 50, 1)

		require.NoError(t, stated.MarkOrphaned())
		require.NoError(t, stated.Match(first, graph.AlgorithmProximate))
		require.NoError(t, stated.Match(second, graph.AlgorithmSiblingGroup))
		assert.Nil(t, first.ClaimedBy())
		assert.Same(t, stated, second.ClaimedBy())
	})

	t.Run("claimed replacement must be displaced first", func(t *testing.T) {
		x := newRel(t, "x", 100, 200, 50, 1)
		y := newRel(t, "y", 100, 210, 50, 1)
		rep := newRel(t, "i", 100, 201, 50, 1)
		require.NoError(t, x.MarkOrphaned())
		require.NoError(t, y.MarkOrphaned())
		require.NoError(t, x.Match(rep, graph.AlgorithmProximate))

		err := y.Match(rep, graph.AlgorithmSameGroupChild)
		require.Error(t, err)
		assert.True(t, errors.IsInvalidTransition(err))

		require.NoError(t, x.Unmatch())
		assert.True(t, x.IsOrphaned())
		assert.Nil(t, rep.ClaimedBy())
		require.NoError(t, y.Match(rep, graph.AlgorithmSameGroupChild))
	})

	t.Run("unresolved orphan is emitted without replacement", func(t *testing.T) {
		stated := newRel(t, "s", 100, 200, 50, 1)
		require.NoError(t, stated.MarkOrphaned())
		require.NoError(t, stated.MarkEmitted())
		got, _ := stated.Replacement()
		assert.Nil(t, got)
	})

	t.Run("suppressed keeps the match", func(t *testing.T) {
		stated := newRel(t, "s", 100, 200, 50, 1)
		claimant := newRel(t, "c", 100, 300, 50, 1)
		rep := newRel(t, "i", 100, 201, 50, 1)
		require.NoError(t, stated.Match(rep, graph.AlgorithmSiblingGroup))
		require.NoError(t, stated.Suppress(claimant))

		s, ok := stated.State().(graph.Suppressed)
		require.True(t, ok)
		assert.Same(t, claimant, s.Claimant)
		assert.Same(t, rep, s.Replacement)
		assert.Equal(t, "suppressed", s.Name())
	})

	t.Run("illegal transitions", func(t *testing.T) {
		rel := newRel(t, "s", 100, 200, 50, 1)
		rep := newRel(t, "i", 100, 201, 50, 1)

		assert.True(t, errors.IsInvalidTransition(rel.Unmatch()))
		assert.True(t, errors.IsInvalidTransition(rel.MarkEmitted()))
		assert.True(t, errors.IsInvalidTransition(rel.Suppress(nil)))
		assert.True(t, errors.IsInvalidTransition(rel.Match(nil, graph.AlgorithmProximate)))

		require.NoError(t, rel.MarkOrphaned())
		err := rel.MarkOrphaned()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot move from orphaned to orphaned")

		require.NoError(t, rel.MarkEmitted())
		assert.True(t, errors.IsInvalidTransition(rel.Match(rep, graph.AlgorithmProximate)))
	})
}

func TestCompare(t *testing.T) {
	a := newRel(t, "a", 100, 200, 50, 1)
	b := newRel(t, "b", 100, 200, 50, 1)
	c := newRel(t, "c", 100, 150, 50, 2)

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
	assert.Equal(t, 0, graph.Compare(a, a))
	assert.Equal(t, "100 -50-> 200 [1] (a)", a.String())
}
