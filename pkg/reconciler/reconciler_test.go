package reconciler_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
	"github.com/agentstation/inferdelta/pkg/reconciler"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

const outputName = "sct2_Relationship_Delta_INT_20240131.txt"

// writeSnapshot writes rows as a release file and returns its path.
func writeSnapshot(t *testing.T, dir, name string, rows ...rf2.Row) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := rf2.NewWriter(f)
	require.NoError(t, w.WriteHeader())
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Flush())
	return path
}

func testContext(t *testing.T) (context.Context, *logging.TestLogger) {
	log := logging.NewTestLogger(t)
	return logging.WithLogger(context.Background(), log.Logger), log
}

func exampleInputs(t *testing.T) reconciler.Inputs {
	dir := t.TempDir()
	return reconciler.Inputs{
		Stated: writeSnapshot(t, dir, "stated.txt",
			graph.TestIsA("h0", 100, 90),
			graph.TestRow("s1", 100, 200, 50, 1),
			graph.TestRow("s2", 100, 300, 60, 0),
		),
		Inferred: writeSnapshot(t, dir, "inferred.txt",
			graph.TestIsA("h0", 100, 90),
			graph.TestIsA("h1", 201, 200),
			graph.TestRow("i1", 100, 201, 50, 1),
			graph.TestRow("i2", 100, 300, 60, 0),
		),
		Output: filepath.Join(dir, "out", outputName),
	}
}

func readOutput(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
}

func TestRunExampleScenario(t *testing.T) {
	ctx, log := testContext(t)
	in := exampleInputs(t)

	r, err := reconciler.New()
	require.NoError(t, err)
	result, err := r.Run(ctx, in)
	require.NoError(t, err)

	lines := readOutput(t, in.Output)
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(rf2.Header, "\t"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "s1\t20240131\t0\t"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "\t20240131\t1\t"), lines[2])
	assert.Contains(t, lines[2], "\t100\t201\t1\t50\t"+constants.StatedCharacteristicType+"\t")

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "20240131", result.Metadata.EffectiveTime)
	assert.Equal(t, 3, result.Metadata.Stats.StatedRelationships)
	assert.Equal(t, 1, result.Metadata.Stats.Orphans)
	assert.Equal(t, 1, result.Metadata.Stats.Matched[graph.AlgorithmSameGroupChild])
	assert.Equal(t, 2, result.Metadata.Stats.RowsWritten)
	assert.True(t, result.WasWritten())
	assert.Contains(t, result.Summary(), "Reconciliation successful")

	s1 := result.Stated.Find(graph.Identity{Source: 100, Destination: 200, Type: 50, Group: 1})
	require.NotNil(t, s1)
	assert.IsType(t, graph.Emitted{}, s1.State())

	log.AssertContains(t, result.RunID)
	log.AssertContains(t, "Loaded snapshot")
	log.AssertContains(t, "Wrote delta")
}

func TestRunUnchangedDataRoundTrip(t *testing.T) {
	ctx, _ := testContext(t)
	dir := t.TempDir()
	rows := []rf2.Row{
		graph.TestIsA("h0", 100, 90),
		graph.TestRow("r1", 100, 200, 50, 1),
		graph.TestRow("r2", 100, 300, 60, 1),
	}
	in := reconciler.Inputs{
		Stated:   writeSnapshot(t, dir, "stated.txt", rows...),
		Inferred: writeSnapshot(t, dir, "inferred.txt", rows...),
		Output:   filepath.Join(dir, outputName),
	}

	r, err := reconciler.New()
	require.NoError(t, err)
	result, err := r.Run(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, []string{strings.Join(rf2.Header, "\t")}, readOutput(t, in.Output))
	assert.False(t, result.HasChanges())
	assert.Zero(t, result.Metadata.Stats.Orphans)
}

func TestRunRequiresEffectiveDate(t *testing.T) {
	ctx, _ := testContext(t)
	in := exampleInputs(t)
	in.Output = filepath.Join(t.TempDir(), "delta.txt")

	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Run(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoEffectiveDate)

	_, statErr := os.Stat(in.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMissingRequiredFile(t *testing.T) {
	ctx, _ := testContext(t)
	in := exampleInputs(t)
	in.Inferred = filepath.Join(t.TempDir(), "missing.txt")

	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Run(ctx, in)
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
	_, statErr := os.Stat(in.Output)
	assert.True(t, os.IsNotExist(statErr), "no partial output")
}

func TestRunMalformedRow(t *testing.T) {
	ctx, _ := testContext(t)
	in := exampleInputs(t)
	bad := graph.TestRow("bad", 100, 200, 50, 1)
	bad.SourceID = "not-a-number"
	in.Stated = writeSnapshot(t, t.TempDir(), "stated.txt", bad)

	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Run(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRunAdditionalFile(t *testing.T) {
	t.Run("missing file adds nothing", func(t *testing.T) {
		ctx, log := testContext(t)
		in := exampleInputs(t)
		in.Additional = filepath.Join(t.TempDir(), "additional.txt")

		r, err := reconciler.New()
		require.NoError(t, err)
		result, err := r.Run(ctx, in)
		require.NoError(t, err)

		assert.Zero(t, result.Plan.Summary.Added)
		log.AssertContains(t, "Additional file not found")
	})

	t.Run("rows are appended", func(t *testing.T) {
		ctx, _ := testContext(t)
		in := exampleInputs(t)
		in.Additional = writeSnapshot(t, t.TempDir(), "additional.txt",
			graph.TestRow("a1", 100, 400, 70, 0),
		)

		r, err := reconciler.New(reconciler.WithIdentifierPolicy(delta.IdentifiersKeep))
		require.NoError(t, err)
		result, err := r.Run(ctx, in)
		require.NoError(t, err)

		lines := readOutput(t, in.Output)
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[3], "a1\t20240131\t1\t"), lines[3])
		assert.Equal(t, 1, result.Metadata.Stats.AdditionalRelationships)
	})
}

func TestRunDryRun(t *testing.T) {
	ctx, log := testContext(t)
	in := exampleInputs(t)

	r, err := reconciler.New(reconciler.WithDryRun(true))
	require.NoError(t, err)
	result, err := r.Run(ctx, in)
	require.NoError(t, err)

	_, statErr := os.Stat(in.Output)
	assert.True(t, os.IsNotExist(statErr))
	require.NotNil(t, result.Plan)
	assert.Equal(t, 2, result.Plan.Summary.TotalRows)
	assert.Zero(t, result.Metadata.Stats.RowsWritten)
	assert.Contains(t, result.Summary(), "Dry run completed")
	log.AssertContains(t, "Dry run, delta not written")
}

func TestRunIsIndependentOfRowOrder(t *testing.T) {
	stated := []rf2.Row{
		graph.TestRow("a", 100, 200, 50, 0),
		graph.TestRow("b", 100, 202, 50, 0),
		graph.TestRow("c", 110, 200, 50, 1),
		graph.TestRow("d", 110, 300, 60, 1),
	}
	inferred := []rf2.Row{
		graph.TestIsA("h1", 201, 200),
		graph.TestIsA("h2", 201, 202),
		graph.TestRow("i1", 100, 201, 50, 3),
		graph.TestRow("i2", 110, 201, 50, 2),
		graph.TestRow("i3", 110, 300, 60, 2),
	}
	reverse := func(rows []rf2.Row) []rf2.Row {
		out := make([]rf2.Row, len(rows))
		for i, row := range rows {
			out[len(rows)-1-i] = row
		}
		return out
	}

	runWith := func(stated, inferred []rf2.Row) []string {
		ctx, _ := testContext(t)
		dir := t.TempDir()
		in := reconciler.Inputs{
			Stated:   writeSnapshot(t, dir, "stated.txt", stated...),
			Inferred: writeSnapshot(t, dir, "inferred.txt", inferred...),
			Output:   filepath.Join(dir, outputName),
		}
		r, err := reconciler.New()
		require.NoError(t, err)
		_, err = r.Run(ctx, in)
		require.NoError(t, err)
		return readOutput(t, in.Output)
	}

	forward := runWith(stated, inferred)
	assert.Equal(t, forward, runWith(reverse(stated), reverse(inferred)))
	assert.Len(t, forward, 1+2+1+2+2, "a and c replaced, d moved with c, b only inactivated")
}

func TestRunWritesMetricsFile(t *testing.T) {
	ctx, _ := testContext(t)
	in := exampleInputs(t)
	metricsPath := filepath.Join(t.TempDir(), "metrics", "inferdelta.prom")

	r, err := reconciler.New(reconciler.WithMetricsFile(metricsPath))
	require.NoError(t, err)
	_, err = r.Run(ctx, in)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `inferdelta_matcher_matches_total{algorithm="same-group-child"} 1`)
	assert.Contains(t, string(data), `inferdelta_relationships{view="stated"} 3`)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := reconciler.New()
	require.NoError(t, err)
	_, err = r.Run(ctx, exampleInputs(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportBoundsUnresolved(t *testing.T) {
	ctx, _ := testContext(t)
	dir := t.TempDir()
	in := reconciler.Inputs{
		Stated: writeSnapshot(t, dir, "stated.txt",
			graph.TestRow("s1", 100, 200, 50, 0),
			graph.TestRow("s2", 100, 201, 50, 0),
			graph.TestRow("s3", 100, 202, 50, 0),
		),
		Inferred: writeSnapshot(t, dir, "inferred.txt"),
		Output:   filepath.Join(dir, outputName),
	}

	r, err := reconciler.New(reconciler.WithMaxUnresolved(2))
	require.NoError(t, err)
	result, err := r.Run(ctx, in)
	require.NoError(t, err)

	report := result.Report(2)
	assert.Equal(t, 3, report.Unresolved.Total)
	assert.Len(t, report.Unresolved.Relationships, 2)
	assert.Equal(t, 3, report.Delta.Inactivated)
	assert.Len(t, result.UnresolvedSample(-1), 3)
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  reconciler.Option
	}{
		{"identifier policy", reconciler.WithIdentifierPolicy("sequential")},
		{"is-a type", reconciler.WithIsAType(0)},
		{"characteristic type", reconciler.WithCharacteristicType("")},
		{"max unresolved", reconciler.WithMaxUnresolved(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconciler.New(tt.opt)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}
