package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inferdelta/internal/cmd/table"
	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/reconciler"
)

func sampleReport() reconciler.Report {
	return reconciler.Report{
		RunID:         "run-1",
		EffectiveTime: "20240131",
		Relationships: reconciler.RelationshipCounts{Stated: 4, Inferred: 5, Concepts: 9},
		Orphans:       2,
		Matched: []reconciler.AlgorithmCount{
			{Algorithm: graph.AlgorithmSameGroupChild.String(), Certain: true, Count: 1},
			{Algorithm: graph.AlgorithmProximate.String(), Count: 1},
		},
		Delta: delta.Summary{Inactivated: 2, Activated: 2, TotalRows: 4},
		Unresolved: reconciler.UnresolvedReport{
			Total:         3,
			Relationships: []string{"1 -2-> 3 [0] (r1)"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "WIDE", "json", "yaml", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseFormat("csv")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestDetectFormat_Explicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
	assert.Equal(t, FormatWide, DetectFormat("wide"))
}

func TestFormatReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, sampleReport(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "20240131", decoded["effective_time"])
}

func TestFormatReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, sampleReport(), FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "run_id: run-1")
	assert.Contains(t, out, "effective_time: \"20240131\"")
	assert.Contains(t, out, "- algorithm: same-group-child")
}

func TestFormatReport_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, sampleReport(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Same Group Child")
	assert.Contains(t, out, "1 -2-> 3 [0] (r1)")
	assert.Contains(t, out, "... and 2 more")
	assert.NotContains(t, out, "Sweeps")
}

func TestFormatReport_Wide(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, sampleReport(), FormatWide))
	assert.Contains(t, buf.String(), "Sweeps")
}

func TestTableFormatter_FallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestTableFormatter_Data(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Title:           "Things",
		Headers:         []string{"Name", "Count"},
		Rows:            [][]string{{"alpha", "1"}, {"beta", "22"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))

	out := buf.String()
	assert.Contains(t, out, "Things\n")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "22")
}
