package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/inferdelta/pkg/metrics"
)

func TestNilRecorderIsSafe(t *testing.T) {
	var r *metrics.Recorder

	assert.NotPanics(t, func() {
		r.SetRelationships("stated", 10)
		r.SetOrphans(1)
		r.SetUnresolved(1)
		r.AddMatches("proximate", 1)
		r.AddRejections("proximate", 1)
		r.AddDecisions(1, 1, 1)
		r.AddRows("activate", 1)
		r.AddSuppression("redundant")
		r.ObservePhase("load", time.Second)
		r.MarkFinished(time.Now())
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestRecorderGather(t *testing.T) {
	r := metrics.New()
	r.SetRelationships("stated", 12)
	r.SetOrphans(3)
	r.AddMatches("same-group-child", 2)
	r.AddMatches("proximate", 0)
	r.AddRows("inactivate", 3)
	r.AddSuppression("contradiction")
	r.AddSuppression("contradiction")

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				values[mf.GetName()] += m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 12.0, values["inferdelta_relationships"])
	assert.Equal(t, 3.0, values["inferdelta_orphans"])
	assert.Equal(t, 2.0, values["inferdelta_matcher_matches_total"])
	assert.Equal(t, 3.0, values["inferdelta_delta_rows_total"])
	assert.Equal(t, 2.0, values["inferdelta_delta_suppressions_total"])
}

func TestWriteTextfile(t *testing.T) {
	r := metrics.New()
	r.SetOrphans(7)
	r.AddMatches("group-shape", 4)
	r.ObservePhase("match", 250*time.Millisecond)

	path := filepath.Join(t.TempDir(), "textfile", "inferdelta.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "inferdelta_orphans 7")
	assert.Contains(t, out, `inferdelta_matcher_matches_total{algorithm="group-shape"} 4`)
	assert.Contains(t, out, `inferdelta_phase_duration_seconds_count{phase="match"} 1`)
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.SetOrphans(1)
	b.SetOrphans(2)

	assert.NotSame(t, a.Registry(), b.Registry())
}
