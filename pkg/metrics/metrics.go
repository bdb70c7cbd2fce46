// Package metrics records the counters of one reconciliation run and writes
// them in the Prometheus text format for a node exporter textfile collector.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/errors"
)

const namespace = "inferdelta"

// Recorder holds the metrics of one run in its own registry. A nil Recorder
// records nothing, so callers never need to check.
type Recorder struct {
	registry *prometheus.Registry

	relationships *prometheus.GaugeVec
	orphans       prometheus.Gauge
	unresolved    prometheus.Gauge
	matches       *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	ambiguities   prometheus.Counter
	displacements prometheus.Counter
	siblingMoves  prometheus.Counter
	rows          *prometheus.CounterVec
	suppressions  *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

// New creates a Recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// Labels: view (stated, inferred, additional)
		relationships: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relationships",
			Help:      "Active relationships loaded per snapshot",
		}, []string{"view"}),

		orphans: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orphans",
			Help:      "Stated relationships without an inferred counterpart",
		}),

		unresolved: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unresolved",
			Help:      "Orphans left without a replacement after the final sweep",
		}),

		// Labels: algorithm
		matches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "matches_total",
			Help:      "Replacements in force at the end of matching",
		}, []string{"algorithm"}),

		// Labels: algorithm
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "rejections_total",
			Help:      "Candidates rejected because another relationship claimed them",
		}, []string{"algorithm"}),

		ambiguities: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "ambiguities_total",
			Help:      "Matches chosen among equally ranked candidates",
		}),

		displacements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "displacements_total",
			Help:      "Claims released in favor of a certain match or a sibling move",
		}),

		siblingMoves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matcher",
			Name:      "sibling_moves_total",
			Help:      "Relationships moved along with their group",
		}),

		// Labels: type (inactivate, activate, add)
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delta",
			Name:      "rows_total",
			Help:      "Delta rows planned",
		}, []string{"type"}),

		// Labels: reason
		suppressions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delta",
			Name:      "suppressions_total",
			Help:      "Relationships with a withheld delta row",
		}, []string{"reason"}),

		// Labels: phase (load, orphan, match, plan, write)
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of each run phase",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"phase"}),

		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished",
		}),
	}
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// SetRelationships records the size of a loaded snapshot.
func (r *Recorder) SetRelationships(view string, n int) {
	if r == nil {
		return
	}
	r.relationships.WithLabelValues(view).Set(float64(n))
}

// SetOrphans records the number of orphans found by the first sweep.
func (r *Recorder) SetOrphans(n int) {
	if r == nil {
		return
	}
	r.orphans.Set(float64(n))
}

// SetUnresolved records the number of orphans without a replacement.
func (r *Recorder) SetUnresolved(n int) {
	if r == nil {
		return
	}
	r.unresolved.Set(float64(n))
}

// AddMatches adds final replacements chosen by algorithm.
func (r *Recorder) AddMatches(algorithm string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.matches.WithLabelValues(algorithm).Add(float64(n))
}

// AddRejections adds unsafe candidates rejected for algorithm.
func (r *Recorder) AddRejections(algorithm string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.rejections.WithLabelValues(algorithm).Add(float64(n))
}

// AddDecisions adds the matcher's event counters.
func (r *Recorder) AddDecisions(ambiguities, displacements, siblingMoves int) {
	if r == nil {
		return
	}
	r.ambiguities.Add(float64(ambiguities))
	r.displacements.Add(float64(displacements))
	r.siblingMoves.Add(float64(siblingMoves))
}

// AddRows adds planned delta rows of one type.
func (r *Recorder) AddRows(typ string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.rows.WithLabelValues(typ).Add(float64(n))
}

// AddSuppression counts one withheld relationship.
func (r *Recorder) AddSuppression(reason string) {
	if r == nil {
		return
	}
	r.suppressions.WithLabelValues(reason).Inc()
}

// ObservePhase records how long a phase took.
func (r *Recorder) ObservePhase(phase string, d time.Duration) {
	if r == nil {
		return
	}
	r.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// MarkFinished stamps the run completion time.
func (r *Recorder) MarkFinished(t time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapResource("write", "metrics", path, err)
	}
	return nil
}
