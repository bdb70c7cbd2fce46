package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/matcher"
)

// Result represents the outcome of a reconciliation run.
type Result struct {
	RunID string

	// Core data
	Plan     *delta.Plan
	Stated   *graph.Graph
	Inferred *graph.Graph

	// Matching counters and the orphans left without a replacement
	Matching   matcher.Stats
	Unresolved []*graph.Relationship

	// Metadata
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Inputs that were reconciled
	Inputs Inputs

	// EffectiveTime stamped on every delta row
	EffectiveTime string

	// DryRun indicates the delta was planned but not written
	DryRun bool

	// Statistics about the run
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the run.
type ResultStatistics struct {
	StatedRelationships     int
	InferredRelationships   int
	AdditionalRelationships int
	Concepts                int
	Orphans                 int
	Matched                 map[graph.Algorithm]int
	Unresolved              int
	RowsWritten             int
	TotalTimeMs             int64
}

// HasChanges returns true if the planned delta writes any rows.
func (r *Result) HasChanges() bool {
	return r.Plan != nil && !r.Plan.IsEmpty()
}

// WasWritten returns true if the delta file was written.
func (r *Result) WasWritten() bool {
	return r.Plan != nil && !r.Metadata.DryRun
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if r.Metadata.DryRun {
		if r.HasChanges() {
			return fmt.Sprintf("Dry run completed. %s", r.Plan.String())
		}
		return "Dry run completed. No changes detected."
	}

	if r.WasWritten() && r.HasChanges() {
		return fmt.Sprintf("Reconciliation successful. %s", r.Plan.String())
	}

	return "Reconciliation completed. No changes detected."
}

// UnresolvedSample returns at most n unresolved orphans in canonical order.
func (r *Result) UnresolvedSample(n int) []*graph.Relationship {
	if n < 0 || n > len(r.Unresolved) {
		n = len(r.Unresolved)
	}
	return r.Unresolved[:n]
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Metadata: ResultMetadata{
			StartTime: time.Now(),
			Stats: ResultStatistics{
				Matched: make(map[graph.Algorithm]int),
			},
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
