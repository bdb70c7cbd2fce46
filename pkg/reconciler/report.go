package reconciler

import (
	"slices"

	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/matcher"
)

// Report is the serializable view of a Result.
type Report struct {
	RunID         string              `json:"run_id" yaml:"run_id"`
	EffectiveTime string              `json:"effective_time" yaml:"effective_time"`
	DryRun        bool                `json:"dry_run" yaml:"dry_run"`
	Inputs        Inputs              `json:"inputs" yaml:"inputs"`
	DurationMs    int64               `json:"duration_ms" yaml:"duration_ms"`
	Relationships RelationshipCounts  `json:"relationships" yaml:"relationships"`
	Orphans       int                 `json:"orphans" yaml:"orphans"`
	Matched       []AlgorithmCount    `json:"matched" yaml:"matched"`
	Matching      matcher.Stats       `json:"matching" yaml:"matching"`
	Delta         delta.Summary       `json:"delta" yaml:"delta"`
	Suppressions  []SuppressionReport `json:"suppressions,omitempty" yaml:"suppressions,omitempty"`
	Unresolved    UnresolvedReport    `json:"unresolved" yaml:"unresolved"`
}

// RelationshipCounts are the active rows loaded per snapshot.
type RelationshipCounts struct {
	Stated     int `json:"stated" yaml:"stated"`
	Inferred   int `json:"inferred" yaml:"inferred"`
	Additional int `json:"additional" yaml:"additional"`
	Concepts   int `json:"concepts" yaml:"concepts"`
}

// AlgorithmCount is the number of replacements chosen by one algorithm.
type AlgorithmCount struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	Certain   bool   `json:"certain" yaml:"certain"`
	Count     int    `json:"count" yaml:"count"`
}

// SuppressionReport describes one withheld delta row.
type SuppressionReport struct {
	Relationship string   `json:"relationship" yaml:"relationship"`
	Claimant     string   `json:"claimant,omitempty" yaml:"claimant,omitempty"`
	Reason       string   `json:"reason" yaml:"reason"`
	Reasons      []string `json:"reasons" yaml:"reasons"`
	Inactivation bool     `json:"inactivation" yaml:"inactivation"`
	Activation   bool     `json:"activation" yaml:"activation"`
}

// UnresolvedReport lists the first unresolved orphans.
type UnresolvedReport struct {
	Total         int      `json:"total" yaml:"total"`
	Relationships []string `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// Report builds the serializable report, listing at most maxUnresolved
// unresolved orphans.
func (r *Result) Report(maxUnresolved int) Report {
	stats := r.Metadata.Stats
	rep := Report{
		RunID:         r.RunID,
		EffectiveTime: r.Metadata.EffectiveTime,
		DryRun:        r.Metadata.DryRun,
		Inputs:        r.Metadata.Inputs,
		DurationMs:    stats.TotalTimeMs,
		Relationships: RelationshipCounts{
			Stated:     stats.StatedRelationships,
			Inferred:   stats.InferredRelationships,
			Additional: stats.AdditionalRelationships,
			Concepts:   stats.Concepts,
		},
		Orphans:  stats.Orphans,
		Matching: r.Matching,
		Unresolved: UnresolvedReport{
			Total: len(r.Unresolved),
		},
	}

	for _, alg := range append(slices.Clone(graph.Cascade), graph.AlgorithmSiblingGroup) {
		if n := stats.Matched[alg]; n > 0 {
			rep.Matched = append(rep.Matched, AlgorithmCount{Algorithm: alg.String(), Certain: alg.Certain(), Count: n})
		}
	}

	if r.Plan != nil {
		rep.Delta = r.Plan.Summary
		for _, sup := range r.Plan.Suppressions.List() {
			sr := SuppressionReport{
				Relationship: sup.Relationship.String(),
				Reason:       string(sup.Reason),
				Reasons:      make([]string, 0, len(sup.Reasons)),
				Inactivation: sup.Inactivation,
				Activation:   sup.Activation,
			}
			for _, reason := range sup.Reasons {
				sr.Reasons = append(sr.Reasons, string(reason))
			}
			if sup.Claimant != nil {
				sr.Claimant = sup.Claimant.String()
			}
			rep.Suppressions = append(rep.Suppressions, sr)
		}
	}

	for _, rel := range r.UnresolvedSample(maxUnresolved) {
		rep.Unresolved.Relationships = append(rep.Unresolved.Relationships, rel.String())
	}
	return rep
}
