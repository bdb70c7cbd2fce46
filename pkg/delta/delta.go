// Package delta turns reconciliation results into the rows of a delta file.
//
// A Plan is computed first and is the same whether or not it is written, so a
// dry run reports exactly what a real run would write.
package delta

import (
	"fmt"
	"strings"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// ChangeType is the kind of a delta row.
type ChangeType string

const (
	// ChangeTypeInactivate retires a stated edge.
	ChangeTypeInactivate ChangeType = "inactivate"
	// ChangeTypeActivate states a replacement edge.
	ChangeTypeActivate ChangeType = "activate"
	// ChangeTypeAdd passes an additional row through.
	ChangeTypeAdd ChangeType = "add"
)

// Line is one row of the delta.
type Line struct {
	Type ChangeType `json:"type" yaml:"type"`
	Row  rf2.Row    `json:"row" yaml:"row"`
	// Relationship is the stated edge for inactivations, the inferred
	// replacement for activations and the parsed row for additions.
	Relationship *graph.Relationship `json:"-" yaml:"-"`
	Algorithm    graph.Algorithm     `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

// Summary counts the rows of a plan.
type Summary struct {
	Inactivated int `json:"inactivated" yaml:"inactivated"`
	Activated   int `json:"activated" yaml:"activated"`
	Added       int `json:"added" yaml:"added"`
	Suppressed  int `json:"suppressed" yaml:"suppressed"`
	Unresolved  int `json:"unresolved" yaml:"unresolved"`
	TotalRows   int `json:"total_rows" yaml:"total_rows"`
}

// Options controls how rows are stamped.
type Options struct {
	// EffectiveTime is the YYYYMMDD date written on every row.
	EffectiveTime string
	// Identifiers decides the id of activation and addition rows.
	Identifiers IdentifierPolicy
	// CharacteristicType is written on activation rows.
	CharacteristicType string
	// NewID generates ids for IdentifiersUUID. Nil uses random UUIDs.
	NewID func() string
}

// Plan is the complete, validated content of a delta.
type Plan struct {
	EffectiveTime string
	Lines         []Line
	Suppressions  Suppressions
	Unresolved    []*graph.Relationship
	Summary       Summary
}

// NewPlan builds the delta for the stated edges that need replacement.
// orphans must be in canonical order; additions keep their file order.
func NewPlan(stated *graph.Graph, orphans, additions []*graph.Relationship, opts Options) (*Plan, error) {
	if opts.EffectiveTime == "" {
		return nil, &errors.ValidationError{Field: "effective_time", Message: "effective time is required", Err: errors.ErrNoEffectiveDate}
	}
	if opts.Identifiers == "" {
		opts.Identifiers = IdentifiersBlank
	}
	if opts.CharacteristicType == "" {
		opts.CharacteristicType = constants.StatedCharacteristicType
	}

	p := &Plan{
		EffectiveTime: opts.EffectiveTime,
		Suppressions:  Suppress(stated, orphans, additions),
	}

	for _, x := range orphans {
		rep, alg := x.Replacement()
		if rep == nil {
			p.Unresolved = append(p.Unresolved, x)
		}
		if !p.Suppressions.Inactivation(x) {
			p.Lines = append(p.Lines, Line{
				Type:         ChangeTypeInactivate,
				Row:          inactivation(x.Row, opts),
				Relationship: x,
				Algorithm:    alg,
			})
		}
		if rep != nil && !p.Suppressions.Activation(x) {
			p.Lines = append(p.Lines, Line{
				Type:         ChangeTypeActivate,
				Row:          activation(rep.Row, opts),
				Relationship: rep,
				Algorithm:    alg,
			})
		}
	}

	for _, add := range additions {
		row := add.Row
		row.EffectiveTime = opts.EffectiveTime
		row.ID = opts.Identifiers.assign(add.Row.ID, opts.NewID)
		p.Lines = append(p.Lines, Line{Type: ChangeTypeAdd, Row: row, Relationship: add})
	}

	p.Summary = p.summarize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func inactivation(row rf2.Row, opts Options) rf2.Row {
	row.Active = constants.InactiveFlag
	row.EffectiveTime = opts.EffectiveTime
	return row
}

func activation(row rf2.Row, opts Options) rf2.Row {
	row.ID = opts.Identifiers.assign(row.ID, opts.NewID)
	row.Active = constants.ActiveFlag
	row.EffectiveTime = opts.EffectiveTime
	row.CharacteristicTypeID = opts.CharacteristicType
	return row
}

func (p *Plan) summarize() Summary {
	s := Summary{
		Suppressed: p.Suppressions.Len(),
		Unresolved: len(p.Unresolved),
		TotalRows:  len(p.Lines),
	}
	for _, line := range p.Lines {
		switch line.Type {
		case ChangeTypeInactivate:
			s.Inactivated++
		case ChangeTypeActivate:
			s.Activated++
		case ChangeTypeAdd:
			s.Added++
		}
	}
	return s
}

// Validate reports a ContradictionError when any edge is both activated and
// inactivated.
func (p *Plan) Validate() error {
	activated := make(map[graph.Fingerprint][]graph.Identity)
	for _, line := range p.Lines {
		if line.Type != ChangeTypeInactivate && line.Relationship != nil {
			id := line.Relationship.Identity
			activated[id.Fingerprint()] = append(activated[id.Fingerprint()], id)
		}
	}

	var conflicts []string
	for _, line := range p.Lines {
		if line.Type != ChangeTypeInactivate {
			continue
		}
		id := line.Relationship.Identity
		for _, other := range activated[id.Fingerprint()] {
			if other == id {
				conflicts = append(conflicts, id.String())
				break
			}
		}
	}
	if len(conflicts) > 0 {
		return errors.NewContradictionError(conflicts)
	}
	return nil
}

// Commit records on every orphan that its rows were written.
func (p *Plan) Commit(orphans []*graph.Relationship) error {
	for _, x := range orphans {
		if sup, ok := p.Suppressions.Get(x); ok && sup.Inactivation {
			if err := x.Suppress(sup.Claimant); err != nil {
				return err
			}
			continue
		}
		if err := x.MarkEmitted(); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the plan writes no rows.
func (p *Plan) IsEmpty() bool {
	return len(p.Lines) == 0
}

// String returns a human-readable summary of the plan.
func (p *Plan) String() string {
	if p.IsEmpty() {
		return "No changes detected"
	}
	parts := []string{
		fmt.Sprintf("%d inactivated", p.Summary.Inactivated),
		fmt.Sprintf("%d activated", p.Summary.Activated),
	}
	if p.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", p.Summary.Added))
	}
	if p.Summary.Suppressed > 0 {
		parts = append(parts, fmt.Sprintf("%d suppressed", p.Summary.Suppressed))
	}
	if p.Summary.Unresolved > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", p.Summary.Unresolved))
	}
	return fmt.Sprintf("Delta %s: %s", p.EffectiveTime, strings.Join(parts, ", "))
}
