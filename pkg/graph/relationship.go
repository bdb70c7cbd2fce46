package graph

import (
	"fmt"
	"strconv"

	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// Relationship is one active edge of a snapshot together with its
// reconciliation state. The raw row is kept for re-emission.
type Relationship struct {
	Identity
	Row rf2.Row

	fingerprint Fingerprint
	state       State
	claimedBy   *Relationship
}

// NewRelationship parses the identity fields of row.
func NewRelationship(row rf2.Row) (*Relationship, error) {
	source, err := parseID("sourceId", row.SourceID)
	if err != nil {
		return nil, err
	}
	destination, err := parseID("destinationId", row.DestinationID)
	if err != nil {
		return nil, err
	}
	typ, err := parseID("typeId", row.TypeID)
	if err != nil {
		return nil, err
	}
	group, err := strconv.Atoi(row.RelationshipGroup)
	if err != nil || group < 0 {
		return nil, &errors.ValidationError{
			Field:   "relationshipGroup",
			Value:   row.RelationshipGroup,
			Message: fmt.Sprintf("relationship %s: group must be a non-negative integer", row.ID),
			Err:     err,
		}
	}

	id := Identity{Source: source, Destination: destination, Type: typ, Group: group}
	return &Relationship{
		Identity:    id,
		Row:         row,
		fingerprint: id.Fingerprint(),
		state:       Current{},
	}, nil
}

func parseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &errors.ValidationError{Field: field, Value: value, Message: "not a concept identifier", Err: err}
	}
	return id, nil
}

// ID returns the row identifier.
func (r *Relationship) ID() string {
	return r.Row.ID
}

// Fingerprint returns the identity hash computed at construction.
func (r *Relationship) Fingerprint() Fingerprint {
	return r.fingerprint
}

// SameIdentity reports whether both relationships are the same logical edge.
func (r *Relationship) SameIdentity(other *Relationship) bool {
	return other != nil && r.Identity == other.Identity
}

// State returns the current reconciliation state.
func (r *Relationship) State() State {
	if r.state == nil {
		return Current{}
	}
	return r.state
}

// IsOrphaned reports whether the relationship is waiting for a replacement.
func (r *Relationship) IsOrphaned() bool {
	_, ok := r.State().(Orphaned)
	return ok
}

// NeedsReplacement reports whether the relationship will be inactivated.
func (r *Relationship) NeedsReplacement() bool {
	switch r.State().(type) {
	case Current:
		return false
	default:
		return true
	}
}

// Replacement returns the chosen replacement and the algorithm that chose it.
// It returns nil when there is none.
func (r *Relationship) Replacement() (*Relationship, Algorithm) {
	switch s := r.State().(type) {
	case Matched:
		return s.Replacement, s.Algorithm
	case Suppressed:
		return s.Replacement, s.Algorithm
	case Emitted:
		return s.Replacement, s.Algorithm
	default:
		return nil, ""
	}
}

// ClaimedBy returns the stated relationship that chose this one as its
// replacement, or nil. It is only meaningful on inferred relationships.
func (r *Relationship) ClaimedBy() *Relationship {
	return r.claimedBy
}

// MarkOrphaned records that the relationship has no exact counterpart.
func (r *Relationship) MarkOrphaned() error {
	if _, ok := r.State().(Current); !ok {
		return r.transitionError(Orphaned{})
	}
	r.state = Orphaned{}
	return nil
}

// Match records rep as the replacement. Replacing an earlier match releases
// the earlier replacement. A non-orphan may be matched directly, which is how
// a sibling group move pulls an edge along. rep must not be claimed by
// another relationship; displace that claimant first.
func (r *Relationship) Match(rep *Relationship, alg Algorithm) error {
	next := Matched{Replacement: rep, Algorithm: alg}
	if rep == nil {
		return r.transitionError(next)
	}
	switch r.State().(type) {
	case Current, Orphaned, Matched:
	default:
		return r.transitionError(next)
	}
	if rep.claimedBy != nil && rep.claimedBy != r {
		return &errors.StateError{
			Relationship: r.String(),
			From:         r.State().Name(),
			To:           fmt.Sprintf("matched (%s is claimed by %s)", rep.Identity, rep.claimedBy.Identity),
		}
	}
	if prev, _ := r.Replacement(); prev != nil && prev != rep && prev.claimedBy == r {
		prev.claimedBy = nil
	}
	rep.claimedBy = r
	r.state = next
	return nil
}

// Unmatch releases the replacement and returns the relationship to Orphaned.
func (r *Relationship) Unmatch() error {
	m, ok := r.State().(Matched)
	if !ok {
		return r.transitionError(Orphaned{})
	}
	if m.Replacement.claimedBy == r {
		m.Replacement.claimedBy = nil
	}
	r.state = Orphaned{}
	return nil
}

// Suppress withholds the relationship's inactivation because claimant's
// replacement re-activates the same edge.
func (r *Relationship) Suppress(claimant *Relationship) error {
	next := Suppressed{Claimant: claimant}
	switch s := r.State().(type) {
	case Matched:
		next.Matched = s
	case Orphaned:
	default:
		return r.transitionError(next)
	}
	r.state = next
	return nil
}

// MarkEmitted records that the relationship's delta rows were written.
func (r *Relationship) MarkEmitted() error {
	switch s := r.State().(type) {
	case Orphaned:
		r.state = Emitted{}
	case Matched:
		r.state = Emitted{Replacement: s.Replacement, Algorithm: s.Algorithm}
	default:
		return r.transitionError(Emitted{})
	}
	return nil
}

func (r *Relationship) transitionError(to State) error {
	return errors.NewStateError(r.String(), r.State().Name(), to.Name())
}

// Less orders relationships canonically: source, group, type, destination,
// then row identifier.
func (r *Relationship) Less(other *Relationship) bool {
	return Compare(r, other) < 0
}

// Compare is the canonical ordering used wherever iteration order matters.
func Compare(a, b *Relationship) int {
	switch {
	case a.Source != b.Source:
		return cmpInt64(a.Source, b.Source)
	case a.Group != b.Group:
		return cmpInt64(int64(a.Group), int64(b.Group))
	case a.Type != b.Type:
		return cmpInt64(a.Type, b.Type)
	case a.Destination != b.Destination:
		return cmpInt64(a.Destination, b.Destination)
	case a.Row.ID < b.Row.ID:
		return -1
	case a.Row.ID > b.Row.ID:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// String returns the identity followed by the row identifier.
func (r *Relationship) String() string {
	if r.Row.ID == "" {
		return r.Identity.String()
	}
	return fmt.Sprintf("%s (%s)", r.Identity, r.Row.ID)
}
