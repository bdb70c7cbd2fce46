// Package graph holds one snapshot of relationships as a concept hierarchy
// with attribute groups, and answers the candidate queries used for matching.
//
// A Graph is an explicit object: a run builds one for the stated view and one
// for the inferred view, and the two never share concepts.
package graph

import (
	"slices"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/rf2"
)

// View names the snapshot a graph was built from.
type View string

const (
	ViewStated   View = "stated"
	ViewInferred View = "inferred"
)

// String returns the string representation of the view.
func (v View) String() string {
	return string(v)
}

// Graph is a registry of concepts and the relationships between them.
type Graph struct {
	view    View
	isAType int64

	concepts      map[int64]*Concept
	byFingerprint map[Fingerprint][]*Relationship
	relationships []*Relationship
	sorted        bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithIsAType sets the type identifier that marks hierarchy edges.
func WithIsAType(id int64) Option {
	return func(g *Graph) {
		g.isAType = id
	}
}

// New creates an empty graph for view.
func New(view View, opts ...Option) *Graph {
	g := &Graph{
		view:          view,
		isAType:       constants.IsAType,
		concepts:      make(map[int64]*Concept),
		byFingerprint: make(map[Fingerprint][]*Relationship),
		sorted:        true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromRows builds a graph from active rows.
func FromRows(view View, rows []rf2.Row, opts ...Option) (*Graph, error) {
	g := New(view, opts...)
	for _, row := range rows {
		rel, err := NewRelationship(row)
		if err != nil {
			return nil, err
		}
		g.Add(rel)
	}
	return g, nil
}

// View returns the snapshot view.
func (g *Graph) View() View { return g.view }

// IsAType returns the hierarchy edge type.
func (g *Graph) IsAType() int64 { return g.isAType }

// IsA reports whether rel is a hierarchy edge.
func (g *Graph) IsA(rel *Relationship) bool {
	return rel.Type == g.isAType
}

// Add registers rel against its source concept, creating the source,
// destination and type concepts on first reference.
func (g *Graph) Add(rel *Relationship) {
	source := g.ensure(rel.Source)
	destination := g.ensure(rel.Destination)
	g.ensure(rel.Type)

	if g.IsA(rel) {
		source.addIsA(rel)
		source.addParent(destination)
	} else {
		source.addAttribute(rel)
	}

	fp := rel.Fingerprint()
	g.byFingerprint[fp] = append(g.byFingerprint[fp], rel)
	g.relationships = append(g.relationships, rel)
	g.sorted = false
}

func (g *Graph) ensure(id int64) *Concept {
	c, ok := g.concepts[id]
	if !ok {
		c = newConcept(id)
		g.concepts[id] = c
	}
	return c
}

// Concept returns the concept with id.
func (g *Graph) Concept(id int64) (*Concept, bool) {
	c, ok := g.concepts[id]
	return c, ok
}

// ConceptCount returns the number of registered concepts.
func (g *Graph) ConceptCount() int {
	return len(g.concepts)
}

// Len returns the number of relationships.
func (g *Graph) Len() int {
	return len(g.relationships)
}

// Relationships returns every relationship in canonical order. The returned
// slice is shared; callers must not modify it.
func (g *Graph) Relationships() []*Relationship {
	if !g.sorted {
		slices.SortFunc(g.relationships, Compare)
		g.sorted = true
	}
	return g.relationships
}

// Find returns the relationship with exactly this identity, or nil. A
// fingerprint collision never yields a false hit because identities are
// compared after the hash lookup.
func (g *Graph) Find(id Identity) *Relationship {
	var found *Relationship
	for _, rel := range g.byFingerprint[id.Fingerprint()] {
		if rel.Identity == id && (found == nil || rel.Row.ID < found.Row.ID) {
			found = rel
		}
	}
	return found
}

// Twin returns the relationship in g that is the same logical edge as rel.
func (g *Graph) Twin(rel *Relationship) *Relationship {
	return g.Find(rel.Identity)
}

// Contains reports whether an edge with this identity exists.
func (g *Graph) Contains(id Identity) bool {
	return g.Find(id) != nil
}
