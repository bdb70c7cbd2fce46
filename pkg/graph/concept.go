package graph

import (
	"slices"
)

const depthUnknown = -2

// Concept is a node of one graph. Its is-a edges define its parents; every
// other outbound edge is an attribute.
type Concept struct {
	ID int64

	parents    []*Concept
	children   []*Concept
	isA        []*Relationship
	attributes []*Relationship

	shapes map[int]Shape
	depth  int
}

func newConcept(id int64) *Concept {
	return &Concept{ID: id, depth: depthUnknown}
}

// Parents returns the direct parents in ascending id order.
func (c *Concept) Parents() []*Concept { return c.parents }

// Children returns the direct children in ascending id order.
func (c *Concept) Children() []*Concept { return c.children }

// IsARelationships returns the outbound is-a edges in canonical order.
func (c *Concept) IsARelationships() []*Relationship { return c.isA }

// Attributes returns the outbound non-is-a edges in canonical order.
func (c *Concept) Attributes() []*Relationship { return c.attributes }

// Relationships returns every outbound edge, is-a edges first.
func (c *Concept) Relationships() []*Relationship {
	all := make([]*Relationship, 0, len(c.isA)+len(c.attributes))
	all = append(all, c.isA...)
	return append(all, c.attributes...)
}

// HasParent reports whether id is a direct parent.
func (c *Concept) HasParent(id int64) bool {
	_, found := slices.BinarySearchFunc(c.parents, id, byID)
	return found
}

// Group returns the attributes that share group number n.
func (c *Concept) Group(n int) Group {
	g := Group{Concept: c, Number: n}
	for _, rel := range c.attributes {
		if rel.Group == n {
			g.Relationships = append(g.Relationships, rel)
		}
	}
	return g
}

// Groups returns every attribute group with a non-zero number, in ascending order.
func (c *Concept) Groups() []Group {
	var numbers []int
	for _, rel := range c.attributes {
		if rel.Group != 0 && !slices.Contains(numbers, rel.Group) {
			numbers = append(numbers, rel.Group)
		}
	}
	slices.Sort(numbers)

	groups := make([]Group, 0, len(numbers))
	for _, n := range numbers {
		groups = append(groups, c.Group(n))
	}
	return groups
}

// Shape returns the memoized shape hash of group n.
func (c *Concept) Shape(n int) Shape {
	if s, ok := c.shapes[n]; ok {
		return s
	}
	if c.shapes == nil {
		c.shapes = make(map[int]Shape)
	}
	s := ShapeOf(c.Group(n).Types())
	c.shapes[n] = s
	return s
}

// Depth returns the number of is-a steps to the nearest root, or -1 when no
// root is reachable. It is computed on first use and meant to be read once the
// graph is loaded.
func (c *Concept) Depth() int {
	if c.depth != depthUnknown {
		return c.depth
	}
	c.depth = -1
	visited := map[int64]bool{c.ID: true}
	frontier := []*Concept{c}
	for d := 0; len(frontier) > 0; d++ {
		var next []*Concept
		for _, n := range frontier {
			if len(n.parents) == 0 {
				c.depth = d
				return d
			}
			for _, p := range n.parents {
				if !visited[p.ID] {
					visited[p.ID] = true
					next = append(next, p)
				}
			}
		}
		frontier = next
	}
	return c.depth
}

// DistanceTo returns the fewest is-a steps from c up to ancestor, 0 when they
// are the same concept, or -1 when ancestor is not reachable.
func (c *Concept) DistanceTo(ancestor int64) int {
	if c.ID == ancestor {
		return 0
	}
	visited := map[int64]bool{c.ID: true}
	frontier := []*Concept{c}
	for d := 1; len(frontier) > 0; d++ {
		var next []*Concept
		for _, n := range frontier {
			for _, p := range n.parents {
				if p.ID == ancestor {
					return d
				}
				if !visited[p.ID] {
					visited[p.ID] = true
					next = append(next, p)
				}
			}
		}
		frontier = next
	}
	return -1
}

// HasAncestor reports whether ancestor is reachable through parents.
func (c *Concept) HasAncestor(ancestor int64) bool {
	return c.ID != ancestor && c.DistanceTo(ancestor) > 0
}

// IsSelfOrDescendantOf reports whether c is id or one of its descendants.
func (c *Concept) IsSelfOrDescendantOf(id int64) bool {
	return c.DistanceTo(id) >= 0
}

func (c *Concept) addParent(p *Concept) {
	c.parents = insertConcept(c.parents, p)
	p.children = insertConcept(p.children, c)
	c.depth = depthUnknown
}

func (c *Concept) addIsA(rel *Relationship) {
	c.isA = insertRelationship(c.isA, rel)
}

func (c *Concept) addAttribute(rel *Relationship) {
	c.attributes = insertRelationship(c.attributes, rel)
	delete(c.shapes, rel.Group)
}

func byID(c *Concept, id int64) int {
	return cmpInt64(c.ID, id)
}

func insertConcept(list []*Concept, c *Concept) []*Concept {
	i, found := slices.BinarySearchFunc(list, c.ID, byID)
	if found {
		return list
	}
	return slices.Insert(list, i, c)
}

func insertRelationship(list []*Relationship, rel *Relationship) []*Relationship {
	i, _ := slices.BinarySearchFunc(list, rel, Compare)
	return slices.Insert(list, i, rel)
}
