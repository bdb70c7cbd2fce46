package graph

// The queries below search the attributes of one source concept. Unknown
// concepts yield empty results; queries never fail.

// Distance returns the fewest is-a steps from id up to ancestor in this
// graph, 0 for the same concept, or -1 when ancestor is not reachable.
func (g *Graph) Distance(id, ancestor int64) int {
	if id == ancestor {
		return 0
	}
	c, ok := g.concepts[id]
	if !ok {
		return -1
	}
	return c.DistanceTo(ancestor)
}

// IsSelfOrDescendant reports whether id is ancestor or below it.
func (g *Graph) IsSelfOrDescendant(id, ancestor int64) bool {
	return g.Distance(id, ancestor) >= 0
}

// IsDirectChild reports whether parent is a direct parent of id.
func (g *Graph) IsDirectChild(id, parent int64) bool {
	c, ok := g.concepts[id]
	return ok && c.HasParent(parent)
}

// outbound includes is-a edges so that hierarchy edges can be reconciled too.
func (g *Graph) outbound(source int64) []*Relationship {
	c, ok := g.concepts[source]
	if !ok {
		return nil
	}
	return c.Relationships()
}

// SameGroupDescendants returns the edges of source with this type and group
// whose destination is dest or one of its descendants.
func (g *Graph) SameGroupDescendants(source, typ int64, group int, dest int64) []*Relationship {
	var out []*Relationship
	for _, rel := range g.outbound(source) {
		if rel.Type == typ && rel.Group == group && g.IsSelfOrDescendant(rel.Destination, dest) {
			out = append(out, rel)
		}
	}
	return out
}

// GroupsWithShape returns the numbered groups of source whose type multiset
// equals types. The shape hash filters; the type lists confirm.
func (g *Graph) GroupsWithShape(source int64, types []int64) []Group {
	c, ok := g.concepts[source]
	if !ok {
		return nil
	}
	want := ShapeOf(types)
	var out []Group
	for _, grp := range c.Groups() {
		if grp.Shape() == want && grp.SameTypes(types) {
			out = append(out, grp)
		}
	}
	return out
}

// GroupsContainingTypes returns the numbered groups of source that carry at
// least every type in types.
func (g *Graph) GroupsContainingTypes(source int64, types []int64) []Group {
	c, ok := g.concepts[source]
	if !ok {
		return nil
	}
	var out []Group
	for _, grp := range c.Groups() {
		if grp.ContainsTypes(types) {
			out = append(out, grp)
		}
	}
	return out
}

// Descendants returns the edges of source with this type, in any group,
// whose destination is dest or one of its descendants.
func (g *Graph) Descendants(source, typ, dest int64) []*Relationship {
	var out []*Relationship
	for _, rel := range g.outbound(source) {
		if rel.Type == typ && g.IsSelfOrDescendant(rel.Destination, dest) {
			out = append(out, rel)
		}
	}
	return out
}

// Proximate returns the edges of source, in any group, whose type is typ or
// a descendant of it and whose destination is dest or a descendant of it.
func (g *Graph) Proximate(source, typ, dest int64) []*Relationship {
	var out []*Relationship
	for _, rel := range g.outbound(source) {
		if g.IsSelfOrDescendant(rel.Type, typ) && g.IsSelfOrDescendant(rel.Destination, dest) {
			out = append(out, rel)
		}
	}
	return out
}
