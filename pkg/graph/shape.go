package graph

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Shape is an order-independent hash of the multiset of relationship types in
// one group. Two groups with the same types, in any order, have the same shape.
type Shape uint64

// ShapeOf hashes the multiset of types. The input slice is not modified.
func ShapeOf(types []int64) Shape {
	sorted := slices.Clone(types)
	slices.Sort(sorted)

	d := xxhash.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(sorted)))
	_, _ = d.Write(buf[:])
	for _, t := range sorted {
		binary.BigEndian.PutUint64(buf[:], uint64(t))
		_, _ = d.Write(buf[:])
	}
	return Shape(d.Sum64())
}

// String returns the shape as 16 hex digits.
func (s Shape) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// Group is a non-owning view of the relationships of one concept that share a
// group number.
type Group struct {
	Concept       *Concept
	Number        int
	Relationships []*Relationship
}

// Shape returns the group's memoized type-shape hash.
func (g Group) Shape() Shape {
	if g.Concept == nil {
		return ShapeOf(g.Types())
	}
	return g.Concept.Shape(g.Number)
}

// Types returns the group's relationship types in ascending order, with repeats.
func (g Group) Types() []int64 {
	types := make([]int64, 0, len(g.Relationships))
	for _, rel := range g.Relationships {
		types = append(types, rel.Type)
	}
	slices.Sort(types)
	return types
}

// SameTypes reports whether the group's type multiset equals types.
func (g Group) SameTypes(types []int64) bool {
	sorted := slices.Clone(types)
	slices.Sort(sorted)
	return slices.Equal(g.Types(), sorted)
}

// ContainsTypes reports whether every type in types occurs in the group.
func (g Group) ContainsTypes(types []int64) bool {
	present := make(map[int64]struct{}, len(g.Relationships))
	for _, rel := range g.Relationships {
		present[rel.Type] = struct{}{}
	}
	for _, t := range types {
		if _, ok := present[t]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of relationships in the group.
func (g Group) Len() int {
	return len(g.Relationships)
}
