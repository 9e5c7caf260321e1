package graph

import (
	"sort"
	"sync"
)

// EdgeList holds the incoming and outgoing neighbor ids recorded for one
// (vertex, relation) bucket. Entries appear in append order and repeated
// edges are kept as repeated entries.
type EdgeList struct {
	In  []int32 // Sources of incoming edges
	Out []int32 // Targets of outgoing edges
}

// Vertex is the immutable per-node record of a finalized graph: a map from
// relation id to its edge bucket, plus a lazily computed set of all neighbor
// ids across every relation and direction.
type Vertex struct {
	edges map[int32]*EdgeList

	relationsOnce sync.Once
	relations     []int32

	neighborsOnce sync.Once
	neighbors     map[int32]struct{}
}

// emptyVertex is returned for any id outside the vertex array so callers can
// probe ids without bounds checks.
var emptyVertex = &Vertex{}

// NewVertex creates a vertex from its relation buckets. The map is owned by
// the vertex afterwards and must not be mutated by the caller.
func NewVertex(edges map[int32]*EdgeList) *Vertex {
	if len(edges) == 0 {
		return &Vertex{}
	}
	return &Vertex{edges: edges}
}

// EmptyVertex returns the shared sentinel vertex with no relation buckets.
func EmptyVertex() *Vertex {
	return emptyVertex
}

// IsEmpty reports whether the vertex has no relation buckets.
func (v *Vertex) IsEmpty() bool {
	return len(v.edges) == 0
}

// NumRelations returns the number of relation buckets on this vertex.
func (v *Vertex) NumRelations() int {
	return len(v.edges)
}

// Relations returns the relation ids with a bucket on this vertex, in
// ascending order. The slice is computed on first call and cached for the
// vertex's lifetime; it is shared and must not be modified. Exporters walk
// every vertex's relations, so the sort runs at most once per vertex rather
// than once per export.
func (v *Vertex) Relations() []int32 {
	v.relationsOnce.Do(func() {
		rels := make([]int32, 0, len(v.edges))
		for rel := range v.edges {
			rels = append(rels, rel)
		}
		sort.Slice(rels, func(i, j int) bool { return rels[i] < rels[j] })
		v.relations = rels
	})
	return v.relations
}

// HasRelation reports whether this vertex has a bucket for relation.
func (v *Vertex) HasRelation(relation int32) bool {
	_, ok := v.edges[relation]
	return ok
}

// Incoming returns the sources of incoming edges under relation, in append
// order. The returned slice is shared and must not be modified.
func (v *Vertex) Incoming(relation int32) []int32 {
	if bucket, ok := v.edges[relation]; ok {
		return bucket.In
	}
	return nil
}

// Outgoing returns the targets of outgoing edges under relation, in append
// order. The returned slice is shared and must not be modified.
func (v *Vertex) Outgoing(relation int32) []int32 {
	if bucket, ok := v.edges[relation]; ok {
		return bucket.Out
	}
	return nil
}

// ConnectedNodes returns the set of all neighbor ids across every relation
// and both directions. The set is computed on first call and cached for the
// vertex's lifetime; concurrent callers share one computation.
func (v *Vertex) ConnectedNodes() map[int32]struct{} {
	v.neighborsOnce.Do(func() {
		set := make(map[int32]struct{})
		for _, bucket := range v.edges {
			for _, id := range bucket.In {
				set[id] = struct{}{}
			}
			for _, id := range bucket.Out {
				set[id] = struct{}{}
			}
		}
		v.neighbors = set
	})
	return v.neighbors
}
