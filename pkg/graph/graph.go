// Package graph implements a dictionary-compressed directed multigraph used
// as the input representation for traversal algorithms over knowledge-base
// scale data. Node and relation names are interned to dense int32 ids; each
// vertex keeps per-relation buckets of incoming and outgoing neighbor ids.
//
// Two local backings implement the read contract: InMemoryGraph wraps a
// finalized vertex array directly, DiskGraph lazily loads the same structure
// from a directory on first access. A network-backed implementation of the
// same contract lives in pkg/api/grpc.
package graph

// Graph is the uniform read contract over a finalized graph. All methods are
// safe for unsynchronized concurrent readers. Errors surface I/O failure on
// backings that load lazily or remotely; the in-memory backing never errors.
//
// Out-of-range ids never fail: Node returns the empty sentinel vertex, and
// name lookups for unknown labels resolve to an index beyond the vertex
// array, which in turn resolves to the sentinel.
type Graph interface {
	// Node returns the vertex for id, or the empty sentinel if id is out of
	// bounds.
	Node(id int32) (*Vertex, error)

	// NodeByName resolves name through the node dictionary and returns the
	// corresponding vertex.
	NodeByName(name string) (*Vertex, error)

	// NodeName returns the label assigned to a node id, or "" if unassigned.
	NodeName(id int32) (string, error)

	// NodeIndex returns the id for a node label, allocating one if the label
	// is unseen.
	NodeIndex(name string) (int32, error)

	// HasNode reports whether a node label is known.
	HasNode(name string) (bool, error)

	// NumNodes returns the node dictionary size.
	NumNodes() (int, error)

	// RelationName returns the label assigned to a relation id.
	RelationName(id int32) (string, error)

	// RelationIndex returns the id for a relation label, allocating one if
	// the label is unseen.
	RelationIndex(name string) (int32, error)

	// HasRelation reports whether a relation label is known.
	HasRelation(name string) (bool, error)

	// NumRelations returns the relation dictionary size.
	NumRelations() (int, error)
}

// nodeAt implements the shared out-of-bounds policy over a vertex array.
func nodeAt(vertices []*Vertex, id int32) *Vertex {
	if id < 0 || int(id) >= len(vertices) {
		return emptyVertex
	}
	return vertices[id]
}
