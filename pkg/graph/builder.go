package graph

import (
	"runtime"
	"sync"

	"github.com/kgraphdb/kgraph/pkg/dictionary"
)

// defaultCapacity is the initial slot count for builders created without a
// size hint.
const defaultCapacity = 1024

// Builder accumulates edges into a growable per-vertex slot array and
// finalizes them into an immutable vertex array. A builder is single-writer:
// AddEdge calls must come from one goroutine, and a builder must not be
// reused after Build.
type Builder struct {
	nodeDict     *dictionary.Dictionary
	relationDict *dictionary.Dictionary

	slots    []map[int32]*EdgeList
	sized    bool
	numEdges int64
	maxIndex int32
}

// NewBuilder creates a builder with fresh dictionaries and no size hint; the
// built array is trimmed to the highest id seen.
func NewBuilder() *Builder {
	return NewBuilderWithDictionaries(dictionary.New(), dictionary.New())
}

// NewBuilderSized creates a builder whose built array keeps at least
// initialSize slots even if no edge touches them, for callers that know the
// node universe from a separate listing.
func NewBuilderSized(initialSize int) *Builder {
	b := NewBuilder()
	b.sized = true
	if initialSize > 0 {
		b.slots = make([]map[int32]*EdgeList, initialSize)
		initSlots(b.slots, 0, initialSize)
	}
	return b
}

// NewBuilderWithDictionaries creates an unsized builder seeded with existing
// dictionaries, so ids assigned by AddEdgeLabels agree with them.
func NewBuilderWithDictionaries(nodeDict, relationDict *dictionary.Dictionary) *Builder {
	return &Builder{
		nodeDict:     nodeDict,
		relationDict: relationDict,
		maxIndex:     -1,
	}
}

// NodeDictionary returns the node-name dictionary backing this builder.
func (b *Builder) NodeDictionary() *dictionary.Dictionary {
	return b.nodeDict
}

// RelationDictionary returns the relation-name dictionary backing this builder.
func (b *Builder) RelationDictionary() *dictionary.Dictionary {
	return b.relationDict
}

// NumEdges returns the number of edges added so far.
func (b *Builder) NumEdges() int64 {
	return b.numEdges
}

// AddEdge records the edge (source, relation, target): target is appended to
// source's outgoing bucket for relation and source to target's incoming
// bucket, creating either bucket on first use.
func (b *Builder) AddEdge(source, target, relation int32) {
	maxID := source
	if target > maxID {
		maxID = target
	}
	b.ensure(maxID)
	if maxID > b.maxIndex {
		b.maxIndex = maxID
	}

	out := b.bucket(source, relation)
	out.Out = append(out.Out, target)

	in := b.bucket(target, relation)
	in.In = append(in.In, source)

	b.numEdges++
}

// AddEdgeLabels resolves the three labels through the dictionaries,
// allocating ids on first sight, and records the edge.
func (b *Builder) AddEdgeLabels(source, target, relation string) {
	b.AddEdge(b.nodeDict.GetIndex(source), b.nodeDict.GetIndex(target), b.relationDict.GetIndex(relation))
}

// bucket returns the edge list for (id, relation), creating it if absent.
func (b *Builder) bucket(id, relation int32) *EdgeList {
	slot := b.slots[id]
	bucket, ok := slot[relation]
	if !ok {
		bucket = &EdgeList{}
		slot[relation] = bucket
	}
	return bucket
}

// ensure grows the slot array by doubling until id is addressable. Existing
// slots are copied unchanged; new slots are initialized to empty buckets in
// parallel before any edge is written into them.
func (b *Builder) ensure(id int32) {
	if int(id) < len(b.slots) {
		return
	}
	newLen := len(b.slots)
	if newLen == 0 {
		newLen = defaultCapacity
	}
	for newLen <= int(id) {
		newLen *= 2
	}
	grown := make([]map[int32]*EdgeList, newLen)
	copy(grown, b.slots)
	initSlots(grown, len(b.slots), newLen)
	b.slots = grown
}

// Build finalizes the accumulated edges into an immutable vertex array. With
// no size hint the array is trimmed to (max id seen)+1; with a hint the full
// slot length survives and untouched slots become empty vertices.
func (b *Builder) Build() []*Vertex {
	n := len(b.slots)
	if !b.sized {
		n = int(b.maxIndex) + 1
	}

	vertices := make([]*Vertex, n)
	forEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			vertices[i] = NewVertex(b.slots[i])
		}
	})
	return vertices
}

// initSlots fills slots[lo:hi] with empty bucket maps, split across
// partitions that each write only their own disjoint index range.
func initSlots(slots []map[int32]*EdgeList, lo, hi int) {
	forEachRange(hi-lo, func(from, to int) {
		for i := lo + from; i < lo+to; i++ {
			slots[i] = make(map[int32]*EdgeList)
		}
	})
}

// forEachRange runs fn over disjoint [lo, hi) partitions of [0, n) in
// parallel and waits for all partitions to finish.
func forEachRange(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
