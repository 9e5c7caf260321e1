package graph

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kgraphdb/kgraph/pkg/dictionary"
)

// InMemoryGraph holds a finalized vertex array and its dictionaries
// directly. It has no file origin, so nothing is lazy and no method ever
// returns a non-nil error.
type InMemoryGraph struct {
	vertices     []*Vertex
	nodeDict     *dictionary.Dictionary
	relationDict *dictionary.Dictionary
	numShards    int
}

// NewInMemoryGraph wraps a finalized vertex array and its dictionaries.
func NewInMemoryGraph(vertices []*Vertex, nodeDict, relationDict *dictionary.Dictionary) *InMemoryGraph {
	return &InMemoryGraph{
		vertices:     vertices,
		nodeDict:     nodeDict,
		relationDict: relationDict,
		numShards:    1,
	}
}

// FromBuilder finalizes the builder and wraps the result.
func FromBuilder(b *Builder) *InMemoryGraph {
	return NewInMemoryGraph(b.Build(), b.NodeDictionary(), b.RelationDictionary())
}

// SetNumShards records the shard count written out by WriteToDir. The value
// is metadata for an external sharded-processing step and is not interpreted
// here.
func (g *InMemoryGraph) SetNumShards(n int) {
	g.numShards = n
}

// NumShards returns the recorded shard count.
func (g *InMemoryGraph) NumShards() (int, error) {
	return g.numShards, nil
}

// Node returns the vertex for id, or the empty sentinel if id is out of
// bounds.
func (g *InMemoryGraph) Node(id int32) (*Vertex, error) {
	return nodeAt(g.vertices, id), nil
}

// NodeByName resolves name through the node dictionary and returns the
// corresponding vertex.
func (g *InMemoryGraph) NodeByName(name string) (*Vertex, error) {
	return nodeAt(g.vertices, g.nodeDict.GetIndex(name)), nil
}

// NodeName returns the label assigned to a node id.
func (g *InMemoryGraph) NodeName(id int32) (string, error) {
	return g.nodeDict.GetString(id), nil
}

// NodeIndex returns the id for a node label, allocating one if unseen.
func (g *InMemoryGraph) NodeIndex(name string) (int32, error) {
	return g.nodeDict.GetIndex(name), nil
}

// HasNode reports whether a node label is known.
func (g *InMemoryGraph) HasNode(name string) (bool, error) {
	return g.nodeDict.HasString(name), nil
}

// NumNodes returns the node dictionary size.
func (g *InMemoryGraph) NumNodes() (int, error) {
	return g.nodeDict.Size(), nil
}

// RelationName returns the label assigned to a relation id.
func (g *InMemoryGraph) RelationName(id int32) (string, error) {
	return g.relationDict.GetString(id), nil
}

// RelationIndex returns the id for a relation label, allocating one if
// unseen.
func (g *InMemoryGraph) RelationIndex(name string) (int32, error) {
	return g.relationDict.GetIndex(name), nil
}

// HasRelation reports whether a relation label is known.
func (g *InMemoryGraph) HasRelation(name string) (bool, error) {
	return g.relationDict.HasString(name), nil
}

// NumRelations returns the relation dictionary size.
func (g *InMemoryGraph) NumRelations() (int, error) {
	return g.relationDict.Size(), nil
}

// Vertices returns the finalized vertex array. The slice is shared and must
// not be modified.
func (g *InMemoryGraph) Vertices() ([]*Vertex, error) {
	return g.vertices, nil
}

// WriteToDir persists the graph in the directory layout DiskGraph loads:
// dictionaries as one-label-per-line files, edges as the tab-separated text
// format, and the shard count file. An existing directory is reused.
func (g *InMemoryGraph) WriteToDir(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, chiDirName), 0755); err != nil {
		return fmt.Errorf("failed to create graph directory: %w", err)
	}

	if err := writeDictFile(filepath.Join(dir, nodeDictFile), g.nodeDict); err != nil {
		return err
	}
	if err := writeDictFile(filepath.Join(dir, relationDictFile), g.relationDict); err != nil {
		return err
	}

	shardPath := filepath.Join(dir, numShardsFile)
	if err := os.WriteFile(shardPath, []byte(strconv.Itoa(g.numShards)+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write shard count: %w", err)
	}

	return g.writeTextEdges(filepath.Join(dir, chiDirName, textEdgeFile))
}

// writeTextEdges walks every vertex's outgoing buckets and emits one
// source<TAB>target<TAB>relation line per edge. Incoming buckets are skipped;
// each one mirrors an outgoing entry already written at its source.
func (g *InMemoryGraph) writeTextEdges(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create edge file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	for source, vertex := range g.vertices {
		for _, relation := range vertex.Relations() {
			for _, target := range vertex.Outgoing(relation) {
				fmt.Fprintf(w, "%d\t%d\t%d\n", source, target, relation)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush edge file: %w", err)
	}
	return nil
}

// writeDictFile writes one dictionary as a line file.
func writeDictFile(path string, d *dictionary.Dictionary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dictionary file: %w", err)
	}
	defer f.Close()
	return d.Write(f)
}
