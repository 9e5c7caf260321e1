package graph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kgraphdb/kgraph/pkg/dictionary"
)

// Directory layout shared by DiskGraph and InMemoryGraph.WriteToDir.
const (
	nodeDictFile     = "node_dict.tsv"
	relationDictFile = "edge_dict.tsv"
	numShardsFile    = "num_shards.tsv"
	binaryEdgeFile   = "edges.dat"
	chiDirName       = "graph_chi"
	textEdgeFile     = "edges.tsv"
)

// BinaryEdgePath returns the location of the binary edge file inside a
// graph directory.
func BinaryEdgePath(dir string) string {
	return filepath.Join(dir, binaryEdgeFile)
}

// TextEdgePath returns the location of the tab-separated edge file inside a
// graph directory.
func TextEdgePath(dir string) string {
	return filepath.Join(dir, chiDirName, textEdgeFile)
}

// DiskGraph lazily loads a graph from a directory. Construction does no I/O;
// the dictionaries, the vertex array, and the shard count are each read on
// first access and memoized for the process lifetime. Concurrent first
// accesses are serialized per field, so each file is read at most once.
//
// Missing or unreadable files surface as an error from the first accessor
// that needs them, and every later access repeats that error.
type DiskGraph struct {
	dir string

	dictOnce     sync.Once
	nodeDict     *dictionary.Dictionary
	relationDict *dictionary.Dictionary
	dictErr      error

	nodesOnce sync.Once
	vertices  []*Vertex
	nodesErr  error

	shardsOnce sync.Once
	numShards  int
	shardsErr  error
}

// NewDiskGraph creates a disk-backed graph rooted at dir without touching
// the filesystem.
func NewDiskGraph(dir string) *DiskGraph {
	return &DiskGraph{dir: dir}
}

// Dir returns the directory the graph loads from.
func (g *DiskGraph) Dir() string {
	return g.dir
}

// dictionaries loads node_dict.tsv and edge_dict.tsv on first call.
func (g *DiskGraph) dictionaries() (*dictionary.Dictionary, *dictionary.Dictionary, error) {
	g.dictOnce.Do(func() {
		nodeDict, err := loadDictFile(filepath.Join(g.dir, nodeDictFile))
		if err != nil {
			g.dictErr = err
			return
		}
		relationDict, err := loadDictFile(filepath.Join(g.dir, relationDictFile))
		if err != nil {
			g.dictErr = err
			return
		}
		g.nodeDict = nodeDict
		g.relationDict = relationDict
	})
	return g.nodeDict, g.relationDict, g.dictErr
}

// load reads the edge file on first call and finalizes the vertex array. The
// binary format is preferred when edges.dat exists; otherwise the text
// format under graph_chi is parsed. The builder is seeded with the loaded
// dictionaries so ids agree with them.
func (g *DiskGraph) load() ([]*Vertex, error) {
	g.nodesOnce.Do(func() {
		nodeDict, relationDict, err := g.dictionaries()
		if err != nil {
			g.nodesErr = err
			return
		}

		builder := NewBuilderWithDictionaries(nodeDict, relationDict)

		binaryPath := filepath.Join(g.dir, binaryEdgeFile)
		if _, err := os.Stat(binaryPath); err == nil {
			g.nodesErr = loadEdgeFile(binaryPath, builder, LoadBinaryEdges)
		} else {
			textPath := filepath.Join(g.dir, chiDirName, textEdgeFile)
			g.nodesErr = loadEdgeFile(textPath, builder, LoadTextEdges)
		}
		if g.nodesErr != nil {
			return
		}
		g.vertices = builder.Build()
	})
	return g.vertices, g.nodesErr
}

// NumShards reads num_shards.tsv on first call and memoizes the parsed
// count. The value is opaque metadata for an external sharded-processing
// step.
func (g *DiskGraph) NumShards() (int, error) {
	g.shardsOnce.Do(func() {
		data, err := os.ReadFile(filepath.Join(g.dir, numShardsFile))
		if err != nil {
			g.shardsErr = fmt.Errorf("failed to read shard count: %w", err)
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			g.shardsErr = fmt.Errorf("malformed shard count: %w", err)
			return
		}
		g.numShards = n
	})
	return g.numShards, g.shardsErr
}

// Node returns the vertex for id, or the empty sentinel if id is out of
// bounds of the loaded array.
func (g *DiskGraph) Node(id int32) (*Vertex, error) {
	vertices, err := g.load()
	if err != nil {
		return nil, err
	}
	return nodeAt(vertices, id), nil
}

// NodeByName resolves name through the node dictionary and returns the
// corresponding vertex.
func (g *DiskGraph) NodeByName(name string) (*Vertex, error) {
	vertices, err := g.load()
	if err != nil {
		return nil, err
	}
	nodeDict, _, err := g.dictionaries()
	if err != nil {
		return nil, err
	}
	return nodeAt(vertices, nodeDict.GetIndex(name)), nil
}

// NodeName returns the label assigned to a node id.
func (g *DiskGraph) NodeName(id int32) (string, error) {
	nodeDict, _, err := g.dictionaries()
	if err != nil {
		return "", err
	}
	return nodeDict.GetString(id), nil
}

// NodeIndex returns the id for a node label, allocating one if unseen.
func (g *DiskGraph) NodeIndex(name string) (int32, error) {
	nodeDict, _, err := g.dictionaries()
	if err != nil {
		return 0, err
	}
	return nodeDict.GetIndex(name), nil
}

// HasNode reports whether a node label is known.
func (g *DiskGraph) HasNode(name string) (bool, error) {
	nodeDict, _, err := g.dictionaries()
	if err != nil {
		return false, err
	}
	return nodeDict.HasString(name), nil
}

// NumNodes returns the node dictionary size.
func (g *DiskGraph) NumNodes() (int, error) {
	nodeDict, _, err := g.dictionaries()
	if err != nil {
		return 0, err
	}
	return nodeDict.Size(), nil
}

// RelationName returns the label assigned to a relation id.
func (g *DiskGraph) RelationName(id int32) (string, error) {
	_, relationDict, err := g.dictionaries()
	if err != nil {
		return "", err
	}
	return relationDict.GetString(id), nil
}

// RelationIndex returns the id for a relation label, allocating one if
// unseen.
func (g *DiskGraph) RelationIndex(name string) (int32, error) {
	_, relationDict, err := g.dictionaries()
	if err != nil {
		return 0, err
	}
	return relationDict.GetIndex(name), nil
}

// HasRelation reports whether a relation label is known.
func (g *DiskGraph) HasRelation(name string) (bool, error) {
	_, relationDict, err := g.dictionaries()
	if err != nil {
		return false, err
	}
	return relationDict.HasString(name), nil
}

// NumRelations returns the relation dictionary size.
func (g *DiskGraph) NumRelations() (int, error) {
	_, relationDict, err := g.dictionaries()
	if err != nil {
		return 0, err
	}
	return relationDict.Size(), nil
}

// Vertices returns the loaded vertex array, triggering the load on first
// call. The slice is shared and must not be modified.
func (g *DiskGraph) Vertices() ([]*Vertex, error) {
	return g.load()
}

// loadDictFile reads a one-label-per-line dictionary file.
func loadDictFile(path string) (*dictionary.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	d := dictionary.New()
	if err := d.Load(f); err != nil {
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	return d, nil
}

// loadEdgeFile opens path and feeds its edges into the builder.
func loadEdgeFile(path string, b *Builder, parse func(r io.Reader, b *Builder) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open edge file: %w", err)
	}
	defer f.Close()

	if err := parse(f, b); err != nil {
		return fmt.Errorf("failed to load edges from %s: %w", path, err)
	}
	return nil
}
