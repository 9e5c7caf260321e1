// Package export extracts (source, relation, target) triples from a
// finalized graph and serializes them for downstream consumers. Extraction
// walks outgoing buckets only; every incoming entry mirrors an outgoing
// entry already recorded at its source, so walking both would double each
// edge.
package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/kgraphdb/kgraph/pkg/graph"
)

// VertexView is the local-graph surface exporters need: the finalized vertex
// array plus name lookups. InMemoryGraph and DiskGraph both satisfy it; the
// remote backing does not, exports run where the array lives.
type VertexView interface {
	Vertices() ([]*graph.Vertex, error)
	NodeName(id int32) (string, error)
	RelationName(id int32) (string, error)
}

// Triple is one (source, relation, target) fact in dense-id form.
type Triple struct {
	Source   int32
	Relation int32
	Target   int32
}

// Triples walks every vertex's outgoing buckets and returns all recorded
// triples. Vertices are processed in parallel over disjoint index ranges;
// the result is ordered by source vertex, then by relation id within a
// vertex.
func Triples(v VertexView) ([]Triple, error) {
	vertices, err := v.Vertices()
	if err != nil {
		return nil, err
	}

	n := len(vertices)
	if n == 0 {
		return nil, nil
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	parts := make([][]Triple, 0, workers)
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		part := make([]Triple, 0)
		parts = append(parts, part)
		idx := len(parts) - 1

		wg.Add(1)
		go func(idx, lo, hi int) {
			defer wg.Done()
			out := parts[idx]
			for i := lo; i < hi; i++ {
				vertex := vertices[i]
				for _, relation := range vertex.Relations() {
					for _, target := range vertex.Outgoing(relation) {
						out = append(out, Triple{Source: int32(i), Relation: relation, Target: target})
					}
				}
			}
			parts[idx] = out
		}(idx, lo, hi)
	}
	wg.Wait()

	var triples []Triple
	for _, part := range parts {
		triples = append(triples, part...)
	}
	return triples, nil
}

// WriteTSV serializes the triple stream as one source<TAB>target<TAB>relation
// line per edge, the text edge format the disk loader reads.
func WriteTSV(w io.Writer, v VertexView) error {
	triples, err := Triples(v)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	for _, t := range triples {
		if _, err := fmt.Fprintf(bw, "%d\t%d\t%d\n", t.Source, t.Target, t.Relation); err != nil {
			return fmt.Errorf("failed to write edge line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush edges: %w", err)
	}
	return nil
}

// WriteBinary serializes the triple stream as big-endian 32-bit integers.
// Each triple is written in (source, target, relation) order; that field
// order is the on-disk contract the binary loader expects and differs from
// the relation-last order used elsewhere.
func WriteBinary(w io.Writer, v VertexView) error {
	triples, err := Triples(v)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	var buf [12]byte
	for _, t := range triples {
		binary.BigEndian.PutUint32(buf[0:4], uint32(t.Source))
		binary.BigEndian.PutUint32(buf[4:8], uint32(t.Target))
		binary.BigEndian.PutUint32(buf[8:12], uint32(t.Relation))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("failed to write edge record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush edges: %w", err)
	}
	return nil
}

// StringTriples renders each triple with names resolved through the
// dictionaries, in the delimiter-joined form a downstream dataset reader
// consumes: nodeNameA^,^relationName^,^nodeNameB.
func StringTriples(v VertexView) ([]string, error) {
	triples, err := Triples(v)
	if err != nil {
		return nil, err
	}

	rendered := make([]string, 0, len(triples))
	for _, t := range triples {
		source, err := v.NodeName(t.Source)
		if err != nil {
			return nil, err
		}
		relation, err := v.RelationName(t.Relation)
		if err != nil {
			return nil, err
		}
		target, err := v.NodeName(t.Target)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, source+"^,^"+relation+"^,^"+target)
	}
	return rendered, nil
}

// JoinRecord joins rendered string triples into one record.
func JoinRecord(triples []string) string {
	return strings.Join(triples, " ### ")
}
