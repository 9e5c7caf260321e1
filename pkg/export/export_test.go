package export

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/kgraphdb/kgraph/pkg/graph"
)

// friendGraph builds the three-edge friend graph used across export tests.
func friendGraph() *graph.InMemoryGraph {
	b := graph.NewBuilder()
	b.AddEdgeLabels("A", "B", "friend")
	b.AddEdgeLabels("B", "C", "friend")
	b.AddEdgeLabels("A", "C", "friend")
	return graph.FromBuilder(b)
}

// TestTriplesOutgoingOnly tests that extraction yields each edge exactly once
func TestTriplesOutgoingOnly(t *testing.T) {
	g := friendGraph()
	triples, err := Triples(g)
	if err != nil {
		t.Fatalf("Triples failed: %v", err)
	}
	if len(triples) != 3 {
		t.Fatalf("Expected 3 triples, got %d", len(triples))
	}
}

// TestTripleRoundTripLabels tests that exported triples map back to the
// original label triples
func TestTripleRoundTripLabels(t *testing.T) {
	g := friendGraph()
	triples, err := Triples(g)
	if err != nil {
		t.Fatalf("Triples failed: %v", err)
	}

	got := make([]string, 0, len(triples))
	for _, tr := range triples {
		s, _ := g.NodeName(tr.Source)
		r, _ := g.RelationName(tr.Relation)
		o, _ := g.NodeName(tr.Target)
		got = append(got, s+"/"+r+"/"+o)
	}
	sort.Strings(got)

	want := []string{"A/friend/B", "A/friend/C", "B/friend/C"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d triples, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Triple %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

// TestWriteTSV tests the text serialization field order
func TestWriteTSV(t *testing.T) {
	b := graph.NewBuilder()
	b.AddEdge(0, 1, 2)
	g := graph.FromBuilder(b)

	var buf bytes.Buffer
	if err := WriteTSV(&buf, g); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	if buf.String() != "0\t1\t2\n" {
		t.Errorf("Expected source/target/relation order, got %q", buf.String())
	}
}

// TestBinaryRoundTrip tests that the binary writer output reloads into an
// identical graph
func TestBinaryRoundTrip(t *testing.T) {
	b := graph.NewBuilder()
	// Inserted in ascending source order so append order survives the
	// vertex-ordered export.
	b.AddEdge(0, 1, 0)
	b.AddEdge(0, 2, 0)
	b.AddEdge(1, 2, 1)
	b.AddEdge(2, 0, 0)
	g := graph.FromBuilder(b)

	var buf bytes.Buffer
	if err := WriteBinary(&buf, g); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}
	if buf.Len() != 4*12 {
		t.Fatalf("Expected 4 fixed-width records, got %d bytes", buf.Len())
	}

	reloaded := graph.NewBuilder()
	if err := graph.LoadBinaryEdges(&buf, reloaded); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	want, _ := g.Vertices()
	got := reloaded.Build()
	if len(got) != len(want) {
		t.Fatalf("Expected %d vertices, got %d", len(want), len(got))
	}
	for id := range want {
		for _, rel := range want[id].Relations() {
			w := want[id].Outgoing(rel)
			r := got[id].Outgoing(rel)
			if len(w) != len(r) {
				t.Fatalf("Vertex %d relation %d: expected %v, got %v", id, rel, w, r)
			}
			for i := range w {
				if w[i] != r[i] {
					t.Errorf("Vertex %d relation %d: order differs at %d", id, rel, i)
				}
			}
			wIn := want[id].Incoming(rel)
			rIn := got[id].Incoming(rel)
			if len(wIn) != len(rIn) {
				t.Fatalf("Vertex %d relation %d incoming: expected %v, got %v", id, rel, wIn, rIn)
			}
		}
	}
}

// TestStringTriples tests the delimiter-joined dataset format
func TestStringTriples(t *testing.T) {
	b := graph.NewBuilder()
	b.AddEdgeLabels("A", "B", "friend")
	g := graph.FromBuilder(b)

	rendered, err := StringTriples(g)
	if err != nil {
		t.Fatalf("StringTriples failed: %v", err)
	}
	if len(rendered) != 1 || rendered[0] != "A^,^friend^,^B" {
		t.Errorf("Expected [A^,^friend^,^B], got %v", rendered)
	}
}

// TestJoinRecord tests joining rendered triples into one record
func TestJoinRecord(t *testing.T) {
	record := JoinRecord([]string{"A^,^r^,^B", "B^,^r^,^C"})
	if record != "A^,^r^,^B ### B^,^r^,^C" {
		t.Errorf("Unexpected record: %q", record)
	}
	if JoinRecord(nil) != "" {
		t.Error("Expected empty record for no triples")
	}
	if strings.Count(record, " ### ") != 1 {
		t.Error("Expected one separator")
	}
}
