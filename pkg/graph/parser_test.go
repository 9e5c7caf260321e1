package graph

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

// TestLoadTextEdges tests the digit-by-digit TSV parser
func TestLoadTextEdges(t *testing.T) {
	input := "0\t1\t0\n12\t345\t6\n1\t0\t2\n"
	b := NewBuilder()
	if err := LoadTextEdges(strings.NewReader(input), b); err != nil {
		t.Fatalf("LoadTextEdges failed: %v", err)
	}

	if b.NumEdges() != 3 {
		t.Fatalf("Expected 3 edges, got %d", b.NumEdges())
	}

	vertices := b.Build()
	if out := vertices[12].Outgoing(6); len(out) != 1 || out[0] != 345 {
		t.Errorf("Expected 12-[6]->345, got %v", out)
	}
	if in := vertices[0].Incoming(2); len(in) != 1 || in[0] != 1 {
		t.Errorf("Expected incoming [1] under relation 2, got %v", in)
	}
}

// TestLoadTextEdgesNoTrailingNewline tests that the final line still parses
func TestLoadTextEdgesNoTrailingNewline(t *testing.T) {
	b := NewBuilder()
	if err := LoadTextEdges(strings.NewReader("3\t4\t1"), b); err != nil {
		t.Fatalf("LoadTextEdges failed: %v", err)
	}
	if b.NumEdges() != 1 {
		t.Errorf("Expected 1 edge, got %d", b.NumEdges())
	}
	vertices := b.Build()
	if out := vertices[3].Outgoing(1); len(out) != 1 || out[0] != 4 {
		t.Errorf("Expected 3-[1]->4, got %v", out)
	}
}

// TestLoadTextEdgesExtraTabs tests that a line with more than two tabs
// records a corrupted edge instead of crashing; the format contract leaves
// malformed input undefined but the loader must survive it
func TestLoadTextEdgesExtraTabs(t *testing.T) {
	b := NewBuilder()
	input := "1\t2\t3\t4\n5\t6\t7\n"
	if err := LoadTextEdges(strings.NewReader(input), b); err != nil {
		t.Fatalf("LoadTextEdges failed: %v", err)
	}
	if b.NumEdges() != 2 {
		t.Errorf("Expected 2 edges, got %d", b.NumEdges())
	}

	vertices := b.Build()
	if out := vertices[5].Outgoing(7); len(out) != 1 || out[0] != 6 {
		t.Errorf("Well-formed line after malformed line lost: got %v", out)
	}
}

// TestLoadBinaryEdges tests reading big-endian triples until end of stream
func TestLoadBinaryEdges(t *testing.T) {
	var buf bytes.Buffer
	for _, triple := range [][3]uint32{{0, 1, 0}, {1, 2, 0}, {5, 0, 3}} {
		for _, field := range triple {
			if err := binary.Write(&buf, binary.BigEndian, field); err != nil {
				t.Fatalf("Failed to build fixture: %v", err)
			}
		}
	}

	b := NewBuilder()
	if err := LoadBinaryEdges(&buf, b); err != nil {
		t.Fatalf("LoadBinaryEdges failed: %v", err)
	}
	if b.NumEdges() != 3 {
		t.Fatalf("Expected 3 edges, got %d", b.NumEdges())
	}

	vertices := b.Build()
	if out := vertices[5].Outgoing(3); len(out) != 1 || out[0] != 0 {
		t.Errorf("Expected 5-[3]->0, got %v", out)
	}
}

// TestLoadBinaryEdgesEmpty tests that an empty stream is the normal
// termination, not an error
func TestLoadBinaryEdgesEmpty(t *testing.T) {
	b := NewBuilder()
	if err := LoadBinaryEdges(bytes.NewReader(nil), b); err != nil {
		t.Fatalf("Empty stream must terminate cleanly: %v", err)
	}
	if b.NumEdges() != 0 {
		t.Errorf("Expected 0 edges, got %d", b.NumEdges())
	}
}

// TestLoadBinaryEdgesTruncated tests that EOF inside a triple is an error
func TestLoadBinaryEdgesTruncated(t *testing.T) {
	b := NewBuilder()
	if err := LoadBinaryEdges(bytes.NewReader([]byte{0, 0, 0, 1, 0}), b); err == nil {
		t.Error("Expected error for mid-triple end of stream")
	}
}
