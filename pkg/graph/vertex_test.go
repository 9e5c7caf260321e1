package graph

import (
	"sync"
	"testing"
)

// TestOutOfBoundsNodeIsSentinel tests the out-of-range lookup policy
func TestOutOfBoundsNodeIsSentinel(t *testing.T) {
	b := NewBuilder()
	b.AddEdge(0, 1, 0)
	g := FromBuilder(b)

	v, err := g.Node(99)
	if err != nil {
		t.Fatalf("Out-of-range lookup must not fail: %v", err)
	}
	if !v.IsEmpty() {
		t.Error("Expected empty sentinel for out-of-range id")
	}
	if v.NumRelations() != 0 {
		t.Errorf("Sentinel must have zero relation buckets, got %d", v.NumRelations())
	}

	v, err = g.Node(-1)
	if err != nil || !v.IsEmpty() {
		t.Error("Expected empty sentinel for negative id")
	}
}

// TestUnknownNameResolvesToSentinel tests that unseen labels allocate an
// index beyond the array, which resolves to the sentinel
func TestUnknownNameResolvesToSentinel(t *testing.T) {
	b := NewBuilder()
	b.AddEdgeLabels("A", "B", "r")
	g := FromBuilder(b)

	v, err := g.NodeByName("never-seen")
	if err != nil {
		t.Fatalf("Unknown-name lookup must not fail: %v", err)
	}
	if !v.IsEmpty() {
		t.Error("Expected empty sentinel for unknown name")
	}
}

// TestConnectedNodes tests the direction- and relation-blind neighbor set
func TestConnectedNodes(t *testing.T) {
	b := NewBuilder()
	b.AddEdge(0, 1, 0)
	b.AddEdge(0, 2, 1)
	b.AddEdge(3, 0, 0)
	b.AddEdge(0, 1, 2) // duplicate neighbor across relations
	vertices := b.Build()

	neighbors := vertices[0].ConnectedNodes()
	if len(neighbors) != 3 {
		t.Fatalf("Expected 3 distinct neighbors, got %d", len(neighbors))
	}
	for _, id := range []int32{1, 2, 3} {
		if _, ok := neighbors[id]; !ok {
			t.Errorf("Expected neighbor %d in set", id)
		}
	}
}

// TestConnectedNodesMemoized tests that the set is computed once and shared
func TestConnectedNodesMemoized(t *testing.T) {
	b := NewBuilder()
	b.AddEdge(0, 1, 0)
	vertices := b.Build()
	v := vertices[0]

	var wg sync.WaitGroup
	results := make([]map[int32]struct{}, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.ConnectedNodes()
		}(i)
	}
	wg.Wait()

	// All callers must observe the same cached map
	first := v.ConnectedNodes()
	for i := 0; i < 8; i++ {
		if len(results[i]) != len(first) {
			t.Errorf("Caller %d saw a different neighbor set", i)
		}
	}
}

// TestRelationsSorted tests that Relations returns ascending relation ids
func TestRelationsSorted(t *testing.T) {
	b := NewBuilder()
	b.AddEdge(0, 1, 5)
	b.AddEdge(0, 1, 1)
	b.AddEdge(0, 1, 3)
	vertices := b.Build()

	rels := vertices[0].Relations()
	if len(rels) != 3 || rels[0] != 1 || rels[1] != 3 || rels[2] != 5 {
		t.Errorf("Expected [1 3 5], got %v", rels)
	}
}

// TestRelationsMemoized tests that the sorted relation slice is computed
// once and shared across calls
func TestRelationsMemoized(t *testing.T) {
	b := NewBuilder()
	b.AddEdge(0, 1, 5)
	b.AddEdge(0, 1, 1)
	vertices := b.Build()
	v := vertices[0]

	first := v.Relations()
	second := v.Relations()
	if len(first) == 0 || &first[0] != &second[0] {
		t.Error("Expected both calls to share one backing array")
	}
}
