package integration

import (
	"testing"
	"time"

	grpcapi "github.com/kgraphdb/kgraph/pkg/api/grpc"
	"github.com/kgraphdb/kgraph/pkg/config"
	"github.com/kgraphdb/kgraph/pkg/graph"
)

// buildTestGraph returns a small social graph with known structure.
func buildTestGraph() *graph.InMemoryGraph {
	b := graph.NewBuilder()
	b.AddEdgeLabels("alice", "bob", "friend")
	b.AddEdgeLabels("alice", "carol", "friend")
	b.AddEdgeLabels("bob", "carol", "colleague")
	b.AddEdgeLabels("carol", "dave", "friend")
	g := graph.FromBuilder(b)
	g.SetNumShards(4)
	return g
}

// setupTestServer starts a server on an ephemeral port with the test graph
// registered as the default, and dials a remote backing against it.
func setupTestServer(t *testing.T) (*graph.InMemoryGraph, *grpcapi.RemoteGraph, func()) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	server, err := grpcapi.NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	local := buildTestGraph()
	server.RegisterGraph(grpcapi.DefaultGraphName, local)

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	remote, err := grpcapi.DialGraph(server.Addr(), grpcapi.WithTimeout(5*time.Second))
	if err != nil {
		server.Stop()
		t.Fatalf("Failed to connect to server: %v", err)
	}

	cleanup := func() {
		remote.Close()
		server.Stop()
	}

	return local, remote, cleanup
}

// TestRemoteMatchesLocal verifies that every read operation answers the same
// over the network as against the in-memory graph it is backed by.
func TestRemoteMatchesLocal(t *testing.T) {
	local, remote, cleanup := setupTestServer(t)
	defer cleanup()

	localNodes, _ := local.NumNodes()
	remoteNodes, err := remote.NumNodes()
	if err != nil {
		t.Fatalf("NumNodes failed: %v", err)
	}
	if remoteNodes != localNodes {
		t.Errorf("NumNodes = %d, want %d", remoteNodes, localNodes)
	}

	localRelations, _ := local.NumRelations()
	remoteRelations, err := remote.NumRelations()
	if err != nil {
		t.Fatalf("NumRelations failed: %v", err)
	}
	if remoteRelations != localRelations {
		t.Errorf("NumRelations = %d, want %d", remoteRelations, localRelations)
	}

	shards, err := remote.NumShards()
	if err != nil {
		t.Fatalf("NumShards failed: %v", err)
	}
	if shards != 4 {
		t.Errorf("NumShards = %d, want 4", shards)
	}
}

// TestRemoteNodeLookup verifies that a vertex fetched over the network has
// the same edges as the local vertex.
func TestRemoteNodeLookup(t *testing.T) {
	local, remote, cleanup := setupTestServer(t)
	defer cleanup()

	aliceID, _ := local.NodeIndex("alice")
	want, _ := local.Node(aliceID)

	got, err := remote.NodeByName("alice")
	if err != nil {
		t.Fatalf("NodeByName failed: %v", err)
	}

	if len(got.Relations()) != len(want.Relations()) {
		t.Fatalf("remote vertex has %d relations, want %d", len(got.Relations()), len(want.Relations()))
	}
	for _, rel := range want.Relations() {
		wantOut := want.Outgoing(rel)
		gotOut := got.Outgoing(rel)
		if len(gotOut) != len(wantOut) {
			t.Errorf("relation %d: outgoing = %v, want %v", rel, gotOut, wantOut)
			continue
		}
		for i := range wantOut {
			if gotOut[i] != wantOut[i] {
				t.Errorf("relation %d: outgoing[%d] = %d, want %d", rel, i, gotOut[i], wantOut[i])
			}
		}
	}
}

// TestRemoteNameResolution verifies dictionary lookups in both directions.
func TestRemoteNameResolution(t *testing.T) {
	local, remote, cleanup := setupTestServer(t)
	defer cleanup()

	id, err := remote.NodeIndex("bob")
	if err != nil {
		t.Fatalf("NodeIndex failed: %v", err)
	}
	wantID, _ := local.NodeIndex("bob")
	if id != wantID {
		t.Errorf("NodeIndex(bob) = %d, want %d", id, wantID)
	}

	name, err := remote.NodeName(id)
	if err != nil {
		t.Fatalf("NodeName failed: %v", err)
	}
	if name != "bob" {
		t.Errorf("NodeName(%d) = %q, want %q", id, name, "bob")
	}

	ok, err := remote.HasNode("alice")
	if err != nil {
		t.Fatalf("HasNode failed: %v", err)
	}
	if !ok {
		t.Error("HasNode(alice) = false, want true")
	}

	ok, err = remote.HasNode("nobody")
	if err != nil {
		t.Fatalf("HasNode failed: %v", err)
	}
	if ok {
		t.Error("HasNode(nobody) = true, want false")
	}

	ok, err = remote.HasRelation("friend")
	if err != nil {
		t.Fatalf("HasRelation failed: %v", err)
	}
	if !ok {
		t.Error("HasRelation(friend) = false, want true")
	}
}

// TestRemoteUnknownNode verifies that an out-of-range id resolves to the
// empty vertex rather than an error, matching local semantics.
func TestRemoteUnknownNode(t *testing.T) {
	_, remote, cleanup := setupTestServer(t)
	defer cleanup()

	v, err := remote.Node(9999)
	if err != nil {
		t.Fatalf("Node(9999) failed: %v", err)
	}
	if !v.IsEmpty() {
		t.Error("Node(9999) is not empty")
	}
}

// TestRemoteUnregisteredGraph verifies that addressing an unknown graph name
// fails cleanly.
func TestRemoteUnregisteredGraph(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	server, err := grpcapi.NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	server.RegisterGraph(grpcapi.DefaultGraphName, buildTestGraph())
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	remote, err := grpcapi.DialGraph(server.Addr(),
		grpcapi.WithGraphName("missing"),
		grpcapi.WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	defer remote.Close()

	if _, err := remote.NumNodes(); err == nil {
		t.Error("NumNodes against unregistered graph succeeded, want error")
	}
}
