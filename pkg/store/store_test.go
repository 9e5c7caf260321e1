package store

import (
	"path/filepath"
	"testing"

	"github.com/kgraphdb/kgraph/pkg/config"
	"github.com/kgraphdb/kgraph/pkg/graph"
)

// TestOpenDirSpec verifies that a directory spec opens a disk-backed graph
// rooted under the configured base directory.
func TestOpenDirSpec(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.BaseDir = "/data/graphs"

	g, err := Open(Spec{Dir: "freebase"}, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	dg, ok := g.(*graph.DiskGraph)
	if !ok {
		t.Fatalf("Open returned %T, want *graph.DiskGraph", g)
	}
	want := filepath.Join("/data/graphs", "freebase")
	if dg.Dir() != want {
		t.Errorf("Dir() = %q, want %q", dg.Dir(), want)
	}
}

// TestOpenAbsoluteDir verifies that an absolute directory bypasses the base
// directory.
func TestOpenAbsoluteDir(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.BaseDir = "/data/graphs"

	g, err := Open(Spec{Dir: "/tmp/some-graph"}, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	dg := g.(*graph.DiskGraph)
	if dg.Dir() != "/tmp/some-graph" {
		t.Errorf("Dir() = %q, want %q", dg.Dir(), "/tmp/some-graph")
	}
}

// TestOpenBuildSpec verifies that a build spec resolves its output directory
// the same way a plain directory spec does.
func TestOpenBuildSpec(t *testing.T) {
	cfg := config.Default()

	g, err := Open(Spec{Name: "wiki", Build: true}, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	dg := g.(*graph.DiskGraph)
	want := filepath.Join(cfg.Graph.BaseDir, "wiki")
	if dg.Dir() != want {
		t.Errorf("Dir() = %q, want %q", dg.Dir(), want)
	}
}

// TestOpenEmptySpec verifies that a spec naming nothing fails.
func TestOpenEmptySpec(t *testing.T) {
	if _, err := Open(Spec{}, config.Default()); err == nil {
		t.Error("Open of empty spec succeeded, want error")
	}
}

// TestOpenBuildWithoutName verifies that a build spec without a graph name
// fails.
func TestOpenBuildWithoutName(t *testing.T) {
	if _, err := Open(Spec{Build: true}, config.Default()); err == nil {
		t.Error("Open of nameless build spec succeeded, want error")
	}
}

// TestSpecRemote verifies remote detection.
func TestSpecRemote(t *testing.T) {
	if (Spec{Dir: "x"}).Remote() {
		t.Error("directory spec reported remote")
	}
	if !(Spec{Host: "localhost", Port: 50052}).Remote() {
		t.Error("host spec not reported remote")
	}
}
