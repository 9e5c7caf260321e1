// Package store resolves graph specifications into concrete Graph
// implementations: a local directory, a graph to be produced by an external
// build step, or a remote endpoint.
package store

import (
	"fmt"
	"path/filepath"

	grpcapi "github.com/kgraphdb/kgraph/pkg/api/grpc"
	"github.com/kgraphdb/kgraph/pkg/config"
	"github.com/kgraphdb/kgraph/pkg/graph"
)

// Spec names a graph to open. Exactly one of the three forms is used:
//   - Dir: directory name resolved under the base directory, or used as-is
//     when absolute;
//   - Name with Build set: a graph an external builder step materializes
//     under the base directory before it is opened;
//   - Host and Port: a remote endpoint serving the graph service.
type Spec struct {
	Dir   string
	Name  string
	Build bool
	Host  string
	Port  int
}

// Remote reports whether the spec addresses a network endpoint.
func (s Spec) Remote() bool {
	return s.Host != ""
}

// Open resolves a spec into a Graph. Local graphs are disk-backed and do no
// I/O until first access; remote graphs are dialed immediately but also load
// nothing. The external builder step for Build specs is assumed to have run
// already; Open only resolves where its output lives.
func Open(s Spec, cfg *config.Config) (graph.Graph, error) {
	switch {
	case s.Remote():
		addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
		opts := []grpcapi.RemoteOption{
			grpcapi.WithTimeout(cfg.Server.RequestTimeout),
		}
		if cfg.Cache.Enabled {
			opts = append(opts, grpcapi.WithCache(cfg.Cache.Capacity, cfg.Cache.TTL))
		}
		remote, err := grpcapi.DialGraph(addr, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to dial graph at %s: %w", addr, err)
		}
		return remote, nil

	case s.Build:
		if s.Name == "" {
			return nil, fmt.Errorf("build spec names no graph")
		}
		return graph.NewDiskGraph(resolveDir(s.Name, cfg.Graph.BaseDir)), nil

	case s.Dir != "":
		return graph.NewDiskGraph(resolveDir(s.Dir, cfg.Graph.BaseDir)), nil

	default:
		return nil, fmt.Errorf("empty graph spec")
	}
}

// resolveDir resolves a graph name under the base directory unless it is
// already absolute.
func resolveDir(name, baseDir string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(baseDir, name)
}
