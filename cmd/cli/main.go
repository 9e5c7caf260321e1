package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	grpcapi "github.com/kgraphdb/kgraph/pkg/api/grpc"
	"github.com/kgraphdb/kgraph/pkg/export"
	"github.com/kgraphdb/kgraph/pkg/graph"
)

const (
	version = "1.0.0"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		handleBuild(os.Args[2:])
	case "convert":
		handleConvert(os.Args[2:])
	case "export":
		handleExport(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "node":
		handleNode(os.Args[2:])
	case "version":
		fmt.Printf("kgraph-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func handleBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var (
		input  = fs.String("input", "", "tab-separated edge file, - for stdin (required)")
		output = fs.String("output", "", "graph directory to write (required)")
		size   = fs.Int("size", 0, "node count hint; fixes the vertex array size")
		shards = fs.Int("shards", 1, "shard count recorded with the graph")
	)
	fs.Parse(args)

	if *input == "" || *output == "" {
		fmt.Println("Error: -input and -output are required")
		fs.Usage()
		os.Exit(1)
	}

	var r *os.File
	if *input == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(*input)
		if err != nil {
			fatalf("Error opening input: %v", err)
		}
		defer f.Close()
		r = f
	}

	var b *graph.Builder
	if *size > 0 {
		b = graph.NewBuilderSized(*size)
	} else {
		b = graph.NewBuilder()
	}

	start := time.Now()
	if err := graph.LoadTextEdges(r, b); err != nil {
		fatalf("Error parsing edges: %v", err)
	}

	g := graph.FromBuilder(b)
	g.SetNumShards(*shards)
	if err := g.WriteToDir(*output); err != nil {
		fatalf("Error writing graph: %v", err)
	}

	nodes, _ := g.NumNodes()
	relations, _ := g.NumRelations()
	fmt.Printf("Built graph in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Nodes:     %d\n", nodes)
	fmt.Printf("  Relations: %d\n", relations)
	fmt.Printf("  Edges:     %d\n", b.NumEdges())
	fmt.Printf("  Output:    %s\n", *output)
}

func handleConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var (
		dir = fs.String("dir", "", "graph directory (required)")
		to  = fs.String("to", "binary", "target edge format: binary or text")
	)
	fs.Parse(args)

	if *dir == "" {
		fmt.Println("Error: -dir is required")
		fs.Usage()
		os.Exit(1)
	}

	path, err := convertEdges(*dir, *to)
	if err != nil {
		fatalf("Error: %v", err)
	}

	fmt.Printf("Wrote %s edges to %s\n", *to, path)
}

// convertEdges rewrites a graph directory's edge data in the requested
// format and returns the file written.
func convertEdges(dir, to string) (string, error) {
	g := graph.NewDiskGraph(dir)

	// Force the lazy load before the output file exists. Creating
	// edges.dat first would shadow the text edges the loader is about to
	// read, and creating edges.tsv first would truncate its own source.
	if _, err := g.Vertices(); err != nil {
		return "", fmt.Errorf("failed to load graph: %w", err)
	}

	var path string
	var write func(w io.Writer) error
	switch to {
	case "binary":
		path = graph.BinaryEdgePath(dir)
		write = func(w io.Writer) error { return export.WriteBinary(w, g) }
	case "text":
		path = graph.TextEdgePath(dir)
		write = func(w io.Writer) error { return export.WriteTSV(w, g) }
	default:
		return "", fmt.Errorf("unknown format %q, expected binary or text", to)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write edges: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

func handleExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		dir    = fs.String("dir", "", "graph directory (required)")
		output = fs.String("output", "-", "output file, - for stdout")
	)
	fs.Parse(args)

	if *dir == "" {
		fmt.Println("Error: -dir is required")
		fs.Usage()
		os.Exit(1)
	}

	g := graph.NewDiskGraph(*dir)

	out := os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			fatalf("Error creating output: %v", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if err := export.WriteTSV(w, g); err != nil {
		fatalf("Error exporting: %v", err)
	}
	if err := w.Flush(); err != nil {
		fatalf("Error flushing output: %v", err)
	}
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	g, fin := openGraph(fs, args)
	defer fin()

	nodes, err := g.NumNodes()
	if err != nil {
		fatalf("Error reading stats: %v", err)
	}
	relations, err := g.NumRelations()
	if err != nil {
		fatalf("Error reading stats: %v", err)
	}

	fmt.Printf("Nodes:     %d\n", nodes)
	fmt.Printf("Relations: %d\n", relations)
	if s, ok := g.(interface{ NumShards() (int, error) }); ok {
		if shards, err := s.NumShards(); err == nil {
			fmt.Printf("Shards:    %d\n", shards)
		}
	}
}

func handleNode(args []string) {
	fs := flag.NewFlagSet("node", flag.ExitOnError)
	var (
		id   = fs.Int("id", -1, "node id to look up")
		name = fs.String("name", "", "node label to look up")
	)
	g, fin := openGraph(fs, args)
	defer fin()

	var v *graph.Vertex
	var err error
	var nodeID int32

	switch {
	case *name != "":
		ok, herr := g.HasNode(*name)
		if herr != nil {
			fatalf("Error: %v", herr)
		}
		if !ok {
			fatalf("Node %q not found", *name)
		}
		nodeID, err = g.NodeIndex(*name)
		if err == nil {
			v, err = g.Node(nodeID)
		}
	case *id >= 0:
		nodeID = int32(*id)
		v, err = g.Node(nodeID)
	default:
		fmt.Println("Error: -id or -name is required")
		fs.Usage()
		os.Exit(1)
	}
	if err != nil {
		fatalf("Error: %v", err)
	}

	label, _ := g.NodeName(nodeID)
	fmt.Printf("Node %d", nodeID)
	if label != "" {
		fmt.Printf(" (%s)", label)
	}
	fmt.Println()

	if v.IsEmpty() {
		fmt.Println("  no edges")
		return
	}

	for _, rel := range v.Relations() {
		relName, _ := g.RelationName(rel)
		if relName == "" {
			relName = strconv.Itoa(int(rel))
		}
		fmt.Printf("  %s\n", relName)
		if out := v.Outgoing(rel); len(out) > 0 {
			fmt.Printf("    out: %s\n", formatNeighbors(g, out))
		}
		if in := v.Incoming(rel); len(in) > 0 {
			fmt.Printf("    in:  %s\n", formatNeighbors(g, in))
		}
	}
}

// openGraph registers the shared -server/-graph/-dir/-timeout flags on fs,
// parses args, and opens the addressed graph. The returned func releases the
// connection for remote graphs.
func openGraph(fs *flag.FlagSet, args []string) (graph.Graph, func()) {
	var (
		server    = fs.String("server", "", "gRPC server address")
		graphName = fs.String("graph", "", "registered graph name on the server")
		dir       = fs.String("dir", "", "local graph directory")
		timeout   = fs.Duration("timeout", 30*time.Second, "request timeout")
	)
	fs.Parse(args)

	switch {
	case *server != "":
		opts := []grpcapi.RemoteOption{grpcapi.WithTimeout(*timeout)}
		if *graphName != "" {
			opts = append(opts, grpcapi.WithGraphName(*graphName))
		}
		remote, err := grpcapi.DialGraph(*server, opts...)
		if err != nil {
			fatalf("Error connecting to %s: %v", *server, err)
		}
		return remote, func() { remote.Close() }
	case *dir != "":
		return graph.NewDiskGraph(*dir), func() {}
	default:
		fmt.Println("Error: -server or -dir is required")
		fs.Usage()
		os.Exit(1)
		return nil, nil
	}
}

// formatNeighbors renders up to ten neighbor labels, falling back to ids.
func formatNeighbors(g graph.Graph, ids []int32) string {
	const maxShown = 10
	out := ""
	for i, id := range ids {
		if i == maxShown {
			out += fmt.Sprintf(" ... (%d total)", len(ids))
			break
		}
		label, err := g.NodeName(id)
		if err != nil || label == "" {
			label = strconv.Itoa(int(id))
		}
		if i > 0 {
			out += " "
		}
		out += label
	}
	return out
}

func fatalf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}

func showUsage() {
	fmt.Println("kgraph-cli - dictionary-compressed graph tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kgraph-cli <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  build     Build a graph directory from a tab-separated edge file")
	fmt.Println("  convert   Convert a graph's edge file between text and binary")
	fmt.Println("  export    Write a graph's triples as tab-separated labels")
	fmt.Println("  stats     Show dictionary and shard counts")
	fmt.Println("  node      Look up one node and print its edges")
	fmt.Println("  version   Show version information")
	fmt.Println("  help      Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Build a graph from an edge list")
	fmt.Println("  kgraph-cli build -input edges.tsv -output ./graphs/freebase")
	fmt.Println()
	fmt.Println("  # Switch the edge file to the binary format")
	fmt.Println("  kgraph-cli convert -dir ./graphs/freebase -to binary")
	fmt.Println()
	fmt.Println("  # Inspect a node on a running server")
	fmt.Println("  kgraph-cli node -server localhost:50052 -name Alice")
	fmt.Println()
	fmt.Println("  # Local stats without a server")
	fmt.Println("  kgraph-cli stats -dir ./graphs/freebase")
	fmt.Println()
}
