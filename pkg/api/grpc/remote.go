package grpc

import (
	"context"
	"strconv"
	"time"

	"github.com/kgraphdb/kgraph/pkg/graph"
	"github.com/kgraphdb/kgraph/pkg/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// RemoteGraph exposes a graph served by a remote endpoint through the same
// read contract as the local backings. It holds no local file state; every
// lookup is an RPC, optionally short-circuited by an LRU response cache.
type RemoteGraph struct {
	conn      *grpc.ClientConn
	client    GraphServiceClient
	graphName string
	timeout   time.Duration
	cache     *vertexCache
	metrics   *observability.Metrics
}

var _ graph.Graph = (*RemoteGraph)(nil)

// RemoteOption configures a RemoteGraph.
type RemoteOption func(*RemoteGraph)

// WithGraphName addresses a specific registered graph instead of the
// server's default namespace.
func WithGraphName(name string) RemoteOption {
	return func(g *RemoteGraph) { g.graphName = name }
}

// WithTimeout bounds each RPC.
func WithTimeout(d time.Duration) RemoteOption {
	return func(g *RemoteGraph) { g.timeout = d }
}

// WithCache caches vertex responses; a zero ttl disables expiration.
func WithCache(capacity int, ttl time.Duration) RemoteOption {
	return func(g *RemoteGraph) { g.cache = newVertexCache(capacity, ttl) }
}

// DialGraph connects to a remote graph endpoint.
func DialGraph(addr string, opts ...RemoteOption) (*RemoteGraph, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	g := &RemoteGraph{
		conn:    conn,
		client:  NewGraphServiceClient(conn),
		timeout: 30 * time.Second,
		metrics: observability.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close releases the underlying connection.
func (g *RemoteGraph) Close() error {
	return g.conn.Close()
}

func (g *RemoteGraph) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.timeout)
}

// vertexFromResponse rebuilds the local vertex representation from a node
// response.
func vertexFromResponse(resp *NodeResponse) *graph.Vertex {
	if len(resp.Edges) == 0 {
		return graph.EmptyVertex()
	}
	edges := make(map[int32]*graph.EdgeList, len(resp.Edges))
	for _, bucket := range resp.Edges {
		edges[bucket.Relation] = &graph.EdgeList{In: bucket.Incoming, Out: bucket.Outgoing}
	}
	return graph.NewVertex(edges)
}

// getNode fetches one vertex through the cache.
func (g *RemoteGraph) getNode(req *NodeRequest, cacheKey string) (*graph.Vertex, error) {
	if g.cache != nil {
		if cached, ok := g.cache.Get(cacheKey); ok {
			g.metrics.CacheHits.Inc()
			return cached.(*graph.Vertex), nil
		}
		g.metrics.CacheMisses.Inc()
	}

	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.GetNode(ctx, req)
	if err != nil {
		return nil, err
	}
	vertex := vertexFromResponse(resp)

	if g.cache != nil {
		g.cache.Put(cacheKey, vertex)
	}
	return vertex, nil
}

// Node returns the vertex for id; out-of-range ids resolve to the empty
// sentinel on the server side.
func (g *RemoteGraph) Node(id int32) (*graph.Vertex, error) {
	return g.getNode(&NodeRequest{Graph: g.graphName, ID: id}, "id:"+strconv.Itoa(int(id)))
}

// NodeByName returns the vertex for a node label.
func (g *RemoteGraph) NodeByName(name string) (*graph.Vertex, error) {
	return g.getNode(&NodeRequest{Graph: g.graphName, Name: name, ByName: true}, "name:"+name)
}

// NodeName returns the label assigned to a node id.
func (g *RemoteGraph) NodeName(id int32) (string, error) {
	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.ResolveNode(ctx, &ResolveRequest{Graph: g.graphName, ID: id})
	if err != nil {
		return "", err
	}
	return resp.Name, nil
}

// NodeIndex returns the id for a node label.
func (g *RemoteGraph) NodeIndex(name string) (int32, error) {
	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.ResolveNode(ctx, &ResolveRequest{Graph: g.graphName, Name: name, ByName: true})
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// HasNode reports whether a node label is known.
func (g *RemoteGraph) HasNode(name string) (bool, error) {
	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.ResolveNode(ctx, &ResolveRequest{Graph: g.graphName, Name: name, ByName: true})
	if err != nil {
		return false, err
	}
	return resp.Known, nil
}

// NumNodes returns the remote node dictionary size.
func (g *RemoteGraph) NumNodes() (int, error) {
	stats, err := g.stats()
	if err != nil {
		return 0, err
	}
	return int(stats.NumNodes), nil
}

// RelationName returns the label assigned to a relation id.
func (g *RemoteGraph) RelationName(id int32) (string, error) {
	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.ResolveRelation(ctx, &ResolveRequest{Graph: g.graphName, ID: id})
	if err != nil {
		return "", err
	}
	return resp.Name, nil
}

// RelationIndex returns the id for a relation label.
func (g *RemoteGraph) RelationIndex(name string) (int32, error) {
	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.ResolveRelation(ctx, &ResolveRequest{Graph: g.graphName, Name: name, ByName: true})
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// HasRelation reports whether a relation label is known.
func (g *RemoteGraph) HasRelation(name string) (bool, error) {
	ctx, cancel := g.callCtx()
	defer cancel()

	resp, err := g.client.ResolveRelation(ctx, &ResolveRequest{Graph: g.graphName, Name: name, ByName: true})
	if err != nil {
		return false, err
	}
	return resp.Known, nil
}

// NumRelations returns the remote relation dictionary size.
func (g *RemoteGraph) NumRelations() (int, error) {
	stats, err := g.stats()
	if err != nil {
		return 0, err
	}
	return int(stats.NumRelations), nil
}

// NumShards returns the shard count recorded for the remote graph.
func (g *RemoteGraph) NumShards() (int, error) {
	stats, err := g.stats()
	if err != nil {
		return 0, err
	}
	return int(stats.NumShards), nil
}

func (g *RemoteGraph) stats() (*StatsResponse, error) {
	ctx, cancel := g.callCtx()
	defer cancel()
	return g.client.GetStats(ctx, &StatsRequest{Graph: g.graphName})
}
