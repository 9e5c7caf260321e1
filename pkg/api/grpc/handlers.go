package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetNode returns one vertex with all its relation buckets, addressed by id
// or by label. An out-of-range id or unknown label yields a response with no
// buckets, mirroring the local sentinel policy.
func (s *Server) GetNode(ctx context.Context, req *NodeRequest) (*NodeResponse, error) {
	g, err := s.graphFor(req.Graph)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	id := req.ID
	if req.ByName {
		id, err = g.NodeIndex(req.Name)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	vertex, err := g.Node(id)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	name, err := g.NodeName(id)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := &NodeResponse{ID: id, Name: name}
	for _, relation := range vertex.Relations() {
		relationName, err := g.RelationName(relation)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		resp.Edges = append(resp.Edges, &RelationEdges{
			Relation:     relation,
			RelationName: relationName,
			Incoming:     append([]int32(nil), vertex.Incoming(relation)...),
			Outgoing:     append([]int32(nil), vertex.Outgoing(relation)...),
		})
	}

	s.metrics.NodeLookupsTotal.Inc()
	return resp, nil
}

// ResolveNode maps between node labels and ids. By-name requests report
// whether the label was known before resolving, because resolution itself
// allocates unseen labels.
func (s *Server) ResolveNode(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	g, err := s.graphFor(req.Graph)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	resp, err := resolve(g.HasNode, g.NodeIndex, g.NodeName, req)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.metrics.NameResolutions.Inc()
	return resp, nil
}

// ResolveRelation maps between relation labels and ids.
func (s *Server) ResolveRelation(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	g, err := s.graphFor(req.Graph)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	resp, err := resolve(g.HasRelation, g.RelationIndex, g.RelationName, req)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.metrics.NameResolutions.Inc()
	return resp, nil
}

// resolve runs one dictionary lookup in either direction.
func resolve(has func(string) (bool, error), index func(string) (int32, error), name func(int32) (string, error), req *ResolveRequest) (*ResolveResponse, error) {
	if req.ByName {
		known, err := has(req.Name)
		if err != nil {
			return nil, err
		}
		id, err := index(req.Name)
		if err != nil {
			return nil, err
		}
		return &ResolveResponse{ID: id, Name: req.Name, Known: known}, nil
	}

	label, err := name(req.ID)
	if err != nil {
		return nil, err
	}
	return &ResolveResponse{ID: req.ID, Name: label, Known: label != ""}, nil
}

// GetStats returns dictionary sizes and shard metadata for one graph.
func (s *Server) GetStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	g, err := s.graphFor(req.Graph)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	numNodes, err := g.NumNodes()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	numRelations, err := g.NumRelations()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	resp := &StatsResponse{
		NumNodes:     int64(numNodes),
		NumRelations: int64(numRelations),
	}
	if sharded, ok := g.(interface{ NumShards() (int, error) }); ok {
		shards, err := sharded.NumShards()
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		resp.NumShards = int64(shards)
	}

	s.mu.RLock()
	resp.NumGraphs = int64(len(s.graphs))
	s.mu.RUnlock()

	graphName := req.Graph
	if graphName == "" {
		graphName = DefaultGraphName
	}
	s.metrics.UpdateGraphSize(graphName, numNodes, numRelations)
	return resp, nil
}
