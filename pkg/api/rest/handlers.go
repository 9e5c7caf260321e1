package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcapi "github.com/kgraphdb/kgraph/pkg/api/grpc"
	"github.com/kgraphdb/kgraph/pkg/api/rest/middleware"
)

// Handler wraps the gRPC client and provides HTTP handlers
type Handler struct {
	client grpcapi.GraphServiceClient
}

// NewHandler creates a new REST API handler
func NewHandler(client grpcapi.GraphServiceClient) *Handler {
	return &Handler{
		client: client,
	}
}

// relationJSON is one relation bucket of a vertex in the JSON surface.
type relationJSON struct {
	Relation     int32   `json:"relation"`
	RelationName string  `json:"relation_name,omitempty"`
	Incoming     []int32 `json:"incoming,omitempty"`
	Outgoing     []int32 `json:"outgoing,omitempty"`
}

// nodeJSON is one vertex in the JSON surface.
type nodeJSON struct {
	ID    int32          `json:"id"`
	Name  string         `json:"name,omitempty"`
	Edges []relationJSON `json:"edges"`
}

// resolveJSON is a dictionary mapping result.
type resolveJSON struct {
	ID    int32  `json:"id"`
	Name  string `json:"name,omitempty"`
	Known bool   `json:"known"`
}

// statsJSON mirrors the stats RPC.
type statsJSON struct {
	NumNodes     int64 `json:"num_nodes"`
	NumRelations int64 `json:"num_relations"`
	NumShards    int64 `json:"num_shards"`
	NumGraphs    int64 `json:"num_graphs"`
}

// HealthCheck handles GET /v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The gateway is healthy when the backend answers a stats call.
	if _, err := h.client.GetStats(r.Context(), &grpcapi.StatsRequest{}); err != nil {
		writeJSON(w, map[string]string{"status": "degraded", "backend": err.Error()}, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// GetStats handles GET /v1/stats and GET /v1/stats/{graph}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/stats")
	graph := strings.Trim(path, "/")
	if !authorizedFor(r, graph) {
		writeError(w, "Graph access denied", http.StatusForbidden)
		return
	}

	resp, err := h.client.GetStats(r.Context(), &grpcapi.StatsRequest{Graph: graph})
	if err != nil {
		writeRPCError(w, err)
		return
	}

	writeJSON(w, statsJSON{
		NumNodes:     resp.NumNodes,
		NumRelations: resp.NumRelations,
		NumShards:    resp.NumShards,
		NumGraphs:    resp.NumGraphs,
	}, http.StatusOK)
}

// GetNode handles GET /v1/nodes/{id} and GET /v1/nodes?name={label}. The
// graph query parameter selects a registered graph other than the default.
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	graph := r.URL.Query().Get("graph")
	if !authorizedFor(r, graph) {
		writeError(w, "Graph access denied", http.StatusForbidden)
		return
	}

	req := &grpcapi.NodeRequest{Graph: graph}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/nodes"), "/")
	if path != "" {
		id, err := strconv.ParseInt(path, 10, 32)
		if err != nil {
			writeError(w, fmt.Sprintf("Invalid node id %q", path), http.StatusBadRequest)
			return
		}
		req.ID = int32(id)
	} else if name := r.URL.Query().Get("name"); name != "" {
		req.Name = name
		req.ByName = true
	} else {
		writeError(w, "Node id path segment or name parameter required", http.StatusBadRequest)
		return
	}

	resp, err := h.client.GetNode(r.Context(), req)
	if err != nil {
		writeRPCError(w, err)
		return
	}

	node := nodeJSON{ID: resp.ID, Name: resp.Name, Edges: make([]relationJSON, 0, len(resp.Edges))}
	for _, e := range resp.Edges {
		node.Edges = append(node.Edges, relationJSON{
			Relation:     e.Relation,
			RelationName: e.RelationName,
			Incoming:     e.Incoming,
			Outgoing:     e.Outgoing,
		})
	}

	writeJSON(w, node, http.StatusOK)
}

// ResolveNode handles GET /v1/resolve/nodes?name={label} and
// GET /v1/resolve/nodes?id={id}
func (h *Handler) ResolveNode(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, func(ctx context.Context, req *grpcapi.ResolveRequest) (*grpcapi.ResolveResponse, error) {
		return h.client.ResolveNode(ctx, req)
	})
}

// ResolveRelation handles GET /v1/resolve/relations?name={label} and
// GET /v1/resolve/relations?id={id}
func (h *Handler) ResolveRelation(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, func(ctx context.Context, req *grpcapi.ResolveRequest) (*grpcapi.ResolveResponse, error) {
		return h.client.ResolveRelation(ctx, req)
	})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request,
	call func(ctx context.Context, req *grpcapi.ResolveRequest) (*grpcapi.ResolveResponse, error)) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	graph := r.URL.Query().Get("graph")
	if !authorizedFor(r, graph) {
		writeError(w, "Graph access denied", http.StatusForbidden)
		return
	}

	req := &grpcapi.ResolveRequest{Graph: graph}
	if name := r.URL.Query().Get("name"); name != "" {
		req.Name = name
		req.ByName = true
	} else if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 32)
		if err != nil {
			writeError(w, fmt.Sprintf("Invalid id %q", idStr), http.StatusBadRequest)
			return
		}
		req.ID = int32(id)
	} else {
		writeError(w, "Parameter name or id required", http.StatusBadRequest)
		return
	}

	resp, err := call(r.Context(), req)
	if err != nil {
		writeRPCError(w, err)
		return
	}

	writeJSON(w, resolveJSON{ID: resp.ID, Name: resp.Name, Known: resp.Known}, http.StatusOK)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// writeRPCError maps a gRPC status code onto an HTTP status.
func writeRPCError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch status.Code(err) {
	case codes.NotFound:
		code = http.StatusNotFound
	case codes.InvalidArgument:
		code = http.StatusBadRequest
	case codes.DeadlineExceeded:
		code = http.StatusGatewayTimeout
	case codes.Unavailable:
		code = http.StatusServiceUnavailable
	}
	writeError(w, status.Convert(err).Message(), code)
}

// authorizedFor checks the graph grant on the request's JWT claims, if any.
func authorizedFor(r *http.Request, graph string) bool {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		return true
	}
	if graph == "" {
		graph = grpcapi.DefaultGraphName
	}
	return claims.CanReadGraph(graph)
}
