package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/kgraphdb/kgraph/pkg/config"
	"github.com/kgraphdb/kgraph/pkg/graph"
	"github.com/kgraphdb/kgraph/pkg/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
)

// DefaultGraphName is the namespace used when a request names no graph.
const DefaultGraphName = "default"

// Server serves registered graphs over the graph service. Any number of
// graphs can be registered under distinct names; requests address them by
// name and fall back to the default namespace.
type Server struct {
	config     *config.Config
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *observability.Logger
	metrics    *observability.Metrics
	startTime  time.Time

	shutdownMu sync.Mutex
	isShutdown bool

	mu     sync.RWMutex
	graphs map[string]graph.Graph
}

// NewServer creates a server from validated configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Server{
		config:    cfg,
		logger:    observability.GetGlobalLogger().WithField("component", "grpc"),
		metrics:   observability.Default(),
		graphs:    make(map[string]graph.Graph),
		startTime: time.Now(),
	}, nil
}

// RegisterGraph makes g addressable under name. Registering the same name
// again replaces the previous graph.
func (s *Server) RegisterGraph(name string, g graph.Graph) {
	s.mu.Lock()
	s.graphs[name] = g
	count := len(s.graphs)
	s.mu.Unlock()

	s.metrics.GraphsRegistered.Set(float64(count))
	s.logger.Info("Registered graph", map[string]interface{}{"graph": name})
}

// graphFor resolves a request's graph name against the registry.
func (s *Server) graphFor(name string) (graph.Graph, error) {
	if name == "" {
		name = DefaultGraphName
	}
	s.mu.RLock()
	g, ok := s.graphs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("graph %q is not registered", name)
	}
	return g, nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Server.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Address(), err)
	}
	s.listener = listener

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 5 * time.Minute,
			Time:              2 * time.Minute,
			Timeout:           20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(s.timeoutInterceptor, s.metricsInterceptor),
	}
	if s.config.Server.EnableTLS {
		creds, err := credentials.NewServerTLSFromFile(s.config.Server.CertFile, s.config.Server.KeyFile)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	s.grpcServer = grpc.NewServer(opts...)
	RegisterGraphServiceServer(s.grpcServer, s)

	s.logger.Info("Server listening", map[string]interface{}{"address": listener.Addr().String()})
	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Error("Serve returned", map[string]interface{}{"error": err.Error()})
		}
	}()
	return nil
}

// Addr returns the bound listen address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop drains in-flight requests, falling back to a hard stop after the
// configured shutdown timeout.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.isShutdown || s.grpcServer == nil {
		return nil
	}
	s.isShutdown = true

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.config.Server.ShutdownTimeout):
		s.logger.Warn("Graceful stop timed out, forcing shutdown")
		s.grpcServer.Stop()
	}

	s.logger.Info("Server stopped", map[string]interface{}{
		"uptime": time.Since(s.startTime).Round(time.Second),
	})
	return nil
}

// timeoutInterceptor bounds every request by the configured timeout.
func (s *Server) timeoutInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.RequestTimeout)
	defer cancel()
	return handler(ctx, req)
}

// metricsInterceptor records per-method request counts and latency.
func (s *Server) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordRequest(info.FullMethod, status, time.Since(start))
	return resp, err
}
