// Package rest is a JSON gateway over the graph gRPC service. It dials the
// backend, translates HTTP requests into the wire-level RPCs, and applies the
// usual gateway middleware: request logging, JWT authentication, and
// per-client rate limiting.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcapi "github.com/kgraphdb/kgraph/pkg/api/grpc"
	"github.com/kgraphdb/kgraph/pkg/api/rest/middleware"
	"github.com/kgraphdb/kgraph/pkg/observability"
)

// Config holds the REST server configuration
type Config struct {
	Host        string
	Port        int
	GRPCAddress string
	CORSEnabled bool
	CORSOrigins []string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
}

// Server represents the REST API server
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	grpcConn   *grpc.ClientConn
	mux        *http.ServeMux
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// NewServer creates a new REST API server
func NewServer(config Config) (*Server, error) {
	conn, err := grpc.NewClient(
		config.GRPCAddress,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gRPC server: %w", err)
	}

	server := &Server{
		config:   config,
		handler:  NewHandler(grpcapi.NewGraphServiceClient(conn)),
		grpcConn: conn,
		mux:      http.NewServeMux(),
		logger:   observability.GetGlobalLogger().WithField("component", "rest"),
		metrics:  observability.Default(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v1/health", s.handler.HealthCheck)
	s.mux.HandleFunc("/v1/stats", s.handler.GetStats)
	s.mux.HandleFunc("/v1/stats/", s.handler.GetStats)

	s.mux.HandleFunc("/v1/nodes", s.handler.GetNode)
	s.mux.HandleFunc("/v1/nodes/", s.handler.GetNode)
	s.mux.HandleFunc("/v1/resolve/nodes", s.handler.ResolveNode)
	s.mux.HandleFunc("/v1/resolve/relations", s.handler.ResolveRelation)

	s.mux.Handle("/metrics", promhttp.Handler())
}

// withMiddleware wraps the handler with all middleware. Applied in reverse
// order, so requests pass logging, then rate limiting, then authentication.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)

	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	handler = s.loggingMiddleware(handler)

	return handler
}

// corsMiddleware adds CORS headers
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	s.logger.Info("Gateway listening", map[string]interface{}{
		"address": s.httpServer.Addr,
		"backend": s.config.GRPCAddress,
	})

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down gateway")

	if s.grpcConn != nil {
		if err := s.grpcConn.Close(); err != nil {
			s.logger.Warn("Error closing gRPC connection", map[string]interface{}{"error": err.Error()})
		}
	}

	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs every request and feeds the request metrics.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		s.metrics.RecordRequest(r.Method+" "+r.URL.Path, strconv.Itoa(wrapped.statusCode), duration)
		s.logger.Debug("Request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": duration.String(),
		})
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
