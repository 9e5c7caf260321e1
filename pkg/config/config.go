// Package config holds server and graph-store configuration with defaults
// and environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server Server
	REST   REST
	Graph  GraphStore
	Cache  Cache
}

// Server holds gRPC server configuration
type Server struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 50052)
	RequestTimeout  time.Duration // Per-request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// Address returns the host:port the gRPC server listens on
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// REST holds the HTTP gateway configuration
type REST struct {
	Enabled        bool    // Serve the JSON gateway
	Host           string  // Gateway host
	Port           int     // Gateway port (default: 8091)
	AuthEnabled    bool    // Require JWT bearer tokens
	JWTSecret      string  // HMAC secret for token validation
	RateLimit      float64 // Requests per second per client (0 = unlimited)
	RateLimitBurst int     // Burst size per client
}

// Address returns the host:port the gateway listens on
func (r REST) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GraphStore holds graph location and build configuration
type GraphStore struct {
	BaseDir         string // Directory graph names are resolved under
	DefaultGraph    string // Graph directory served as the "default" namespace
	InitialCapacity int    // Builder size hint for programmatic builds (0 = grow from default)
	NumShards       int    // Shard count written alongside persisted graphs
}

// Cache holds the remote-client response cache configuration
type Cache struct {
	Enabled  bool          // Cache vertex responses on the remote client
	Capacity int           // Max cached vertices
	TTL      time.Duration // Time to live for cached vertices
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: Server{
			Host:            "0.0.0.0",
			Port:            50052,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		REST: REST{
			Enabled:        false,
			Host:           "0.0.0.0",
			Port:           8091,
			AuthEnabled:    false,
			RateLimit:      100,
			RateLimitBurst: 200,
		},
		Graph: GraphStore{
			BaseDir:   "./graphs",
			NumShards: 1,
		},
		Cache: Cache{
			Enabled:  true,
			Capacity: 10000,
			TTL:      5 * time.Minute,
		},
	}
}

// LoadFromEnv loads configuration from KGRAPH_* environment variables on top
// of the defaults
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("KGRAPH_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("KGRAPH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if timeout := os.Getenv("KGRAPH_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if timeout := os.Getenv("KGRAPH_SHUTDOWN_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.ShutdownTimeout = t
		}
	}
	if enableTLS := os.Getenv("KGRAPH_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("KGRAPH_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("KGRAPH_TLS_KEY")
	}

	if enabled := os.Getenv("KGRAPH_REST_ENABLED"); enabled == "true" {
		cfg.REST.Enabled = true
	}
	if host := os.Getenv("KGRAPH_REST_HOST"); host != "" {
		cfg.REST.Host = host
	}
	if port := os.Getenv("KGRAPH_REST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.REST.Port = p
		}
	}
	if enabled := os.Getenv("KGRAPH_AUTH_ENABLED"); enabled == "true" {
		cfg.REST.AuthEnabled = true
		cfg.REST.JWTSecret = os.Getenv("KGRAPH_JWT_SECRET")
	}
	if limit := os.Getenv("KGRAPH_RATE_LIMIT"); limit != "" {
		if l, err := strconv.ParseFloat(limit, 64); err == nil {
			cfg.REST.RateLimit = l
		}
	}
	if burst := os.Getenv("KGRAPH_RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			cfg.REST.RateLimitBurst = b
		}
	}

	if dir := os.Getenv("KGRAPH_BASE_DIR"); dir != "" {
		cfg.Graph.BaseDir = dir
	}
	if name := os.Getenv("KGRAPH_DEFAULT_GRAPH"); name != "" {
		cfg.Graph.DefaultGraph = name
	}
	if capacity := os.Getenv("KGRAPH_INITIAL_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Graph.InitialCapacity = c
		}
	}
	if shards := os.Getenv("KGRAPH_NUM_SHARDS"); shards != "" {
		if s, err := strconv.Atoi(shards); err == nil {
			cfg.Graph.NumShards = s
		}
	}

	if enabled := os.Getenv("KGRAPH_CACHE_ENABLED"); enabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("KGRAPH_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("KGRAPH_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	return cfg
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.REST.Enabled {
		if c.REST.Port <= 0 || c.REST.Port > 65535 {
			return fmt.Errorf("invalid gateway port: %d", c.REST.Port)
		}
		if c.REST.Port == c.Server.Port {
			return fmt.Errorf("gateway port %d collides with server port", c.REST.Port)
		}
		if c.REST.AuthEnabled && c.REST.JWTSecret == "" {
			return fmt.Errorf("auth enabled without KGRAPH_JWT_SECRET")
		}
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled without certificate or key file")
		}
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %v", c.Server.RequestTimeout)
	}
	if c.Graph.InitialCapacity < 0 {
		return fmt.Errorf("initial capacity must be non-negative: %d", c.Graph.InitialCapacity)
	}
	if c.Graph.NumShards <= 0 {
		return fmt.Errorf("shard count must be positive: %d", c.Graph.NumShards)
	}
	if c.Cache.Enabled && c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache enabled with non-positive capacity: %d", c.Cache.Capacity)
	}
	return nil
}
