package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	grpcserver "github.com/kgraphdb/kgraph/pkg/api/grpc"
	"github.com/kgraphdb/kgraph/pkg/api/rest"
	"github.com/kgraphdb/kgraph/pkg/api/rest/middleware"
	"github.com/kgraphdb/kgraph/pkg/config"
	"github.com/kgraphdb/kgraph/pkg/store"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "server host (overrides config/env)")
		port        = flag.Int("port", 0, "server port (overrides config/env)")
		graphDir    = flag.String("graph", "", "default graph directory (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("kgraph server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *graphDir != "" {
		cfg.Graph.DefaultGraph = *graphDir
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	server, err := grpcserver.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// The default graph is disk-backed and loads lazily, so startup stays
	// fast even for large graphs; the first request pays the load cost.
	if cfg.Graph.DefaultGraph != "" {
		g, err := store.Open(store.Spec{Dir: cfg.Graph.DefaultGraph}, cfg)
		if err != nil {
			log.Fatalf("Failed to open default graph: %v", err)
		}
		server.RegisterGraph(grpcserver.DefaultGraphName, g)
		log.Printf("Serving graph %s as %q", cfg.Graph.DefaultGraph, grpcserver.DefaultGraphName)
	} else {
		log.Printf("No default graph configured; serving registered graphs only")
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	var gateway *rest.Server
	if cfg.REST.Enabled {
		gateway, err = rest.NewServer(rest.Config{
			Host:        cfg.REST.Host,
			Port:        cfg.REST.Port,
			GRPCAddress: cfg.Server.Address(),
			CORSEnabled: true,
			Auth: middleware.AuthConfig{
				Enabled:     cfg.REST.AuthEnabled,
				JWTSecret:   cfg.REST.JWTSecret,
				PublicPaths: []string{"/v1/health", "/metrics"},
			},
			RateLimit: middleware.RateLimitConfig{
				Enabled:        cfg.REST.RateLimit > 0,
				RequestsPerSec: cfg.REST.RateLimit,
				Burst:          cfg.REST.RateLimitBurst,
			},
		})
		if err != nil {
			log.Fatalf("Failed to create REST gateway: %v", err)
		}
		go func() {
			if err := gateway.Start(); err != nil {
				log.Fatalf("REST gateway failed: %v", err)
			}
		}()
	}

	printStartupInfo(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	log.Println("Server is ready. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	log.Println("Shutting down gracefully...")
	if gateway != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := gateway.Stop(ctx); err != nil {
			log.Printf("Error stopping REST gateway: %v", err)
		}
		cancel()
	}
	if err := server.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped.")
}

func printBanner() {
	fmt.Printf(`
 _                         _
| | ____ _ _ __ __ _ _ __ | |__
| |/ / _`+"`"+` | '__/ _`+"`"+` | '_ \| '_ \
|   < (_| | | | (_| | |_) | | | |
|_|\_\__, |_|  \__,_| .__/|_| |_|
     |___/          |_|

Dictionary-compressed graph server
`)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println()
	fmt.Printf("  gRPC address:   %s\n", cfg.Server.Address())
	if cfg.REST.Enabled {
		fmt.Printf("  REST address:   %s\n", cfg.REST.Address())
	}
	fmt.Printf("  TLS enabled:    %v\n", cfg.Server.EnableTLS)
	fmt.Printf("  Base directory: %s\n", cfg.Graph.BaseDir)
	if cfg.Graph.DefaultGraph != "" {
		fmt.Printf("  Default graph:  %s\n", cfg.Graph.DefaultGraph)
	}
	fmt.Println()
}

func showUsage() {
	fmt.Println("kgraph server - dictionary-compressed graph service")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kgraph-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 50052)")
	fmt.Println("  -graph DIR        Default graph directory")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  KGRAPH_HOST               Server host")
	fmt.Println("  KGRAPH_PORT               Server port")
	fmt.Println("  KGRAPH_REQUEST_TIMEOUT    Request timeout (e.g., 30s)")
	fmt.Println("  KGRAPH_SHUTDOWN_TIMEOUT   Graceful shutdown timeout")
	fmt.Println("  KGRAPH_ENABLE_TLS         Enable TLS (true/false)")
	fmt.Println("  KGRAPH_TLS_CERT           TLS certificate file")
	fmt.Println("  KGRAPH_TLS_KEY            TLS key file")
	fmt.Println("  KGRAPH_REST_ENABLED       Serve the JSON gateway (true/false)")
	fmt.Println("  KGRAPH_REST_HOST          Gateway host")
	fmt.Println("  KGRAPH_REST_PORT          Gateway port")
	fmt.Println("  KGRAPH_AUTH_ENABLED       Require JWT bearer tokens (true/false)")
	fmt.Println("  KGRAPH_JWT_SECRET         HMAC secret for token validation")
	fmt.Println("  KGRAPH_RATE_LIMIT         Gateway requests per second per client")
	fmt.Println("  KGRAPH_RATE_LIMIT_BURST   Gateway burst size per client")
	fmt.Println("  KGRAPH_BASE_DIR           Directory graph names resolve under")
	fmt.Println("  KGRAPH_DEFAULT_GRAPH      Graph directory served as default")
	fmt.Println("  KGRAPH_CACHE_ENABLED      Remote-client cache (true/false)")
	fmt.Println("  KGRAPH_CACHE_CAPACITY     Cache capacity")
	fmt.Println("  KGRAPH_CACHE_TTL          Cache TTL (e.g., 5m)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Serve a graph directory on the default port")
	fmt.Println("  kgraph-server -graph ./graphs/freebase")
	fmt.Println()
	fmt.Println("  # Serve with the JSON gateway enabled")
	fmt.Println("  KGRAPH_REST_ENABLED=true kgraph-server -graph ./graphs/freebase")
	fmt.Println()
}
