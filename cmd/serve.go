package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"calagent/internal/agent"
	"calagent/internal/instrumentation"
	"calagent/internal/llm"
	"calagent/internal/server"
	"calagent/internal/tools/calendar_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		yolo           bool
		modelName      string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar assistant server",
		Long: `Start the calendar assistant as a long-running server.

Supports multiple transport types:
  - http: HTTP chat API with session support (default)
  - stdio: MCP (Model Context Protocol) server on standard input/output

Safety Mode:
  Deleting an event requires confirmation. Over HTTP, confirmations arrive
  on the /confirm endpoint while the delete waits. Over stdio there is no
  second channel, so deletes are refused unless --yolo is set.

Configuration:
  GEMINI_API_KEY                 Gemini API key (required for the http transport)
  GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET
                                 Google OAuth client used for calendar access`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			loadMetricsEnvVars(cmd, &metricsConfig)

			return runServe(transport, debugMode, httpAddr, yolo, modelName, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "http", "Transport type: http or stdio")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Delete events without confirmation (stdio transport has no confirmation channel)")
	cmd.Flags().StringVar(&modelName, "model", envOrDefault("GEMINI_MODEL", llm.DefaultModel), "Gemini model name. Can also use GEMINI_MODEL env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadMetricsEnvVars loads metrics configuration from environment
// variables. Environment variables only override flag values when the flag
// was not explicitly set.
func loadMetricsEnvVars(cmd *cobra.Command, config *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if enabled := os.Getenv("METRICS_ENABLED"); enabled != "" {
			config.Enabled = enabled == "true"
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
}

func runServe(transport string, debugMode bool, httpAddr string, yolo bool, modelName string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(debugMode)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	// The stdio transport exposes the tools directly and never calls the
	// model itself, so it runs without a Gemini API key.
	var model agent.Model
	if transport == "http" {
		gemini, err := llm.NewGemini(shutdownCtx, llm.Config{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  modelName,
		}, logger, metrics)
		if err != nil {
			return err
		}
		model = gemini
	}

	serverContext, err := server.NewServerContext(shutdownCtx, model, logger)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	if n := maxIterationsFromEnv(); n > 0 {
		serverContext.SetMaxIterations(n)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server stopped with error: %v", err)
			}
		}()
	}

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(serverContext, yolo)
	case "http":
		return runHTTPServer(shutdownCtx, serverContext, httpAddr, metricsConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", transport)
	}
}

func runStdioServer(serverContext *server.ServerContext, yolo bool) error {
	mcpSrv := mcpserver.NewMCPServer("calagent", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext, yolo); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, serverContext *server.ServerContext, addr string, metricsConfig MetricsConfig) error {
	mux := http.NewServeMux()

	chatHandler := server.NewChatHandler(serverContext)
	chatHandler.RegisterChatEndpoints(mux)

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("HTTP server starting on %s", addr)
	log.Printf("  Chat endpoints: /chat, /confirm, /confirm/pending")
	log.Printf("  Health endpoints: /healthz, /readyz")
	if metricsConfig.Enabled {
		log.Printf("  Metrics endpoint: %s/metrics", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	log.Println("HTTP server gracefully stopped")
	return nil
}
