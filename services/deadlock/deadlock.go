// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package deadlock provides the deadlock-detection demo service.
//
// This package contains the Service type that coordinates all components:
// the in-memory allocation table, cycle detection, graph rendering, the
// LLM-backed chat explainer, the background monitor, the event hub, and
// the observability infrastructure.
//
// # Enterprise Integration
//
// The service supports dependency injection via extensions.ServiceOptions,
// enabling downstream builds to provide custom implementations of:
//   - AuditLogger: Compliance audit logging for chat exchanges
//   - MessageFilter: PII detection and redaction on chat input
//
// # Usage
//
// Open source (uses no-op defaults):
//
//	cfg := deadlock.Config{Port: 12240}
//	svc, err := deadlock.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Run()
package deadlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/gridlock/pkg/extensions"
	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/handlers"
	"github.com/AleutianAI/gridlock/services/deadlock/middleware"
	"github.com/AleutianAI/gridlock/services/deadlock/monitor"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
	"github.com/AleutianAI/gridlock/services/deadlock/routes"
	"github.com/AleutianAI/gridlock/services/deadlock/scenario"
	"github.com/AleutianAI/gridlock/services/llm"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the deadlock demo service.
//
// # Description
//
// Service abstracts the lifecycle, enabling testing and alternative
// implementations. The interface follows the minimal surface area
// principle - only essential lifecycle methods are exposed.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
//
// # Assumptions
//
//   - Service is fully initialized before Run() is called
//   - Run() is called at most once per Service instance
type Service interface {
	// Run starts the HTTP server and all background workers, then blocks
	// until SIGINT/SIGTERM or a fatal server error.
	//
	// # Outputs
	//
	//   - error: Non-nil if the server fails to start or shut down cleanly
	Run() error

	// Router returns the underlying Gin engine for testing.
	//
	// # Outputs
	//
	//   - *gin.Engine: The configured router with all routes registered
	//
	// # Limitations
	//
	//   - Should not be used to modify routes after construction
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds service configuration options.
//
// # Description
//
// Config centralizes all configuration for the deadlock service. Values
// can be populated from environment variables, or programmatically for
// testing.
//
// # Examples
//
//	// Minimal config (uses all defaults)
//	cfg := Config{}
//
//	// Custom port and LLM backend
//	cfg := Config{
//	    Port:       8080,
//	    LLMBackend: "ollama",
//	}
type Config struct {
	// Port is the HTTP server port. Default: 12240
	Port int

	// LLMBackend specifies the chat model provider.
	// Valid values: "gemini", "openai", "ollama", "claude", "anthropic"
	// Default: "gemini"
	LLMBackend string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// If empty, trace export is disabled.
	OTelEndpoint string

	// EnableMetrics enables Prometheus metrics registration.
	// Default: true
	EnableMetrics bool

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// ChatTimeout bounds one LLM round trip.
	// Default: 60 seconds
	ChatTimeout time.Duration

	// ChatRateRPS is the sustained request rate admitted to the chat route.
	// Default: 1
	ChatRateRPS float64

	// ChatRateBurst is the chat rate limiter's bucket capacity.
	// Default: 5
	ChatRateBurst int

	// MonitorInterval is the background deadlock sweep period.
	// Zero disables the background monitor; on-demand checks still work.
	MonitorInterval time.Duration

	// ScenarioDir overlays preset files on the embedded scenario catalog.
	// If empty, only the embedded presets are available.
	ScenarioDir string
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Description
//
// service is the main implementation that coordinates:
//   - HTTP routing via Gin
//   - The shared allocation table and its derived graphs
//   - LLM client management for the chat explainer
//   - The background deadlock monitor and the event hub
//   - OpenTelemetry tracing and Prometheus metrics
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New()
// returns.
type service struct {
	config        Config
	opts          extensions.ServiceOptions
	router        *gin.Engine
	llmClient     llm.LLMClient
	store         *rag.Store
	hub           *events.Hub
	mon           monitor.Monitor
	catalog       *scenario.Catalog
	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new deadlock Service with the given configuration.
//
// # Description
//
// New initializes all service components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing (skipped without an endpoint)
//  3. Initializes Prometheus metrics
//  4. Creates the allocation table, event hub, and scenario catalog
//  5. Creates the LLM client based on backend type
//  6. Sets up HTTP routes with extension options
//
// If opts is nil, DefaultOptions() is used (no-op implementations).
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults.
//   - opts: Extension options for enterprise features. May be nil.
//
// # Outputs
//
//   - Service: Ready-to-run service
//   - error: Non-nil if initialization fails
//
// # Limitations
//
//   - LLM client creation fails fast when the provider's credentials are
//     missing, so a misconfigured deployment dies at startup rather than
//     on the first chat request
//
// # Assumptions
//
//   - Environment variables are set for the chosen LLM provider
func New(cfg Config, opts *extensions.ServiceOptions) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	// Apply extension options (use defaults if nil)
	if opts != nil {
		s.opts = *opts
	} else {
		s.opts = extensions.DefaultOptions()
	}

	// Initialize OpenTelemetry tracer
	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	// Initialize Prometheus metrics
	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	// Shared state: allocation table, event hub, background monitor
	s.store = rag.NewStore()
	s.hub = events.NewHub(observability.DefaultMetrics)
	s.mon = monitor.New(s.store, s.hub, monitor.Config{
		Interval: s.config.MonitorInterval,
		Metrics:  observability.DefaultMetrics,
	})

	// Scenario catalog (embedded presets plus optional overlay directory)
	s.catalog, err = scenario.NewCatalog(s.config.ScenarioDir)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to load scenario catalog: %w", err)
	}

	// Initialize LLM client
	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	// Setup HTTP router
	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and all background workers.
//
// # Description
//
// Starts the event hub, the background monitor (when an interval is
// configured), the scenario watcher, and the Gin HTTP server. Blocks until
// SIGINT/SIGTERM arrives or the server fails, then shuts the server down
// gracefully and stops every worker.
//
// # Outputs
//
//   - error: Non-nil if the server fails to start or shut down cleanly
//
// # Limitations
//
//   - In-flight requests get five seconds to finish on shutdown
//
// # Assumptions
//
//   - Service was successfully created via New()
//   - Port is available
func (s *service) Run() error {
	defer s.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// The hub owns the event-stream subscriber set.
	g.Go(func() error {
		s.hub.Run(ctx)
		return nil
	})

	// Background deadlock sweeps. On-demand checks work without them.
	if s.config.MonitorInterval > 0 {
		if err := s.mon.Start(ctx); err != nil {
			return fmt.Errorf("failed to start deadlock monitor: %w", err)
		}
	}

	// Scenario hot reload is best effort.
	if err := s.catalog.Watch(ctx); err != nil {
		slog.Warn("Scenario watcher unavailable, presets load once at startup",
			"error", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	g.Go(func() error {
		slog.Info("Starting deadlock server", "port", s.config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down deadlock server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Router returns the underlying Gin engine for testing.
//
// # Outputs
//
//   - *gin.Engine: The configured router
//
// # Limitations
//
//   - Should not be used to modify routes after construction
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
//
// # Description
//
// Applies sensible defaults for any zero-valued configuration fields.
// MonitorInterval is deliberately left alone: zero means the background
// monitor stays off.
//
// # Inputs
//
//   - cfg: User-provided configuration
//
// # Outputs
//
//   - Config: Configuration with defaults applied
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12240
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "gemini"
	}
	if cfg.ChatTimeout == 0 {
		cfg.ChatTimeout = 60 * time.Second
	}
	if cfg.ChatRateRPS == 0 {
		cfg.ChatRateRPS = 1
	}
	if cfg.ChatRateBurst == 0 {
		cfg.ChatRateBurst = 5
	}
	// EnableMetrics defaults to true (zero value is false, so we need explicit check)
	// We'll handle this by always enabling unless explicitly disabled via a setter
	cfg.EnableMetrics = true

	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// # Description
//
// Sets up an OTLP trace exporter sending spans to the configured
// collector. Without an endpoint the provider stays at the global no-op
// default and nothing is exported.
//
// # Outputs
//
//   - func(context.Context): Cleanup function to call on shutdown, nil
//     when tracing is disabled
//   - error: Non-nil if tracer setup fails
//
// # Limitations
//
//   - Uses insecure gRPC connection (appropriate for internal networks)
//
// # Assumptions
//
//   - OTel collector is reachable at the configured endpoint
func (s *service) initTracer() (func(context.Context), error) {
	if s.config.OTelEndpoint == "" {
		slog.Info("Trace export disabled, no OTLP endpoint configured")
		return nil, nil
	}

	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("deadlock-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initLLMClient initializes the LLM provider client.
//
// # Description
//
// Creates the appropriate LLM client based on the configured backend type.
//
// # Outputs
//
//   - error: Non-nil if LLM client creation fails
//
// # Limitations
//
//   - Only supports: gemini, openai, ollama, claude/anthropic
//
// # Assumptions
//
//   - Required environment variables are set for the chosen provider
func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "gemini":
		s.llmClient, err = llm.NewGeminiClient()
		slog.Info("Using Gemini LLM backend")
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama LLM backend")
	case "claude", "anthropic":
		s.llmClient, err = llm.NewAnthropicClient()
		slog.Info("Using Anthropic (Claude) LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to gemini", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewGeminiClient()
	}

	return err
}

// initRouter sets up the Gin HTTP router with all routes.
//
// # Description
//
// Creates the Gin engine, applies middleware, and registers all routes.
// CORS stays wide open so the demo page can be served from anywhere.
//
// # Assumptions
//
//   - All dependencies (store, hub, monitor, catalog, LLM) are initialized
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("deadlock-service"))
	s.router.Use(middleware.RequestID())
	s.router.Use(cors.Default())

	chatCfg := handlers.ChatConfig{
		Timeout:    s.config.ChatTimeout,
		Backend:    s.config.LLMBackend,
		RateRPS:    s.config.ChatRateRPS,
		RateBurst:  s.config.ChatRateBurst,
		Extensions: s.opts,
	}

	routes.SetupRoutes(s.router, s.store, s.hub, s.mon, s.catalog, s.llmClient, chatCfg)
}

// cleanup releases all resources held by the service.
//
// # Description
//
// Called when Run() exits or on initialization failure. Stops the monitor,
// shuts down the tracer, and wipes secure key material.
func (s *service) cleanup() {
	if s.mon != nil {
		if err := s.mon.Stop(); err != nil {
			slog.Warn("Deadlock monitor stop error", "error", err)
		}
	}

	// Shutdown tracer
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}

	// Wipe any API key material held in locked memory
	llm.PurgeSecureMemory()
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
