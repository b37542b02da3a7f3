// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dedsec995/chat-backend/internal/config"
	"github.com/dedsec995/chat-backend/internal/events"
	"github.com/dedsec995/chat-backend/internal/handler"
	"github.com/dedsec995/chat-backend/internal/llm"
	"github.com/dedsec995/chat-backend/internal/middleware"
	"github.com/dedsec995/chat-backend/internal/service"
	"github.com/dedsec995/chat-backend/internal/store"
	"github.com/dedsec995/chat-backend/pkg/logger"
	"github.com/dedsec995/chat-backend/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-backend", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the conversation store
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// Connect to NATS for turn mirroring (optional)
	var natsClient *events.Client
	var publisher *events.TurnPublisher
	if cfg.NATSURL != "" {
		natsClient, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = events.NewTurnPublisher(natsClient)
		if err := publisher.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Initialize the completion gateway
	gateway, err := llm.NewClient(llm.Config{
		Provider:  llm.Provider(cfg.LLMProvider),
		APIKey:    gatewayAPIKey(cfg),
		Model:     cfg.LLMModel,
		BaseURL:   gatewayBaseURL(cfg),
		MaxTokens: cfg.LLMMaxTokens,
	})
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize services
	chatSvc := service.NewChatService(st, gateway, publisher, cfg.ContextBudget, cfg.LLMTimeout, log)
	uploadSvc := service.NewUploadService(st, publisher, cfg.UploadDir, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(st, natsClient)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	conversationHandler := handler.NewConversationHandler(chatSvc, log)
	uploadHandler := handler.NewUploadHandler(uploadSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

	// Health endpoints
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Chat API
	r.Post("/chat", chatHandler.Chat)
	r.Get("/api/conversations", conversationHandler.List)
	r.Get("/conversation/{id}", conversationHandler.History)
	r.Post("/upload", uploadHandler.Upload)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func gatewayAPIKey(cfg *config.Config) string {
	switch llm.Provider(cfg.LLMProvider) {
	case llm.ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case llm.ProviderOpenAI:
		return cfg.OpenAIAPIKey
	default:
		return ""
	}
}

func gatewayBaseURL(cfg *config.Config) string {
	if llm.Provider(cfg.LLMProvider) == llm.ProviderOllama {
		return cfg.OllamaURL
	}
	return ""
}
