package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kislikjeka/walletscope/internal/infra/gateway/alchemy"
	"github.com/kislikjeka/walletscope/internal/infra/gateway/openai"
	"github.com/kislikjeka/walletscope/internal/infra/gateway/privy"
	"github.com/kislikjeka/walletscope/internal/infra/gateway/reportapi"
	"github.com/kislikjeka/walletscope/internal/infra/gateway/subgraph"
	"github.com/kislikjeka/walletscope/internal/infra/memory"
	"github.com/kislikjeka/walletscope/internal/infra/postgres"
	infraRedis "github.com/kislikjeka/walletscope/internal/infra/redis"
	"github.com/kislikjeka/walletscope/internal/module/dashboard"
	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletscope/pkg/config"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{
		Env:   cfg.Env,
		Level: cfg.LogLevel,
	}, os.Stdout)
	log.Info("Starting walletscope API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	checks := map[string]handler.Pinger{}

	// Session and challenge storage: Redis when configured, in-process otherwise
	var (
		sessionStore session.Store      = memory.NewSessionStore()
		nonceStore   session.NonceStore = memory.NewNonceStore()
	)
	if cfg.RedisURL != "" {
		redisClient, err := infraRedis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		sessionStore = infraRedis.NewSessionStore(redisClient, log)
		nonceStore = infraRedis.NewNonceStore(redisClient, log)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info("Redis connection established")
	}

	// Account log
	var (
		accounts       session.AccountRecorder
		accountHandler *handler.AccountHandler
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		applied, err := postgres.Migrate(ctx, db.Pool)
		if err != nil {
			log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		if len(applied) > 0 {
			log.Info("Database migrations applied", "versions", applied)
		}

		repo := postgres.NewAccountRepository(db.Pool)
		accounts = repo
		accountHandler = handler.NewAccountHandler(repo)
		checks["database"] = handler.PingFunc(db.Health)
		log.Info("Database connection established")
	}

	// Indexer client
	var provider transfer.Provider
	switch {
	case cfg.IndexerProvider == config.IndexerProviderSubgraph && cfg.IndexerURL != "":
		provider = subgraph.NewTransferAdapter(subgraph.NewClient(cfg.IndexerURL, cfg.IndexerPageSize, log))
		log.Info("Indexer client initialized", "provider", cfg.IndexerProvider, "url", cfg.IndexerURL)
	case cfg.IndexerProvider == config.IndexerProviderAlchemy && cfg.AlchemyAPIKey != "":
		provider = alchemy.NewTransferAdapter(alchemy.NewClient(cfg.AlchemyAPIKey, cfg.AlchemyNetwork, cfg.IndexerPageSize, log))
		log.Info("Indexer client initialized", "provider", cfg.IndexerProvider, "network", cfg.AlchemyNetwork)
	}
	transferSvc := transfer.NewService(provider, log)

	// Report generator
	var generator report.Generator
	switch {
	case cfg.ReportProvider == config.ReportProviderOpenAI && cfg.OpenAIAPIKey != "":
		generator = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, log)
		log.Info("Report generator initialized", "provider", cfg.ReportProvider)
	case cfg.ReportProvider == config.ReportProviderHTTP && cfg.ReportAPIURL != "":
		generator = reportapi.NewClient(cfg.ReportAPIURL, log)
		log.Info("Report generator initialized", "provider", cfg.ReportProvider)
	}
	requester := report.NewRequester(generator, log)

	// Login strategies
	var verifier session.IdentityVerifier
	if cfg.PrivyAppID != "" && cfg.PrivyVerificationKey != "" {
		v, err := privy.NewVerifier(cfg.PrivyAppID, cfg.PrivyVerificationKey, log)
		if err != nil {
			log.Error("Failed to initialize Privy verifier", "error", err)
			os.Exit(1)
		}
		verifier = v
	}
	registry, err := session.NewRegistry(
		session.NewPrivyAuthenticator(verifier, log),
		session.NewSignatureAuthenticator(session.MethodWalletConnect, nonceStore, log),
		session.NewSignatureAuthenticator(session.MethodCoinbase, nonceStore, log),
	)
	if err != nil {
		log.Error("Failed to register login methods", "error", err)
		os.Exit(1)
	}

	sessionSvc := session.NewService(sessionStore, nonceStore, registry,
		session.NewTokenService(cfg.JWTSecret), accounts,
		session.Config{SessionTTL: cfg.SessionTTL, ChallengeTTL: cfg.ChallengeTTL}, log)
	dashboardSvc := dashboard.NewService(transferSvc, requester, log)

	// Create HTTP router
	r := httpapi.NewRouter(httpapi.Config{
		Logger:            log,
		AllowedOrigins:    cfg.AllowedOrigins,
		SessionHandler:    handler.NewSessionHandler(sessionSvc),
		DashboardHandler:  handler.NewDashboardHandler(dashboardSvc),
		ReportHandler:     handler.NewReportHandler(requester, log),
		AccountHandler:    accountHandler,
		HealthHandler:     handler.NewHealthHandler(checks),
		SessionMiddleware: middleware.RequireSession(sessionSvc),
	})

	// Report generation can take a while; the write timeout covers one completion
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
