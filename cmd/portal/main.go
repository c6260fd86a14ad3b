package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/config"
	"github.com/boddenberg/citizen-ai-portal/internal/handler"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/cache"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/memory"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/nlu"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/resilience"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/watsonx"
	"github.com/boddenberg/citizen-ai-portal/internal/port"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("iam_token_ttl", cfg.IAMTokenTTL),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Bool("watsonx_configured", cfg.WatsonxAPIKey != "" && cfg.WatsonxProjectID != ""),
		zap.Bool("nlu_configured", cfg.NLUAPIKey != "" && cfg.NLUURL != ""),
	)

	if cfg.WatsonxAPIKey == "" || cfg.WatsonxProjectID == "" {
		logger.Warn("watsonx not configured: chat replies will be diagnostic only")
	}
	if cfg.NLUAPIKey == "" || cfg.NLUURL == "" {
		logger.Warn("nlu not configured: sentiment will be recorded as unavailable")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "citizen-ai-portal")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Clients ---
	// One bounded-timeout client for all remote calls: a hung remote
	// service must fail the request, not block it forever.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	iamCB := resilience.NewCircuitBreaker("watsonx-iam")
	genCB := resilience.NewCircuitBreaker("watsonx-generation")
	nluCB := resilience.NewCircuitBreaker("watson-nlu")

	var genTokens port.TokenSource = watsonx.NewIAMClient(httpClient, cfg.IAMEndpoint, cfg.WatsonxAPIKey, iamCB, logger)
	var nluTokens port.TokenSource = watsonx.NewIAMClient(httpClient, cfg.IAMEndpoint, cfg.NLUAPIKey, iamCB, logger)

	if cfg.IAMTokenTTL > 0 {
		logger.Info("iam token caching enabled", zap.Duration("ttl", cfg.IAMTokenTTL))
		tokenCache := cache.New[string](cfg.IAMTokenTTL)
		genTokens = watsonx.NewCachedTokenSource(genTokens, tokenCache, "watsonx", metrics)
		nluTokens = watsonx.NewCachedTokenSource(nluTokens, tokenCache, "nlu", metrics)
	}

	generator := watsonx.NewGenerationClient(
		httpClient,
		cfg.WatsonxBaseURL,
		cfg.WatsonxModelID,
		cfg.WatsonxProjectID,
		cfg.WatsonxAPIKey,
		genTokens,
		genCB,
		logger,
	)

	sentiment := nlu.NewSentimentClient(
		httpClient,
		cfg.NLUURL,
		cfg.NLUAPIKey,
		nluTokens,
		nluCB,
		metrics,
		logger,
	)

	// --- Stores ---
	transcripts := memory.NewTranscriptStore()

	// --- Services ---
	feedbackSvc := service.NewFeedbackLog(metrics, logger)

	convSvc := service.NewConversation(
		transcripts,
		generator,
		sentiment,
		feedbackSvc,
		resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics,
		logger,
	)

	authSvc := service.NewAuthService(cfg.PortalUsers, cfg.JWTSecret, cfg.JWTAccessTTL, logger)

	// --- Router ---
	router := handler.NewRouter(convSvc, feedbackSvc, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
