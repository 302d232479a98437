package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-decide/api"
	"github.com/benvon/smart-decide/internal/config"
	"github.com/benvon/smart-decide/internal/decision"
	"github.com/benvon/smart-decide/internal/handlers"
	"github.com/benvon/smart-decide/internal/logger"
	"github.com/benvon/smart-decide/internal/middleware"
	"github.com/benvon/smart-decide/internal/services/ai"
	"github.com/benvon/smart-decide/internal/services/recommend"
	"github.com/benvon/smart-decide/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{Debug: debugMode})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger) // Sync errors on stderr are not actionable
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Duration("ai_timeout", cfg.AITimeout),
		zap.String("rate_limit", cfg.RateLimit),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.ServiceName, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			cfg.OTELEnabled = false
		} else {
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	// Redis is optional: without it the rate limiter keeps its counters in process.
	var redisClient *middleware.RedisClient
	var limiterConn *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		limiterConn = redisClient.Client()
		zapLogger.Info("connected_to_redis")
	}

	store, err := middleware.NewRateLimitStore(limiterConn)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	rateLimitMW, err := middleware.RateLimit(store, cfg.RateLimit, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	enricher := ai.NewEnricherFromConfig(ai.EnrichmentConfig{
		Provider:  cfg.AIProvider,
		APIKey:    cfg.OpenAIKey,
		Model:     cfg.AIModel,
		BaseURL:   cfg.AIBaseURL,
		Timeout:   cfg.AITimeout,
		DebugMode: debugMode,
	}, zapLogger)

	service := recommend.NewService(decision.NewEngine(),
		recommend.WithEnricher(enricher),
		recommend.WithLogger(zapLogger),
	)

	healthOpts := []handlers.HealthOption{handlers.WithEnrichmentStatus(enricher.Enabled)}
	if redisClient != nil {
		healthOpts = append(healthOpts, handlers.WithRedis(redisClient))
	}
	healthChecker := handlers.NewHealthChecker(healthOpts...)
	decisionHandler := handlers.NewDecisionHandler(service, zapLogger)
	openAPIHandler, err := handlers.NewOpenAPIHandler(api.OpenAPIYAML)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_document", zap.Error(err))
	}

	r := mux.NewRouter()

	// In gorilla/mux, middleware registered first is the outermost wrapper.
	if cfg.OTELEnabled {
		r.Use(telemetry.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.AllowedOrigins(), zapLogger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.RequestTimeoutFor(cfg.AITimeout)))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(zapLogger))

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet) // Legacy endpoint
	r.HandleFunc("/version", versionInfo).Methods(http.MethodGet)
	openAPIHandler.RegisterRoutes(r)

	decisionHandler.RegisterRoutes(r, rateLimitMW)

	// Preflight requests are answered by the CORS middleware; this route lets them reach it.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.RequestTimeoutFor(cfg.AITimeout) + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("server_exited")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	_, _ = fmt.Fprintf(w, `{"version":"%s","timestamp":"%s"}`, version, time.Now().UTC().Format(time.RFC3339))
}
