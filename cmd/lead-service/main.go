package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/config"
	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/leads"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/stages"
	"github.com/leadflow/leadflow/pkg/storage"
	"github.com/leadflow/leadflow/pkg/todos"
)

func main() {
	cfg, err := config.LoadLead()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger("lead-service", cfg.Server.LogLevel, os.Stdout)
	metrics := observability.NewMetrics("lead-service")

	ctx := context.Background()
	db, err := storage.Connect(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Error("database connection failed")
		os.Exit(1)
	}

	if err := leads.Migrate(ctx, db, cfg.Database.Driver, logger); err != nil {
		logger.WithError(err).Error("migrations failed")
		os.Exit(1)
	}

	stageStore := stages.NewStore(db)
	if err := stageStore.Seed(ctx); err != nil {
		logger.WithError(err).Error("stage seeding failed")
		os.Exit(1)
	}

	// Redis is optional; without it stage reads go straight to the database.
	var cache *storage.StageCache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		cache, err = storage.NewStageCache(cfg.RedisURL, cfg.StageCacheTTL)
		if err != nil {
			logger.WithError(err).Error("redis connection failed")
			os.Exit(1)
		}
		redisClient = cache.Client()
	}

	leadStore := leads.NewStore(db)
	notificationStore := leads.NewNotificationStore(db)
	todoStore := todos.NewStore(db)

	authmw := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.JWTSecret))

	r := mux.NewRouter()
	r.Use(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.AllowedOrigins),
		metrics.Middleware(httputil.RouteTemplate),
	)
	httputil.HandlePreflight(r)

	leads.NewHandlers(leadStore, stageStore, notificationStore, logger).RegisterRoutes(r, authmw)
	stages.NewHandlers(stageStore, cache, logger, metrics).RegisterRoutes(r, authmw)
	todos.NewHandlers(todoStore, logger).RegisterRoutes(r, authmw)

	health := observability.NewHealthChecker("lead-service", db, redisClient)
	r.HandleFunc("/health", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/health/live", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Readiness).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	sweeper := leads.NewSweeper(notificationStore, cfg.StaleAfter, logger, metrics)
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		logger.WithError(err).Error("sweeper start failed")
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := observability.RunServer(server, logger, cfg.Server.ShutdownTimeout, func() {
		sweeper.Stop()
		if cache != nil {
			if err := cache.Close(); err != nil {
				logger.WithError(err).Warn("closing redis failed")
			}
		}
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("closing database failed")
		}
	}); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}
