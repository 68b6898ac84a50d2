package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/config"
	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/storage"
	"github.com/leadflow/leadflow/pkg/users"
)

func main() {
	cfg, err := config.LoadUser()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger("user-service", cfg.Server.LogLevel, os.Stdout)
	metrics := observability.NewMetrics("user-service")

	ctx := context.Background()
	db, err := storage.Connect(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Error("database connection failed")
		os.Exit(1)
	}

	store := users.NewStore(db)
	if err := store.Migrate(ctx, logger); err != nil {
		logger.WithError(err).Error("migrations failed")
		os.Exit(1)
	}

	authmw := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.JWTSecret))
	handlers := users.NewHandlers(store, logger)

	r := mux.NewRouter()
	r.Use(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.AllowedOrigins),
		metrics.Middleware(httputil.RouteTemplate),
	)
	httputil.HandlePreflight(r)

	handlers.RegisterRoutes(r, authmw)

	health := observability.NewHealthChecker("user-service", db, nil)
	r.HandleFunc("/health", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/health/live", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Readiness).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := observability.RunServer(server, logger, cfg.Server.ShutdownTimeout, func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("closing database failed")
		}
	}); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}
