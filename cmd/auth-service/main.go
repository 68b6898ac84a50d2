package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/config"
	"github.com/leadflow/leadflow/pkg/directory"
	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/login"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
)

func main() {
	cfg, err := config.LoadAuth()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger("auth-service", cfg.Server.LogLevel, os.Stdout)
	metrics := observability.NewMetrics("auth-service")

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authmw := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.JWTSecret))
	handlers := login.NewHandlers(directory.NewClient(cfg.DirectoryURL), issuer, logger, metrics)

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

	// The auth service holds no database or cache; liveness is the whole story.
	health := observability.NewHealthChecker("auth-service", nil, nil)
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

	if err := observability.RunServer(server, logger, cfg.Server.ShutdownTimeout); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}
