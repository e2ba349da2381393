package coin_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gym-coin-ledger/internal/coin_gateway/components"
	"github.com/gym-coin-ledger/internal/coin_gateway/handler"
	"github.com/gym-coin-ledger/internal/coin_gateway/middleware"
	"github.com/gym-coin-ledger/internal/config"
	"github.com/rs/cors"
)

// Server serves the coin HTTP API
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer wires handlers for the given services and wraps the router with CORS.
// checks back the /health endpoint, keyed by dependency name.
func NewServer(log *slog.Logger, cfg *config.Config, services components.Services, checks map[string]HealthCheck) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	h := handlers{
		coin:  handler.NewCoinHandler(log, services.Ledger, services.Report, services.Code),
		code:  handler.NewCodeHandler(log, services.Code),
		admin: handler.NewAdminHandler(log, services.Ledger, services.Report, services.Audit),
	}
	adminAuth := middleware.AdminAuth(middleware.AdminAuthConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.JWTIssuer,
		Role:   cfg.Auth.AdminRole,
	}, log)

	setupRouter(log, httpRouter, h, adminAuth, checks)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.CorrelationIDHeader, handler.DeviceHeader},
		ExposedHeaders: []string{middleware.CorrelationIDHeader},
		MaxAge:         86400,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      corsHandler.Handler(httpRouter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests, bounded by the shutdown timeout in ctx
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
