package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digital-business-cards/walletpass/internal/config"
	"github.com/digital-business-cards/walletpass/internal/crypto"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/metrics"
	"github.com/digital-business-cards/walletpass/internal/pass"
	"github.com/digital-business-cards/walletpass/internal/server/handlers"
	localmw "github.com/digital-business-cards/walletpass/internal/server/middleware"
	"github.com/digital-business-cards/walletpass/internal/version"
)

type Server struct {
	config   *config.ServerEnvironment
	logger   *slog.Logger
	router   *chi.Mux
	packager *pass.Packager
}

// NewServer wires the pass packager and the HTTP routes.
//
// The signer is injected so tests can run the full HTTP stack without certificates.
func NewServer(cfg *config.ServerEnvironment, signer crypto.Signer, logger *slog.Logger) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		packager: pass.NewPackager(cfg.PassConfig(), signer),
	}

	metrics.RegisterPassMetrics()

	server.setupMiddleware()
	server.registerRoutes()

	return server
}

// Router returns the configured handler (used by tests)
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.config.RequestTimeout))
	}
	s.router.Use(localmw.CORS())
	s.router.Use(localmw.SecurityHeaders(s.config.Environment))
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HandleHealth)
	s.router.Get("/ready", handlers.HandleReadiness(s.packager.Config()))
	s.router.Get("/version", handlers.HandleVersion(version.Get()))
	s.router.Handle("/metrics", promhttp.Handler())

	walletPass := handlers.NewWalletPassHandler(s.packager)

	s.router.Group(func(r chi.Router) {
		r.Use(localmw.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
		r.Use(localmw.RequestSizeLimit(s.config.MaxRequestBodyBytes))

		for _, path := range []string{"/generateAppleWalletPass", "/api/passes/apple"} {
			r.Get(path, walletPass.HandleGeneratePass)
			r.Post(path, walletPass.HandleGeneratePass)
			r.Options(path, walletPass.HandlePreflight)
		}
	})
}

// LogConfigurationStatus reports missing pass configuration at startup.
// It does not stop the server: the same check runs on every request.
func (s *Server) LogConfigurationStatus() {
	if err := s.packager.Config().Validate(); err != nil {
		s.logger.Warn("Apple Wallet configuration incomplete - pass requests will fail until fixed",
			slog.String("error", err.Error()))
		return
	}
	s.logger.Info("Apple Wallet configuration complete",
		slog.String("pass_type_identifier", s.config.PassTypeIdentifier),
		slog.String("signer_backend", s.config.SignerBackend))
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
