package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"github.com/foxzi/tweetsift/internal/metrics"
	"github.com/foxzi/tweetsift/internal/web/backend"
	"github.com/foxzi/tweetsift/internal/web/config"
	"github.com/foxzi/tweetsift/internal/web/handlers"
	"github.com/foxzi/tweetsift/internal/web/middleware"
	"github.com/foxzi/tweetsift/internal/web/static"
	"github.com/foxzi/tweetsift/internal/web/views"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	views   *views.Engine
	backend handlers.Backend
	limiter *middleware.RateLimiter
	http    *http.Server

	metricsServer *metrics.Server
	collector     *metrics.Collector
	store         *bolt.DB
}

// New creates a server talking to the backend configured in cfg
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	return NewWithBackend(cfg, backend.NewClient(cfg.Backend.BaseURL, logger), logger)
}

// NewWithBackend creates a server using b for every backend call
func NewWithBackend(cfg *config.Config, b handlers.Backend, logger *slog.Logger) (*Server, error) {
	viewEngine, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize views: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		views:   viewEngine,
		backend: b,
		limiter: middleware.NewRateLimiter(),
	}

	if cfg.Metrics.Enabled {
		if err := s.setupMetrics(); err != nil {
			s.close()
			return nil, err
		}
	}

	if !cfg.Configured() {
		logger.Warn("application is not configured, serving setup notice",
			"labels", len(cfg.App.Labels), "admin_url", cfg.AdminURL())
	}

	s.http = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupMetrics() error {
	m := metrics.New()
	metrics.SetGlobal(m)

	if path := s.cfg.Metrics.StoragePath; path != "" {
		store, err := metrics.OpenStore(path)
		if err != nil {
			return err
		}
		s.store = store

		collector, err := metrics.NewCollector(store, m, path, s.cfg.Metrics.FlushInterval)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics collector: %w", err)
		}
		s.collector = collector
	}

	s.metricsServer = metrics.NewServer(m, s.cfg.Metrics.ListenAddr, s.cfg.Metrics.Path, s.logger,
		middleware.IPFilter(s.cfg.Metrics.AllowedIPs, s.logger))
	return nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	h := handlers.New(s.cfg, s.views, s.backend, s.logger)

	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies, s.logger))
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimw.Compress(5))
	r.Use(metrics.HTTPMiddleware)

	// Health check
	r.Get("/health", h.Health)

	// Static files (embedded)
	r.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	r.Group(func(r chi.Router) {
		if s.cfg.Security.CSRFEnabled {
			r.Use(s.csrfMiddleware())
		}
		r.Use(setupGate(s.cfg, h.Setup))

		limit := middleware.RateLimit(s.limiter,
			s.cfg.Security.RateLimit.PerMinute, s.cfg.Security.RateLimit.PerHour, s.logger)

		r.Get("/", h.SearchPage)
		r.With(limit).Post("/search", h.Search)
		r.Get("/history", h.History)
		r.Get("/search/{searchId}", h.Result)
		r.With(limit).Post("/search/{searchId}/email", h.Subscribe)
		r.Get(handlers.NotFoundPath, h.NotFound)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.Configured() {
			h.Setup(w, r)
			return
		}
		handlers.NotFoundRedirect(w, r)
	})
	r.MethodNotAllowed(handlers.NotFoundRedirect)

	return r
}

func (s *Server) csrfMiddleware() func(http.Handler) http.Handler {
	secure := s.cfg.Server.TLS.Enabled || strings.HasPrefix(s.cfg.Server.PublicURL, "https://")

	protect := csrf.Protect(
		[]byte(s.cfg.Security.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(s.cfg.Security.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Warn("csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			http.Error(w, "Forbidden", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// setupGate serves the setup notice instead of every page until the
// application has a name and enough labels
func setupGate(cfg *config.Config, setup http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.Configured() {
			return next
		}
		return setup
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting web server", "addr", s.cfg.Server.ListenAddr, "tls", s.cfg.Server.TLS.Enabled)
		var err error
		if s.cfg.Server.TLS.Enabled {
			err = s.http.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			err = s.http.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if s.metricsServer != nil {
		g.Go(s.metricsServer.ListenAndServe)
	}
	if s.collector != nil {
		s.collector.Start(gctx)
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
		if s.metricsServer != nil {
			if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("metrics shutdown error", "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}

// close releases background resources. Safe to call once.
func (s *Server) close() {
	s.limiter.Stop()
	if s.collector != nil {
		if err := s.collector.Stop(); err != nil {
			s.logger.Error("failed to persist metrics", "error", err)
		}
	}
	if s.store != nil {
		s.store.Close()
	}
}
