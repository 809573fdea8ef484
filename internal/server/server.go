// internal/server/server.go

// Package server exposes the scrape engine over HTTP: one scrape endpoint,
// cache administration and a health probe, behind API-key and rate-limit
// middleware.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/cache"
	"github.com/xkilldash9x/prospector/internal/config"
)

// Scraper is the engine surface the server calls into.
type Scraper interface {
	Scrape(ctx context.Context, profileURL string, creds schemas.Credentials) (*schemas.ProfileRecord, error)
}

// Server owns the HTTP listener and the request-side plumbing around the
// scraper: result cache, in-flight deduplication and rate limiting.
type Server struct {
	cfg     *config.Config
	scraper Scraper
	store   *cache.Store
	log     *zap.Logger

	limiter *rate.Limiter
	flight  singleflight.Group
	http    *http.Server
}

// New wires the server. The cache store may be shared with other consumers.
func New(cfg *config.Config, scraper Scraper, store *cache.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		scraper: scraper,
		store:   store,
		log:     log.Named("server"),
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	}
	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 30*time.Second,
	}
	return s
}

// Routes builds the router. Exposed separately so tests can drive the
// handler stack without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Use(s.rateLimit)
		r.Post("/scrape", s.handleScrape)
		r.Delete("/cache", s.handleCacheClear)
		r.Delete("/cache/{profileID}", s.handleCacheDelete)
	})
	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
