// internal/server/handlers.go
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/auth"
	"github.com/xkilldash9x/prospector/internal/browser"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type scrapeRequest struct {
	ProfileURL string `json:"profile_url"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password,omitempty"`
	// SkipCache forces a fresh pass even when a cached record exists.
	SkipCache bool `json:"skip_cache,omitempty"`
}

type scrapeResponse struct {
	Status string                 `json:"status"`
	Cached bool                   `json:"cached,omitempty"`
	Data   *schemas.ProfileRecord `json:"data,omitempty"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	profileID := schemas.ProfileIDFromURL(req.ProfileURL)
	if profileID == "" {
		s.writeError(w, r, http.StatusBadRequest, "profile_url must reference a profile path")
		return
	}

	creds := schemas.Credentials{Email: req.Email, Password: req.Password}

	if !req.SkipCache {
		if record, ok := s.store.Get(profileID); ok {
			s.writeJSON(w, http.StatusOK, scrapeResponse{Status: "ok", Cached: true, Data: record})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.RequestTimeout)
	defer cancel()

	// Concurrent requests for the same profile share one browser pass.
	v, err, shared := s.flight.Do(profileID, func() (any, error) {
		return s.scraper.Scrape(ctx, req.ProfileURL, creds)
	})
	if err != nil {
		s.log.Warn("scrape failed",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
		status, msg := classifyScrapeError(err)
		s.writeError(w, r, status, msg)
		return
	}

	record := v.(*schemas.ProfileRecord)
	s.store.Set(profileID, record)
	if shared {
		s.log.Debug("scrape shared with concurrent request", zap.String("profile_id", profileID))
	}
	s.writeJSON(w, http.StatusOK, scrapeResponse{Status: "ok", Data: record})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	dropped := s.store.Clear()
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "dropped": dropped})
}

func (s *Server) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")
	if !s.store.Delete(profileID) {
		s.writeError(w, r, http.StatusNotFound, "no cached record for profile")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "dropped": 1})
}

// classifyScrapeError maps engine failures onto response codes without
// leaking internals to the caller.
func classifyScrapeError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrChallengeRequired):
		return http.StatusConflict, "authentication requires manual verification"
	case errors.Is(err, auth.ErrLoginRejected), errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusUnauthorized, "authentication failed"
	case errors.Is(err, auth.ErrLoginTimeout), errors.Is(err, browser.ErrNavigationTimeout):
		return http.StatusGatewayTimeout, "target site did not respond in time"
	case errors.Is(err, browser.ErrBrowserLaunch):
		return http.StatusServiceUnavailable, "browser unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "scrape canceled or timed out"
	default:
		return http.StatusBadGateway, "scrape failed"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response encoding failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, _ *http.Request, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Status: "error", Error: msg})
}
