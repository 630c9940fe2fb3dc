// Package server provides the HTTP REST API for developer search and the
// recruiter pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-scout/internal/logging"
	"github.com/jonathan/talent-scout/internal/pipeline"
	"github.com/jonathan/talent-scout/internal/search"
	"github.com/jonathan/talent-scout/internal/server/middleware"
	"github.com/jonathan/talent-scout/internal/server/ratelimit"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	search      *search.Service
	pipeline    *pipeline.Service
	rateLimiter *ratelimit.Limiter
	log         *logging.Logger
	now         func() time.Time
	closeOnce   sync.Once
}

// Config holds server configuration
type Config struct {
	Port int
	// RateLimit overrides the RATE_LIMIT_* environment configuration.
	RateLimit *ratelimit.Config
}

// New creates a new server instance. Either service may be unconfigured; the
// affected routes then answer 503 (pipeline writes, search) or an empty list
// (pipeline reads).
func New(cfg Config, searchSvc *search.Service, pipelineSvc *pipeline.Service, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	if searchSvc == nil {
		searchSvc = search.NewService(nil, log)
	}
	if pipelineSvc == nil {
		pipelineSvc = pipeline.NewService(nil, nil, log)
	}
	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.FromEnv()
	}

	s := &Server{
		search:      searchSvc,
		pipeline:    pipelineSvc,
		rateLimiter: ratelimit.NewLimiter(rl),
		log:         log,
		now:         time.Now,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Search endpoints
	mux.HandleFunc("GET /developers/search", s.handleSearchDevelopers)
	mux.HandleFunc("GET /developers/{login}", s.handleGetDeveloper)
	mux.HandleFunc("GET /repos/search", s.handleSearchRepos)

	// Pipeline endpoints
	mux.HandleFunc("GET /pipeline", s.handleListPipeline)
	mux.HandleFunc("POST /pipeline", s.handleSavePipeline)
	mux.HandleFunc("GET /pipeline/export.csv", s.handleExportPipeline)
	mux.HandleFunc("GET /pipeline/owner", s.handleNewOwner)
	mux.HandleFunc("PATCH /pipeline/{login}", s.handleUpdatePipeline)
	mux.HandleFunc("DELETE /pipeline/{login}", s.handleDeletePipeline)

	return mux
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.withRateLimit(s.withLogging(s.withCORS(middleware.Owner(s.routes()))))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}

// Close releases background resources. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		// Stop rate limiter cleanup goroutine
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+pipeline.HeaderOwnerID)
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"search":   s.search.Configured(),
		"pipeline": s.pipeline.Configured(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("error encoding JSON response", "err", err)
	}
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":       "rate_limit_exceeded",
		"userMessage": "Too many requests right now. Please wait a moment and try again.",
		"limit":       info.Limit,
		"remaining":   info.Remaining,
		"reset_at":    info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := int(math.Ceil(info.RetryAfter.Seconds()))
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.log.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
