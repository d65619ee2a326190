// Package api provides the HTTP layer over the resolution engine. It
// folds the engine's bounds and step traces into JSON responses, reads
// through the result cache when one is configured, and exposes health
// endpoints for load balancers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"complexity-engine/db/clickhouse"
	"complexity-engine/internal/resolve"
	"complexity-engine/pkg/cxerrors"
)

// Version is stamped by the build.
var Version = "0.1.0"

// Config holds server configuration.
type Config struct {
	Port           string
	RequestTimeout time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		RequestTimeout: 60 * time.Second,
		MaxRequestSize: 1 * 1024 * 1024, // 1MB
	}
}

// Server wires the engine and the optional cache behind a chi router.
type Server struct {
	engine     *resolve.Engine
	cache      *clickhouse.Store
	config     *Config
	start      time.Time
	httpServer *http.Server
}

// NewServer creates an API server. cache may be nil, in which case
// every request is resolved from scratch.
func NewServer(engine *resolve.Engine, cache *clickhouse.Store, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		engine: engine,
		cache:  cache,
		config: config,
		start:  time.Now(),
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
	})

	return r
}

// ListenAndServe runs the server on the configured port.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.Routes(),
	}
	log.Info().
		Str("port", s.config.Port).
		Str("version", Version).
		Bool("cache", s.cache != nil).
		Msg("Starting complexity resolution server")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown runs the server and, on SIGINT or SIGTERM,
// drains in-flight requests before returning.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		log.Info().Msg("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req resolve.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// Read-through cache keyed on the normalized description.
	var hash string
	if s.cache != nil && req.Description != "" {
		hash = clickhouse.HashDescription(req.Description)
		cached, err := s.cache.Lookup(r.Context(), hash)
		if err != nil {
			log.Warn().
				Err(cxerrors.NewCacheUnavailable("lookup failed: " + err.Error())).
				Msg("result cache unavailable")
		} else if cached != nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result, err := s.engine.Resolve(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		var ce *cxerrors.Error
		if errors.As(err, &ce) {
			switch ce.Code {
			case cxerrors.CodeValidationFailed:
				status = http.StatusBadRequest
			case cxerrors.CodeResolutionFailed:
				status = http.StatusUnprocessableEntity
			}
		}
		writeError(w, status, err.Error())
		return
	}

	if s.cache != nil && hash != "" {
		if err := s.cache.Save(r.Context(), hash, result); err != nil {
			log.Warn().
				Err(cxerrors.NewCacheUnavailable("save failed: " + err.Error())).
				Str("algorithm", result.AlgorithmName).
				Msg("result cache unavailable")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "complexity-engine",
		"version": Version,
		"uptime":  time.Since(s.start).String(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "cache unreachable",
			})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": Version,
		"service": "complexity-engine",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
