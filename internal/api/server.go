// Package api exposes the popup subsystem over HTTP: the public candidate
// feed consumed by the front-end engine, the shown/click tracking endpoints,
// and the admin catalog CRUD.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/config"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/service/popup"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/storage"
)

// Server represents the API server.
type Server struct {
	config   config.ServerConfig
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
	router   *chi.Mux
}

// NewServer creates a new API server.
func NewServer(
	cfg config.ServerConfig,
	popups *popup.Service,
	assets storage.Storage,
	redisClient *redis.Client,
	sessionTTL time.Duration,
) *Server {
	handlers := NewHandlers(popups, assets, redisClient, sessionTTL)
	router := SetupRoutes(handlers)

	return &Server{
		config:   cfg,
		handler:  router,
		handlers: handlers,
		router:   router,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
