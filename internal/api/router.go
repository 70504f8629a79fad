// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api serves the loopback control API used by paddock-ctl.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/wingedpig/paddock/internal/api/handlers"
	"github.com/wingedpig/paddock/internal/api/middleware"
	"github.com/wingedpig/paddock/internal/api/version"
	"github.com/wingedpig/paddock/internal/crashes"
	"github.com/wingedpig/paddock/internal/events"
	"github.com/wingedpig/paddock/internal/logs"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Supervisor handlers.Supervisor
	Logs       *logs.Aggregator
	EventBus   events.Bus
	Crashes    *crashes.Manager
}

// NewRouter creates the API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(version.Middleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	projectHandler := handlers.NewProjectHandler(deps.Supervisor)
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects/{alias}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{alias}/start", projectHandler.Start).Methods("POST")
	api.HandleFunc("/projects/{alias}/stop", projectHandler.Stop).Methods("POST")
	api.HandleFunc("/projects/{alias}/restart", projectHandler.Restart).Methods("POST")
	api.HandleFunc("/projects/{alias}/apps/{app}/start", projectHandler.StartApp).Methods("POST")
	api.HandleFunc("/projects/{alias}/apps/{app}/stop", projectHandler.StopApp).Methods("POST")
	api.HandleFunc("/projects/{alias}/apps/{app}/restart", projectHandler.RestartApp).Methods("POST")
	api.HandleFunc("/stop-all", projectHandler.StopAll).Methods("POST")
	api.HandleFunc("/profiles", projectHandler.Profiles).Methods("GET")
	api.HandleFunc("/profiles/default/{profile}", projectHandler.SetDefaultProfile).Methods("PUT")

	if deps.Logs != nil {
		logHandler := handlers.NewLogHandler(deps.Supervisor, deps.Logs)
		api.HandleFunc("/projects/{alias}/apps/{app}/logs", logHandler.Get).Methods("GET")
		api.HandleFunc("/logs/ws", logHandler.Stream).Methods("GET")
	}

	if deps.EventBus != nil {
		eventHandler := handlers.NewEventHandler(deps.EventBus)
		api.HandleFunc("/events", eventHandler.History).Methods("GET")
		api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")
	}

	if deps.Crashes != nil {
		crashHandler := handlers.NewCrashHandler(deps.Crashes)
		api.HandleFunc("/crashes", crashHandler.List).Methods("GET")
		api.HandleFunc("/crashes", crashHandler.Clear).Methods("DELETE")
		api.HandleFunc("/crashes/newest", crashHandler.Newest).Methods("GET")
		api.HandleFunc("/crashes/{id}", crashHandler.Get).Methods("GET")
		api.HandleFunc("/crashes/{id}", crashHandler.Delete).Methods("DELETE")
	}

	return r
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	s := &Server{
		router: NewRouter(deps),
		cfg:    cfg,
	}
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe starts the server. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	log.Info("API server listening", "addr", "http://"+s.Addr())
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down API server")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	return s.server.Shutdown(shutdownCtx)
}
