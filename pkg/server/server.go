// Copyright (c) 2025, ChaosExp Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apperrors "github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/report"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Resolver supplies the target catalog served by the targets endpoint.
type Resolver interface {
	Resolve(ctx context.Context) ([]target.Target, error)
}

// Server exposes the read-only HTTP API over a target resolver and a
// run artifact store.
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	resolver    Resolver
	store       *report.Store

	mu    sync.RWMutex
	ready bool
}

// NewServer creates a configured server. The resolver and store must be
// non-nil; readiness starts false until SetReady is called.
func NewServer(config *Config, resolver Resolver, store *report.Store) (*Server, error) {
	if config == nil {
		config = NewConfig()
	}
	if resolver == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "resolver is required")
	}
	if store == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "store is required")
	}

	s := &Server{
		config:      config,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
		resolver:    resolver,
		store:       store,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s, nil
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/targets", s.handleTargets)
	mux.HandleFunc("GET /v1/runs", s.handleRuns)
	mux.HandleFunc("GET /v1/runs/{id}", s.handleRun)
	mux.HandleFunc("/", s.handleDefault)

	return s.withMiddleware(mux.ServeHTTP)
}

// SetReady flips the readiness state reported by the ready endpoint.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// Addr returns the listen address the server was configured with.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired route handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves HTTP until the context is cancelled, then drains
// in-flight requests within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting HTTP server",
			"name", s.config.Name,
			"version", s.config.Version,
			"addr", s.httpServer.Addr,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	s.SetReady(true)

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, "HTTP server failed", err)
		}
		return nil
	}
}

// Shutdown stops accepting new requests and waits for in-flight ones.
func (s *Server) Shutdown() error {
	s.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down HTTP server", "timeout", s.config.ShutdownTimeout)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "HTTP server shutdown failed", err)
	}
	return nil
}

// Run serves HTTP until SIGINT or SIGTERM.
func Run(config *Config, resolver Resolver, store *report.Store) error {
	s, err := NewServer(config, resolver, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(ctx)
	})

	return g.Wait()
}
