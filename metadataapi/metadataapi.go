// Copyright 2026 Blink Labs Software
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


// Package metadataapi serves the off-chain JSON metadata that balance leaf
// URIs point at
package metadataapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tiny-spl/tinyspl/registry"
)

const DefaultListenAddress = ":8080"

// BufferSource returns the contents of a logging metadata buffer
type BufferSource interface {
	Contents(id uint64) ([]byte, error)
}

type Config struct {
	ListenAddress string
	Registry      registry.Registry
	// Buffers is optional. The buffer route answers 404 without it
	Buffers  BufferSource
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	// MaxRequestsPerIP bounds concurrent requests from one source. Zero
	// disables the limit
	MaxRequestsPerIP int
}

// Server is the metadata HTTP server
type Server struct {
	config     Config
	logger     *slog.Logger
	limiter    *ipLimiter
	httpServer *http.Server
	addr       net.Addr
	mu         sync.Mutex
}

func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("metadataapi: registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	s := &Server{
		config: cfg,
		logger: cfg.Logger.With("component", "metadataapi"),
	}
	if cfg.MaxRequestsPerIP > 0 {
		s.limiter = newIPLimiter(cfg.MaxRequestsPerIP)
	}
	return s, nil
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /collection", s.handleCollection)
	mux.HandleFunc("GET /buffer/{id}", s.handleBuffer)
	if s.config.Gatherer != nil {
		mux.Handle(
			"GET /metrics",
			promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}),
		)
	}
	if s.limiter != nil {
		return s.limiter.wrap(mux)
	}
	return mux
}

// Start binds the listener and serves in the background until Stop is
// called or ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for metadata API: %w", err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.logger.Info(
		"metadata API listener started",
		"address", ln.Addr().String(),
	)
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metadata API server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown metadata API on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop gracefully shuts down the HTTP server. It is safe to call more than once
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Debug("shutting down metadata API")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown metadata API: %w", err)
	}
	return nil
}
