// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerConfig configures the API server service.
type HTTPServerConfig struct {
	// Addr is the TCP listen address. Port 0 picks a free port; Addr
	// reports the one chosen.
	Addr string

	// ShutdownTimeout bounds the drain of in-flight requests. Default: 10s
	ShutdownTimeout time.Duration
}

// HTTPServerService serves the recommendation API under supervision.
//
// The listener is bound before serving starts, so an address already in
// use fails Serve at once and the supervisor backs off. On cancellation
// in-flight requests get ShutdownTimeout to finish.
type HTTPServerService struct {
	server HTTPServer
	config HTTPServerConfig
	logger zerolog.Logger
	bound  atomic.Pointer[string]
}

// NewHTTPServerService creates the API server service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, cfg HTTPServerConfig, logger zerolog.Logger) *HTTPServerService {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server: server,
		config: cfg,
		logger: logger.With().Str("component", "http-server").Logger(),
	}
}

// Addr returns the bound listen address, or "" while not serving.
func (h *HTTPServerService) Addr() string {
	if addr := h.bound.Load(); addr != nil {
		return *addr
	}
	return ""
}

// Serve implements suture.Service. It returns ctx.Err() after a clean
// shutdown and nil when the server was closed elsewhere.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.config.Addr, err)
	}
	addr := ln.Addr().String()
	h.bound.Store(&addr)
	defer h.bound.Store(nil)
	h.logger.Info().Str("addr", addr).Msg("API listening")

	served := make(chan error, 1)
	go func() { served <- h.server.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve API on %s: %w", addr, err)
	case <-ctx.Done():
	}

	start := time.Now()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
	defer cancel()

	err = h.server.Shutdown(shutdownCtx)
	<-served
	if err != nil {
		h.logger.Warn().Err(err).Dur("timeout", h.config.ShutdownTimeout).Msg("API shutdown left requests unfinished")
		return fmt.Errorf("shut down API: %w", err)
	}
	h.logger.Info().Dur("drained_in", time.Since(start)).Msg("API stopped")
	return ctx.Err()
}

// String identifies the service in supervisor events.
func (h *HTTPServerService) String() string {
	return "http-server"
}
