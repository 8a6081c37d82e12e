// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// fakeServer blocks in Serve until Shutdown unless serveErr is set.
type fakeServer struct {
	serveErr    error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	stopOnce    sync.Once
	shutdowns   atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeServer) Serve(ln net.Listener) error {
	defer func() { _ = ln.Close() }()
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stop) })
	return f.shutdownErr
}

func newHTTPService(server HTTPServer, timeout time.Duration) *HTTPServerService {
	return NewHTTPServerService(server, HTTPServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: timeout}, zerolog.Nop())
}

// serveInBackground runs svc.Serve and waits until it is listening.
func serveInBackground(t *testing.T, svc *HTTPServerService) (cancel context.CancelFunc, errCh <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Addr() == "" {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("service never bound its listener")
		}
		time.Sleep(time.Millisecond)
	}
	return cancel, ch
}

func waitServe(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func TestNewHTTPServerService_Defaults(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
		{3 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		if got := newHTTPService(newFakeServer(), tt.in).config.ShutdownTimeout; got != tt.want {
			t.Errorf("ShutdownTimeout(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	svc := newHTTPService(newFakeServer(), 0)
	if got := svc.String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
	if got := svc.Addr(); got != "" {
		t.Errorf("Addr() before Serve = %q, want empty", got)
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newFakeServer()
	svc := newHTTPService(server, time.Second)

	cancel, errCh := serveInBackground(t, svc)
	<-server.started
	cancel()

	if err := waitServe(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if server.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdowns.Load())
	}
	if got := svc.Addr(); got != "" {
		t.Errorf("Addr() after shutdown = %q, want empty", got)
	}
}

func TestHTTPServerService_AddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer func() { _ = taken.Close() }()

	server := newFakeServer()
	svc := NewHTTPServerService(server, HTTPServerConfig{Addr: taken.Addr().String()}, zerolog.Nop())

	err = svc.Serve(context.Background())
	if err == nil {
		t.Fatal("Serve() on a taken address = nil, want listen error")
	}
	select {
	case <-server.started:
		t.Error("server started although the listener could not be bound")
	default:
	}
}

func TestHTTPServerService_ServeFailure(t *testing.T) {
	acceptErr := errors.New("accept: too many open files")
	server := newFakeServer()
	server.serveErr = acceptErr

	err := newHTTPService(server, time.Second).Serve(context.Background())
	if !errors.Is(err, acceptErr) {
		t.Errorf("Serve() = %v, want wrapped accept error", err)
	}
}

func TestHTTPServerService_ClosedElsewhere(t *testing.T) {
	server := newFakeServer()
	svc := newHTTPService(server, time.Second)

	_, errCh := serveInBackground(t, svc)
	<-server.started
	_ = server.Shutdown(context.Background())

	if err := waitServe(t, errCh); err != nil {
		t.Errorf("Serve() = %v, want nil after an external close", err)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	shutdownErr := errors.New("connections still open")
	server := newFakeServer()
	server.shutdownErr = shutdownErr
	svc := newHTTPService(server, time.Second)

	cancel, errCh := serveInBackground(t, svc)
	<-server.started
	cancel()

	if err := waitServe(t, errCh); !errors.Is(err, shutdownErr) {
		t.Errorf("Serve() = %v, want shutdown error", err)
	}
}

func TestHTTPServerService_RealServer(t *testing.T) {
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := newHTTPService(server, time.Second)

	cancel, errCh := serveInBackground(t, svc)

	resp, err := http.Get("http://" + svc.Addr() + "/") //nolint:noctx // test request against a local server
	if err != nil {
		cancel()
		t.Fatalf("GET error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want 418", resp.StatusCode)
	}

	cancel()
	if err := waitServe(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
