// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package services

import (
	"context"
	"fmt"
)

// WebServer is the lifecycle shape of the HTTP server: Start blocks on
// the listener, Stop shuts it down gracefully.
type WebServer interface {
	Start(ctx context.Context) error
	Stop() error
}

// HTTPService wraps the web server as a supervised service, bridging
// its blocking Start to suture's context-aware Serve.
type HTTPService struct {
	server WebServer
	name   string
}

// NewHTTPService creates the wrapper.
func NewHTTPService(server WebServer) *HTTPService {
	return &HTTPService{server: server, name: "http-server"}
}

// Serve implements suture.Service. The server runs in a goroutine
// since Start blocks; on cancellation Stop drains connections, then we
// wait for the goroutine to return.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		if err := s.server.Stop(); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String identifies the service in suture's logs.
func (s *HTTPService) String() string {
	return s.name
}
