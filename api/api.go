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

// Package api serves the REST interface to governance and the treasury.
// Operations run as the principal named in the X-Numbat-Principal header;
// authenticating that principal is left to a gateway in front of the node
package api

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

	"github.com/google/uuid"
)

const (
	DefaultListenAddress = ":8080"
	PrincipalHeader      = "X-Numbat-Principal"
	RequestIdHeader      = "X-Request-Id"
)

type Config struct {
	ListenAddress string
	// DevMode enables the endpoint that advances the chain clock
	DevMode bool
}

// Server is the REST API server.
type Server struct {
	config     Config
	logger     *slog.Logger
	backend    Backend
	httpServer *http.Server
	addr       string
	mu         sync.Mutex
}

// New creates a new API server instance.
func New(
	cfg Config,
	backend Backend,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Server{
		config:  cfg,
		logger:  logger,
		backend: backend,
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/chain/tip", s.handleChainTip)
	mux.HandleFunc("GET /api/v1/proposals", s.handleListProposals)
	mux.HandleFunc("POST /api/v1/proposals", s.handlePropose)
	mux.HandleFunc("GET /api/v1/proposals/{id}", s.handleProposal)
	mux.HandleFunc("GET /api/v1/proposals/{id}/state", s.handleProposalState)
	mux.HandleFunc("GET /api/v1/proposals/{id}/votes", s.handleProposalVotes)
	mux.HandleFunc("GET /api/v1/proposals/{id}/deadline", s.handleProposalDeadline)
	mux.HandleFunc("POST /api/v1/proposals/{id}/votes", s.handleCastVote)
	mux.HandleFunc("POST /api/v1/proposals/{id}/queue", s.handleQueue)
	mux.HandleFunc("POST /api/v1/proposals/{id}/execute", s.handleExecute)
	mux.HandleFunc("POST /api/v1/proposals/{id}/cancel", s.handleCancel)
	mux.HandleFunc("GET /api/v1/treasury", s.handleTreasury)
	mux.HandleFunc("GET /api/v1/treasury/assets", s.handleTreasuryAssets)
	mux.HandleFunc("GET /api/v1/treasury/withdrawals", s.handleWithdrawals)
	mux.HandleFunc("POST /api/v1/treasury/withdrawals", s.handleWithdraw)
	mux.HandleFunc("POST /api/v1/treasury/deposits", s.handleDeposit)
	mux.HandleFunc("GET /api/v1/votes/{address}", s.handleAccount)
	mux.HandleFunc("POST /api/v1/votes/delegate", s.handleDelegate)
	if s.config.DevMode {
		mux.HandleFunc("POST /api/v1/dev/advance", s.handleAdvance)
	}
	return s.withRequestId(mux)
}

type requestIdKey struct{}

// withRequestId tags every request with a fresh id, returned in a header
// and in error bodies
func (s *Server) withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIdHeader, id)
		s.logger.Debug(
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			"request_id", id,
		)
		next.ServeHTTP(
			w,
			r.WithContext(context.WithValue(r.Context(), requestIdKey{}, id)),
		)
	})
}

func requestId(r *http.Request) string {
	id, _ := r.Context().Value(requestIdKey{}).(string)
	return id
}

// Start starts the HTTP server in a background goroutine.
func (s *Server) Start(
	ctx context.Context,
) error {
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

	// Start the server with deterministic error detection
	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info("API listener started on " + s.Addr())

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()

		if srv != nil {
			s.logger.Debug(
				"context cancelled, shutting down API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(
	ctx context.Context,
) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// Addr returns the bound listen address once the server has started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == "" {
		return s.config.ListenAddress
	}
	return s.addr
}

// startServer binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine.
func (s *Server) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
