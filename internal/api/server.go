// Package api serves the read side of the selection engine over HTTP:
// liveness, per-symbol selection state, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Atypix/Smart100-sub002/internal/logger"
	"github.com/Atypix/Smart100-sub002/internal/selector"
)

// SelectionReader resolves the current selection state for a symbol. Both
// the meta selector and the selection engine satisfy it.
type SelectionReader interface {
	GetSelectionState(symbol string) (optional.Option[selector.SelectionState], error)
}

// Server exposes the read-side HTTP endpoints.
type Server struct {
	reader     SelectionReader
	log        *logger.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server over the given selection reader.
func NewServer(reader SelectionReader, log *logger.Logger) *Server {
	return &Server{
		reader:     reader,
		log:        log,
		httpServer: nil,
		listener:   nil,
	}
}

// Start binds the listener and serves in the background. An empty address
// binds an ephemeral port, see Address.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/v1/selection/{symbol}", s.handleSelection).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.log.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.log.Debug("API server started", zap.String("address", s.Address()))

	return nil
}

// Address returns the bound address, or "" before Start.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully, waiting for in-flight requests
// until the context expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	state, err := s.reader.GetSelectionState(symbol)
	if err != nil {
		s.log.Error("failed to read selection state",
			zap.String("symbol", symbol),
			zap.Error(err))
		http.Error(w, "failed to read selection state", http.StatusInternalServerError)

		return
	}

	if state.IsNone() {
		http.Error(w, "no selection yet", http.StatusNotFound)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state.Unwrap())
}
