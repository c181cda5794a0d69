// Package server exposes the solver over HTTP and WebSocket: a client opens
// a WebSocket connection, sends a solve_request, and receives a stream of
// progress frames followed by a single result frame.
package server

import (
	"net"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Config is the address the HTTP server listens on plus the WebSocket
// upgrader's buffer sizing.
type Config struct {
	Address         string
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig mirrors the library's documented defaults.
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:8080",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// Server is the solver's HTTP+WebSocket front end.
type Server struct {
	config     Config
	logger     *log.Logger
	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	routesOnce sync.Once
}

// New constructs a Server; call Start or Serve to begin accepting
// connections.
func New(cfg Config, logger *log.Logger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
}

// Start listens on cfg.Address and serves until the listener errors.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves over an existing listener, letting callers control exactly
// how the socket is bound (e.g. in tests).
func (s *Server) Serve(listener net.Listener) error {
	s.ensureRoutes()
	s.httpServer = &http.Server{Handler: s.mux}
	s.logger.Info("server starting", "addr", listener.Addr().String())
	return s.httpServer.Serve(listener)
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/ws", s.handleWebSocket)
		s.mux.HandleFunc("/health", s.handleHealth)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	c := NewConnection(conn, s.logger)
	c.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
