package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/logging"
	"github.com/muurk/scc1/internal/scc1"
)

const (
	// Path is the websocket endpoint
	Path = "/shdlc"

	// MetricsPath serves Prometheus metrics
	MetricsPath = "/metrics"

	// DefaultPort is the TCP port scc1-bridge listens on
	DefaultPort = 5200

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer (header plus a full frame)
	maxMessageSize = RequestHeaderSize + 512

	// idleTimeout closes clients that stop talking
	idleTimeout = 5 * time.Minute
)

// Config holds the server configuration
type Config struct {
	Host string
	Port int
}

// Server exposes one transport to network clients. Exchanges from all clients
// are serialized because the link has no request ids.
type Server struct {
	config    Config
	transport scc1.Transport
	metrics   *Metrics
	upgrader  websocket.Upgrader

	mu         sync.Mutex // guards the transport
	httpServer *http.Server

	connMu  sync.Mutex // guards closing and wg.Add
	closing bool
	wg      sync.WaitGroup
}

// NewServer creates a server for transport.
func NewServer(transport scc1.Transport, config Config) *Server {
	return &Server{
		config:    config,
		transport: transport,
		metrics:   NewMetrics(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the HTTP handler with the websocket, metrics and health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handleWebSocket)
	mux.Handle(MetricsPath, s.metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Bridge listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping bridge...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting clients and waits for open connections to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.connMu.Lock()
	s.closing = true
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn("Timed out waiting for bridge clients to disconnect")
	}
	return err
}

// track registers a client with the shutdown wait group. It returns false
// once Shutdown has started.
func (s *Server) track() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		http.Error(w, "bridge is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := r.RemoteAddr
	logging.LogConnection(remoteAddr, "websocket_upgraded")
	s.metrics.ActiveClients.Inc()
	s.metrics.TotalClients.Inc()

	defer func() {
		_ = conn.Close()
		s.metrics.ActiveClients.Dec()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed or error reading message",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			logging.Debug("Ignoring non-binary message",
				zap.String("remote_addr", remoteAddr),
				zap.Int("message_type", msgType),
			)
			continue
		}

		reply := s.exchange(remoteAddr, msg)

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, reply); err != nil {
			logging.Info("Failed to send response",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

// exchange runs one request against the transport and encodes the reply
func (s *Server) exchange(remoteAddr string, msg []byte) []byte {
	req, err := DecodeRequest(msg)
	if err != nil {
		return EncodeResponse(nil, err)
	}

	s.mu.Lock()
	start := time.Now()
	data, err := s.transport.Execute(req.Command, req.Data, req.Timeout)
	elapsed := time.Since(start)
	s.mu.Unlock()

	s.metrics.Observe(req.Command, req.Data, data, elapsed, err)
	logging.LogExchange(remoteAddr, req.Command, req.Data, data, elapsed, err)
	return EncodeResponse(data, err)
}
