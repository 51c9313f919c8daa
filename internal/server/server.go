package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/metrics"
)

// Server exposes rotor evaluation over websocket and metrics over HTTP
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	rotor    *bem.Rotor
	workers  int
	metrics  *metrics.Collector
	log      log.FieldLogger
}

// NewServer creates a server for rotor. collector may be nil, in which case /metrics is not served.
func NewServer(addr string, upgrader websocket.Upgrader, rotor *bem.Rotor, workers int, collector *metrics.Collector) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		rotor:    rotor,
		workers:  workers,
		metrics:  collector,
		log:      log.WithField("component", "server"),
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade failed")
		return
	}
	defer conn.Close()

	logger := s.log.WithField("remote", conn.RemoteAddr().String())
	logger.Info("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	hub := NewHub(conn, s.rotor, s.workers, logger)
	written := make(chan struct{})
	go hub.handleRequest(ctx)
	go hub.handleResponse(written)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				logger.WithField("code", closeErr.Code).Info("client disconnected")
			} else {
				logger.WithError(err).Warn("read failed")
			}
			break
		}
		hub.requests <- req
	}

	cancel()
	close(hub.requests)
	<-written
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// Serve listens on the configured address until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
