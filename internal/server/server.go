package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gitpulse-io/gitpulse/config"
	"go.uber.org/zap"
)

// Server is an HTTP Server
type Server struct {
	s   *http.Server
	log *zap.SugaredLogger
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		s: &http.Server{
			Handler: handler,
			Addr:    cfg.Listen,

			ReadTimeout:  time.Second * time.Duration(cfg.ReadTimeout),
			WriteTimeout: time.Second * time.Duration(cfg.WriteTimeout),
		},
		log: zap.S(),
	}
}

// Start starts the HTTP server. It returns once the listener fails or is
// shut down.
func (s *Server) Start() error {
	s.log.Infof("listening on %s", s.s.Addr)
	if err := s.s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.s.Shutdown(ctx)
}
