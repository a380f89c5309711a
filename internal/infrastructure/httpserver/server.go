package httpserver

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const readHeaderTimeout = 5 * time.Second

type Server struct {
	httpServer *http.Server
	log        logrus.FieldLogger
}

func New(address string, handler http.Handler, logger logrus.FieldLogger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: logger,
	}
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve blocks until the server is shut down.
func (s *Server) Serve(listener net.Listener) error {
	s.log.WithField("address", listener.Addr().String()).Info("server starting")

	err := s.httpServer.Serve(listener)
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}
