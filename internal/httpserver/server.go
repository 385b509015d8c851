// Package httpserver runs an http.Handler on a listener with a graceful
// shutdown. It backs the mock API command and the pprof endpoint.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	name       string
	addr       string
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server for handler on addr. Use port 0 for a random port.
func New(name, addr string, handler http.Handler) *Server {
	return &Server{
		name: name,
		addr: addr,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Pprof returns a server exposing the runtime profiles under /debug/pprof/.
func Pprof(port int) *Server {
	r := chi.NewRouter()
	r.Mount("/debug", chimiddleware.Profiler())
	return New("profiler", fmt.Sprintf("127.0.0.1:%d", port), r)
}

// Start begins serving in the background. It returns once the listener is
// bound and the server has not failed immediately.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = listener

	log.Info().Str("server", s.name).Str("addr", s.Addr()).Msg("starting http server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("%s server failed to start: %w", s.name, err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Str("server", s.name).Msg("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
