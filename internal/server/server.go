// Package server owns the relay's listening socket and its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"cors-relay/internal/config"
)

// Server binds the Echo instance to the configured address. It is started
// once and stopped once.
type Server struct {
	echo   *echo.Echo
	addr   string
	host   string
	out    io.Writer
	logger *slog.Logger

	ln   net.Listener
	done chan struct{}
}

// New creates a Server that prints its banner to stdout.
func New(e *echo.Echo, cfg *config.Config, logger *slog.Logger) *Server {
	return NewWithOutput(e, cfg, logger, os.Stdout)
}

// NewWithOutput creates a Server that prints its banner to out.
func NewWithOutput(e *echo.Echo, cfg *config.Config, logger *slog.Logger, out io.Writer) *Server {
	return &Server{
		echo:   e,
		addr:   cfg.Server.Addr(),
		host:   cfg.Server.Host,
		out:    out,
		logger: logger.With("component", "server"),
		done:   make(chan struct{}),
	}
}

// Start binds the listener and serves in the background. Bind errors are
// returned so the process fails fast.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.ln = ln

	s.logger.Info("starting server", "addr", ln.Addr().String())
	s.printBanner()

	go func() {
		defer close(s.done)
		if err := s.echo.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "err", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully. Connections still busy when ctx
// expires are closed forcibly; either way the listener is released and
// Stop returns nil.
func (s *Server) Stop(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}

	s.logger.Info("shutting down server")
	fmt.Fprintln(s.out, "\nShutting down relay...")

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown incomplete, closing connections", "err", err)
		if cerr := s.echo.Close(); cerr != nil {
			s.logger.Error("closing server", "err", cerr)
		}
	}

	select {
	case <-s.done:
	case <-ctx.Done():
	}

	fmt.Fprintln(s.out, "Relay stopped.")
	return nil
}

// URL returns the base URL the relay is reachable at, or "" before Start.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	_, port, err := net.SplitHostPort(s.ln.Addr().String())
	if err != nil {
		return "http://" + s.ln.Addr().String()
	}
	return "http://" + net.JoinHostPort(s.host, port)
}

func (s *Server) printBanner() {
	base := s.URL()
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(s.out, "%s\nCORS Relay\n%s\n", rule, rule)
	fmt.Fprintf(s.out, "Relay running on %s\n", base)
	fmt.Fprintf(s.out, "Status page:     %s/\n", base)
	fmt.Fprintf(s.out, "Proxy endpoint:  %s/proxy?url=YOUR_URL\n\n", base)
	fmt.Fprintf(s.out, "Local development only: do not expose this relay to the internet.\n")
	fmt.Fprintf(s.out, "Press Ctrl+C to stop the relay.\n%s\n\n", rule)
}
