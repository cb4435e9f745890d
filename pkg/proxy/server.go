package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhuss/codex-chat-bridge/pkg/config"
)

// Server owns the bridge's listener lifecycle: bind (possibly to an
// OS-assigned port), optionally publish the bound address to a server-info
// file, serve until a signal arrives, then drain gracefully.
type Server struct {
	proxy           *Proxy
	host            string
	port            int
	serverInfoPath  string
	shutdownTimeout time.Duration
	logger          *slog.Logger

	httpServer *http.Server
}

// ServerConfig holds the listener side of the bridge configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ServerInfoPath  string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// NewServer wraps a Proxy with listener lifecycle management.
func NewServer(p *Proxy, cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		proxy:           p,
		host:            cfg.Host,
		port:            cfg.Port,
		serverInfoPath:  cfg.ServerInfoPath,
		shutdownTimeout: timeout,
		logger:          logger,
	}
}

// ListenAndServe binds the listener, publishes the server-info file when
// configured, and blocks until a shutdown signal (SIGINT or SIGTERM) is
// received or the server fails.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.listenAndServeWithContext(ctx)
}

func (s *Server) listenAndServeWithContext(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	boundPort := ln.Addr().(*net.TCPAddr).Port
	s.logger.Info("bridge listening",
		slog.String("host", s.host),
		slog.Int("port", boundPort))

	if s.serverInfoPath != "" {
		if err := config.WriteServerInfo(s.serverInfoPath, boundPort); err != nil {
			ln.Close()
			return fmt.Errorf("writing server info: %w", err)
		}
		s.logger.Info("server info written", slog.String("path", s.serverInfoPath))
	}

	s.httpServer = &http.Server{Handler: s.proxy.Handler()}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.shutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully shuts down the server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
