package ftp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/developerfred/libunftp/config"
	"github.com/developerfred/libunftp/internal/auth"
	"github.com/developerfred/libunftp/internal/observability/metrics"
	"github.com/developerfred/libunftp/internal/observability/statsd"
	"github.com/developerfred/libunftp/internal/storage"
)

// ServerOptions groups dependencies for Server.
type ServerOptions struct {
	Storage       storage.Backend     // Required: backend sessions read and write through
	Authenticator auth.Authenticator  // Optional: defaults to auth.Anonymous
	Config        config.ServerConfig // Required: listener and session settings
	TLS           *tls.Config         // Optional: enables AUTH TLS / PROT P
	Throttle      *auth.Throttle      // Optional: failed-login throttle
	Logger        *slog.Logger        // Optional: structured logger
	Metrics       statsd.Sink         // Optional: metrics sink (StatsD-compatible)
}

// Server accepts control connections and runs one session per connection.
type Server struct {
	storage       storage.Backend
	authenticator auth.Authenticator
	cfg           config.ServerConfig
	tlsConfig     *tls.Config
	throttle      *auth.Throttle
	logger        *slog.Logger
	metrics       statsd.Sink

	active atomic.Int64
}

// NewServer constructs a Server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Storage == nil {
		return nil, errors.New("storage backend is required")
	}
	authenticator := opts.Authenticator
	if authenticator == nil {
		authenticator = auth.Anonymous{}
	}

	cfg := opts.Config
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "ftp_server")
	}

	return &Server{
		storage:       opts.Storage,
		authenticator: authenticator,
		cfg:           cfg,
		tlsConfig:     opts.TLS,
		throttle:      opts.Throttle,
		logger:        logger,
		metrics:       opts.Metrics,
	}, nil
}

// TLSEnabled reports whether AUTH TLS upgrades are offered.
func (s *Server) TLSEnabled() bool {
	return s.tlsConfig != nil
}

// ListenAndServe binds the configured address and serves until the context
// is cancelled. Returns nil on graceful shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.BindAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts control connections from ln until the context is cancelled.
// The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "ftp server listening",
			"address", ln.Addr().String(),
			"tls", s.TLSEnabled(),
			"idle_timeout", s.cfg.IdleTimeout,
		)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Closing the listener unblocks Accept when the context ends.
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	g.Go(func() error {
		for {
			netConn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			g.Go(func() error {
				s.handleConn(gctx, netConn)
				return nil
			})
		}
	})

	err := g.Wait()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) handleConn(ctx context.Context, netConn net.Conn) {
	active := s.active.Add(1)
	metrics.EmitSessions(s.metrics, active)
	defer func() {
		metrics.EmitSessions(s.metrics, s.active.Add(-1))
	}()

	c := newConn(s, netConn)
	defer c.close()

	// A cancelled context closes the connection, unblocking a session
	// waiting for its next command.
	stop := context.AfterFunc(ctx, c.close)
	defer stop()

	if c.logger != nil {
		c.logger.InfoContext(ctx, "control connection opened", "remote", netConn.RemoteAddr().String())
	}
	c.serve(ctx)
}
