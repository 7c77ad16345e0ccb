package ftp

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/developerfred/libunftp/internal/observability/metrics"
)

// writeTimeout bounds a single reply write on the control channel.
const writeTimeout = 10 * time.Second

// action tells the control loop what to do after a reply is written.
type action int

const (
	actionNone action = iota
	// actionQuit closes the connection after the reply.
	actionQuit
	// actionUpgradeTLS runs the AUTH TLS handshake after the 234 reply.
	actionUpgradeTLS
)

// conn is one control connection. Replies may be written concurrently by
// transfer goroutines; writes are serialized by writeMu.
type conn struct {
	server  *Server
	session *Session
	logger  *slog.Logger

	netConn net.Conn
	reader  *bufio.Reader
	writeMu sync.Mutex
}

func newConn(s *Server, netConn net.Conn) *conn {
	session := NewSession()
	var logger *slog.Logger
	if s.logger != nil {
		logger = s.logger.With("session_id", session.ID)
	}
	return &conn{
		server:  s,
		session: session,
		logger:  logger,
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
	}
}

// close may run concurrently with an AUTH TLS upgrade swapping netConn, so
// the pointer is read under writeMu.
func (c *conn) close() {
	c.session.Close()
	c.writeMu.Lock()
	_ = c.netConn.Close()
	c.writeMu.Unlock()
}

// serve runs the control channel loop until the connection ends.
func (c *conn) serve(ctx context.Context) {
	c.reply(NewReply(CodeServiceReady, c.server.cfg.Greeting))

	for {
		if ctx.Err() != nil {
			return
		}

		_ = c.netConn.SetReadDeadline(time.Now().Add(c.server.cfg.IdleTimeout))
		line, err := c.reader.ReadString('\n')
		if err != nil {
			c.handleReadError(ctx, err)
			return
		}

		cmd, perr := ParseCommand(line)
		if perr != nil {
			c.replyParseError(ctx, perr)
			continue
		}

		if c.logger != nil {
			c.logger.DebugContext(ctx, "command received", "verb", string(cmd.Verb))
		}

		reply, act := c.dispatch(ctx, cmd)
		result := metrics.ResultSuccess
		if reply.Code >= 400 {
			result = metrics.ResultError
		}
		metrics.EmitCommand(c.server.metrics, string(cmd.Verb), result)

		c.reply(reply)

		switch act {
		case actionQuit:
			return
		case actionUpgradeTLS:
			if err := c.upgradeTLS(); err != nil {
				if c.logger != nil {
					c.logger.WarnContext(ctx, "tls handshake failed", "error", err)
				}
				return
			}
			c.session.MarkControlTLS()
		}
	}
}

func (c *conn) handleReadError(ctx context.Context, err error) {
	var ne net.Error
	switch {
	case errors.As(err, &ne) && ne.Timeout():
		if c.logger != nil {
			c.logger.InfoContext(ctx, "session timed out")
		}
		metrics.EmitControlError(c.server.metrics, "timeout")
		c.reply(NewReply(CodeClosingControlConn, "Session timed out. Closing control connection"))
	case errors.Is(err, io.EOF):
		if c.logger != nil {
			c.logger.InfoContext(ctx, "client closed control connection")
		}
	default:
		metrics.EmitControlError(c.server.metrics, "io")
		if c.logger != nil {
			c.logger.WarnContext(ctx, "control channel read failed", "error", err)
		}
	}
}

func (c *conn) replyParseError(ctx context.Context, err error) {
	var perr *ParseError
	if !errors.As(err, &perr) {
		metrics.EmitControlError(c.server.metrics, "internal")
		c.reply(NewReply(CodeLocalError, "Unknown internal server error, please try again later"))
		return
	}

	switch perr.Kind {
	case KindUnknownCommand:
		metrics.EmitControlError(c.server.metrics, "unknown_command")
		c.reply(NewReply(CodeSyntaxError, "Command not implemented"))
	case KindInvalidUTF8:
		metrics.EmitControlError(c.server.metrics, "utf8")
		c.reply(NewReply(CodeSyntaxError, "Invalid UTF8 in command"))
	default:
		metrics.EmitControlError(c.server.metrics, "invalid_command")
		c.reply(NewReply(CodeParamSyntaxError, "Invalid Parameter"))
	}
	if c.logger != nil {
		c.logger.DebugContext(ctx, "command rejected", "error", err)
	}
}

// reply writes r to the control channel. Safe for concurrent use.
func (c *conn) reply(r Reply) {
	if r.None() {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := io.WriteString(c.netConn, r.String()); err != nil {
		if c.logger != nil {
			c.logger.Warn("could not send reply", "code", r.Code, "error", err)
		}
		return
	}
	metrics.EmitReply(c.server.metrics, r.Code)
}

// upgradeTLS wraps the control connection in TLS after AUTH TLS.
func (c *conn) upgradeTLS() error {
	_ = c.netConn.SetDeadline(time.Now().Add(writeTimeout))
	tlsConn := tls.Server(c.netConn, c.server.tlsConfig)
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		return err
	}
	_ = tlsConn.SetDeadline(time.Time{})

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.netConn = tlsConn
	c.reader = bufio.NewReader(tlsConn)
	return nil
}
