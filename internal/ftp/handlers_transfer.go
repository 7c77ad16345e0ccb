package ftp

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/developerfred/libunftp/internal/observability/metrics"
	"github.com/developerfred/libunftp/internal/storage"
)

func (c *conn) handlePasv() (Reply, action) {
	addr, ok := c.netConn.LocalAddr().(*net.TCPAddr)
	if !ok {
		return NewReply(CodeCantOpenDataConn, "Failed to open data connection"), actionNone
	}

	pl, err := allocPassive(addr.IP, c.server.cfg.PassivePortMin, c.server.cfg.PassivePortMax)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("passive port allocation failed", "error", err)
		}
		return NewReply(CodeCantOpenDataConn, "Failed to open data connection"), actionNone
	}

	r, err := pasvReply(addr.IP, pl.Port())
	if err != nil {
		pl.Close()
		return NewReply(CodeCantOpenDataConn, "Failed to open data connection"), actionNone
	}
	c.session.SetPassive(pl)
	return r, actionNone
}

// dataTLSConfig returns the TLS config for the data channel, nil when the
// session has not negotiated PROT P.
func (c *conn) dataTLSConfig() *tls.Config {
	if c.session.DataTLS() {
		return c.server.tlsConfig
	}
	return nil
}

func (c *conn) handleRetr(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	pl := c.session.TakePassive()
	if pl == nil {
		return NewReply(CodeCantOpenDataConn, "Use PASV first"), actionNone
	}

	filePath := c.session.Resolve(arg)
	offset := c.session.TakeRestOffset()
	abort := c.session.BeginTransfer()
	tlsConfig := c.dataTLSConfig()

	go c.runRetrieve(ctx, pl, tlsConfig, filePath, offset, abort)
	return NewReply(CodeFileStatusOkay, "Sending data"), actionNone
}

func (c *conn) runRetrieve(ctx context.Context, pl *passiveListener, tlsConfig *tls.Config, filePath string, offset int64, abort <-chan struct{}) {
	defer c.session.EndTransfer()
	defer pl.Close()

	started := timeNow()

	dataConn, err := pl.Accept(tlsConfig)
	if err != nil {
		c.finishTransfer(ctx, metrics.DirectionRetrieve, 0, started, NewReply(CodeCantOpenDataConn, "Failed to open data connection"), err)
		return
	}
	defer dataConn.Close()
	c.session.TrackDataConn(dataConn)

	src, err := c.server.storage.Open(ctx, filePath, offset)
	if err != nil {
		c.finishTransfer(ctx, metrics.DirectionRetrieve, 0, started, mapStorageError(err), err)
		return
	}
	defer src.Close()

	n, err := copyWithAbort(dataConn, src, abort)
	if err != nil {
		if errors.Is(err, errTransferAborted) {
			// The ABOR handler owns the reply.
			return
		}
		c.finishTransfer(ctx, metrics.DirectionRetrieve, n, started, NewReply(CodeConnectionClosed, "Transfer failed"), err)
		return
	}
	c.finishTransfer(ctx, metrics.DirectionRetrieve, n, started, NewReply(CodeClosingDataConn, "Successfully sent"), nil)
}

func (c *conn) handleStor(ctx context.Context, arg string) (Reply, action) {
	if arg == "" {
		return NewReply(CodeParamSyntaxError, "Invalid Parameter"), actionNone
	}
	return c.startStore(ctx, c.session.Resolve(arg))
}

// handleStou stores under a server-chosen unique name in the cwd.
func (c *conn) handleStou(ctx context.Context) (Reply, action) {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	return c.startStore(ctx, path.Join(c.session.Cwd(), name))
}

func (c *conn) startStore(ctx context.Context, filePath string) (Reply, action) {
	pl := c.session.TakePassive()
	if pl == nil {
		return NewReply(CodeCantOpenDataConn, "Use PASV first"), actionNone
	}

	offset := c.session.TakeRestOffset()
	abort := c.session.BeginTransfer()
	tlsConfig := c.dataTLSConfig()

	go c.runStore(ctx, pl, tlsConfig, filePath, offset, abort)
	return NewReply(CodeFileStatusOkay, "Ready to receive data"), actionNone
}

func (c *conn) runStore(ctx context.Context, pl *passiveListener, tlsConfig *tls.Config, filePath string, offset int64, abort <-chan struct{}) {
	defer c.session.EndTransfer()
	defer pl.Close()

	started := timeNow()

	dataConn, err := pl.Accept(tlsConfig)
	if err != nil {
		c.finishTransfer(ctx, metrics.DirectionStore, 0, started, NewReply(CodeCantOpenDataConn, "Failed to open data connection"), err)
		return
	}
	defer dataConn.Close()
	c.session.TrackDataConn(dataConn)

	n, err := c.server.storage.Put(ctx, filePath, newAbortReader(dataConn, abort), offset)
	if err != nil {
		if errors.Is(err, errTransferAborted) {
			return
		}
		c.finishTransfer(ctx, metrics.DirectionStore, n, started, mapStorageError(err), err)
		return
	}
	c.finishTransfer(ctx, metrics.DirectionStore, n, started, NewReply(CodeClosingDataConn, "File successfully written"), nil)
}

// abortReader wraps the data connection so a Put sees a read error when the
// transfer is aborted mid stream.
type abortReader struct {
	r     io.Reader
	abort <-chan struct{}
}

func newAbortReader(r io.Reader, abort <-chan struct{}) *abortReader {
	return &abortReader{r: r, abort: abort}
}

func (a *abortReader) Read(p []byte) (int, error) {
	select {
	case <-a.abort:
		return 0, errTransferAborted
	default:
	}
	n, err := a.r.Read(p)
	if err != nil && err != io.EOF {
		// An abort closes the connection under us; report it as an abort
		// rather than an I/O failure.
		select {
		case <-a.abort:
			return n, errTransferAborted
		default:
		}
	}
	return n, err
}

// finishTransfer sends the final control reply and emits transfer metrics.
func (c *conn) finishTransfer(ctx context.Context, direction string, n int64, started time.Time, r Reply, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
		if c.logger != nil {
			c.logger.WarnContext(ctx, "transfer failed", "direction", direction, "bytes", n, "error", err)
		}
	} else if c.logger != nil {
		c.logger.InfoContext(ctx, "transfer complete", "direction", direction, "bytes", n)
	}
	metrics.EmitTransfer(c.server.metrics, metrics.TransferMetric{
		Direction: direction,
		Bytes:     n,
		Duration:  timeNow().Sub(started),
		Result:    result,
	})
	c.reply(r)
}

func (c *conn) handleList(ctx context.Context, arg string, long bool) (Reply, action) {
	pl := c.session.TakePassive()
	if pl == nil {
		return NewReply(CodeCantOpenDataConn, "Use PASV first"), actionNone
	}

	// LIST arguments are often ls(1) flags; ignore anything flag shaped.
	target := c.session.Cwd()
	if arg != "" && !strings.HasPrefix(arg, "-") {
		target = c.session.Resolve(arg)
	}

	abort := c.session.BeginTransfer()
	tlsConfig := c.dataTLSConfig()

	go c.runList(ctx, pl, tlsConfig, target, long, abort)
	return NewReply(CodeFileStatusOkay, "Sending directory list"), actionNone
}

func (c *conn) runList(ctx context.Context, pl *passiveListener, tlsConfig *tls.Config, target string, long bool, abort <-chan struct{}) {
	defer c.session.EndTransfer()
	defer pl.Close()

	dataConn, err := pl.Accept(tlsConfig)
	if err != nil {
		c.reply(NewReply(CodeCantOpenDataConn, "Failed to open data connection"))
		return
	}
	defer dataConn.Close()
	c.session.TrackDataConn(dataConn)

	entries, err := c.server.storage.List(ctx, target)
	if err != nil {
		c.reply(mapStorageError(err))
		return
	}

	now := timeNow()
	var b strings.Builder
	for _, entry := range entries {
		if long {
			b.WriteString(storage.FormatListLine(entry, now))
		} else {
			b.WriteString(entry.Name)
		}
		b.WriteString("\r\n")
	}

	if _, err := copyWithAbort(dataConn, strings.NewReader(b.String()), abort); err != nil {
		if errors.Is(err, errTransferAborted) {
			return
		}
		c.reply(NewReply(CodeConnectionClosed, "Transfer failed"))
		return
	}
	c.reply(NewReply(CodeClosingDataConn, "Listed the directory"))
}

func (c *conn) handleAbor() (Reply, action) {
	if c.session.Abort() {
		return NewReply(CodeClosingDataConn, "Closed data channel"), actionNone
	}
	if pl := c.session.TakePassive(); pl != nil {
		pl.Close()
		return NewReply(CodeClosingDataConn, "Closed data channel"), actionNone
	}
	return NewReply(CodeClosingDataConn, "Data channel already closed"), actionNone
}
