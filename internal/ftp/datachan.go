package ftp

import (
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"time"
)

// acceptTimeout bounds how long a transfer waits for the client to connect
// to the passive port.
const acceptTimeout = 30 * time.Second

// passiveListener is one allocated PASV data port.
type passiveListener struct {
	ln   *net.TCPListener
	port int
}

// allocPassive binds a listener on a free port within [min, max] on ip.
// Ports are probed in random order so concurrent sessions spread out.
func allocPassive(ip net.IP, min, max int) (*passiveListener, error) {
	span := max - min + 1
	start := rand.Intn(span)
	for i := 0; i < span; i++ {
		port := min + (start+i)%span
		ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: ip, Port: port})
		if err != nil {
			continue
		}
		return &passiveListener{ln: ln, port: port}, nil
	}
	return nil, fmt.Errorf("no free passive port in range %d-%d", min, max)
}

// Port returns the bound port.
func (pl *passiveListener) Port() int {
	return pl.port
}

// Accept waits for the client's data connection, optionally wrapping it in
// TLS (PROT P).
func (pl *passiveListener) Accept(tlsConfig *tls.Config) (net.Conn, error) {
	if err := pl.ln.SetDeadline(time.Now().Add(acceptTimeout)); err != nil {
		return nil, err
	}
	conn, err := pl.ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		return tls.Server(conn, tlsConfig), nil
	}
	return conn, nil
}

// Close releases the listening socket.
func (pl *passiveListener) Close() {
	_ = pl.ln.Close()
}

// pasvReply renders the 227 reply for an IPv4 address and port.
func pasvReply(ip net.IP, port int) (Reply, error) {
	v4 := ip.To4()
	if v4 == nil {
		return Reply{}, fmt.Errorf("passive mode needs an IPv4 address, got %s", ip)
	}
	msg := fmt.Sprintf("Entering Passive Mode (%d,%d,%d,%d,%d,%d)",
		v4[0], v4[1], v4[2], v4[3], port>>8, port&0xff)
	return NewReply(CodeEnteringPassiveMode, msg), nil
}

var errTransferAborted = fmt.Errorf("transfer aborted")

// copyWithAbort copies src to dst in chunks, checking the abort channel
// between chunks so an ABOR lands promptly.
func copyWithAbort(dst io.Writer, src io.Reader, abort <-chan struct{}) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64
	for {
		select {
		case <-abort:
			return written, errTransferAborted
		default:
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				return written, abortOr(werr, abort)
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return written, nil
			}
			return written, abortOr(rerr, abort)
		}
	}
}

// abortOr maps an I/O error caused by the abort closing the data connection
// back to errTransferAborted.
func abortOr(err error, abort <-chan struct{}) error {
	select {
	case <-abort:
		return errTransferAborted
	default:
		return err
	}
}
