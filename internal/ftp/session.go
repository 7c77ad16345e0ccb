package ftp

import (
	"net"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/developerfred/libunftp/internal/auth"
)

// SessionState tracks login progress on a control connection.
type SessionState int

const (
	// StateNew: no USER received yet.
	StateNew SessionState = iota
	// StateWaitPass: USER received, waiting for PASS.
	StateWaitPass
	// StateLoggedIn: authenticated, all commands available.
	StateLoggedIn
)

// Session holds per-connection state shared between the control loop and
// transfer goroutines.
type Session struct {
	mu sync.Mutex

	// ID identifies the session in logs.
	ID string

	state        SessionState
	username     string // pending USER argument
	user         *auth.User
	cwd          string
	restOffset   int64
	renameFrom   string
	controlTLS   bool // control channel upgraded with AUTH TLS
	dataTLS      bool // PROT P active
	pbszReceived bool

	// data is the currently allocated passive listener, nil outside the
	// PASV → transfer window.
	data *passiveListener

	// dataConn is the accepted data connection of a running transfer.
	// ABOR and session close must close it to unblock a stalled copy.
	dataConn net.Conn

	// abort is closed by ABOR to cancel a running transfer.
	abort chan struct{}
}

// NewSession creates a Session in the initial state.
func NewSession() *Session {
	return &Session{
		ID:  uuid.NewString(),
		cwd: "/",
	}
}

// State returns the current login state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetUsername records the USER argument and moves to StateWaitPass.
func (s *Session) SetUsername(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = name
	s.state = StateWaitPass
	s.user = nil
}

// Username returns the pending USER argument.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Login records the authenticated user, moves to StateLoggedIn and places
// the session in the user's home directory.
func (s *Session) Login(u *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.state = StateLoggedIn
	home := "/"
	if u != nil && u.HomeDir != "" {
		home = path.Clean("/" + u.HomeDir)
	}
	s.cwd = home
}

// User returns the authenticated user, nil before login.
func (s *Session) User() *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Cwd returns the current working directory.
func (s *Session) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// ChangeDir sets the working directory to the resolved path.
func (s *Session) ChangeDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cwd = dir
}

// Resolve maps a command path argument onto an absolute virtual path,
// relative arguments are taken against the working directory.
func (s *Session) Resolve(arg string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	arg = strings.ReplaceAll(arg, "\\", "/")
	if !strings.HasPrefix(arg, "/") {
		arg = s.cwd + "/" + arg
	}
	return path.Clean("/" + arg)
}

// SetRestOffset stores the REST argument for the next transfer.
func (s *Session) SetRestOffset(offset int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restOffset = offset
}

// TakeRestOffset returns the stored offset and resets it to zero.
func (s *Session) TakeRestOffset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset := s.restOffset
	s.restOffset = 0
	return offset
}

// SetRenameFrom stores the RNFR path.
func (s *Session) SetRenameFrom(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renameFrom = p
}

// TakeRenameFrom returns the stored RNFR path and clears it.
func (s *Session) TakeRenameFrom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.renameFrom
	s.renameFrom = ""
	return from
}

// MarkControlTLS records a successful AUTH TLS upgrade.
func (s *Session) MarkControlTLS() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controlTLS = true
}

// ControlTLS reports whether the control channel is TLS-protected.
func (s *Session) ControlTLS() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controlTLS
}

// SetPBSZ records that PBSZ 0 was received.
func (s *Session) SetPBSZ() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pbszReceived = true
}

// PBSZReceived reports whether PBSZ was negotiated.
func (s *Session) PBSZReceived() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pbszReceived
}

// SetDataTLS toggles TLS protection (PROT P) for data connections.
func (s *Session) SetDataTLS(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataTLS = on
}

// DataTLS reports whether data connections are TLS-protected.
func (s *Session) DataTLS() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataTLS
}

// SetPassive installs a freshly allocated passive listener, closing any
// previous one.
func (s *Session) SetPassive(pl *passiveListener) {
	s.mu.Lock()
	old := s.data
	s.data = pl
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// TakePassive removes and returns the passive listener, nil when PASV was
// not issued.
func (s *Session) TakePassive() *passiveListener {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl := s.data
	s.data = nil
	return pl
}

// BeginTransfer arms the abort channel and returns it. Any previous
// transfer's channel is replaced.
func (s *Session) BeginTransfer() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abort = make(chan struct{})
	return s.abort
}

// TrackDataConn records the accepted data connection so an abort can close
// it. If the transfer was already aborted the connection is closed here.
func (s *Session) TrackDataConn(conn net.Conn) {
	s.mu.Lock()
	aborted := s.abort == nil
	if !aborted {
		select {
		case <-s.abort:
			aborted = true
		default:
		}
	}
	if !aborted {
		s.dataConn = conn
	}
	s.mu.Unlock()
	if aborted {
		_ = conn.Close()
	}
}

// Abort cancels a running transfer. It reports whether one was armed.
// The abort channel is closed first so a copy unblocked by the connection
// close still observes the abort.
func (s *Session) Abort() bool {
	s.mu.Lock()
	armed := s.abort != nil
	if armed {
		select {
		case <-s.abort:
			// already aborted
		default:
			close(s.abort)
		}
		s.abort = nil
	}
	dc := s.dataConn
	s.dataConn = nil
	s.mu.Unlock()
	if dc != nil {
		_ = dc.Close()
	}
	return armed
}

// EndTransfer disarms the abort channel after a transfer completes.
func (s *Session) EndTransfer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abort = nil
	s.dataConn = nil
}

// Close releases session resources.
func (s *Session) Close() {
	if pl := s.TakePassive(); pl != nil {
		pl.Close()
	}
	s.Abort()
}

// remoteIP extracts the bare IP from a connection's remote address.
func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
