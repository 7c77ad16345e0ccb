package auth

// Package auth contains simple hand-written test doubles for the auth
// interfaces. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"

	"github.com/developerfred/libunftp/internal/auth"
	apperrors "github.com/developerfred/libunftp/internal/errors"
)

// Ensure compile-time conformance.
var (
	_ auth.Authenticator = (*MockAuthenticator)(nil)
	_ auth.UserStore     = (*MemoryUserStore)(nil)
)

// MockAuthenticator is a deterministic Authenticator for tests. With no
// overrides it accepts every credential pair and records the calls it saw.
type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, username, password string) (*auth.User, error)

	// DefaultUser is returned when AuthenticateFunc is nil. A zero value
	// echoes the supplied username.
	DefaultUser *auth.User

	mu    sync.Mutex
	calls []string
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	m.mu.Lock()
	m.calls = append(m.calls, username)
	m.mu.Unlock()

	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	if m.DefaultUser != nil {
		u := *m.DefaultUser
		return &u, nil
	}
	return &auth.User{Name: username, HomeDir: "/"}, nil
}

// Calls returns the usernames Authenticate was invoked with, in order.
func (m *MockAuthenticator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MemoryUserStore is an in-memory UserStore keyed by username.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]auth.StoredUser
}

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]auth.StoredUser)}
}

// Put adds or replaces a stored user.
func (s *MemoryUserStore) Put(u auth.StoredUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
}

// GetByUsername returns the stored user, or a not-found error matching the
// real repository's behavior.
func (s *MemoryUserStore) GetByUsername(ctx context.Context, username string) (*auth.StoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	return &u, nil
}
