// Package auth defines the authenticator abstraction used by the PASS
// handler, plus the bundled implementations: anonymous, static user list and
// the postgres-backed user store.
package auth

import (
	"context"
	"errors"
)

// ErrBadCredentials is returned when the username/password pair is rejected.
// Handlers must not leak whether the user exists.
var ErrBadCredentials = errors.New("bad credentials")

// ErrAccountDisabled is returned for valid credentials on a disabled account.
var ErrAccountDisabled = errors.New("account disabled")

// User describes an authenticated session principal.
type User struct {
	// Name is the login name.
	Name string
	// HomeDir is the virtual directory the session starts in. Empty
	// means "/".
	HomeDir string
	// Anonymous marks principals produced by the anonymous authenticator.
	Anonymous bool
}

// Authenticator validates credentials presented on the control channel.
type Authenticator interface {
	// Authenticate returns the user for the given credentials, or
	// ErrBadCredentials / ErrAccountDisabled.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
