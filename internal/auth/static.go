package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// StaticUser is one entry of the JSON user list consumed by NewStatic.
type StaticUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"` // bcrypt
	HomeDir      string `json:"home_dir,omitempty"`
	Disabled     bool   `json:"disabled,omitempty"`
}

// Static authenticates against a fixed user list loaded at startup.
type Static struct {
	users map[string]StaticUser
}

var _ Authenticator = (*Static)(nil)

// NewStatic builds a Static authenticator from the given users. Usernames
// are case-sensitive and must be unique.
func NewStatic(users []StaticUser) (*Static, error) {
	byName := make(map[string]StaticUser, len(users))
	for _, u := range users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return nil, fmt.Errorf("static user list: empty username")
		}
		if u.PasswordHash == "" {
			return nil, fmt.Errorf("static user list: user %q has no password hash", name)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("static user list: duplicate username %q", name)
		}
		u.Username = name
		byName[name] = u
	}
	return &Static{users: byName}, nil
}

// LoadStatic reads a JSON user list from path and builds a Static
// authenticator from it.
func LoadStatic(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static users file: %w", err)
	}
	var users []StaticUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse static users file: %w", err)
	}
	return NewStatic(users)
}

// Authenticate verifies the password against the stored bcrypt hash.
func (s *Static) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		// Burn a comparison anyway so missing and present users take
		// comparable time.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(password))
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if u.Disabled {
		return nil, ErrAccountDisabled
	}
	return &User{Name: u.Username, HomeDir: u.HomeDir}, nil
}
