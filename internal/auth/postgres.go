package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/developerfred/libunftp/internal/errors"
)

// StoredUser is the user-store row the postgres authenticator verifies
// against. It mirrors internal/data's FTPUser without importing it.
type StoredUser struct {
	Username     string
	PasswordHash string
	HomeDir      string
	Enabled      bool
}

// UserStore is the slice of the user repository the authenticator needs.
// internal/data.UserRepo satisfies it.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*StoredUser, error)
}

// Postgres authenticates against the ftp_users table via a UserStore.
type Postgres struct {
	store UserStore
}

var _ Authenticator = (*Postgres)(nil)

// NewPostgres constructs a Postgres authenticator.
func NewPostgres(store UserStore) (*Postgres, error) {
	if store == nil {
		return nil, errors.New("UserStore is required")
	}
	return &Postgres{store: store}, nil
}

// Authenticate looks the user up and verifies the bcrypt hash.
func (p *Postgres) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := p.store.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Burn a comparison so missing and present users take
			// comparable time.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(password))
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if !u.Enabled {
		return nil, ErrAccountDisabled
	}
	return &User{Name: u.Username, HomeDir: u.HomeDir}, nil
}
