// Package data implements the PostgreSQL-backed user store for the postgres
// authenticator and the admin CLI.
package data

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/developerfred/libunftp/internal/auth"
	"github.com/developerfred/libunftp/internal/data/pgxutil"
	apperrors "github.com/developerfred/libunftp/internal/errors"
)

// FTPUser is a row of the ftp_users table.
type FTPUser struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	HomeDir      string    `db:"home_dir"`
	Enabled      bool      `db:"enabled"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CreateUserRequest carries the fields for UserRepo.Create.
type CreateUserRequest struct {
	Username     string
	PasswordHash string
	HomeDir      string
	Enabled      bool
}

// Normalize trims whitespace and fills defaults.
func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.HomeDir = strings.TrimSpace(r.HomeDir)
	if r.HomeDir == "" {
		r.HomeDir = "/"
	}
}

// Validate checks the request is storable.
func (r *CreateUserRequest) Validate() error {
	if r.Username == "" {
		return apperrors.ValidationField("username", "username is required")
	}
	if len(r.Username) > 128 {
		return apperrors.ValidationField("username", "username exceeds 128 characters")
	}
	if r.PasswordHash == "" {
		return apperrors.ValidationField("password_hash", "password hash is required")
	}
	if !strings.HasPrefix(r.HomeDir, "/") {
		return apperrors.ValidationField("home_dir", "home directory must be absolute")
	}
	return nil
}

// UserRepo implements the user store over PostgreSQL.
type UserRepo struct {
	DB *sql.DB
}

var _ auth.UserStore = (*UserRepo)(nil)

// NewUserRepo creates a new UserRepo with the given database connection.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `id, username, password_hash, home_dir, enabled, created_at, updated_at`

// Create inserts a new ftp_users row.
func (r *UserRepo) Create(ctx context.Context, req CreateUserRequest) (*FTPUser, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out FTPUser
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO ftp_users (username, password_hash, home_dir, enabled)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			req.Username, req.PasswordHash, req.HomeDir, req.Enabled)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[FTPUser])
		return e
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByUsername returns the stored credentials for a username, satisfying
// auth.UserStore.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.StoredUser, error) {
	row, err := r.getRow(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return &auth.StoredUser{
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		HomeDir:      row.HomeDir,
		Enabled:      row.Enabled,
	}, nil
}

// Get returns the full ftp_users row for a username.
func (r *UserRepo) Get(ctx context.Context, username string) (*FTPUser, error) {
	return r.getRow(ctx, strings.TrimSpace(username))
}

func (r *UserRepo) getRow(ctx context.Context, username string) (*FTPUser, error) {
	if username == "" {
		return nil, apperrors.ValidationField("username", "username is required")
	}
	var out FTPUser
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userColumns+` FROM ftp_users WHERE username = $1`, username)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[FTPUser])
		return e
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]FTPUser, error) {
	var out []FTPUser
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userColumns+` FROM ftp_users ORDER BY username`)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectRows(rows, pgx.RowToStructByName[FTPUser])
		return e
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// SetEnabled flips the enabled flag for a username.
func (r *UserRepo) SetEnabled(ctx context.Context, username string, enabled bool) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperrors.ValidationField("username", "username is required")
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx,
			`UPDATE ftp_users SET enabled = $2, updated_at = now() WHERE username = $1`,
			username, enabled)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	return apperrors.MapDBError(err)
}

// Delete removes a user by username.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperrors.ValidationField("username", "username is required")
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM ftp_users WHERE username = $1`, username)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	return apperrors.MapDBError(err)
}
