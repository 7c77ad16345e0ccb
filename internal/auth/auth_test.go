package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/developerfred/libunftp/internal/errors"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAnonymousAcceptsAnything(t *testing.T) {
	ctx := context.Background()

	u, err := Anonymous{}.Authenticate(ctx, "alice", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)
	assert.True(t, u.Anonymous)

	u, err = Anonymous{}.Authenticate(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", u.Name)
}

func TestStaticAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, err := NewStatic([]StaticUser{
		{Username: "alice", PasswordHash: hash(t, "s3cret"), HomeDir: "/alice"},
		{Username: "bob", PasswordHash: hash(t, "hunter2"), Disabled: true},
	})
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "/alice", u.HomeDir)
	assert.False(t, u.Anonymous)

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.Authenticate(ctx, "bob", "hunter2")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestNewStaticRejectsBadLists(t *testing.T) {
	_, err := NewStatic([]StaticUser{{Username: " ", PasswordHash: "x"}})
	assert.Error(t, err)

	_, err = NewStatic([]StaticUser{{Username: "a", PasswordHash: ""}})
	assert.Error(t, err)

	_, err = NewStatic([]StaticUser{
		{Username: "a", PasswordHash: "x"},
		{Username: "a", PasswordHash: "y"},
	})
	assert.Error(t, err)
}

func TestLoadStatic(t *testing.T) {
	users := []StaticUser{{Username: "alice", PasswordHash: hash(t, "pw")}}
	raw, err := json.Marshal(users)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	s, err := LoadStatic(path)
	require.NoError(t, err)

	_, err = s.Authenticate(context.Background(), "alice", "pw")
	require.NoError(t, err)
}

// fakeUserStore is a hand-written store used to test the postgres
// authenticator without a database.
type fakeUserStore struct {
	users map[string]*StoredUser
	err   error
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*StoredUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	return u, nil
}

func TestPostgresAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := &fakeUserStore{users: map[string]*StoredUser{
		"carol": {Username: "carol", PasswordHash: hash(t, "pw"), HomeDir: "/carol", Enabled: true},
		"dave":  {Username: "dave", PasswordHash: hash(t, "pw"), Enabled: false},
	}}

	p, err := NewPostgres(store)
	require.NoError(t, err)

	u, err := p.Authenticate(ctx, "carol", "pw")
	require.NoError(t, err)
	assert.Equal(t, "/carol", u.HomeDir)

	_, err = p.Authenticate(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = p.Authenticate(ctx, "missing", "pw")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = p.Authenticate(ctx, "dave", "pw")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestPostgresStoreErrorIsNotBadCredentials(t *testing.T) {
	p, err := NewPostgres(&fakeUserStore{err: apperrors.Internal("db down")})
	require.NoError(t, err)

	_, err = p.Authenticate(context.Background(), "carol", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadCredentials)
}

func TestNewPostgresRequiresStore(t *testing.T) {
	_, err := NewPostgres(nil)
	assert.Error(t, err)
}

func TestNilThrottleAllows(t *testing.T) {
	var th *Throttle
	assert.True(t, th.Allow(context.Background(), "alice", "127.0.0.1"))
	th.RecordFailure(context.Background(), "alice", "127.0.0.1")
	th.Reset(context.Background(), "alice", "127.0.0.1")
	assert.Zero(t, th.Window())
}
