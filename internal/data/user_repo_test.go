package data

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/developerfred/libunftp/internal/errors"
)

func TestCreateUserRequestNormalize(t *testing.T) {
	req := CreateUserRequest{Username: "  alice  ", PasswordHash: "h", HomeDir: ""}
	req.Normalize()

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "/", req.HomeDir)
}

func TestCreateUserRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		field   string
		wantErr bool
	}{
		{
			name: "valid",
			req:  CreateUserRequest{Username: "alice", PasswordHash: "h", HomeDir: "/alice"},
		},
		{
			name:    "missing username",
			req:     CreateUserRequest{PasswordHash: "h", HomeDir: "/"},
			field:   "username",
			wantErr: true,
		},
		{
			name:    "missing hash",
			req:     CreateUserRequest{Username: "alice", HomeDir: "/"},
			field:   "password_hash",
			wantErr: true,
		},
		{
			name:    "relative home dir",
			req:     CreateUserRequest{Username: "alice", PasswordHash: "h", HomeDir: "files"},
			field:   "home_dir",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var appErr *apperrors.AppError
			assert.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestCreateUserRequestValidateLongUsername(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	req := CreateUserRequest{Username: string(long), PasswordHash: "h", HomeDir: "/"}
	req.Normalize()
	assert.Error(t, req.Validate())
}
