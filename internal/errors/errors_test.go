package errors

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := Wrap(cause, ErrCodeInternal, "read user row")

	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "read user row: unexpected EOF", err.Error())
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nope"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "nope %d", 1))
}

func TestCodePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("no such user")))
	assert.True(t, IsConflict(Conflict("duplicate username")))
	assert.True(t, IsValidation(ValidationField("username", "required")))
	assert.False(t, IsNotFound(Internal("boom")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want ErrorCode
	}{
		{name: "no rows", in: pgx.ErrNoRows, want: ErrCodeNotFound},
		{name: "deadline", in: context.DeadlineExceeded, want: ErrCodeTimeout},
		{name: "canceled", in: context.Canceled, want: ErrCodeCanceled},
		{name: "unique violation", in: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "username"}, want: ErrCodeConflict},
		{name: "check violation", in: &pgconn.PgError{Code: pgerrcode.CheckViolation}, want: ErrCodeValidation},
		{name: "other pg error", in: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, want: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapDBError(tt.in)
			var appErr *AppError
			require.ErrorAs(t, mapped, &appErr)
			assert.Equal(t, tt.want, appErr.Code)
		})
	}
}

func TestMapDBErrorPassthrough(t *testing.T) {
	plain := errors.New("not a db error")
	assert.Equal(t, plain, MapDBError(plain))
	assert.NoError(t, MapDBError(nil))
}
