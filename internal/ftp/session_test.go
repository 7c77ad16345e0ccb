package ftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerfred/libunftp/internal/auth"
)

func TestSessionLoginFlow(t *testing.T) {
	s := NewSession()
	require.Equal(t, StateNew, s.State())
	assert.Equal(t, "/", s.Cwd())

	s.SetUsername("alice")
	assert.Equal(t, StateWaitPass, s.State())
	assert.Equal(t, "alice", s.Username())

	s.Login(&auth.User{Name: "alice", HomeDir: "/home/alice"})
	assert.Equal(t, StateLoggedIn, s.State())
	assert.Equal(t, "/home/alice", s.Cwd())
}

func TestSessionResolve(t *testing.T) {
	s := NewSession()
	s.ChangeDir("/pub/files")

	tests := []struct {
		arg  string
		want string
	}{
		{arg: "readme.txt", want: "/pub/files/readme.txt"},
		{arg: "/etc/motd", want: "/etc/motd"},
		{arg: "..", want: "/pub"},
		{arg: "../..", want: "/"},
		{arg: "../../../..", want: "/"},
		{arg: "a/./b", want: "/pub/files/a/b"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, s.Resolve(tc.arg), "arg %q", tc.arg)
	}
}

func TestSessionTakeSemantics(t *testing.T) {
	s := NewSession()

	s.SetRestOffset(1024)
	assert.EqualValues(t, 1024, s.TakeRestOffset())
	assert.Zero(t, s.TakeRestOffset())

	s.SetRenameFrom("/old.txt")
	assert.Equal(t, "/old.txt", s.TakeRenameFrom())
	assert.Empty(t, s.TakeRenameFrom())
}

func TestSessionAbort(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Abort(), "no transfer armed")

	abort := s.BeginTransfer()
	require.True(t, s.Abort())
	select {
	case <-abort:
	default:
		t.Fatal("abort channel not closed")
	}

	assert.False(t, s.Abort(), "abort disarms the channel")
}
