package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerfred/libunftp/internal/cimatrix"
)

func TestCommandTable(t *testing.T) {
	cmds := commands()
	for _, name := range []string{"user-add", "user-list", "user-del", "user-set-enabled", "migrate", "ci-cells"} {
		c, ok := cmds[name]
		require.True(t, ok, "missing command %s", name)
		assert.Equal(t, name, c.name)
		assert.NotNil(t, c.run)
		assert.NotEmpty(t, c.description)
	}
}

func TestParseUserAddFlags(t *testing.T) {
	opts, err := parseUserAddFlags([]string{"-username", "alice", "-home", "/srv/alice", "-disabled"})
	require.NoError(t, err)
	assert.Equal(t, "alice", opts.Username)
	assert.Equal(t, "/srv/alice", opts.HomeDir)
	assert.True(t, opts.Disabled)

	_, err = parseUserAddFlags(nil)
	require.Error(t, err)
}

func TestPrintCellsMarksAllowedFailures(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer func() {
		os.Stdout = oldStdout
	}()

	os.Stdout = w

	p := &cimatrix.Pipeline{
		Language:   "go",
		Toolchains: []string{"stable", "tip"},
		OSes:       []string{"linux"},
		Script:     []string{"go test ./..."},
		Matrix: cimatrix.Matrix{
			FastFinish:    true,
			AllowFailures: []cimatrix.Selector{{Toolchain: "tip"}},
		},
	}
	err = printCells(os.Stdout, p)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	outStr := string(output)
	assert.Regexp(t, `tip\s+linux\s+true`, outStr)
	assert.Contains(t, outStr, "2 cells, 1 allowed to fail, fast_finish=true")
}
