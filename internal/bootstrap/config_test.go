package bootstrap

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout around fn and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestInitLoggerProductionIsJSON(t *testing.T) {
	out := captureStdout(t, func() {
		logger := InitLogger(false)
		logger.Info("server ready", "component", "test")
		// Debug is below the production level.
		logger.Debug("hidden")
	})

	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"component":"test"`)
	assert.NotContains(t, out, "hidden")
}

func TestInitLoggerDevIsTextAtDebug(t *testing.T) {
	out := captureStdout(t, func() {
		InitLogger(true).Debug("poking around")
	})

	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="poking around"`)
}
