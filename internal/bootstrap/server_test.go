package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerfred/libunftp/config"
)

func baseConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.AppConfig{}
	cfg.Server.BindAddress = "127.0.0.1:0"
	cfg.Storage.Backend = string(config.StorageBackendMemory)
	cfg.Auth.Mode = string(config.AuthModeAnonymous)
	cfg.Sanitize()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuildServerMemoryAnonymous(t *testing.T) {
	app, err := BuildServer(context.Background(), baseConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.NotNil(t, app.Server)
	assert.False(t, app.Server.TLSEnabled())
}

func TestBuildServerRejectsBadStorage(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Backend = "tape"

	_, err := BuildServer(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage backend")
}

func TestBuildServerRequiresStaticUserFile(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Auth.Mode = string(config.AuthModeStatic)
	cfg.Auth.StaticUsersFile = "/does/not/exist.json"

	_, err := BuildServer(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "static user list")
}
