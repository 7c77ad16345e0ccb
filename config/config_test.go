package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfigSanitizeDefaults(t *testing.T) {
	cfg := ServerConfig{}
	cfg.Sanitize()

	assert.Equal(t, DefaultGreeting, cfg.Greeting)
	assert.Equal(t, 600*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 49152, cfg.PassivePortMin)
	assert.Equal(t, 65535, cfg.PassivePortMax)
	assert.Equal(t, 0, cfg.MaxConnections)
}

func TestServerConfigValidateInvertedPassiveRange(t *testing.T) {
	cfg := ServerConfig{
		BindAddress:    "0.0.0.0:2121",
		PassivePortMin: 60000,
		PassivePortMax: 50000,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inverted")
}

func TestTLSConfigValidateRequiresBoth(t *testing.T) {
	cfg := TLSConfig{CertFile: "/etc/unftp/server.crt"}
	cfg.Sanitize()
	require.Error(t, cfg.Validate())

	cfg.KeyFile = "/etc/unftp/server.key"
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Enabled())
}

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{input: "anonymous", want: AuthModeAnonymous},
		{input: " Static ", want: AuthModeStatic},
		{input: "POSTGRES", want: AuthModePostgres},
		{input: "ldap", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAuthMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestAuthConfigValidateStaticNeedsFile(t *testing.T) {
	cfg := AuthConfig{Mode: "static"}
	cfg.Sanitize()
	require.Error(t, cfg.Validate())

	cfg.StaticUsersFile = "/etc/unftp/users.json"
	require.NoError(t, cfg.Validate())
}

func TestAuthConfigSanitizeThrottleDefaults(t *testing.T) {
	cfg := AuthConfig{Throttle: ThrottleConfig{MaxAttempts: -1}}
	cfg.Sanitize()

	assert.Equal(t, 5, cfg.Throttle.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Throttle.Window)
}

func TestStorageConfigValidate(t *testing.T) {
	cfg := StorageConfig{Backend: "Filesystem", Root: " /srv/ftp "}
	cfg.Sanitize()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/srv/ftp", cfg.Root)

	cfg = StorageConfig{Backend: "memory"}
	cfg.Sanitize()
	require.NoError(t, cfg.Validate())

	cfg = StorageConfig{Backend: "s3"}
	cfg.Sanitize()
	require.Error(t, cfg.Validate())
}

func TestObservabilityMetricsSanitizeDisablesOnEmptyAddress(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   "}
	cfg.Sanitize()

	assert.False(t, cfg.IsEnabled())
}
