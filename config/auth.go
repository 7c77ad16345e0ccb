package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects the authenticator backend.
type AuthMode string

const (
	// AuthModeAnonymous accepts any credentials (the default, matching
	// classic anonymous FTP).
	AuthModeAnonymous AuthMode = "anonymous"
	// AuthModeStatic authenticates against a fixed user list loaded from
	// a JSON file.
	AuthModeStatic AuthMode = "static"
	// AuthModePostgres authenticates against the ftp_users table.
	AuthModePostgres AuthMode = "postgres"
)

// ParseAuthMode parses a string into an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(strings.ToLower(strings.TrimSpace(s))) {
	case AuthModeAnonymous:
		return AuthModeAnonymous, nil
	case AuthModeStatic:
		return AuthModeStatic, nil
	case AuthModePostgres:
		return AuthModePostgres, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q (expected anonymous, static or postgres)", s)
	}
}

// AuthConfig contains authentication configuration.
type AuthConfig struct {
	// Mode selects the authenticator backend: anonymous, static or postgres.
	Mode string `env:"MODE" envDefault:"anonymous"`

	// StaticUsersFile is the path to the JSON user list used in static mode.
	StaticUsersFile string `env:"STATIC_USERS_FILE"`

	// Throttle configuration for failed login attempts (Redis-backed).
	Throttle ThrottleConfig `envPrefix:"THROTTLE_"`
}

// ThrottleConfig controls the Redis-backed failed-login throttle.
type ThrottleConfig struct {
	// Enabled turns the throttle on. Requires Redis connectivity.
	Enabled bool `env:"ENABLED" envDefault:"false"`

	// MaxAttempts is the number of failed attempts tolerated per
	// (username, source IP) pair within Window.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"5"`

	// Window is the sliding interval failed attempts are counted over.
	Window time.Duration `env:"WINDOW" envDefault:"10m"`
}

// Sanitize applies guardrails to authentication configuration.
func (c *AuthConfig) Sanitize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = string(AuthModeAnonymous)
	}
	c.StaticUsersFile = strings.TrimSpace(c.StaticUsersFile)
	if c.Throttle.MaxAttempts <= 0 {
		c.Throttle.MaxAttempts = 5
	}
	if c.Throttle.Window <= 0 {
		c.Throttle.Window = 10 * time.Minute
	}
}

// Validate checks that the selected mode has the settings it needs.
func (c *AuthConfig) Validate() error {
	mode, err := ParseAuthMode(c.Mode)
	if err != nil {
		return err
	}
	if mode == AuthModeStatic && c.StaticUsersFile == "" {
		return fmt.Errorf("AUTH_STATIC_USERS_FILE is required when AUTH_MODE=static")
	}
	return nil
}
