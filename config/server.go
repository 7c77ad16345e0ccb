package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultGreeting is sent on the 220 service-ready reply when no
	// greeting is configured.
	DefaultGreeting = "Welcome to the libunftp FTP server"

	minPassivePort = 1024
	maxPassivePort = 65535
)

// ServerConfig contains FTP listener and session configuration.
type ServerConfig struct {
	// BindAddress is the host:port the control channel listener binds to.
	BindAddress string `env:"BIND_ADDRESS" envDefault:"0.0.0.0:2121"`

	// Greeting is the text of the 220 reply sent after connecting.
	Greeting string `env:"GREETING"`

	// PassivePortMin and PassivePortMax bound the port range used for
	// passive (PASV) data connections.
	PassivePortMin int `env:"PASSIVE_PORT_MIN" envDefault:"49152"`
	PassivePortMax int `env:"PASSIVE_PORT_MAX" envDefault:"65535"`

	// IdleTimeout is how long a control connection may sit without
	// receiving a command before the session is closed.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"600s"`

	// MaxConnections caps concurrently open control connections.
	// Zero means unlimited.
	MaxConnections int `env:"MAX_CONNECTIONS" envDefault:"512"`
}

// Sanitize applies guardrails to listener configuration values.
func (c *ServerConfig) Sanitize() {
	c.BindAddress = strings.TrimSpace(c.BindAddress)
	c.Greeting = strings.TrimSpace(c.Greeting)
	if c.Greeting == "" {
		c.Greeting = DefaultGreeting
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 600 * time.Second
	}
	if c.MaxConnections < 0 {
		c.MaxConnections = 0
	}
	if c.PassivePortMin < minPassivePort {
		c.PassivePortMin = 49152
	}
	if c.PassivePortMax > maxPassivePort || c.PassivePortMax <= 0 {
		c.PassivePortMax = maxPassivePort
	}
}

// Validate checks that listener configuration is usable.
func (c *ServerConfig) Validate() error {
	if c.BindAddress == "" {
		return errors.New("FTP_BIND_ADDRESS is required")
	}
	if c.PassivePortMin > c.PassivePortMax {
		return fmt.Errorf("passive port range is inverted: %d > %d", c.PassivePortMin, c.PassivePortMax)
	}
	return nil
}
