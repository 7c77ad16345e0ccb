package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - server.go: FTP listener and session configuration
//   - tls.go: FTPS (explicit TLS) configuration
//   - auth.go: Authentication configuration
//   - storage.go: Storage backend configuration
//   - database.go: Database and Redis configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (text logs at debug level).
	IsDev bool `env:"DEV" envDefault:"false"`

	// FTP listener configuration
	Server ServerConfig `envPrefix:"FTP_"`

	// FTPS configuration
	TLS TLSConfig `envPrefix:"FTPS_"`

	// Authentication configuration
	Auth AuthConfig `envPrefix:"AUTH_"`

	// Storage backend configuration
	Storage StorageConfig `envPrefix:"STORAGE_"`

	// Database configuration (postgres authenticator / user store)
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Server.Sanitize()
	c.TLS.Sanitize()
	c.Auth.Sanitize()
	c.Storage.Sanitize()
	c.Observability.Sanitize()
}

// Validate checks cross-domain configuration consistency.
func (c *AppConfig) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Storage.Validate()
}
