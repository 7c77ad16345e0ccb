package config

// DBConfig contains PostgreSQL database configuration for the user store.
// Only consulted when AUTH_MODE=postgres.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"unftp"`
	Password string `env:"PASSWORD" envDefault:"unftp"`
	Name     string `env:"NAME"     envDefault:"unftp"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the daemon applies the user
	// store schema during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the login throttle.
// Only consulted when AUTH_THROTTLE_ENABLED=true.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
