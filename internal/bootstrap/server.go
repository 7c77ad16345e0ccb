package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/developerfred/libunftp/config"
	"github.com/developerfred/libunftp/internal/auth"
	"github.com/developerfred/libunftp/internal/data"
	"github.com/developerfred/libunftp/internal/ftp"
	"github.com/developerfred/libunftp/internal/migrate"
	"github.com/developerfred/libunftp/internal/observability/statsd"
	"github.com/developerfred/libunftp/internal/storage"
	"github.com/developerfred/libunftp/internal/storage/filesystem"
	"github.com/developerfred/libunftp/internal/storage/memory"
)

// App bundles the assembled FTP server with the connections it owns.
type App struct {
	Server *ftp.Server

	db      *sql.DB
	redis   *redis.Client
	metrics *statsd.Client
}

// Close releases the app's database, redis and metrics connections.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.metrics != nil {
		_ = a.metrics.Close()
	}
}

// BuildServer assembles the FTP server from configuration: storage backend,
// authenticator, login throttle, TLS and metrics.
func BuildServer(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	app := &App{}

	backend, err := buildStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "unftp",
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("statsd client: %w", err)
	}
	app.metrics = metrics

	authenticator, err := buildAuthenticator(ctx, cfg, logger, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	var throttle *auth.Throttle
	if cfg.Auth.Throttle.Enabled {
		client, err := ConnectRedis(cfg.Redis, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("login throttle: %w", err)
		}
		app.redis = client

		throttle, err = auth.NewThrottle(auth.ThrottleOptions{
			Client: client,
			Config: cfg.Auth.Throttle,
			Logger: logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("login throttle: %w", err)
		}
	}

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled() {
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("load tls keypair: %w", err)
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	server, err := ftp.NewServer(ftp.ServerOptions{
		Storage:       backend,
		Authenticator: authenticator,
		Config:        cfg.Server,
		TLS:           tlsConfig,
		Throttle:      throttle,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Server = server
	return app, nil
}

func buildStorage(cfg config.StorageConfig) (storage.Backend, error) {
	switch config.StorageBackendKind(cfg.Backend) {
	case config.StorageBackendFilesystem:
		backend, err := filesystem.New(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("filesystem backend: %w", err)
		}
		return backend, nil
	case config.StorageBackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func buildAuthenticator(ctx context.Context, cfg config.AppConfig, logger *slog.Logger, app *App) (auth.Authenticator, error) {
	mode, err := config.ParseAuthMode(cfg.Auth.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case config.AuthModeAnonymous:
		return auth.Anonymous{}, nil

	case config.AuthModeStatic:
		static, err := auth.LoadStatic(cfg.Auth.StaticUsersFile)
		if err != nil {
			return nil, fmt.Errorf("static user list: %w", err)
		}
		return static, nil

	case config.AuthModePostgres:
		db, err := ConnectDB(cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		app.db = db

		if cfg.Postgres.RunMigrationsOnStart {
			if err := migrate.Run(ctx, db); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		return auth.NewPostgres(data.NewUserRepo(db))

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
