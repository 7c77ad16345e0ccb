package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/developerfred/libunftp/config"
	"github.com/developerfred/libunftp/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.IsDev)
	if cfgErr != nil {
		logger.ErrorContext(ctx, "fatal error", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	if err := run(ctx, cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting unftpd",
		"bind_address", cfg.Server.BindAddress,
		"storage_backend", cfg.Storage.Backend,
		"auth_mode", cfg.Auth.Mode,
		"ftps", cfg.TLS.Enabled(),
		"passive_ports", fmt.Sprintf("%d-%d", cfg.Server.PassivePortMin, cfg.Server.PassivePortMax),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	err = app.Server.ListenAndServe(ctx)
	logger.InfoContext(ctx, "unftpd stopped")
	return err
}
