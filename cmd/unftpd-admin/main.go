package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/developerfred/libunftp/config"
	"github.com/developerfred/libunftp/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"user-add": {
			name:        "user-add",
			description: "Create an FTP user in the postgres user store",
			run:         runUserAdd,
		},
		"user-list": {
			name:        "user-list",
			description: "List FTP users in the postgres user store",
			run:         runUserList,
		},
		"user-del": {
			name:        "user-del",
			description: "Delete an FTP user from the postgres user store",
			run:         runUserDel,
		},
		"user-set-enabled": {
			name:        "user-set-enabled",
			description: "Enable or disable an FTP user",
			run:         runUserSetEnabled,
		},
		"migrate": {
			name:        "migrate",
			description: "Run user store database migrations",
			run:         runMigrations,
		},
		"ci-cells": {
			name:        "ci-cells",
			description: "Expand and validate the CI pipeline matrix",
			run:         runCICells,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: unftpd-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-18s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
