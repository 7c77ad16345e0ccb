package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/developerfred/libunftp/internal/bootstrap"
	"github.com/developerfred/libunftp/internal/data"
	"github.com/developerfred/libunftp/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

func connectUserStore(cmdCtx *commandContext) (*sql.DB, *data.UserRepo, error) {
	db, err := bootstrap.ConnectDB(cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	return db, data.NewUserRepo(db), nil
}

func closeDB(cmdCtx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		cmdCtx.Logger.Warn("db close failed", "error", err)
	}
}

type userAddOptions struct {
	Username string
	Password string
	HomeDir  string
	Disabled bool
}

func parseUserAddFlags(args []string) (userAddOptions, error) {
	var opts userAddOptions
	fs := flag.NewFlagSet("user-add", flag.ContinueOnError)
	fs.StringVar(&opts.Username, "username", "", "username (required)")
	fs.StringVar(&opts.Password, "password", "", "password (prompted when omitted)")
	fs.StringVar(&opts.HomeDir, "home", "/", "home directory served as the session root")
	fs.BoolVar(&opts.Disabled, "disabled", false, "create the account disabled")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("parse user-add flags: %w", err)
	}
	if strings.TrimSpace(opts.Username) == "" {
		return opts, errors.New("-username is required")
	}
	return opts, nil
}

func runUserAdd(cmdCtx *commandContext, args []string) error {
	opts, err := parseUserAddFlags(args)
	if err != nil {
		return err
	}

	if opts.Password == "" {
		opts.Password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, repo, err := connectUserStore(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	user, err := repo.Create(ctx, data.CreateUserRequest{
		Username:     opts.Username,
		PasswordHash: string(hash),
		HomeDir:      opts.HomeDir,
		Enabled:      !opts.Disabled,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	cmdCtx.Logger.Info("user created",
		"id", user.ID,
		"username", user.Username,
		"home_dir", user.HomeDir,
		"enabled", user.Enabled,
	)
	return nil
}

func promptPassword() (string, error) {
	if err := writef(os.Stderr, "Password: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

func runUserList(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse user-list flags: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, repo, err := connectUserStore(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	users, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "USERNAME\tHOME\tENABLED\tCREATED\n"); err != nil {
		return err
	}
	for _, u := range users {
		if err := writef(w, "%s\t%s\t%t\t%s\n",
			u.Username, u.HomeDir, u.Enabled, u.CreatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush user table: %w", err)
	}
	return nil
}

func runUserDel(cmdCtx *commandContext, args []string) error {
	var username string
	fs := flag.NewFlagSet("user-del", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "username (required)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse user-del flags: %w", err)
	}
	if strings.TrimSpace(username) == "" {
		return errors.New("-username is required")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, repo, err := connectUserStore(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	if err := repo.Delete(ctx, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	cmdCtx.Logger.Info("user deleted", "username", username)
	return nil
}

func runUserSetEnabled(cmdCtx *commandContext, args []string) error {
	var (
		username string
		enabled  bool
	)
	fs := flag.NewFlagSet("user-set-enabled", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "username (required)")
	fs.BoolVar(&enabled, "enabled", true, "whether the account may log in")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse user-set-enabled flags: %w", err)
	}
	if strings.TrimSpace(username) == "" {
		return errors.New("-username is required")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, repo, err := connectUserStore(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	if err := repo.SetEnabled(ctx, username, enabled); err != nil {
		return fmt.Errorf("set user enabled: %w", err)
	}
	cmdCtx.Logger.Info("user updated", "username", username, "enabled", enabled)
	return nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	timeout := defaultMigrationTimeout
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.DurationVar(&timeout, "timeout", defaultMigrationTimeout, "migration timeout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse migrate flags: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, _, err := connectUserStore(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	cmdCtx.Logger.Info("migrations complete")
	return nil
}
