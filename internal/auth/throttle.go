package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/developerfred/libunftp/config"
)

// Throttle counts failed login attempts per (username, source IP) pair in
// Redis and rejects further attempts once the limit is reached. It fails
// open: Redis errors are logged and the attempt is allowed, so an
// unavailable Redis never locks every client out.
type Throttle struct {
	client *redis.Client
	cfg    config.ThrottleConfig
	logger *slog.Logger
}

// ThrottleOptions groups dependencies for Throttle.
type ThrottleOptions struct {
	Client *redis.Client         // Required: redis connection
	Config config.ThrottleConfig // Required: limits
	Logger *slog.Logger          // Optional: structured logger
}

// NewThrottle constructs a Throttle.
func NewThrottle(opts ThrottleOptions) (*Throttle, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "auth_throttle")
	}
	return &Throttle{client: opts.Client, cfg: opts.Config, logger: logger}, nil
}

func (t *Throttle) key(username, sourceIP string) string {
	return "unftp:auth:fail:" + username + ":" + sourceIP
}

// Allow reports whether a login attempt for the pair may proceed.
// A nil *Throttle always allows.
func (t *Throttle) Allow(ctx context.Context, username, sourceIP string) bool {
	if t == nil {
		return true
	}
	n, err := t.client.Get(ctx, t.key(username, sourceIP)).Int()
	if err != nil {
		if err != redis.Nil && t.logger != nil {
			t.logger.WarnContext(ctx, "throttle lookup failed, allowing attempt", "error", err)
		}
		return true
	}
	return n < t.cfg.MaxAttempts
}

// RecordFailure bumps the failure counter for the pair and refreshes its TTL.
func (t *Throttle) RecordFailure(ctx context.Context, username, sourceIP string) {
	if t == nil {
		return
	}
	key := t.key(username, sourceIP)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil && t.logger != nil {
		t.logger.WarnContext(ctx, "throttle record failed", "error", err)
	}
}

// Reset clears the failure counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, username, sourceIP string) {
	if t == nil {
		return
	}
	if err := t.client.Del(ctx, t.key(username, sourceIP)).Err(); err != nil && t.logger != nil {
		t.logger.WarnContext(ctx, "throttle reset failed", "error", err)
	}
}

// Window returns the configured counting window. Used by the admin CLI.
func (t *Throttle) Window() time.Duration {
	if t == nil {
		return 0
	}
	return t.cfg.Window
}
