package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cazala/landgiver/internal/leasing/domain"
)

const (
	configKeyLeaseDuration = "lease_duration_seconds"
	configKeyOwner         = "owner"
)

func (s *Store) getConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT value FROM config WHERE key = ?`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read config %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setConfig(ctx context.Context, key, value string) error {
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO config (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		return fmt.Errorf("write config %s: %w", key, err)
	}
	return nil
}

// LeaseDuration returns the configured lease term. The default applies until
// the admin sets a value; changes never touch leases already active.
func (s *Store) LeaseDuration(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	value, ok, err := s.getConfig(ctx, configKeyLeaseDuration)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.DefaultLeaseDuration, nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse lease duration config: %w", err)
	}
	return time.Duration(seconds) * time.Second, nil
}

// SetLeaseDuration stores the lease term in whole seconds.
func (s *Store) SetLeaseDuration(ctx context.Context, duration time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if duration <= 0 {
		return fmt.Errorf("lease duration must be greater than zero")
	}
	return s.setConfig(ctx, configKeyLeaseDuration, strconv.FormatInt(int64(duration/time.Second), 10))
}

// Owner returns the admin principal, or "" when unset or renounced.
func (s *Store) Owner(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}
	value, _, err := s.getConfig(ctx, configKeyOwner)
	if err != nil {
		return "", err
	}
	return value, nil
}

// OwnerRecorded reports whether an owner value was ever written. A renounced
// owner reads back as "" like a never-seeded one; this tells them apart so
// boot-time seeding cannot undo a renounce.
func (s *Store) OwnerRecorded(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	_, ok, err := s.getConfig(ctx, configKeyOwner)
	return ok, err
}

// SetOwner stores the admin principal. An empty owner records renunciation.
func (s *Store) SetOwner(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.setConfig(ctx, configKeyOwner, owner)
}
