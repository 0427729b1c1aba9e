package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cazala/landgiver/internal/leasing/domain"
	"github.com/cazala/landgiver/internal/leasing/storage"
)

func (s *Store) GetLease(ctx context.Context, coord domain.Coordinate) (domain.LeaseRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT lessee, expires_at FROM leases WHERE x = ? AND y = ?`,
		coord.X, coord.Y)

	var lessee string
	var expiresAt int64
	if err := row.Scan(&lessee, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LeaseRecord{Coord: coord}, nil
		}
		return domain.LeaseRecord{}, fmt.Errorf("get lease: %w", err)
	}
	rec := domain.LeaseRecord{Coord: coord, Lessee: lessee}
	if expiresAt != 0 {
		rec.ExpiresAt = fromMillis(expiresAt)
	}
	return rec, nil
}

func (s *Store) CreateLease(ctx context.Context, lease domain.LeaseRecord, now time.Time) (storage.AuditEvent, error) {
	if lease.Lessee == "" {
		return storage.AuditEvent{}, fmt.Errorf("create lease: lessee is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.AuditEvent{}, fmt.Errorf("create lease: begin: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT lessee FROM leases WHERE x = ? AND y = ?`,
		lease.Coord.X, lease.Coord.Y).Scan(&existing)
	switch {
	case err == nil && existing != "":
		return storage.AuditEvent{}, storage.ErrAlreadyLeased
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return storage.AuditEvent{}, fmt.Errorf("create lease: check: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO leases (x, y, lessee, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(x, y) DO UPDATE SET
			lessee = excluded.lessee,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		lease.Coord.X, lease.Coord.Y, lease.Lessee, toMillis(lease.ExpiresAt), toMillis(now))
	if err != nil {
		return storage.AuditEvent{}, fmt.Errorf("create lease: upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE lease_counters SET active = active + 1 WHERE id = 0`); err != nil {
		return storage.AuditEvent{}, fmt.Errorf("create lease: counter: %w", err)
	}

	event := storage.AuditEvent{
		Type:        storage.EventRented,
		Coord:       lease.Coord,
		Beneficiary: lease.Lessee,
		ExpiresAt:   lease.ExpiresAt,
		OccurredAt:  now,
	}
	event, err = appendAuditEvent(ctx, tx, event)
	if err != nil {
		return storage.AuditEvent{}, fmt.Errorf("create lease: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.AuditEvent{}, fmt.Errorf("create lease: commit: %w", err)
	}
	return event, nil
}

func (s *Store) ClearLease(ctx context.Context, params storage.ClearLease) (storage.ClearLeaseResult, error) {
	if params.RequireLessee == "" && !params.RequireExpired {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: a clear condition is required")
	}
	if params.Now.IsZero() {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: now is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: begin: %w", err)
	}
	defer tx.Rollback()

	var lessee string
	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		`SELECT lessee, expires_at FROM leases WHERE x = ? AND y = ?`,
		params.Coord.X, params.Coord.Y).Scan(&lessee, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ClearLeaseResult{}, nil
	}
	if err != nil {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: read: %w", err)
	}

	cleared := domain.LeaseRecord{Coord: params.Coord, Lessee: lessee}
	if expiresAt != 0 {
		cleared.ExpiresAt = fromMillis(expiresAt)
	}
	switch {
	case lessee == "":
		return storage.ClearLeaseResult{}, nil
	case params.RequireLessee != "" && lessee != params.RequireLessee:
		return storage.ClearLeaseResult{}, nil
	case params.RequireExpired && !cleared.Reclaimable(params.Now):
		return storage.ClearLeaseResult{}, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE leases SET lessee = '', expires_at = 0, updated_at = ? WHERE x = ? AND y = ?`,
		toMillis(params.Now), params.Coord.X, params.Coord.Y)
	if err != nil {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: reset: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE lease_counters SET active = active - 1 WHERE id = 0`); err != nil {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: counter: %w", err)
	}

	event := storage.AuditEvent{
		Type:        storage.EventReturned,
		Coord:       params.Coord,
		Beneficiary: lessee,
		OccurredAt:  params.Now,
	}
	event, err = appendAuditEvent(ctx, tx, event)
	if err != nil {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return storage.ClearLeaseResult{}, fmt.Errorf("clear lease: commit: %w", err)
	}
	return storage.ClearLeaseResult{Applied: true, Cleared: cleared, Event: event}, nil
}

func (s *Store) ActiveLeaseCount(ctx context.Context) (int64, error) {
	var active int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT active FROM lease_counters WHERE id = 0`).Scan(&active)
	if err != nil {
		return 0, fmt.Errorf("active lease count: %w", err)
	}
	return active, nil
}
