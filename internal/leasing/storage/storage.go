// Package storage defines persistence contracts for the leasing ledger.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cazala/landgiver/internal/leasing/domain"
)

// ErrAlreadyLeased indicates a lease record already occupies the coordinate.
var ErrAlreadyLeased = errors.New("lease record already exists")

// ClearLease describes a conditional clear of a lease record.
//
// Exactly the conditions set are enforced: RequireLessee restricts the clear
// to a matching lessee (voluntary return); RequireExpired restricts it to
// leases whose expiry is at or before Now (permissionless reclaim). At least
// one condition must be set. Now also timestamps the RETURNED audit event.
type ClearLease struct {
	Coord          domain.Coordinate
	RequireLessee  string
	RequireExpired bool
	Now            time.Time
}

// ClearLeaseResult reports whether the clear applied and, if so, the record
// as it stood before clearing and the audit event appended alongside it.
type ClearLeaseResult struct {
	Applied bool
	Cleared domain.LeaseRecord
	Event   AuditEvent
}

// LeaseStore persists lease records and the active-lease counter.
//
// CreateLease and ClearLease are the only counter-mutating operations; each
// updates the counter and appends its audit event in the same transaction as
// the record mutation, so the counter always equals the number of records
// with a non-empty lessee, can never go negative, and an audit event exists
// exactly when state changed.
type LeaseStore interface {
	// GetLease returns the lease record for a coordinate. A coordinate with
	// no persisted row yields the zero record (empty lessee), not an error.
	GetLease(ctx context.Context, coord domain.Coordinate) (domain.LeaseRecord, error)
	// CreateLease writes a lease record, increments the counter, and appends
	// the RENTED audit event. It fails with ErrAlreadyLeased when any record
	// with a non-empty lessee exists, expired or not.
	CreateLease(ctx context.Context, lease domain.LeaseRecord, now time.Time) (AuditEvent, error)
	// ClearLease conditionally resets a record to the sentinel state,
	// decrements the counter, and appends the RETURNED audit event. An
	// ineligible clear reports Applied=false with no state change.
	ClearLease(ctx context.Context, params ClearLease) (ClearLeaseResult, error)
	// ActiveLeaseCount returns the incrementally maintained counter.
	ActiveLeaseCount(ctx context.Context) (int64, error)
}

// EventType classifies audit events.
type EventType string

const (
	// EventRented records a successful acquire.
	EventRented EventType = "RENTED"
	// EventReturned records a reclaim or a voluntary return.
	EventReturned EventType = "RETURNED"
)

// AuditEvent is one append-only audit record. Events are historical facts:
// they are never retracted, even when later operations change lease state.
type AuditEvent struct {
	ID          string
	Seq         int64
	Type        EventType
	Coord       domain.Coordinate
	Beneficiary string
	ExpiresAt   time.Time // lease expiry for RENTED, zero for RETURNED
	OccurredAt  time.Time
}

// AuditEventPage is one page of audit events in append order.
type AuditEventPage struct {
	Events        []AuditEvent
	NextPageToken string
}

// AuditEventStore reads the append-only audit journal. Appends happen only
// inside the lease mutations that the events describe.
type AuditEventStore interface {
	ListAuditEvents(ctx context.Context, pageSize int, pageToken string) (AuditEventPage, error)
}

// ConfigStore persists process-wide leasing configuration.
type ConfigStore interface {
	// LeaseDuration returns the configured lease term, or
	// domain.DefaultLeaseDuration when none has been set.
	LeaseDuration(ctx context.Context) (time.Duration, error)
	SetLeaseDuration(ctx context.Context, duration time.Duration) error
	// Owner returns the admin principal, or "" when ownership was renounced
	// or never seeded.
	Owner(ctx context.Context) (string, error)
	SetOwner(ctx context.Context, owner string) error
}

// Store aggregates the persistence surfaces the leasing service consumes.
type Store interface {
	LeaseStore
	AuditEventStore
	ConfigStore
}
