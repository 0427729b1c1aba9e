package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/cazala/landgiver/internal/leasing/storage"
	"github.com/google/uuid"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// appendAuditEvent appends one audit event on the caller's transaction and
// returns it with the assigned sequence number. The journal is append-only:
// nothing updates or deletes rows.
func appendAuditEvent(ctx context.Context, tx execer, evt storage.AuditEvent) (storage.AuditEvent, error) {
	if evt.Type != storage.EventRented && evt.Type != storage.EventReturned {
		return storage.AuditEvent{}, fmt.Errorf("unknown audit event type %q", evt.Type)
	}
	if evt.Beneficiary == "" {
		return storage.AuditEvent{}, fmt.Errorf("audit event beneficiary is required")
	}
	if evt.OccurredAt.IsZero() {
		return storage.AuditEvent{}, fmt.Errorf("audit event timestamp is required")
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	evt.OccurredAt = fromMillis(toMillis(evt.OccurredAt))

	var expiresAt int64
	if !evt.ExpiresAt.IsZero() {
		expiresAt = toMillis(evt.ExpiresAt)
	}
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO audit_events (id, event_type, x, y, beneficiary, expires_at, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		evt.ID, string(evt.Type), evt.Coord.X, evt.Coord.Y, evt.Beneficiary, expiresAt, toMillis(evt.OccurredAt),
	)
	if err != nil {
		return storage.AuditEvent{}, fmt.Errorf("append audit event: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return storage.AuditEvent{}, fmt.Errorf("read audit event seq: %w", err)
	}
	evt.Seq = seq
	return evt, nil
}

// ListAuditEvents returns one page of audit events in append order. The page
// token is the last sequence number of the previous page.
func (s *Store) ListAuditEvents(ctx context.Context, pageSize int, pageToken string) (storage.AuditEventPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.AuditEventPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AuditEventPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.AuditEventPage{}, fmt.Errorf("page size must be greater than zero")
	}
	afterSeq := int64(0)
	if token := strings.TrimSpace(pageToken); token != "" {
		parsed, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return storage.AuditEventPage{}, fmt.Errorf("parse page token: %w", err)
		}
		afterSeq = parsed
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, id, event_type, x, y, beneficiary, expires_at, occurred_at
		   FROM audit_events
		  WHERE seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		afterSeq, pageSize+1,
	)
	if err != nil {
		return storage.AuditEventPage{}, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	page := storage.AuditEventPage{
		Events: make([]storage.AuditEvent, 0, pageSize),
	}
	for rows.Next() {
		var evt storage.AuditEvent
		var eventType string
		var expiresAt, occurredAt int64
		if err := rows.Scan(&evt.Seq, &evt.ID, &eventType, &evt.Coord.X, &evt.Coord.Y, &evt.Beneficiary, &expiresAt, &occurredAt); err != nil {
			return storage.AuditEventPage{}, fmt.Errorf("list audit events: %w", err)
		}
		evt.Type = storage.EventType(eventType)
		if expiresAt != 0 {
			evt.ExpiresAt = fromMillis(expiresAt)
		}
		evt.OccurredAt = fromMillis(occurredAt)
		page.Events = append(page.Events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.AuditEventPage{}, fmt.Errorf("list audit events: %w", err)
	}
	if len(page.Events) > pageSize {
		page.Events = page.Events[:pageSize]
		page.NextPageToken = strconv.FormatInt(page.Events[pageSize-1].Seq, 10)
	}
	return page, nil
}
