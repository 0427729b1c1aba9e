package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/cazala/landgiver/internal/leasing/domain"
	"github.com/cazala/landgiver/internal/leasing/storage"
)

func TestLeaseMutationsAppendOrderedEvents(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	coord := domain.Coordinate{X: 0, Y: 0}
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	rented := mustCreateLease(t, store, domain.LeaseRecord{
		Coord: coord, Lessee: "alice", ExpiresAt: expiry,
	}, now)
	result, err := store.ClearLease(context.Background(), storage.ClearLease{
		Coord: coord, RequireExpired: true, Now: expiry,
	})
	if err != nil {
		t.Fatalf("clear lease: %v", err)
	}
	returned := result.Event

	if rented.Seq <= 0 {
		t.Fatalf("rented seq = %d, want positive", rented.Seq)
	}
	if returned.Seq <= rented.Seq {
		t.Fatalf("returned seq = %d, want > %d", returned.Seq, rented.Seq)
	}
	if rented.ID == "" || returned.ID == "" {
		t.Fatal("expected assigned event ids")
	}
	if returned.Type != storage.EventReturned || returned.Beneficiary != "alice" {
		t.Fatalf("returned event = %+v", returned)
	}
}

func TestAppendAuditEventValidates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)
	if _, err := appendAuditEvent(context.Background(), store.sqlDB, storage.AuditEvent{
		Type: storage.EventType("BOGUS"), Beneficiary: "alice", OccurredAt: now,
	}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
	if _, err := appendAuditEvent(context.Background(), store.sqlDB, storage.AuditEvent{
		Type: storage.EventRented, OccurredAt: now,
	}); err == nil {
		t.Fatal("expected error for missing beneficiary")
	}
	if _, err := appendAuditEvent(context.Background(), store.sqlDB, storage.AuditEvent{
		Type: storage.EventRented, Beneficiary: "alice",
	}); err == nil {
		t.Fatal("expected error for missing timestamp")
	}
}

func TestListAuditEventsPaginatesInAppendOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)
	coords := []domain.Coordinate{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	lessees := []string{"a", "b", "c"}
	for i, coord := range coords {
		mustCreateLease(t, store, domain.LeaseRecord{
			Coord: coord, Lessee: lessees[i], ExpiresAt: now.Add(time.Hour),
		}, now)
	}

	pageOne, err := store.ListAuditEvents(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list page one: %v", err)
	}
	if len(pageOne.Events) != 2 {
		t.Fatalf("page one len = %d, want 2", len(pageOne.Events))
	}
	if pageOne.NextPageToken == "" {
		t.Fatal("expected page one next token")
	}
	if pageOne.Events[0].Beneficiary != "a" || pageOne.Events[1].Beneficiary != "b" {
		t.Fatalf("page one order = %q, %q", pageOne.Events[0].Beneficiary, pageOne.Events[1].Beneficiary)
	}

	pageTwo, err := store.ListAuditEvents(context.Background(), 2, pageOne.NextPageToken)
	if err != nil {
		t.Fatalf("list page two: %v", err)
	}
	if len(pageTwo.Events) != 1 {
		t.Fatalf("page two len = %d, want 1", len(pageTwo.Events))
	}
	if pageTwo.NextPageToken != "" {
		t.Fatalf("page two token = %q, want empty", pageTwo.NextPageToken)
	}
	if pageTwo.Events[0].Beneficiary != "c" {
		t.Fatalf("page two beneficiary = %q, want c", pageTwo.Events[0].Beneficiary)
	}
}
