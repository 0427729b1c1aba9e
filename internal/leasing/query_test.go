package leasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/cazala/landgiver/internal/leasing"
	"github.com/cazala/landgiver/internal/leasing/domain"
)

func viewCoords(view leasing.LandView) map[domain.Coordinate]bool {
	coords := make(map[domain.Coordinate]bool, len(view.X))
	for i := range view.X {
		coords[domain.Coordinate{X: view.X[i], Y: view.Y[i]}] = true
	}
	return coords
}

func snapshot(t *testing.T, f *fixture) (available, rented map[domain.Coordinate]bool, reclaimable int) {
	t.Helper()
	availableView, err := f.svc.AvailableLand(context.Background())
	if err != nil {
		t.Fatalf("available land: %v", err)
	}
	rentedView, err := f.svc.RentedLand(context.Background())
	if err != nil {
		t.Fatalf("rented land: %v", err)
	}
	_, count, err := f.svc.ReclaimableLand(context.Background())
	if err != nil {
		t.Fatalf("reclaimable land: %v", err)
	}
	return viewCoords(availableView), viewCoords(rentedView), count
}

func assertPartition(t *testing.T, f *fixture, inventory int) {
	t.Helper()
	available, rented, reclaimable := snapshot(t, f)
	for coord := range rented {
		if available[coord] {
			t.Fatalf("coord %v both available and rented", coord)
		}
	}
	if got := len(available) + len(rented) + reclaimable; got != inventory {
		t.Fatalf("partition covers %d parcels, inventory has %d", got, inventory)
	}
}

func TestQueriesOnFreshInventory(t *testing.T) {
	t.Parallel()

	a := domain.Coordinate{X: 0, Y: 0}
	b := domain.Coordinate{X: 1, Y: 1}
	f := newFixture(t, a, b)

	available, rented, reclaimable := snapshot(t, f)
	if len(available) != 2 || !available[a] || !available[b] {
		t.Fatalf("available = %v, want both parcels", available)
	}
	if len(rented) != 0 {
		t.Fatalf("rented = %v, want empty", rented)
	}
	if reclaimable != 0 {
		t.Fatalf("reclaimable = %d, want 0", reclaimable)
	}
}

func TestQueriesTrackLeaseLifecycle(t *testing.T) {
	t.Parallel()

	a := domain.Coordinate{X: 0, Y: 0}
	b := domain.Coordinate{X: 1, Y: 1}
	f := newFixture(t, a, b)
	f.mustSetDuration(t, 100*time.Second)

	f.mustAcquire(t, "alice", a)
	available, rented, reclaimable := snapshot(t, f)
	if len(available) != 1 || !available[b] {
		t.Fatalf("available = %v, want {%v}", available, b)
	}
	if len(rented) != 1 || !rented[a] {
		t.Fatalf("rented = %v, want {%v}", rented, a)
	}
	if reclaimable != 0 {
		t.Fatalf("reclaimable = %d, want 0", reclaimable)
	}
	assertPartition(t, f, 2)

	// Past expiry the lease moves to the reclaimable bucket without any call.
	f.clock.Advance(101 * time.Second)
	available, rented, reclaimable = snapshot(t, f)
	if len(available) != 1 || len(rented) != 0 || reclaimable != 1 {
		t.Fatalf("post-expiry: available=%d rented=%d reclaimable=%d", len(available), len(rented), reclaimable)
	}
	assertPartition(t, f, 2)

	result, err := f.svc.Reclaim(context.Background(), a)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if !result.Applied {
		t.Fatal("expected reclaim to apply")
	}
	available, rented, reclaimable = snapshot(t, f)
	if len(available) != 2 || len(rented) != 0 || reclaimable != 0 {
		t.Fatalf("post-reclaim: available=%d rented=%d reclaimable=%d", len(available), len(rented), reclaimable)
	}
	assertPartition(t, f, 2)
}

func TestViewsPreserveEnumerationOrder(t *testing.T) {
	t.Parallel()

	coords := []domain.Coordinate{{X: 5, Y: -5}, {X: -3, Y: 3}, {X: 0, Y: 9}}
	f := newFixture(t, coords...)

	view, err := f.svc.AvailableLand(context.Background())
	if err != nil {
		t.Fatalf("available land: %v", err)
	}
	if len(view.X) != len(view.Y) {
		t.Fatalf("parallel sequences differ: %d x, %d y", len(view.X), len(view.Y))
	}
	for i, coord := range coords {
		if view.X[i] != coord.X || view.Y[i] != coord.Y {
			t.Fatalf("view[%d] = (%d,%d), want %v", i, view.X[i], view.Y[i], coord)
		}
	}
}

func TestSweepExpiredReclaimsOnlyEligibleLeases(t *testing.T) {
	t.Parallel()

	expired := domain.Coordinate{X: 0, Y: 0}
	active := domain.Coordinate{X: 1, Y: 1}
	free := domain.Coordinate{X: 2, Y: 2}
	f := newFixture(t, expired, active, free)
	f.mustSetDuration(t, 100*time.Second)

	f.mustAcquire(t, "alice", expired)
	f.clock.Advance(150 * time.Second)
	f.mustAcquire(t, "bob", active)

	reclaimed, err := f.svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}

	available, rented, reclaimable := snapshot(t, f)
	if !available[expired] || !available[free] || len(available) != 2 {
		t.Fatalf("available = %v", available)
	}
	if !rented[active] || len(rented) != 1 {
		t.Fatalf("rented = %v", rented)
	}
	if reclaimable != 0 {
		t.Fatalf("reclaimable = %d, want 0", reclaimable)
	}
}
