package leasing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cazala/landgiver/internal/leasing/domain"
	apperrors "github.com/cazala/landgiver/internal/platform/errors"
	"github.com/cazala/landgiver/internal/registry"
)

// LandView is a coordinate set rendered as parallel X/Y sequences, ordered by
// the registry's enumeration of the custodied inventory. X[i],Y[i] is one
// parcel; the two slices always have equal length.
type LandView struct {
	X []int32
	Y []int32
}

func (v *LandView) append(coord domain.Coordinate) {
	v.X = append(v.X, coord.X)
	v.Y = append(v.Y, coord.Y)
}

// AvailableLand returns every custodied parcel with no lease record.
func (s *Service) AvailableLand(ctx context.Context) (LandView, error) {
	view, _, err := s.scanInventory(ctx, domain.StatusAvailable)
	return view, err
}

// RentedLand returns every custodied parcel holding an unexpired lease.
func (s *Service) RentedLand(ctx context.Context) (LandView, error) {
	view, _, err := s.scanInventory(ctx, domain.StatusRented)
	return view, err
}

// ReclaimableLand returns the parcels whose lease has expired but has not
// been reclaimed, along with their count.
func (s *Service) ReclaimableLand(ctx context.Context) (LandView, int, error) {
	return s.scanInventory(ctx, domain.StatusReclaimable)
}

// scanInventory walks the registry's full holdings and keeps the parcels in
// the wanted state. Linear in the inventory size; the inventory is the small,
// slowly changing set, so a scan per query beats maintaining per-state
// indexes.
func (s *Service) scanInventory(ctx context.Context, want domain.Status) (LandView, int, error) {
	ctx, span := s.tracer.Start(ctx, "leasing.scanInventory",
		trace.WithAttributes(attribute.String("parcel.status", string(want))))
	defer span.End()
	defer s.observe("query", s.now())

	tokenIDs, err := s.registry.Holdings(ctx)
	if err != nil {
		return LandView{}, 0, apperrors.Wrap(apperrors.CodeUnknown, "enumerate holdings", err)
	}

	now := s.now().UTC()
	var view LandView
	for _, tokenID := range tokenIDs {
		coord := registry.DecodeTokenID(tokenID)
		record, err := s.store.GetLease(ctx, coord)
		if err != nil {
			return LandView{}, 0, apperrors.Wrap(apperrors.CodeUnknown, "read lease", err)
		}
		if record.StatusAt(now) == want {
			view.append(coord)
		}
	}
	span.SetAttributes(attribute.Int("parcel.matched", len(view.X)))
	return view, len(view.X), nil
}

// reclaimableCoords lists the coordinates eligible for reclaim at the given
// instant. The sweeper drives reclaims off this list.
func (s *Service) reclaimableCoords(ctx context.Context, now time.Time) ([]domain.Coordinate, error) {
	tokenIDs, err := s.registry.Holdings(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "enumerate holdings", err)
	}
	var coords []domain.Coordinate
	for _, tokenID := range tokenIDs {
		coord := registry.DecodeTokenID(tokenID)
		record, err := s.store.GetLease(ctx, coord)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUnknown, "read lease", err)
		}
		if record.Reclaimable(now) {
			coords = append(coords, coord)
		}
	}
	return coords, nil
}

// SweepExpired reclaims every currently expired lease in the inventory and
// returns how many were cleared. It is safe to run concurrently with regular
// traffic: each reclaim re-checks eligibility transactionally, so a parcel
// returned or reclaimed elsewhere first is skipped.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	coords, err := s.reclaimableCoords(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	reclaimed := 0
	for _, coord := range coords {
		result, err := s.Reclaim(ctx, coord)
		if err != nil {
			return reclaimed, err
		}
		if result.Applied {
			reclaimed++
			if s.metrics != nil {
				s.metrics.SweeperReclaimed.Inc()
			}
		}
	}
	return reclaimed, nil
}
