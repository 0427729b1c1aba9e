// Package leasing implements the parcel leasing lifecycle: acquiring leases
// over custodied land, reclaiming expired ones, voluntary returns, and the
// derived inventory views.
package leasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cazala/landgiver/internal/leasing/domain"
	"github.com/cazala/landgiver/internal/leasing/observability/metrics"
	"github.com/cazala/landgiver/internal/leasing/storage"
	apperrors "github.com/cazala/landgiver/internal/platform/errors"
	"github.com/cazala/landgiver/internal/registry"
)

// Service coordinates the lease ledger, the external parcel registry, and the
// audit journal. Ledger state, the active-lease counter, and the audit event
// commit in one storage transaction; the registry delegate update is ordered
// around that transaction with a compensating call when the second step fails.
type Service struct {
	store    storage.Store
	registry registry.Adapter
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics wires prometheus instrumentation into the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source. Tests use this to pin expiry math.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a leasing service over the given store and registry.
func NewService(store storage.Store, reg registry.Adapter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: reg,
		logger:   zerolog.Nop(),
		tracer:   otel.Tracer("github.com/cazala/landgiver/internal/leasing"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyResult reports the outcome of a reclaim or return. Applied is false
// when the operation was ineligible and left all state untouched; Lease then
// holds whatever record the coordinate carried at the time.
type ApplyResult struct {
	Applied bool
	Lease   domain.LeaseRecord
}

// Acquire leases a coordinate to beneficiary for the configured term. An
// empty beneficiary defaults to the caller. It fails with CodeAlreadyLeased
// when any lease record occupies the coordinate, expired or not: expired
// leases must be reclaimed before the parcel can be acquired again.
func (s *Service) Acquire(ctx context.Context, caller, beneficiary string, coord domain.Coordinate) (domain.LeaseRecord, error) {
	ctx, span := s.tracer.Start(ctx, "leasing.Acquire",
		trace.WithAttributes(attribute.String("parcel.coord", coord.String())))
	defer span.End()
	defer s.observe("acquire", s.now())

	caller, err := domain.ValidatePrincipal(caller)
	if err != nil {
		s.count(s.metricAcquire(), "error")
		return domain.LeaseRecord{}, err
	}
	if beneficiary == "" {
		beneficiary = caller
	}
	beneficiary, err = domain.ValidatePrincipal(beneficiary)
	if err != nil {
		s.count(s.metricAcquire(), "error")
		return domain.LeaseRecord{}, err
	}

	duration, err := s.store.LeaseDuration(ctx)
	if err != nil {
		s.count(s.metricAcquire(), "error")
		return domain.LeaseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "read lease duration", err)
	}
	now := s.now().UTC()

	// Fast occupancy check so the common conflict never touches the registry.
	// The create below re-checks inside its transaction.
	existing, err := s.store.GetLease(ctx, coord)
	if err != nil {
		s.count(s.metricAcquire(), "error")
		return domain.LeaseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "read lease", err)
	}
	if existing.Leased() {
		s.count(s.metricAcquire(), "already_leased")
		return domain.LeaseRecord{}, s.alreadyLeased(coord)
	}

	tokenID := registry.EncodeTokenID(coord)
	if err := s.registry.UpdateOperator(ctx, tokenID, beneficiary); err != nil {
		s.count(s.metricAcquire(), "error")
		return domain.LeaseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "grant delegate rights", err)
	}

	lease := domain.LeaseRecord{
		Coord:     coord,
		Lessee:    beneficiary,
		ExpiresAt: now.Add(duration),
	}
	event, err := s.store.CreateLease(ctx, lease, now)
	if err != nil {
		// The grant went through but the ledger write did not. Align the
		// delegate with whatever the ledger holds now: a racing acquire may
		// have committed between the occupancy check and this transaction,
		// in which case its lessee keeps the delegate; otherwise the grant
		// is revoked.
		s.syncDelegate(ctx, coord)
		if errors.Is(err, storage.ErrAlreadyLeased) {
			s.count(s.metricAcquire(), "already_leased")
			return domain.LeaseRecord{}, s.alreadyLeased(coord)
		}
		s.count(s.metricAcquire(), "error")
		return domain.LeaseRecord{}, apperrors.Wrap(apperrors.CodeUnknown, "create lease", err)
	}

	s.count(s.metricAcquire(), "success")
	s.refreshActiveGauge(ctx)
	s.logger.Info().
		Str("coord", coord.String()).
		Str("lessee", beneficiary).
		Time("expires_at", lease.ExpiresAt).
		Str("event_id", event.ID).
		Msg("parcel rented")
	return lease, nil
}

// Reclaim clears an expired lease and revokes its delegate rights. Anyone may
// call it. An unexpired or absent lease is a silent no-op, which also makes
// repeated reclaims of the same coordinate idempotent.
func (s *Service) Reclaim(ctx context.Context, coord domain.Coordinate) (ApplyResult, error) {
	ctx, span := s.tracer.Start(ctx, "leasing.Reclaim",
		trace.WithAttributes(attribute.String("parcel.coord", coord.String())))
	defer span.End()
	defer s.observe("reclaim", s.now())

	now := s.now().UTC()
	existing, err := s.store.GetLease(ctx, coord)
	if err != nil {
		s.count(s.metricReclaim(), "error")
		return ApplyResult{}, apperrors.Wrap(apperrors.CodeUnknown, "read lease", err)
	}
	if !existing.Reclaimable(now) {
		s.count(s.metricReclaim(), "noop")
		return ApplyResult{Lease: existing}, nil
	}

	result, err := s.release(ctx, storage.ClearLease{
		Coord:          coord,
		RequireExpired: true,
		Now:            now,
	})
	if err != nil {
		s.count(s.metricReclaim(), "error")
		return ApplyResult{}, err
	}
	if !result.Applied {
		s.count(s.metricReclaim(), "noop")
		return ApplyResult{Lease: existing}, nil
	}

	s.count(s.metricReclaim(), "applied")
	s.refreshActiveGauge(ctx)
	s.logger.Info().
		Str("coord", coord.String()).
		Str("lessee", result.Cleared.Lessee).
		Str("event_id", result.Event.ID).
		Msg("expired parcel reclaimed")
	return ApplyResult{Applied: true, Lease: result.Cleared}, nil
}

// Return clears the caller's own lease before expiry. A caller who does not
// hold the lease gets a silent no-op, never an error.
func (s *Service) Return(ctx context.Context, caller string, coord domain.Coordinate) (ApplyResult, error) {
	ctx, span := s.tracer.Start(ctx, "leasing.Return",
		trace.WithAttributes(attribute.String("parcel.coord", coord.String())))
	defer span.End()
	defer s.observe("return", s.now())

	caller, err := domain.ValidatePrincipal(caller)
	if err != nil {
		s.count(s.metricReturn(), "error")
		return ApplyResult{}, err
	}

	now := s.now().UTC()
	existing, err := s.store.GetLease(ctx, coord)
	if err != nil {
		s.count(s.metricReturn(), "error")
		return ApplyResult{}, apperrors.Wrap(apperrors.CodeUnknown, "read lease", err)
	}
	if existing.Lessee != caller {
		s.count(s.metricReturn(), "noop")
		return ApplyResult{Lease: existing}, nil
	}

	result, err := s.release(ctx, storage.ClearLease{
		Coord:         coord,
		RequireLessee: caller,
		Now:           now,
	})
	if err != nil {
		s.count(s.metricReturn(), "error")
		return ApplyResult{}, err
	}
	if !result.Applied {
		s.count(s.metricReturn(), "noop")
		return ApplyResult{Lease: existing}, nil
	}

	s.count(s.metricReturn(), "applied")
	s.refreshActiveGauge(ctx)
	s.logger.Info().
		Str("coord", coord.String()).
		Str("lessee", caller).
		Str("event_id", result.Event.ID).
		Msg("parcel returned")
	return ApplyResult{Applied: true, Lease: result.Cleared}, nil
}

// release revokes delegate rights in the registry and then applies the
// conditional clear. If the clear fails or turns out ineligible after the
// revoke already went through, the delegate is synced back to whatever lessee
// the ledger currently holds.
func (s *Service) release(ctx context.Context, params storage.ClearLease) (storage.ClearLeaseResult, error) {
	tokenID := registry.EncodeTokenID(params.Coord)
	if err := s.registry.UpdateOperator(ctx, tokenID, ""); err != nil {
		return storage.ClearLeaseResult{}, apperrors.Wrap(apperrors.CodeUnknown, "revoke delegate rights", err)
	}
	result, err := s.store.ClearLease(ctx, params)
	if err != nil {
		s.syncDelegate(ctx, params.Coord)
		return storage.ClearLeaseResult{}, apperrors.Wrap(apperrors.CodeUnknown, "clear lease", err)
	}
	if !result.Applied {
		s.syncDelegate(ctx, params.Coord)
	}
	return result, nil
}

// syncDelegate points the registry delegate at the ledger's current lessee
// after a registry update the ledger did not end up backing. An empty lessee
// revokes. Best effort: failures are logged, not returned, since the ledger
// remains the source of truth.
func (s *Service) syncDelegate(ctx context.Context, coord domain.Coordinate) {
	record, err := s.store.GetLease(ctx, coord)
	if err != nil {
		s.logger.Error().Err(err).Str("coord", coord.String()).Msg("read lease for delegate sync")
		return
	}
	if err := s.registry.UpdateOperator(ctx, registry.EncodeTokenID(coord), record.Lessee); err != nil {
		s.logger.Error().Err(err).
			Str("coord", coord.String()).
			Str("lessee", record.Lessee).
			Msg("sync delegate rights")
	}
}

// Lease returns the record and derived status for one coordinate.
func (s *Service) Lease(ctx context.Context, coord domain.Coordinate) (domain.LeaseRecord, domain.Status, error) {
	record, err := s.store.GetLease(ctx, coord)
	if err != nil {
		return domain.LeaseRecord{}, "", apperrors.Wrap(apperrors.CodeUnknown, "read lease", err)
	}
	return record, record.StatusAt(s.now().UTC()), nil
}

// Events returns one page of the audit journal in append order.
func (s *Service) Events(ctx context.Context, pageSize int, pageToken string) (storage.AuditEventPage, error) {
	page, err := s.store.ListAuditEvents(ctx, pageSize, pageToken)
	if err != nil {
		return storage.AuditEventPage{}, apperrors.Wrap(apperrors.CodeUnknown, "list audit events", err)
	}
	return page, nil
}

// ActiveLeases returns the incrementally maintained active-lease count.
func (s *Service) ActiveLeases(ctx context.Context) (int64, error) {
	count, err := s.store.ActiveLeaseCount(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeUnknown, "active lease count", err)
	}
	return count, nil
}

// SetLeaseDuration updates the term applied to future acquisitions. Existing
// leases keep the expiry they were granted. Only the owner may call it.
func (s *Service) SetLeaseDuration(ctx context.Context, caller string, duration time.Duration) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if duration <= 0 {
		return apperrors.New(apperrors.CodeDurationInvalid, fmt.Sprintf("lease duration must be positive, got %v", duration))
	}
	if err := s.store.SetLeaseDuration(ctx, duration); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "set lease duration", err)
	}
	s.logger.Info().Dur("duration", duration).Msg("lease duration updated")
	return nil
}

// TransferOwnership hands the admin role to a new principal.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	newOwner, err := domain.ValidatePrincipal(newOwner)
	if err != nil {
		return err
	}
	if err := s.store.SetOwner(ctx, newOwner); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "set owner", err)
	}
	s.logger.Info().Str("owner", newOwner).Msg("ownership transferred")
	return nil
}

// RenounceOwnership clears the admin role permanently. With no owner, every
// admin operation fails with CodeInvalidCaller from then on.
func (s *Service) RenounceOwnership(ctx context.Context, caller string) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := s.store.SetOwner(ctx, ""); err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "renounce owner", err)
	}
	s.logger.Info().Msg("ownership renounced")
	return nil
}

func (s *Service) requireOwner(ctx context.Context, caller string) error {
	caller, err := domain.ValidatePrincipal(caller)
	if err != nil {
		return err
	}
	owner, err := s.store.Owner(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "read owner", err)
	}
	if owner == "" || owner != caller {
		return apperrors.WithMetadata(apperrors.CodeInvalidCaller, "caller is not the owner",
			map[string]string{"caller": caller})
	}
	return nil
}

func (s *Service) alreadyLeased(coord domain.Coordinate) error {
	return apperrors.WithMetadata(apperrors.CodeAlreadyLeased, "parcel already carries a lease record",
		map[string]string{"coord": coord.String()})
}

func (s *Service) count(vec *prometheus.CounterVec, result string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(result).Inc()
}

func (s *Service) metricAcquire() *prometheus.CounterVec {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.AcquireTotal
}

func (s *Service) metricReclaim() *prometheus.CounterVec {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.ReclaimTotal
}

func (s *Service) metricReturn() *prometheus.CounterVec {
	if s.metrics == nil {
		return nil
	}
	return s.metrics.ReturnTotal
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.OpDuration.WithLabelValues(op).Observe(s.now().Sub(start).Seconds())
}

func (s *Service) refreshActiveGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	count, err := s.store.ActiveLeaseCount(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("refresh active lease gauge")
		return
	}
	s.metrics.LeasesActive.Set(float64(count))
}
