// Package sweeper runs the periodic reclaim of expired leases.
//
// Reclaim is permissionless, so the sweeper is an optional convenience: with
// it disabled the system still converges, just only when someone calls
// reclaim. Each pass goes through Service.Reclaim, so delegate revocation and
// audit events follow the same path as caller-initiated reclaims.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cazala/landgiver/internal/leasing"
)

const defaultInterval = time.Minute

// Sweeper periodically reclaims expired leases.
type Sweeper struct {
	svc      *leasing.Service
	logger   zerolog.Logger
	interval time.Duration
}

// New creates a sweeper ticking at the given interval. Non-positive intervals
// fall back to a one-minute default.
func New(svc *leasing.Service, logger zerolog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{svc: svc, logger: logger, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	start := time.Now()
	reclaimed, err := s.svc.SweepExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).
			Int("reclaimed", reclaimed).
			Msg("sweep expired leases")
		return
	}
	if reclaimed > 0 {
		s.logger.Info().
			Int("reclaimed", reclaimed).
			Dur("elapsed", time.Since(start)).
			Msg("swept expired leases")
	}
}
