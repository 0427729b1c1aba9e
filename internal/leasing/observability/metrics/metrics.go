// Package metrics exposes prometheus instrumentation for leasing operations.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the leasing service's prometheus collectors.
type Metrics struct {
	AcquireTotal *prometheus.CounterVec // result=success|already_leased|error
	ReclaimTotal *prometheus.CounterVec // result=applied|noop|error
	ReturnTotal  *prometheus.CounterVec // result=applied|noop|error

	OpDuration *prometheus.HistogramVec // op=acquire|reclaim|return|query

	LeasesActive     prometheus.Gauge
	SweeperReclaimed prometheus.Counter
}

// New registers the leasing collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AcquireTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "landgiver_acquire_total",
				Help: "Total acquire attempts by result",
			},
			[]string{"result"},
		),
		ReclaimTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "landgiver_reclaim_total",
				Help: "Total reclaim attempts by result",
			},
			[]string{"result"},
		),
		ReturnTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "landgiver_return_total",
				Help: "Total voluntary return attempts by result",
			},
			[]string{"result"},
		),
		OpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "landgiver_op_duration_seconds",
				Help:    "Latency of leasing operations",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"op"},
		),
		LeasesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "landgiver_leases_active",
			Help: "Number of coordinates with a non-empty lessee",
		}),
		SweeperReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landgiver_sweeper_reclaimed_total",
			Help: "Total expired leases reclaimed by the background sweeper",
		}),
	}

	reg.MustRegister(
		m.AcquireTotal,
		m.ReclaimTotal,
		m.ReturnTotal,
		m.OpDuration,
		m.LeasesActive,
		m.SweeperReclaimed,
	)

	return m
}
