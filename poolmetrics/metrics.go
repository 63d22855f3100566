// Package poolmetrics exposes a sqlgo.Pool's accounting as Prometheus
// metrics, grouped under a name label so one process can report several
// pools to the same registry.
package poolmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sqlgo/sqlgo"
)

// Collector holds the Prometheus metrics for one or more sqlgo.Pool
// instances. A single Collector's Registry can be passed straight to
// promhttp.HandlerFor.
type Collector struct {
	Registry *prometheus.Registry

	connectionsActive  *prometheus.GaugeVec
	connectionsIdle    *prometheus.GaugeVec
	connectionsTotal   *prometheus.GaugeVec
	connectionsWaiting *prometheus.GaugeVec
	poolExhaustedTotal *prometheus.GaugeVec
	dialFailuresTotal  *prometheus.GaugeVec
	acquireDuration    *prometheus.HistogramVec
	queryDuration      *prometheus.HistogramVec
}

// New creates and registers a fresh set of pool metrics on their own
// registry. Safe to call more than once (e.g. per test) since each call's
// registry is independent.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		Registry: reg,
		connectionsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sqlgo_pool_connections_active",
				Help: "Connections currently checked out of the pool",
			},
			[]string{"pool"},
		),
		connectionsIdle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sqlgo_pool_connections_idle",
				Help: "Connections currently idle in the pool",
			},
			[]string{"pool"},
		),
		connectionsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sqlgo_pool_connections_total",
				Help: "Connections the pool currently holds (idle + active)",
			},
			[]string{"pool"},
		),
		connectionsWaiting: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sqlgo_pool_connections_waiting",
				Help: "Goroutines currently blocked in Acquire",
			},
			[]string{"pool"},
		),
		poolExhaustedTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sqlgo_pool_exhausted_total",
				Help: "Total times Acquire had to wait because the pool was at MaxOpen",
			},
			[]string{"pool"},
		),
		dialFailuresTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sqlgo_pool_dial_failures_total",
				Help: "Total connection dial failures",
			},
			[]string{"pool"},
		),
		acquireDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sqlgo_pool_acquire_duration_seconds",
				Help:    "Time spent in Acquire, including any wait",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
			[]string{"pool"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sqlgo_query_duration_seconds",
				Help:    "Duration of Execute/Fetch/Describe calls",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
			},
			[]string{"pool", "op"},
		),
	}

	reg.MustRegister(
		c.connectionsActive,
		c.connectionsIdle,
		c.connectionsTotal,
		c.connectionsWaiting,
		c.poolExhaustedTotal,
		c.dialFailuresTotal,
		c.acquireDuration,
		c.queryDuration,
	)
	return c
}

// Observe samples pool's current Stats into the gauges labeled name.
// ExhaustedTotal/DialFailures are already cumulative on sqlgo.Stats, so
// they're exposed as gauges mirroring that running total rather than as
// Prometheus counters, which would need the pool's own deltas to drive.
func (c *Collector) Observe(name string, s sqlgo.Stats) {
	c.connectionsActive.WithLabelValues(name).Set(float64(s.Active))
	c.connectionsIdle.WithLabelValues(name).Set(float64(s.Idle))
	c.connectionsTotal.WithLabelValues(name).Set(float64(s.Total))
	c.connectionsWaiting.WithLabelValues(name).Set(float64(s.Waiting))
	c.poolExhaustedTotal.WithLabelValues(name).Set(float64(s.ExhaustedTotal))
	c.dialFailuresTotal.WithLabelValues(name).Set(float64(s.DialFailures))
}

// AcquireDuration records how long a single Acquire call took.
func (c *Collector) AcquireDuration(name string, d time.Duration) {
	c.acquireDuration.WithLabelValues(name).Observe(d.Seconds())
}

// QueryDuration records how long a single Execute/Fetch/Describe call took.
func (c *Collector) QueryDuration(name, op string, d time.Duration) {
	c.queryDuration.WithLabelValues(name, op).Observe(d.Seconds())
}

// WatchPool starts a goroutine that calls Observe(name, pool.Stats())
// every interval until ctx is done, for callers that just want a pool's
// gauges kept current without instrumenting every call site by hand.
func (c *Collector) WatchPool(ctx context.Context, name string, pool *sqlgo.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Observe(name, pool.Stats())
			}
		}
	}()
}
