// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics holds the Prometheus collectors this module exposes
// for the cache and the map backing it, grounded on this codebase's
// eBPF metrics collector (same NewXxx-then-RegisterMetrics shape).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric this module publishes. The zero value
// is not usable; construct with New. A nil *Collector is safe to call
// every method on — it's a no-op — so callers who don't want metrics
// can pass nil through their whole call chain.
type Collector struct {
	CacheLookups     *prometheus.CounterVec
	CacheEntries     prometheus.Gauge
	HashmapCapacity  prometheus.Gauge
	HashmapCount     prometheus.Gauge
	HashmapRehashOps prometheus.Counter
}

// New creates a Collector with all metrics initialized but not yet
// registered with any registry.
func New() *Collector {
	return &Collector{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nstls_cache_lookups_total",
			Help: "Total number of tlscache Find/Add calls by transport, family, and result.",
		}, []string{"transport", "family", "result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nstls_cache_entries",
			Help: "Number of distinct logical names currently held in the TLS context cache.",
		}),
		HashmapCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nstls_hashmap_capacity",
			Help: "Current active-table capacity of the cache's backing hash map.",
		}),
		HashmapCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nstls_hashmap_count",
			Help: "Current live entry count of the cache's backing hash map.",
		}),
		HashmapRehashOps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nstls_hashmap_rehash_steps_total",
			Help: "Total number of incremental rehash steps (one slot migrated per step) performed.",
		}),
	}
}

// RegisterMetrics registers every metric this Collector owns with the
// default Prometheus registry.
func (c *Collector) RegisterMetrics() {
	prometheus.MustRegister(
		c.CacheLookups,
		c.CacheEntries,
		c.HashmapCapacity,
		c.HashmapCount,
		c.HashmapRehashOps,
	)
}

// Handler returns an http.Handler serving the default Prometheus
// registry in the standard exposition format. Mounting it is the
// caller's job — this package never starts an HTTP server itself.
func Handler() http.Handler {
	return promhttp.Handler()
}

const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultInsert = "insert"
	ResultExists = "exists"
)

func (c *Collector) observeLookup(transport, family, result string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(transport, family, result).Inc()
}

// Hit records a successful Find.
func (c *Collector) Hit(transport, family string) { c.observeLookup(transport, family, ResultHit) }

// Miss records a Find that found nothing.
func (c *Collector) Miss(transport, family string) { c.observeLookup(transport, family, ResultMiss) }

// Insert records an Add that installed a new context.
func (c *Collector) Insert(transport, family string) {
	c.observeLookup(transport, family, ResultInsert)
}

// Exists records an Add that found the slot already occupied.
func (c *Collector) Exists(transport, family string) {
	c.observeLookup(transport, family, ResultExists)
}

// SetEntryCount updates the cache-entries gauge.
func (c *Collector) SetEntryCount(n int) {
	if c == nil {
		return
	}
	c.CacheEntries.Set(float64(n))
}

// SetHashmapStats updates the hash-map capacity/count gauges from a
// point-in-time snapshot.
func (c *Collector) SetHashmapStats(capacity, count uint32) {
	if c == nil {
		return
	}
	c.HashmapCapacity.Set(float64(capacity))
	c.HashmapCount.Set(float64(count))
}

// RehashStep records one incremental rehash slot migration.
func (c *Collector) RehashStep() {
	if c == nil {
		return
	}
	c.HashmapRehashOps.Inc()
}
