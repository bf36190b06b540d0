// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tlscache is the reference-counted, read-write-locked TLS
// context cache keyed by logical listener name, built atop
// internal/hashmap. Grounded on this codebase's own refcounted
// resource patterns (the replication and identity packages both hand
// out handles with an attach/detach lifecycle).
package tlscache

import (
	"crypto/tls"
	"sync"
	"sync/atomic"

	"grimm.is/nstls/internal/config"
	"grimm.is/nstls/internal/errors"
	"grimm.is/nstls/internal/hashmap"
	"grimm.is/nstls/internal/metrics"
)

// Transport is the DNS transport kind a cache entry's matrix is
// indexed by.
type Transport uint8

const (
	TransportDoT Transport = 1 + iota
	TransportDoH
)

func (t Transport) offset() int { return int(t) - 1 }

func (t Transport) String() string {
	switch t {
	case TransportDoT:
		return "dot"
	case TransportDoH:
		return "doh"
	default:
		return "unknown"
	}
}

// Family is the network address family a cache entry's matrix is
// indexed by.
type Family uint8

const (
	FamilyV4 Family = iota
	FamilyV6
)

func (f Family) offset() int {
	if f == FamilyV6 {
		return 1
	}
	return 0
}

func (f Family) String() string {
	if f == FamilyV6 {
		return "v6"
	}
	return "v4"
}

const (
	numTransports = 2
	numFamilies   = 2
)

// entry is the dense matrix of TLS contexts for one logical name.
// Most slots are typically nil.
type entry struct {
	matrix [numTransports][numFamilies]*tls.Config
}

// Cache is a refcounted, rwlock-protected map from logical listener
// name to a per-name matrix of TLS contexts. The zero value is not
// usable; construct with New.
type Cache struct {
	mu       sync.RWMutex
	entries  *hashmap.Map
	refcount int32
	metrics  *metrics.Collector
}

// New creates a Cache with refcount 1. metrics may be nil, in which
// case no counters are recorded.
func New(m *metrics.Collector) (*Cache, error) {
	entries, err := hashmap.New(4)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "construct backing hashmap")
	}
	return &Cache{entries: entries, refcount: 1, metrics: m}, nil
}

// Attach increments the cache's refcount and returns it, for callers
// that want to share ownership.
func (c *Cache) Attach() *Cache {
	atomic.AddInt32(&c.refcount, 1)
	return c
}

// Detach decrements the refcount. The last detach destroys every
// context owned by every entry.
func (c *Cache) Detach() {
	if atomic.AddInt32(&c.refcount, -1) > 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Contexts carry no OS handles in this implementation (no listening
	// sockets, no provider library state) — dropping the last reference
	// to entries is sufficient for the garbage collector to reclaim
	// everything the cache owned.
	c.entries = nil
}

// Result is the caller-visible outcome of Add.
type Result int

const (
	// OK means ctx was installed into a previously-empty slot.
	OK Result = iota
	// Exists means the (transport, family) slot was already occupied;
	// the pre-existing context is returned unmodified.
	Exists
)

// Add installs ctx at (name, transport, family). If the name entry
// doesn't exist yet, one is created. If the specific (transport,
// family) slot is already occupied, Add returns (Exists, the
// pre-existing context) and leaves the cache unmodified — per the
// cache's own contract, the *name* entry already existing but the
// slot being empty is not itself an Exists condition; only an
// occupied slot is.
func (c *Cache) Add(name string, transport Transport, family Family, ctx *tls.Config) (Result, *tls.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := []byte(name)
	var e *entry
	if v, ok := c.entries.Find(key); ok {
		e = v.(*entry)
	} else {
		e = &entry{}
		wasRehashing := c.entries.Stats().Rehashing
		if err := c.entries.Add(key, e); err != nil {
			// Another goroutine can't have raced us here since we hold
			// the write lock; a duplicate here means our own Find/Add
			// pair observed a torn state, which would be a hashmap bug.
			panic("tlscache: Add raced its own write lock: " + err.Error())
		}
		c.metrics.SetEntryCount(int(c.entries.Count()))
		c.sampleHashmapStats(wasRehashing)
	}

	if existing := e.matrix[transport.offset()][family.offset()]; existing != nil {
		c.metrics.Exists(transport.String(), family.String())
		return Exists, existing
	}

	e.matrix[transport.offset()][family.offset()] = ctx
	c.metrics.Insert(transport.String(), family.String())
	return OK, ctx
}

// sampleHashmapStats feeds HM's current capacity/count gauges to
// METRICS and counts a rehash step when the preceding hashmap Add
// migrated a slot: that is the case exactly when a resize was in
// flight before the Add (wasRehashing) and is still in flight after
// it. An Add that only starts a resize, or whose migration call just
// found the source drained, moves no slot and is not counted. It must
// only be called from a call site that just performed a mutation on
// c.entries (today, only Add's new-entry branch) — Find never
// triggers hashmap.Map.migrateOneSlot, so sampling from a read path
// would report a rehash step that didn't actually happen on that call.
func (c *Cache) sampleHashmapStats(wasRehashing bool) {
	s := c.entries.Stats()
	c.metrics.SetHashmapStats(s.ActiveCapacity, s.Count)
	if wasRehashing && s.Rehashing {
		c.metrics.RehashStep()
	}
}

// Find looks up the context for (name, transport, family), or returns
// (nil, false).
func (c *Cache) Find(name string, transport Transport, family Family) (*tls.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries.Find([]byte(name))
	if !ok {
		c.metrics.Miss(transport.String(), family.String())
		return nil, false
	}
	e := v.(*entry)
	ctx := e.matrix[transport.offset()][family.offset()]
	if ctx == nil {
		c.metrics.Miss(transport.String(), family.String())
		return nil, false
	}
	c.metrics.Hit(transport.String(), family.String())
	return ctx, true
}

// BuildFunc constructs a TLS context for one listener stanza — the
// caller's CB-facing hook, kept out of this package so tlscache never
// has to import tlsbuild. In practice this is satisfied by binding a
// *tlsbuild.Builder's BuildListener method
// (tlscache.LoadListeners(cache, doc, builder.BuildListener)), which
// is the only implementation that actually applies every CFG field
// (protocols, cipher list, session tickets, DH params, ALPN) rather
// than just the (name, transport, family) triple.
type BuildFunc func(l config.Listener) (*tls.Config, error)

// LoadListeners bulk-populates the cache from a parsed configuration
// document, building each context via build. It stops at the first
// build error; listeners already added remain in the cache.
func LoadListeners(c *Cache, doc *config.Document, build BuildFunc) error {
	for _, l := range doc.Listeners {
		transport := TransportDoT
		if l.Transport == "doh" {
			transport = TransportDoH
		}
		family := FamilyV4
		if l.Family == "v6" {
			family = FamilyV6
		}

		ctx, err := build(l)
		if err != nil {
			return errors.Wrapf(err, errors.KindCrypto, "build TLS context for listener %q", l.Name)
		}
		c.Add(l.Name, transport, family, ctx)
	}
	return nil
}
