// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package hashmap

import "fmt"

// Map is a Robin Hood hash table from byte-string keys to opaque
// values, with incremental rehashing. The zero value is not usable;
// construct one with New.
type Map struct {
	active          *table
	resize          *resizeState
	count           uint32
	seed            [16]byte
	caseInsensitive bool
}

// New creates a map with an initial table of 2^bits slots. bits must
// be in [1,31] — a uint32 capacity can't represent 2^32, and Go's
// shift-by-width-is-zero rule for unsigned types would silently turn
// a bits=32 table into a zero-length one.
func New(bits uint8, opts ...Option) (*Map, error) {
	if bits < 1 || bits > 31 {
		return nil, fmt.Errorf("hashmap: bits must be in [1,31], got %d", bits)
	}
	o := options{entropy: cryptoEntropy{}}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map{active: newTable(bits), caseInsensitive: o.caseInsensitive}
	if o.seed != nil {
		m.seed = *o.seed
		return m, nil
	}
	if _, err := o.entropy.Read(m.seed[:]); err != nil {
		return nil, fmt.Errorf("hashmap: seeding hash key: %w", err)
	}
	return m, nil
}

// Hash computes this map's keyed 32-bit hash of key. Exposed so
// callers with a hot path can compute it once and reuse it across a
// FindWithHash followed by an AddWithHash.
func (m *Map) Hash(key []byte) uint32 {
	return keyedHash(m.seed, key, m.caseInsensitive)
}

// Find returns the value stored for key, or (nil, false).
func (m *Map) Find(key []byte) (any, bool) {
	return m.FindWithHash(m.Hash(key), key)
}

// FindWithHash is Find with a precomputed hash.
func (m *Map) FindWithHash(hash uint32, key []byte) (any, bool) {
	if v, ok := findIn(m.active, hash, key, m.caseInsensitive); ok {
		return v, true
	}
	if m.resize != nil {
		if v, ok := findIn(m.resize.source, hash, key, m.caseInsensitive); ok {
			return v, true
		}
	}
	return nil, false
}

// Add inserts key/value, or returns ErrExists without modifying the
// existing entry if key is already present. A key longer than
// MaxKeyLen is a contract violation: Add panics rather than returning
// an error, matching the source's abort-on-programmer-error policy.
func (m *Map) Add(key []byte, value any) error {
	return m.AddWithHash(m.Hash(key), key, value)
}

// AddWithHash is Add with a precomputed hash.
func (m *Map) AddWithHash(hash uint32, key []byte, value any) error {
	if len(key) > MaxKeyLen {
		panic("hashmap: key length exceeds MaxKeyLen")
	}

	if m.resize != nil {
		m.migrateOneSlot()
	} else if shouldGrow(m.count, m.active.bits) {
		m.startGrow()
	}

	// While rehashing, a key not yet migrated still lives in source;
	// check there first so we never end up with the same key present
	// in both tables.
	if m.resize != nil {
		if _, ok := findIn(m.resize.source, hash, key, m.caseInsensitive); ok {
			return ErrExists
		}
	}

	owned := append([]byte(nil), key...)
	if _, exists := insertInto(m.active, hash, owned, value, m.caseInsensitive); exists {
		return ErrExists
	}
	m.count++
	return nil
}

// Delete removes key, or returns ErrNotFound.
func (m *Map) Delete(key []byte) error {
	return m.DeleteWithHash(m.Hash(key), key)
}

// DeleteWithHash is Delete with a precomputed hash.
func (m *Map) DeleteWithHash(hash uint32, key []byte) error {
	if m.resize != nil {
		m.migrateOneSlot()
	}

	deleted := deleteIn(m.active, hash, key, m.caseInsensitive)
	if !deleted && m.resize != nil {
		deleted = deleteIn(m.resize.source, hash, key, m.caseInsensitive)
	}
	if !deleted {
		return ErrNotFound
	}
	m.count--

	if m.resize == nil && shouldShrink(m.count, m.active.bits) {
		m.startShrink()
	}
	return nil
}

// Count returns the number of live entries across both tables.
func (m *Map) Count() uint32 {
	return m.count
}

// Stats is a point-in-time snapshot for observability.
type Stats struct {
	ActiveBits     uint8
	ActiveCapacity uint32
	Count          uint32
	LoadFactor     float64
	Rehashing      bool
	SourceCapacity uint32
	SourceCursor   uint32
}

// Stats returns a snapshot of the map's current size and resize state.
func (m *Map) Stats() Stats {
	s := Stats{
		ActiveBits:     m.active.bits,
		ActiveCapacity: m.active.capacity(),
		Count:          m.count,
	}
	s.LoadFactor = float64(s.Count) / float64(s.ActiveCapacity)
	if m.resize != nil {
		s.Rehashing = true
		s.SourceCapacity = m.resize.source.capacity()
		s.SourceCursor = m.resize.cursor
	}
	return s
}
