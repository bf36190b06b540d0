// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package hashmap

// resizeState tags a Map as mid-rehash: source is the table being
// drained, cursor is the next slot to inspect. Modeling this as one
// nullable struct (steady == nil) rather than two always-present table
// pointers, per the design notes, makes "is a resize in flight"
// impossible to get wrong at the type level.
type resizeState struct {
	source *table
	cursor uint32
}

func shouldGrow(count uint32, bits uint8) bool {
	cap64 := uint64(1) << bits
	return float64(count) > 0.9*float64(cap64)
}

func shouldShrink(count uint32, bits uint8) bool {
	if bits <= 1 {
		return false
	}
	cap64 := uint64(1) << bits
	return float64(count) < 0.2*float64(cap64)
}

// startGrow picks the smallest bit width > current such that count is
// at most 40% of the new capacity, capped at 31 (hashmap.New's own
// upper bound), allocates that table as the new active one, and
// demotes the old active table to source.
func (m *Map) startGrow() {
	bits := m.active.bits
	if bits >= 31 {
		return
	}
	newBits := bits
	for newBits < 31 {
		newBits++
		if float64(m.count) <= 0.4*float64(uint64(1)<<newBits) {
			break
		}
	}
	if newBits == bits {
		return
	}
	m.resize = &resizeState{source: m.active}
	m.active = newTable(newBits)
}

// startShrink halves capacity (bits-1, floored at 1) the same way.
func (m *Map) startShrink() {
	bits := m.active.bits
	if bits <= 1 {
		return
	}
	newBits := bits - 1
	m.resize = &resizeState{source: m.active}
	m.active = newTable(newBits)
}

// migrateOneSlot advances the incremental rehash by exactly one live
// entry: skip forward over empty source slots, then move the first
// live one found into the active table via ordinary insertion (reusing
// its stored hash — no need to re-hash the key bytes) and backward-
// shift-delete it out of source. The cursor is deliberately not
// advanced past a slot we just vacated, since the backward shift may
// have refilled it with the next entry in that probe run.
func (m *Map) migrateOneSlot() {
	rs := m.resize
	src := rs.source
	cap_ := src.capacity()
	for rs.cursor < cap_ {
		i := rs.cursor
		if !src.slots[i].used {
			rs.cursor++
			continue
		}
		e := src.slots[i]
		removeAt(src, i)
		insertInto(m.active, e.hash, e.key, e.value, m.caseInsensitive)
		return
	}
	m.resize = nil
}
