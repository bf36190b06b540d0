// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package hashmap

// Iterator walks every live entry in a Map exactly once, provided no
// Add is issued during the walk (per the spec's iteration invariant).
// DeleteCurrentNext is the one mutation that's safe mid-iteration: it
// accounts for backward-shift possibly refilling the slot just
// vacated, so no entry is skipped.
//
// An Iterator does not itself drive incremental rehashing — only Add
// and Delete do. A long-lived iteration over a map that's mid-resize
// still sees every key exactly once (each lives in exactly one table
// at a time), it just won't finish the resize on the iterator's behalf.
type Iterator struct {
	m        *Map
	onSource bool
	idx      uint32
	started  bool
	done     bool
}

// Iterator returns a fresh cursor positioned before the first entry.
func (m *Map) Iterator() *Iterator {
	return &Iterator{m: m}
}

// First positions the cursor at the first live entry, if any.
func (it *Iterator) First() bool {
	it.onSource = false
	it.idx = 0
	it.started = true
	it.done = false
	return it.advance()
}

// Next advances to the next live entry.
func (it *Iterator) Next() bool {
	if !it.started {
		return it.First()
	}
	it.idx++
	return it.advance()
}

func (it *Iterator) advance() bool {
	for {
		t := it.currentTable()
		if t == nil {
			it.done = true
			return false
		}
		for it.idx < t.capacity() {
			if t.slots[it.idx].used {
				return true
			}
			it.idx++
		}
		if !it.onSource && it.m.resize != nil {
			it.onSource = true
			it.idx = 0
			continue
		}
		it.done = true
		return false
	}
}

func (it *Iterator) currentTable() *table {
	if it.onSource {
		if it.m.resize == nil {
			return nil
		}
		return it.m.resize.source
	}
	return it.m.active
}

// Current returns the key and value at the cursor. Only valid after a
// call to First or Next returned true.
func (it *Iterator) Current() ([]byte, any) {
	t := it.currentTable()
	e := t.slots[it.idx]
	return e.key, e.value
}

// CurrentKey returns just the key at the cursor.
func (it *Iterator) CurrentKey() []byte {
	k, _ := it.Current()
	return k
}

// DeleteCurrentNext deletes the entry at the cursor, then advances to
// the next live entry (re-examining the just-vacated slot first, since
// backward-shift deletion may have refilled it).
func (it *Iterator) DeleteCurrentNext() bool {
	if it.done || !it.started {
		return false
	}
	t := it.currentTable()
	removeAt(t, it.idx)
	it.m.count--
	return it.advance()
}

// ForEach visits every live entry in unspecified order. fn returning
// false stops the traversal early.
func (m *Map) ForEach(fn func(key []byte, value any) bool) {
	it := m.Iterator()
	for ok := it.First(); ok; ok = it.Next() {
		k, v := it.Current()
		if !fn(k, v) {
			return
		}
	}
}
