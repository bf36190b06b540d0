// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package hashmap implements a Robin Hood open-addressed hash table
// keyed by variable-length byte strings, with incremental two-table
// rehashing that amortizes resize cost across subsequent operations
// instead of stalling on one big copy.
//
// Unlike the C original this is grounded on, keys are copied into the
// map rather than borrowed: Go gives callers no compiler-enforced way
// to promise a slice outlives an entry, so an API built on that promise
// is a footgun without the language backing it up. See DESIGN.md.
//
// Map is not internally synchronized. Callers sharing a Map across
// goroutines need their own lock, the way tlscache does.
package hashmap

import "errors"

// ErrExists is returned by Add when the key is already present.
var ErrExists = errors.New("hashmap: key already exists")

// ErrNotFound is returned by Delete when the key is absent.
var ErrNotFound = errors.New("hashmap: key not found")

// MaxKeyLen is the largest key this map accepts. Passing a longer key
// is a contract violation, not a runtime error.
const MaxKeyLen = 65535
