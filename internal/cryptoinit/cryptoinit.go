// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package cryptoinit provides the once-only bring-up/tear-down gate
// the builder depends on before it touches the crypto provider. The
// source this is grounded on wraps OpenSSL's SSL_library_init /
// locking-callback dance; crypto/tls and crypto/rand need no such
// step to be safe for concurrent use, so the default Provider is a
// readiness probe that confirms the process CSPRNG is seeded rather
// than a library bring-up routine. The once-guard contract — idempotent
// calls, shutdown only after initialize, no re-initialize after
// shutdown — is what callers actually depend on, and is preserved
// exactly.
package cryptoinit

import (
	"fmt"
	"sync"
	"sync/atomic"

	"grimm.is/nstls/internal/logging"
)

// Provider is the narrow interface the source's crypto library sits
// behind. Isolating it here, rather than reaching for a package-level
// ambient singleton, is the design note's explicit resolution of the
// "global crypto state" open question.
type Provider interface {
	// ProbeEntropy returns an error if the process's random source
	// cannot be relied on. A Gate treats this as fatal: there's no
	// safe continuation without a seeded PRNG.
	ProbeEntropy() error
	// Shutdown releases any provider-held resources. Called at most
	// once, only after a successful Initialize.
	Shutdown()
}

// Gate is a once-only initialize/shutdown guard over a Provider. The
// zero value is not usable; construct with New.
type Gate struct {
	provider Provider
	logger   *logging.Logger

	initOnce     sync.Once
	shutdownOnce sync.Once
	initialized  atomic.Bool
	shutdown     atomic.Bool
}

// New constructs a Gate over provider. logger may be nil (discarded).
func New(provider Provider, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gate{provider: provider, logger: logger}
}

// Initialize brings the provider up exactly once across the Gate's
// lifetime. Calling it again is a no-op. Calling it after Shutdown is
// a contract violation and panics, since there is no safe
// continuation — a caller doing that has a broken lifecycle.
//
// An unseeded PRNG is fatal and terminates the process: there is no
// safe way to hand out TLS contexts backed by predictable randomness.
func (g *Gate) Initialize() {
	if g.shutdown.Load() {
		panic("cryptoinit: Initialize called after Shutdown")
	}
	g.initOnce.Do(func() {
		if err := g.provider.ProbeEntropy(); err != nil {
			g.logger.Error("fatal: process entropy source is not ready", "error", err)
			panic(fmt.Sprintf("cryptoinit: entropy probe failed: %v", err))
		}
		g.initialized.Store(true)
	})
}

// Shutdown tears the provider down exactly once. It is a contract
// violation — and panics — to call Shutdown before a successful
// Initialize.
func (g *Gate) Shutdown() {
	if !g.initialized.Load() {
		panic("cryptoinit: Shutdown called before Initialize")
	}
	g.shutdownOnce.Do(func() {
		g.provider.Shutdown()
		g.shutdown.Store(true)
	})
}

// Ready reports whether Initialize has completed successfully and
// Shutdown has not yet been called. CB calls this (or relies on
// Initialize's happens-before guarantee directly) before building any
// context.
func (g *Gate) Ready() bool {
	return g.initialized.Load() && !g.shutdown.Load()
}
