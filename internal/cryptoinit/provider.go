// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cryptoinit

import "crypto/rand"

// StdProvider is the default Provider, backed by Go's standard crypto
// primitives. It has nothing to shut down — crypto/tls and crypto/rand
// own no process-wide handles that need releasing — but still
// satisfies the interface so Gate's lifecycle contract applies
// uniformly regardless of provider.
type StdProvider struct{}

// ProbeEntropy reads a small sample from crypto/rand.Reader. A failure
// here means the platform's CSPRNG isn't available, which Gate treats
// as fatal.
func (StdProvider) ProbeEntropy() error {
	var buf [32]byte
	_, err := rand.Read(buf[:])
	return err
}

// Shutdown is a no-op for StdProvider.
func (StdProvider) Shutdown() {}
