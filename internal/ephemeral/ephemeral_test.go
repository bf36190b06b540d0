// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ephemeral

import (
	"crypto"
	"testing"
	"time"
)

// S6: server ctx created with null paths yields a context whose
// presented certificate has subject CN = <product>.local, serial 1,
// validity >= 9 years ahead of now.
func TestGenerateShapeMatchesEphemeralContract(t *testing.T) {
	id, err := Generate("nstls")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if id.Leaf.Subject.CommonName != "nstls.local" {
		t.Fatalf("CommonName = %q, want nstls.local", id.Leaf.Subject.CommonName)
	}
	if id.Leaf.SerialNumber.Int64() != 1 {
		t.Fatalf("SerialNumber = %v, want 1", id.Leaf.SerialNumber)
	}
	if len(id.Leaf.Subject.Country) != 1 || id.Leaf.Subject.Country[0] != "AQ" {
		t.Fatalf("Country = %v, want [AQ]", id.Leaf.Subject.Country)
	}
	wantOrg := "nstls ephemeral certificate"
	if len(id.Leaf.Subject.Organization) != 1 || id.Leaf.Subject.Organization[0] != wantOrg {
		t.Fatalf("Organization = %v, want [%s]", id.Leaf.Subject.Organization, wantOrg)
	}

	minValidity := 9 * 365 * 24 * time.Hour
	if id.Leaf.NotAfter.Sub(id.Leaf.NotBefore) < minValidity {
		t.Fatalf("validity window %v too short", id.Leaf.NotAfter.Sub(id.Leaf.NotBefore))
	}

	// self-signed: the signature verifies under the certificate's own
	// public key. (CheckSignatureFrom would also demand that the signer
	// be a CA, which this certificate is not.)
	if err := id.Leaf.CheckSignature(id.Leaf.SignatureAlgorithm, id.Leaf.RawTBSCertificate, id.Leaf.Signature); err != nil {
		t.Fatalf("self-signature check failed: %v", err)
	}
}

func TestGenerateProducesDistinctKeysEachCall(t *testing.T) {
	a, err := Generate("nstls")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate("nstls")
	if err != nil {
		t.Fatal(err)
	}
	if a.Leaf.PublicKey.(interface{ Equal(crypto.PublicKey) bool }).Equal(b.Leaf.PublicKey) {
		t.Fatal("two calls to Generate produced the same key")
	}
}
