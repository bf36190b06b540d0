// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package ephemeral synthesizes an in-memory TLS identity for servers
// that omit on-disk certificate material. The certificate is solely a
// protocol-required shell: deployments that rely on this are expected
// to authenticate peers by some other means (IP allowlisting, an
// external PKI) rather than the certificate itself.
package ephemeral

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"grimm.is/nstls/internal/errors"
)

// ValidityPeriod is how long a generated certificate is valid for,
// starting from the moment it's generated.
const ValidityPeriod = 10 * 365 * 24 * time.Hour

// Identity is a generated P-256 key pair and self-signed certificate,
// packaged the way crypto/tls wants them for tls.Config.Certificates.
type Identity struct {
	Certificate tls.Certificate
	Leaf        *x509.Certificate
}

// Generate synthesizes a fresh ephemeral identity for product: a P-256
// key pair and a self-signed X.509 certificate with serial 1,
// validity [now, now+10y], subject/issuer
// "C=AQ, O=<product> ephemeral certificate, CN=<product>.local", and
// no extensions. crypto/x509 always writes the version field as 3, so
// the certificate carries only the fields a v1 certificate has but is
// labelled v3.
func Generate(product string) (*Identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindCrypto, "generate ephemeral key")
	}

	subject := pkix.Name{
		Country:      []string{"AQ"},
		Organization: []string{fmt.Sprintf("%s ephemeral certificate", product)},
		CommonName:   fmt.Sprintf("%s.local", product),
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:       big.NewInt(1),
		Subject:            subject,
		Issuer:             subject,
		NotBefore:          now,
		NotAfter:           now.Add(ValidityPeriod),
		SignatureAlgorithm: x509.ECDSAWithSHA256,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindCrypto, "create ephemeral certificate")
	}

	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindCrypto, "parse generated ephemeral certificate")
	}

	return &Identity{
		Certificate: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  key,
			Leaf:        leaf,
		},
		Leaf: leaf,
	}, nil
}
