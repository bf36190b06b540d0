// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHCL = `
listener "ns1" {
  role      = "server"
  transport = "dot"
  family    = "v4"
  protocols = ["1.2", "1.3"]
  session_tickets = true
}

listener "ns1-v6" {
  role      = "server"
  transport = "dot"
  family    = "v6"
  cert_file = "/etc/nstls/ns1.crt"
  key_file  = "/etc/nstls/ns1.key"
  protocols = ["1.3"]
}
`

func TestLoadFromBytesDecodesListeners(t *testing.T) {
	doc, err := LoadFromBytes("sample.hcl", []byte(sampleHCL))
	require.NoError(t, err)
	require.Len(t, doc.Listeners, 2)
	assert.Equal(t, "ns1", doc.Listeners[0].Name)
	assert.Equal(t, "dot", doc.Listeners[0].Transport)
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	doc, err := LoadFromBytes("sample.hcl", []byte(sampleHCL))
	require.NoError(t, err)
	assert.False(t, doc.Validate().HasErrors())
}

func TestValidateRejectsBadRoleTransportFamily(t *testing.T) {
	doc := &Document{Listeners: []Listener{{
		Name: "bad", Role: "peer", Transport: "quic", Family: "v5",
	}}}
	errs := doc.Validate()
	assert.True(t, errs.HasErrors())
	assert.GreaterOrEqual(t, len(errs), 3, "expected role, transport, and family errors: %v", errs)
}

func TestValidateRejectsMismatchedCertKeyPaths(t *testing.T) {
	doc := &Document{Listeners: []Listener{{
		Name: "ns1", Role: "server", Transport: "dot", Family: "v4",
		CertFile: "only-cert.pem",
	}}}
	assert.True(t, doc.Validate().HasErrors())
}

func TestValidateFlagsDuplicateStanzas(t *testing.T) {
	doc := &Document{Listeners: []Listener{
		{Name: "ns1", Role: "server", Transport: "dot", Family: "v4", Protocols: []string{"1.2"}},
		{Name: "ns1", Role: "server", Transport: "dot", Family: "v4", Protocols: []string{"1.2"}},
	}}
	errs := doc.Validate()
	var found bool
	for _, e := range errs {
		if e.Message == "duplicate (name, transport, family) stanza" {
			found = true
		}
	}
	assert.True(t, found, "expected duplicate-stanza error, got %v", errs)
}
