// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tlsbuild

import (
	"crypto/tls"
	"testing"

	"grimm.is/nstls/internal/config"
	"grimm.is/nstls/internal/cryptoinit"
)

type okProvider struct{}

func (okProvider) ProbeEntropy() error { return nil }
func (okProvider) Shutdown()           {}

func TestCreateServerGeneratesEphemeralIdentityWhenPathsEmpty(t *testing.T) {
	b := New("nstls-test", nil, nil)
	cfg, err := b.CreateServer("", "")
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("Certificates = %d, want 1", len(cfg.Certificates))
	}
}

func TestCreateServerRejectsMismatchedPaths(t *testing.T) {
	b := New("nstls-test", nil, nil)
	if _, err := b.CreateServer("cert.pem", ""); err == nil {
		t.Fatal("expected error for cert without key")
	}
	if _, err := b.CreateServer("", "key.pem"); err == nil {
		t.Fatal("expected error for key without cert")
	}
}

func TestCreateClientBeforeGateInitializePanics(t *testing.T) {
	gate := cryptoinit.New(okProvider{}, nil)
	b := New("nstls-test", gate, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when builder used before gate Initialize")
		}
	}()
	b.CreateClient()
}

func TestCreateClientAfterGateInitializeSucceeds(t *testing.T) {
	gate := cryptoinit.New(okProvider{}, nil)
	gate.Initialize()
	b := New("nstls-test", gate, nil)
	cfg := b.CreateClient()
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Fatalf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
}

// S5: restricting the mask to TLS 1.3 narrows both Min and Max to 1.3;
// the full mask spans 1.2 through 1.3.
func TestSetProtocolsTranslatesMaskToVersionRange(t *testing.T) {
	cfg := &tls.Config{}
	SetProtocols(cfg, ProtocolTLS13)
	if cfg.MinVersion != tls.VersionTLS13 || cfg.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("TLS13-only mask produced Min=%x Max=%x", cfg.MinVersion, cfg.MaxVersion)
	}

	SetProtocols(cfg, ProtocolTLS12|ProtocolTLS13)
	if cfg.MinVersion != tls.VersionTLS12 || cfg.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("full mask produced Min=%x Max=%x", cfg.MinVersion, cfg.MaxVersion)
	}
}

func TestSetProtocolsZeroMaskPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty mask")
		}
	}()
	SetProtocols(&tls.Config{}, 0)
}

func TestValidCipherListAcceptsKnownSuite(t *testing.T) {
	name := tls.CipherSuites()[0].Name
	if !ValidCipherList(name) {
		t.Fatalf("ValidCipherList(%q) = false, want true", name)
	}
}

func TestValidCipherListRejectsUnknownSuite(t *testing.T) {
	if ValidCipherList("TLS_NOT_A_REAL_SUITE") {
		t.Fatal("ValidCipherList accepted a made-up suite name")
	}
}

func TestSessionTicketsToggle(t *testing.T) {
	cfg := &tls.Config{}
	SessionTickets(cfg, false)
	if !cfg.SessionTicketsDisabled {
		t.Fatal("SessionTickets(false) did not disable tickets")
	}
	SessionTickets(cfg, true)
	if cfg.SessionTicketsDisabled {
		t.Fatal("SessionTickets(true) left tickets disabled")
	}
}

func TestNewSessionAssignsDistinctIDs(t *testing.T) {
	cfg := &tls.Config{}
	a := NewSession(cfg)
	b := NewSession(cfg)
	if a.ID == b.ID {
		t.Fatal("two sessions got the same correlation ID")
	}
}

func TestLoadDHParamsAlwaysFalse(t *testing.T) {
	if LoadDHParams(&tls.Config{}, "/nonexistent.pem") {
		t.Fatal("LoadDHParams unexpectedly succeeded")
	}
}

// BuildListener must actually apply every CFG policy field to the
// resulting context, not just the (name, transport, family) triple
// LoadListeners forwards to the cache matrix.
func TestBuildListenerAppliesConfigFields(t *testing.T) {
	b := New("nstls-test", nil, nil)
	suite := tls.CipherSuites()[0].Name

	l := config.Listener{
		Name:                "dot-server",
		Role:                "server",
		Transport:           "dot",
		Family:              "v4",
		Protocols:           []string{"1.3"},
		CipherList:          suite,
		PreferServerCiphers: true,
		SessionTickets:      false,
		ALPN:                true,
	}

	cfg, err := b.BuildListener(l)
	if err != nil {
		t.Fatalf("BuildListener: %v", err)
	}
	if cfg.MinVersion != tls.VersionTLS13 || cfg.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("Protocols not applied: Min=%x Max=%x", cfg.MinVersion, cfg.MaxVersion)
	}
	if len(cfg.CipherSuites) != 1 {
		t.Fatalf("CipherList not applied: %v", cfg.CipherSuites)
	}
	if !cfg.SessionTicketsDisabled {
		t.Fatal("SessionTickets(false) not applied")
	}
	if cfg.GetConfigForClient == nil {
		t.Fatal("ALPN server selector not installed")
	}
	if len(cfg.Certificates) != 1 {
		t.Fatalf("server identity not generated: %d certificates", len(cfg.Certificates))
	}
}

func TestBuildListenerDefaultsEmptyProtocolsToFullRange(t *testing.T) {
	b := New("nstls-test", nil, nil)
	l := config.Listener{Name: "doh-client", Role: "client", Transport: "doh", Family: "v6"}

	cfg, err := b.BuildListener(l)
	if err != nil {
		t.Fatalf("BuildListener: %v", err)
	}
	if cfg.MinVersion != tls.VersionTLS12 || cfg.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("empty Protocols produced Min=%x Max=%x, want full range", cfg.MinVersion, cfg.MaxVersion)
	}
}

func TestBuildListenerRejectsUnknownCipherList(t *testing.T) {
	b := New("nstls-test", nil, nil)
	l := config.Listener{Name: "bad", Role: "client", Transport: "dot", Family: "v4", CipherList: "TLS_NOT_A_REAL_SUITE"}
	if _, err := b.BuildListener(l); err == nil {
		t.Fatal("expected error for unknown cipher suite")
	}
}
