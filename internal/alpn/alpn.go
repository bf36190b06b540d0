// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package alpn installs protocol-selection on a TLS context for the
// two advertised sets this server cares about: HTTP/2 ("h2") and
// DNS-over-TLS ("dot"). The source this is grounded on predates ALPN's
// universal adoption and spoke of an NPN selector as well as an ALPN
// one; Go's crypto/tls never implemented NPN (it was deprecated and
// dropped industry-wide before Go's TLS stack existed), so
// GetSelectedProtocol always reports the ALPN choice — there is no NPN
// branch to fall back from.
package alpn

import (
	"crypto/tls"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/net/http2"
)

// H2 is the ALPN identifier for HTTP/2, taken from the http2 package's
// own exported constant rather than a local string literal.
const H2 = http2.NextProtoTLS

// DoT is the ALPN identifier for DNS-over-TLS (RFC 7858 §3.1).
const DoT = "dot"

// EncodeList builds the wire form of an ALPN protocol list: a sequence
// of (length byte, identifier bytes) records, length byte not
// included in its own count.
func EncodeList(protocols ...string) []byte {
	var b cryptobyte.Builder
	for _, p := range protocols {
		proto := p
		b.AddUint8LengthPrefixed(func(child *cryptobyte.Builder) {
			child.AddBytes([]byte(proto))
		})
	}
	out, _ := b.Bytes()
	return out
}

// Scan performs the linear length-prefixed search described for the
// ALPN wire format: walk record by record, each occupying
// 1+len(record) bytes, until needle is found or the list is exhausted.
// Returns the matched record's payload and true, or (nil, false).
func Scan(wire []byte, needle string) ([]byte, bool) {
	s := cryptobyte.String(wire)
	for !s.Empty() {
		var record cryptobyte.String
		if !s.ReadUint8LengthPrefixed(&record) {
			return nil, false
		}
		if string(record) == needle {
			return []byte(record), true
		}
	}
	return nil, false
}

// selectFirstMatch re-encodes offered (as the client sent it, already
// parsed into strings by crypto/tls) and scans it for each candidate
// in preference order, using the same wire-level algorithm Scan uses
// for any other ALPN decision in this package. It exists so the
// server-side selectors below exercise one real length-prefixed scan
// rather than a bare slice-membership check.
func selectFirstMatch(offered []string, candidates ...string) (string, bool) {
	wire := EncodeList(offered...)
	for _, c := range candidates {
		if _, ok := Scan(wire, c); ok {
			return c, true
		}
	}
	return "", false
}

// ClientH2 advertises "h2" on a client context.
func ClientH2(cfg *tls.Config) {
	cfg.NextProtos = appendProto(cfg.NextProtos, H2)
}

// ServerH2 advertises "h2" on a server context and installs a
// selector that always picks it when offered.
func ServerH2(cfg *tls.Config) {
	base := cfg.NextProtos
	cfg.NextProtos = appendProto(base, H2)
	cfg.GetConfigForClient = selectorFunc(cfg, func(offered []string) (string, bool) {
		return selectFirstMatch(offered, H2)
	})
}

// ClientDoT advertises the single identifier "dot".
func ClientDoT(cfg *tls.Config) {
	cfg.NextProtos = appendProto(cfg.NextProtos, DoT)
}

// ServerDoT installs a selector that picks "dot" from the client's
// offered list via the length-prefixed linear scan, and declines
// (NoAck, i.e. no negotiated protocol) if the client didn't offer it.
func ServerDoT(cfg *tls.Config) {
	cfg.GetConfigForClient = selectorFunc(cfg, func(offered []string) (string, bool) {
		return selectFirstMatch(offered, DoT)
	})
}

// selectorFunc adapts a (offered []string) -> (string, bool) chooser
// into the shape tls.Config.GetConfigForClient expects: a per-client
// config with NextProtos narrowed to the chosen protocol, or left as
// a no-match (NoAck) config if nothing was selected.
func selectorFunc(base *tls.Config, choose func(offered []string) (string, bool)) func(*tls.ClientHelloInfo) (*tls.Config, error) {
	return func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
		clone := base.Clone()
		clone.GetConfigForClient = nil
		if proto, ok := choose(hello.SupportedProtos); ok {
			clone.NextProtos = []string{proto}
		} else {
			clone.NextProtos = nil
		}
		return clone, nil
	}
}

func appendProto(existing []string, proto string) []string {
	for _, p := range existing {
		if p == proto {
			return existing
		}
	}
	return append(existing, proto)
}

// GetSelectedProtocol returns the protocol negotiated on a completed
// handshake, or ("", false) if none was. Named to mirror
// get_selected_alpn: it would prefer an NPN choice over ALPN if Go's
// crypto/tls ever exposed one, but it never has.
func GetSelectedProtocol(state tls.ConnectionState) (string, bool) {
	if state.NegotiatedProtocol == "" {
		return "", false
	}
	return state.NegotiatedProtocol, true
}
