// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config provides HCL declarative configuration for the
// listeners this module's caller should pre-populate into the TLS
// context cache at startup, grounded on this codebase's own
// hashicorp/hcl-based config package.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"grimm.is/nstls/internal/errors"
)

// Document is the top-level decoded configuration: a declarative list
// of TLS listener stanzas.
type Document struct {
	Listeners []Listener `hcl:"listener,block"`
}

// Listener describes one (name, transport, family) combination to
// pre-populate into the cache at startup, plus the TLS policy CB
// should apply when building its context.
type Listener struct {
	Name      string `hcl:"name,label"`
	Role      string `hcl:"role"`      // "client" or "server"
	Transport string `hcl:"transport"` // "dot" or "doh"
	Family    string `hcl:"family"`    // "v4" or "v6"

	CertFile string `hcl:"cert_file,optional"`
	KeyFile  string `hcl:"key_file,optional"`

	DHParamFile string   `hcl:"dhparam_file,optional"`
	Protocols   []string `hcl:"protocols,optional"` // subset of {"1.2","1.3"}

	CipherList          string `hcl:"cipher_list,optional"`
	PreferServerCiphers bool   `hcl:"prefer_server_ciphers,optional"`
	SessionTickets      bool   `hcl:"session_tickets,optional"`
	ALPN                bool   `hcl:"alpn,optional"`
}

// Load reads and decodes path.
func Load(path string) (*Document, error) {
	var doc Document
	if err := hclsimple.DecodeFile(path, nil, &doc); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "decode config file")
	}
	return &doc, nil
}

// LoadFromBytes decodes data as if it had been read from filename
// (used only for diagnostics in parse errors).
func LoadFromBytes(filename string, data []byte) (*Document, error) {
	var doc Document
	if err := hclsimple.Decode(filename, data, nil, &doc); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "decode config bytes")
	}
	return &doc, nil
}

// ValidationError is one configuration problem found by Validate.
type ValidationError struct {
	Field    string
	Message  string
	Severity string // "error" (default) or "warning"
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of ValidationError.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msg := e[0].Error()
	for _, ve := range e[1:] {
		msg += "; " + ve.Error()
	}
	return msg
}

// HasErrors reports whether any entry has Severity "error" (the
// default, for entries that don't set it).
func (e ValidationErrors) HasErrors() bool {
	for _, ve := range e {
		if ve.Severity == "" || ve.Severity == "error" {
			return true
		}
	}
	return false
}

var validTransports = map[string]bool{"dot": true, "doh": true}
var validFamilies = map[string]bool{"v4": true, "v6": true}
var validRoles = map[string]bool{"client": true, "server": true}
var validProtocols = map[string]bool{"1.2": true, "1.3": true}

// Validate checks every listener stanza for internal consistency. It
// does not touch the filesystem — CertFile/KeyFile existence is CB's
// concern at context-build time, not the config layer's.
func (d *Document) Validate() ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool)

	for i, l := range d.Listeners {
		field := fmt.Sprintf("listener[%s]", l.Name)
		if l.Name == "" {
			field = fmt.Sprintf("listener[%d]", i)
			errs = append(errs, ValidationError{Field: field, Message: "name must not be empty"})
		}

		if !validRoles[l.Role] {
			errs = append(errs, ValidationError{Field: field + ".role", Message: fmt.Sprintf("must be \"client\" or \"server\", got %q", l.Role)})
		}
		if !validTransports[l.Transport] {
			errs = append(errs, ValidationError{Field: field + ".transport", Message: fmt.Sprintf("must be \"dot\" or \"doh\", got %q", l.Transport)})
		}
		if !validFamilies[l.Family] {
			errs = append(errs, ValidationError{Field: field + ".family", Message: fmt.Sprintf("must be \"v4\" or \"v6\", got %q", l.Family)})
		}

		key := fmt.Sprintf("%s|%s|%s", l.Name, l.Transport, l.Family)
		if seen[key] {
			errs = append(errs, ValidationError{Field: field, Message: "duplicate (name, transport, family) stanza"})
		}
		seen[key] = true

		if l.Role == "server" {
			switch {
			case l.CertFile == "" && l.KeyFile == "":
				// delegates to the ephemeral identity generator.
			case l.CertFile != "" && l.KeyFile != "":
			default:
				errs = append(errs, ValidationError{Field: field, Message: "cert_file and key_file must both be set or both be empty"})
			}
		}

		for _, p := range l.Protocols {
			if !validProtocols[p] {
				errs = append(errs, ValidationError{Field: field + ".protocols", Message: fmt.Sprintf("unknown protocol version %q", p), Severity: "warning"})
			}
		}
		if len(l.Protocols) == 0 {
			errs = append(errs, ValidationError{Field: field + ".protocols", Message: "no protocol versions listed, defaulting to TLS 1.2+1.3", Severity: "warning"})
		}
	}

	return errs
}
