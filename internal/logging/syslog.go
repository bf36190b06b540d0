// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"fmt"
	"io"
	"log/syslog"
)

// SyslogConfig configures an optional syslog forwarder for log records.
// It mirrors the shape of this codebase's other remote-sink configs:
// disabled by default, host required only when enabling it.
type SyslogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Protocol string // "udp" or "tcp"
	Tag      string
	Facility syslog.Priority
}

// DefaultSyslogConfig returns the conservative defaults: disabled,
// standard syslog port, UDP transport.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "nstls",
		Facility: syslog.LOG_LOCAL0,
	}
}

// NewSyslogWriter dials the syslog destination described by cfg and
// returns an io.Writer that forwards every Write as one syslog
// message at NOTICE severity (the handler-level filtering already
// happened in the slog.Handler; by the time bytes reach here they're
// worth shipping).
func NewSyslogWriter(cfg SyslogConfig) (io.Writer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("logging: syslog host is required when enabled")
	}
	network := cfg.Protocol
	if network == "" {
		network = "udp"
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return syslog.Dial(network, addr, cfg.Facility|syslog.LOG_NOTICE, cfg.Tag)
}
