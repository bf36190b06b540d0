// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"log/syslog"
	"testing"
)

func TestDefaultSyslogConfig(t *testing.T) {
	cfg := DefaultSyslogConfig()

	if cfg.Enabled {
		t.Error("default should be disabled")
	}
	if cfg.Port != 514 {
		t.Errorf("expected port 514, got %d", cfg.Port)
	}
	if cfg.Protocol != "udp" {
		t.Errorf("expected protocol udp, got %s", cfg.Protocol)
	}
	if cfg.Tag != "nstls" {
		t.Errorf("expected tag nstls, got %s", cfg.Tag)
	}
	if cfg.Facility != syslog.LOG_LOCAL0 {
		t.Errorf("expected LOG_LOCAL0, got %v", cfg.Facility)
	}
}

func TestNewSyslogWriter_MissingHost(t *testing.T) {
	cfg := SyslogConfig{Enabled: true, Port: 514, Protocol: "udp"}
	_, err := NewSyslogWriter(cfg)
	if err == nil {
		t.Error("expected error for missing host")
	}
}

func TestLoggerDiscardIsSafe(t *testing.T) {
	l := Discard()
	l.Info("hello", "k", "v")
	l.Warn("hello", "k", "v")
	l.Error("hello", "k", "v")
	l.Debug("hello", "k", "v")

	var nilLogger *Logger
	nilLogger.Info("should not panic")
}

func TestWithSyslogDisabledIsNoop(t *testing.T) {
	l := Default()
	l2, err := l.WithSyslog(SyslogConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l2 != l {
		t.Error("expected the same logger back when syslog is disabled")
	}
}
