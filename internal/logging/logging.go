// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the leveled, key-value event logger used
// throughout this module. HM and the cache never log (lookups and
// inserts are ordinary control flow); the builder logs provider
// failures and key-log lines, and the crypto initializer logs only the
// fatal unseeded-PRNG condition.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger with the four leveled methods this
// codebase's services call everywhere: Info/Warn/Error/Debug, each
// taking a message and an even number of key-value arguments.
type Logger struct {
	slog *slog.Logger
	w    io.Writer
}

// New creates a Logger that writes text-formatted records to w at the
// given minimum level.
func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler), w: w}
}

// Default returns a Logger writing INFO and above to stderr.
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}

// Discard returns a Logger that drops every record. Useful as the
// zero-configuration default for components whose caller hasn't wired
// up logging yet.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Info(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.slog.Info(msg, kv...)
}

func (l *Logger) Warn(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.slog.Warn(msg, kv...)
}

func (l *Logger) Error(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.slog.Error(msg, kv...)
}

func (l *Logger) Debug(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.slog.Debug(msg, kv...)
}

// WithSyslog returns a new Logger that fans out every record to both
// this Logger's existing destination and a syslog connection opened
// per cfg. If cfg is disabled, l is returned unchanged.
func (l *Logger) WithSyslog(cfg SyslogConfig) (*Logger, error) {
	if !cfg.Enabled {
		return l, nil
	}
	sw, err := NewSyslogWriter(cfg)
	if err != nil {
		return nil, err
	}
	dest := l.w
	if dest == nil {
		dest = os.Stderr
	}
	handler := slog.NewTextHandler(io.MultiWriter(dest, sw), nil)
	return &Logger{slog: slog.New(handler), w: io.MultiWriter(dest, sw)}, nil
}
