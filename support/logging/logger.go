// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package logging defines the logger interface used throughout airgap.
package logging

import (
	"fmt"
	"sync"
)

// L accepts logging data.
//
// L is designed to automatically conform to zap's zap.SugaredLogger, but is
// generic enough that any logger should be able to match it.
type L interface {
	// Error emits an error-level log.
	Error(args ...interface{})
	// Warn emits a warning-level log.
	Warn(args ...interface{})
	// Info emits an info-level log.
	Info(args ...interface{})
	// Debug emits a debug-level log.
	Debug(args ...interface{})

	// Errorf emits a formatted error-level log.
	Errorf(fmt string, args ...interface{})
	// Warnf emits a formatted warning-level log.
	Warnf(fmt string, args ...interface{})
	// Infof emits a formatted info-level log.
	Infof(fmt string, args ...interface{})
	// Debugf emits a formatted debug-level log.
	Debugf(fmt string, args ...interface{})
}

// Nop is a L instance that does nothing.
var Nop L = nopLogger{}

// Must ensures that a valid L is available. If l is not nil, it will be
// returned; otherwise, Must will return Nop.
func Must(l L) L {
	if l != nil {
		return l
	}
	return Nop
}

type nopLogger struct{}

func (nopLogger) Error(args ...interface{}) {}
func (nopLogger) Warn(args ...interface{})  {}
func (nopLogger) Info(args ...interface{})  {}
func (nopLogger) Debug(args ...interface{}) {}

func (nopLogger) Errorf(fmt string, args ...interface{}) {}
func (nopLogger) Warnf(fmt string, args ...interface{})  {}
func (nopLogger) Infof(fmt string, args ...interface{})  {}
func (nopLogger) Debugf(fmt string, args ...interface{}) {}

// Entry is a single log line captured by a Recorder.
type Entry struct {
	Level   string
	Message string
}

// Recorder is an L that keeps every log line in memory. It is intended for
// tests.
//
// Recorder is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ L = (*Recorder)(nil)

// Entries returns a copy of the recorded log lines.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the recorded messages at level, in order.
func (r *Recorder) Messages(level string) []string {
	var msgs []string
	for _, e := range r.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func (r *Recorder) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

func (r *Recorder) Error(args ...interface{}) { r.record("error", fmt.Sprint(args...)) }
func (r *Recorder) Warn(args ...interface{})  { r.record("warn", fmt.Sprint(args...)) }
func (r *Recorder) Info(args ...interface{})  { r.record("info", fmt.Sprint(args...)) }
func (r *Recorder) Debug(args ...interface{}) { r.record("debug", fmt.Sprint(args...)) }

func (r *Recorder) Errorf(f string, args ...interface{}) { r.record("error", fmt.Sprintf(f, args...)) }
func (r *Recorder) Warnf(f string, args ...interface{})  { r.record("warn", fmt.Sprintf(f, args...)) }
func (r *Recorder) Infof(f string, args ...interface{})  { r.record("info", fmt.Sprintf(f, args...)) }
func (r *Recorder) Debugf(f string, args ...interface{}) { r.record("debug", fmt.Sprintf(f, args...)) }
