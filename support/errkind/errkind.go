// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package errkind classifies the errors that can abort a transfer.
//
// Every error returned from the transfer pipeline carries exactly one Kind.
// Kinds are attached by wrapping an error in an *Error; the original error,
// including any github.com/pkg/errors context and stack, is preserved as its
// cause. KindOf recovers the Kind by walking the cause chain, so further
// wrapping with errors.Wrap does not hide it.
package errkind

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the category of a transfer error.
type Kind int

const (
	// Unknown is the Kind of any error that was not classified.
	Unknown Kind = iota
	// Configuration is an unsupported size class or strength, or a capacity
	// too small to hold sequence-number framing.
	Configuration
	// IO is an unreadable source or an unwritable output location.
	IO
	// Encoding is a block rejected by the symbol encoder. It signals a
	// mismatch between the capacity table and the encoder.
	Encoding
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case IO:
		return "I/O error"
	case Encoding:
		return "encoding error"
	default:
		return "error"
	}
}

// Error attaches a Kind to an error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

// Cause implements github.com/pkg/errors' causer interface.
func (e *Error) Cause() error { return e.Err }

// Unwrap allows the standard library errors package to see through e.
func (e *Error) Unwrap() error { return e.Err }

// Format prints the kind before the message for "%+v".
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.Kind, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Wrap annotates err with msg and classifies it as k. Wrap returns nil if err
// is nil.
func Wrap(k Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: errors.Wrap(err, msg)}
}

// Wrapf is Wrap with a format string.
func Wrapf(k Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: errors.Wrapf(err, format, args...)}
}

// Errorf creates a new error of Kind k.
func Errorf(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, Err: errors.Errorf(format, args...)}
}

// KindOf returns the Kind of err, or Unknown if err carries none. The
// outermost Kind wins.
func KindOf(err error) Kind {
	type causer interface {
		Cause() error
	}

	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}

		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return Unknown
}

// Is returns true if err is classified as k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }
