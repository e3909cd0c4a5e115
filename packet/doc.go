// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package packet splits a byte stream into framed blocks, each of which fits
// into a single optical symbol.
//
// A block's wire format is its sequence number, encoded as a protobuf varint,
// followed immediately by its raw payload:
//
//	[ varint sequence ][ payload ... ]
//
// The varint stores seven value bits per byte, least significant group first,
// with the high bit of each byte set if another byte follows. Sequence
// numbers 0-127 take one byte, 128-16383 take two, and so on. Because the
// prefix grows as the sequence advances, the room left for payload shrinks by
// one byte at each of those thresholds; Split recomputes it for every block.
//
// Sequence numbers are assigned 0, 1, 2, ... with no gaps. Concatenating the
// payloads in sequence order reproduces the input exactly. The largest
// sequence number, EnvelopeSequence, is reserved for the transfer's envelope
// block and is never assigned to data.
//
// A receiver inverts the format by scanning each symbol, calling Parse on its
// bytes, and passing the blocks to Reassemble.
package packet
