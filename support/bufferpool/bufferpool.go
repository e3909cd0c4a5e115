// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bufferpool recycles byte buffers between concurrent workers.
package bufferpool

import (
	"sync"
	"sync/atomic"
)

// Pool maintains a pool of buffers. It offers a new buffer when one is
// unavailable.
//
// Pool is safe for concurrent use.
type Pool struct {
	// Size is the initial capacity of the buffers in this pool.
	Size int

	base sync.Pool

	allocated int64
}

// Get returns an empty buffer with a capacity of at least Size, allocating one
// if one is not available.
//
// The caller should return the buffer to the pool by calling its Release
// method when done with it.
func (bp *Pool) Get() *Buffer {
	b, ok := bp.base.Get().(*Buffer)
	if !ok || cap(b.bytes) < bp.Size {
		atomic.AddInt64(&bp.allocated, 1)
		b = &Buffer{
			bytes: make([]byte, 0, bp.Size),
		}
	}

	b.pool = bp
	b.bytes = b.bytes[:0]
	return b
}

// Allocated returns the number of buffers that the pool has allocated.
func (bp *Pool) Allocated() int64 { return atomic.LoadInt64(&bp.allocated) }

// Buffer is a byte buffer that can be released into a Pool for reuse.
type Buffer struct {
	bytes []byte
	pool  *Pool
}

// Bytes returns the buffer's contents.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.bytes) }

// Fill replaces the buffer's contents with the result of fn, which is passed
// the empty buffer to append to. Any growth is kept when the buffer is
// reused.
func (b *Buffer) Fill(fn func([]byte) []byte) []byte {
	b.bytes = fn(b.bytes[:0])
	return b.bytes
}

// Release returns the buffer to its pool. The buffer, and any slice returned
// by Bytes or Fill, must not be used afterwards.
//
// A Buffer must only be released once.
func (b *Buffer) Release() {
	var pool *Pool
	pool, b.pool = b.pool, nil
	if pool == nil {
		panic("buffer released twice")
	}
	pool.base.Put(b)
}
