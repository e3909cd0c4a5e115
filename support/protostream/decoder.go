// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package protostream

import (
	"bytes"
	"io"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// The maximum varint size, in bytes. This is the total number of bytes needed
// to encode the largest uint64 using proto.EncodeVarint.
const maxVarintSizeU64 = 10

// DefaultMaxSize is the largest message that a Decoder will read if its
// MaxSize is zero.
const DefaultMaxSize = 16 * 1024 * 1024

// Reader can read both individual bytes and sequences of bytes. A
// *bufio.Reader or *bytes.Reader is a good choice.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for r, adding byte-at-a-time reads if r does not
// already support them.
func MakeReader(r io.Reader) Reader {
	if br, ok := r.(Reader); ok {
		return br
	}
	return &byteReader{r}
}

type byteReader struct {
	io.Reader
}

func (r *byteReader) ReadByte() (byte, error) {
	var d [1]byte
	if _, err := io.ReadFull(r.Reader, d[:]); err != nil {
		return 0, err
	}
	return d[0], nil
}

// Decoder decodes a series of messages from a protobuf stream.
//
// Decoder reuses its buffers between reads. It is not safe for concurrent
// use.
type Decoder struct {
	// MaxSize is the largest message size that will be accepted. If zero,
	// DefaultMaxSize is used.
	MaxSize int

	dataBuf bytes.Buffer
	sizeBuf [maxVarintSizeU64]byte
}

func (d *Decoder) maxSize() uint64 {
	if d.MaxSize > 0 {
		return uint64(d.MaxSize)
	}
	return DefaultMaxSize
}

// readSize reads the next size prefix. The varint continues until a byte's
// most significant bit is clear.
func (d *Decoder) readSize(r Reader) (uint64, int64, error) {
	sizeBuf := d.sizeBuf[:0]
	for len(sizeBuf) < maxVarintSizeU64 {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(sizeBuf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, int64(len(sizeBuf)), err
		}

		sizeBuf = append(sizeBuf, b)
		if (b & 0x80) == 0 {
			size, n := proto.DecodeVarint(sizeBuf)
			if n != len(sizeBuf) {
				return 0, int64(len(sizeBuf)), errors.New("size prefix is not a valid varint")
			}
			return size, int64(n), nil
		}
	}
	return 0, int64(len(sizeBuf)), errors.New("size prefix is not a valid varint")
}

// Read reads the next message from r into pb, returning the number of bytes
// consumed.
//
// At the end of the stream, Read returns io.EOF. A stream that ends partway
// through a message returns io.ErrUnexpectedEOF.
func (d *Decoder) Read(r Reader, pb proto.Message) (int64, error) {
	size, count, err := d.readSize(r)
	if err != nil {
		return count, err
	}
	if size > d.maxSize() {
		return count, errors.Errorf("message size %d exceeds maximum %d", size, d.maxSize())
	}

	d.dataBuf.Reset()
	d.dataBuf.Grow(int(size))
	readCount, err := d.dataBuf.ReadFrom(&io.LimitedReader{R: r, N: int64(size)})
	count += readCount
	if err != nil {
		return count, err
	}
	if readCount != int64(size) {
		return count, io.ErrUnexpectedEOF
	}

	return count, proto.Unmarshal(d.dataBuf.Bytes(), pb)
}
