// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package envelope

import (
	"github.com/golang/protobuf/proto"
)

// Envelope is the airgap.Envelope message of envelope.proto.
//
// This file is the checked-in Go form of envelope.proto; see generate.go to
// rebuild it with protoc.
type Envelope struct {
	Version uint32 `protobuf:"varint,1,opt,name=version,proto3" json:"version,omitempty"`

	Name  []byte `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Size  uint64 `protobuf:"varint,3,opt,name=size,proto3" json:"size,omitempty"`
	Crc32 uint32 `protobuf:"fixed32,4,opt,name=crc32,proto3" json:"crc32,omitempty"`

	NumBlocks   uint64 `protobuf:"varint,5,opt,name=num_blocks,json=numBlocks,proto3" json:"num_blocks,omitempty"`
	Compression uint32 `protobuf:"varint,6,opt,name=compression,proto3" json:"compression,omitempty"`
	Strength    uint32 `protobuf:"varint,7,opt,name=strength,proto3" json:"strength,omitempty"`
	SizeClass   uint32 `protobuf:"varint,8,opt,name=size_class,json=sizeClass,proto3" json:"size_class,omitempty"`

	Blake3     []byte `protobuf:"bytes,9,opt,name=blake3,proto3" json:"blake3,omitempty"`
	StreamSize uint64 `protobuf:"varint,10,opt,name=stream_size,json=streamSize,proto3" json:"stream_size,omitempty"`
}

// Reset implements proto.Message.
func (e *Envelope) Reset() { *e = Envelope{} }

// String implements proto.Message.
func (e *Envelope) String() string { return proto.CompactTextString(e) }

// ProtoMessage implements proto.Message.
func (*Envelope) ProtoMessage() {}
