// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package manifest

import (
	"github.com/golang/protobuf/proto"
)

// BlockRecord is the airgap.BlockRecord message of manifest.proto.
//
// This file is the checked-in Go form of manifest.proto; see generate.go to
// rebuild it with protoc.
type BlockRecord struct {
	Sequence uint64 `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Length   uint32 `protobuf:"varint,2,opt,name=length,proto3" json:"length,omitempty"`
	Crc32    uint32 `protobuf:"fixed32,3,opt,name=crc32,proto3" json:"crc32,omitempty"`
	Artifact string `protobuf:"bytes,4,opt,name=artifact,proto3" json:"artifact,omitempty"`
}

// Reset implements proto.Message.
func (r *BlockRecord) Reset() { *r = BlockRecord{} }

// String implements proto.Message.
func (r *BlockRecord) String() string { return proto.CompactTextString(r) }

// ProtoMessage implements proto.Message.
func (*BlockRecord) ProtoMessage() {}
