// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Generator file to build the contained protobufs.
//
// Run "go generate -tags protoc" in this directory to rebuild envelope.pb.go from
// envelope.proto. This needs protoc and protoc-gen-go on PATH; on Debian, protoc is
// the "protobuf-compiler" package.

//go:build protoc
// +build protoc

//go:generate protoc --go_out=. --go_opt=paths=source_relative envelope.proto

package envelope

import (
	_ "github.com/golang/protobuf/proto"
)
