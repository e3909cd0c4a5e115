// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package prototest contains helpers for testing checked-in protobuf
// messages.
package prototest

import (
	"io/ioutil"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// fieldRE matches a scalar field declaration, such as "uint64 size = 3;".
var fieldRE = regexp.MustCompile(`(?m)^\s*(\w+)\s+(\w+)\s*=\s*(\d+)\s*;`)

// wireTypes maps .proto scalar types to their struct tag wire type.
var wireTypes = map[string]string{
	"bool":    "varint",
	"int32":   "varint",
	"int64":   "varint",
	"uint32":  "varint",
	"uint64":  "varint",
	"fixed32": "fixed32",
	"fixed64": "fixed64",
	"string":  "bytes",
	"bytes":   "bytes",
}

type field struct {
	wire string
	name string
}

// MessageFields parses the single message declared in the .proto file at path
// and returns its fields by number, as the wire type and name that a struct
// tag carries.
func MessageFields(path string) (map[int]field, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fields := make(map[int]field)
	for _, m := range fieldRE.FindAllStringSubmatch(string(data), -1) {
		wire, ok := wireTypes[m[1]]
		if !ok {
			return nil, errors.Errorf("unsupported type %q for field %q", m[1], m[2])
		}
		num, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, err
		}
		fields[num] = field{wire: wire, name: m[2]}
	}
	if len(fields) == 0 {
		return nil, errors.Errorf("no fields in %q", path)
	}
	return fields, nil
}

// CheckStructTags verifies that the protobuf struct tags of msg, a pointer to
// a message struct, declare exactly the fields of the .proto file at path.
func CheckStructTags(path string, msg interface{}) error {
	want, err := MessageFields(path)
	if err != nil {
		return err
	}

	t := reflect.TypeOf(msg).Elem()
	seen := 0
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("protobuf")
		if !ok {
			continue
		}

		parts := strings.Split(tag, ",")
		if len(parts) < 4 {
			return errors.Errorf("field %s: malformed tag %q", sf.Name, tag)
		}
		num, err := strconv.Atoi(parts[1])
		if err != nil {
			return errors.Wrapf(err, "field %s: bad number", sf.Name)
		}

		f, ok := want[num]
		switch {
		case !ok:
			return errors.Errorf("field %s: number %d is not declared", sf.Name, num)
		case parts[0] != f.wire:
			return errors.Errorf("field %s: wire type %q, declared %q", sf.Name, parts[0], f.wire)
		case parts[3] != "name="+f.name:
			return errors.Errorf("field %s: %q, declared name %q", sf.Name, parts[3], f.name)
		}
		seen++
	}
	if seen != len(want) {
		return errors.Errorf("struct has %d protobuf fields, declared %d", seen, len(want))
	}
	return nil
}
