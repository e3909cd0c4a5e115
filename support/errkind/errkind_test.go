// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package errkind

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Kind", func() {
	It("is Unknown for nil and unclassified errors", func() {
		Expect(KindOf(nil)).To(Equal(Unknown))
		Expect(KindOf(io.EOF)).To(Equal(Unknown))
		Expect(KindOf(errors.Wrap(io.EOF, "reading"))).To(Equal(Unknown))
	})

	It("survives further wrapping", func() {
		err := Wrap(IO, io.ErrUnexpectedEOF, "reading source")
		err = errors.Wrap(err, "describing file")
		err = errors.Wrapf(err, "transfer %q", "foo.bin")

		Expect(KindOf(err)).To(Equal(IO))
		Expect(Is(err, IO)).To(BeTrue())
		Expect(Is(err, Encoding)).To(BeFalse())
		Expect(errors.Cause(err)).To(Equal(io.ErrUnexpectedEOF))
		Expect(err.Error()).To(Equal(`transfer "foo.bin": describing file: reading source: unexpected EOF`))
	})

	It("returns the outermost kind", func() {
		inner := Errorf(Configuration, "capacity %d too small", 4)
		Expect(KindOf(Wrap(Encoding, inner, "emitting"))).To(Equal(Encoding))
	})

	It("returns nil when wrapping nil", func() {
		Expect(Wrap(IO, nil, "nothing")).To(BeNil())
		Expect(Wrapf(IO, nil, "nothing %d", 1)).To(BeNil())
	})

	It("prints the kind with %+v", func() {
		err := Errorf(Encoding, "block %d rejected", 7)
		Expect(fmt.Sprintf("%v", err)).To(Equal("block 7 rejected"))
		Expect(fmt.Sprintf("%+v", err)).To(HavePrefix("encoding error: block 7 rejected"))
	})
})
