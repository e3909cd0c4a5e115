// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package stagingdir

import (
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Staging directory", func() {
	var tdir, dest string
	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "stagingdir_test")
		Expect(err).ToNot(HaveOccurred())

		dest = filepath.Join(tdir, "dest")
		Expect(os.Mkdir(dest, 0755)).To(Succeed())
	})

	AfterEach(func() {
		if tdir != "" {
			_ = os.RemoveAll(tdir)
			tdir = ""
		}
	})

	listDir := func(path string) []string {
		entries, err := ioutil.ReadDir(path)
		Expect(err).ToNot(HaveOccurred())
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return names
	}

	It("moves staged files into their destination", func() {
		Expect(ioutil.WriteFile(filepath.Join(dest, "keep"), []byte("keep"), 0644)).To(Succeed())

		sd, err := New(dest, ".staging")
		Expect(err).ToNot(HaveOccurred())
		Expect(ioutil.WriteFile(sd.Path("b"), []byte("new"), 0644)).To(Succeed())
		Expect(ioutil.WriteFile(sd.Path("a"), []byte("a"), 0644)).To(Succeed())

		names, err := sd.Commit(dest)
		Expect(err).ToNot(HaveOccurred())
		Expect(names).To(Equal([]string{"a", "b"}))
		Expect(listDir(dest)).To(Equal([]string{"a", "b", "keep"}))

		data, err := ioutil.ReadFile(filepath.Join(dest, "b"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("new"))
		Expect(listDir(tdir)).To(Equal([]string{"dest"}))

		// Committed directories can't be committed again, but can be destroyed.
		_, err = sd.Commit(dest)
		Expect(err).To(HaveOccurred())
		Expect(sd.Destroy()).To(Succeed())
	})

	It("refuses to replace existing entries", func() {
		Expect(ioutil.WriteFile(filepath.Join(dest, "b"), []byte("old"), 0644)).To(Succeed())

		sd, err := New(tdir, "staging")
		Expect(err).ToNot(HaveOccurred())
		Expect(ioutil.WriteFile(sd.Path("a"), []byte("a"), 0644)).To(Succeed())
		Expect(ioutil.WriteFile(sd.Path("b"), []byte("new"), 0644)).To(Succeed())

		names, err := sd.Commit(dest)
		Expect(err).To(MatchError(ContainSubstring("already exists")))
		Expect(names).To(BeEmpty())
		Expect(listDir(dest)).To(Equal([]string{"b"}))

		data, err := ioutil.ReadFile(filepath.Join(dest, "b"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal("old"))

		Expect(sd.Destroy()).To(Succeed())
		Expect(listDir(tdir)).To(Equal([]string{"dest"}))
	})

	It("leaves the destination untouched when destroyed", func() {
		sd, err := New(dest, ".staging")
		Expect(err).ToNot(HaveOccurred())
		Expect(ioutil.WriteFile(sd.Path("a"), []byte("a"), 0644)).To(Succeed())
		Expect(listDir(dest)).To(HaveLen(1))

		Expect(sd.Destroy()).To(Succeed())
		Expect(listDir(dest)).To(BeEmpty())
		Expect(sd.Destroy()).To(Succeed())
	})

	It("joins path components", func() {
		sd, err := New(tdir, "staging")
		Expect(err).ToNot(HaveOccurred())
		defer sd.Destroy()

		Expect(sd.Path("a", "b", "c")).To(Equal(filepath.Join(sd.Path("a"), "b", "c")))
	})
})
