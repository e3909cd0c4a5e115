// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/envelope"
	"github.com/locka99/airgap/manifest"
	"github.com/locka99/airgap/packet"
	"github.com/locka99/airgap/support/errkind"
	"github.com/locka99/airgap/support/logging"
	"github.com/locka99/airgap/symbol"

	"github.com/pkg/errors"
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

// capturingEncoder keeps the wire bytes of every block it encodes, standing in
// for a scanner on the receiving side.
type capturingEncoder struct {
	mu     sync.Mutex
	blocks []*packet.Block
	fail   bool
}

func (ce *capturingEncoder) Encode(data []byte, c capacity.SizeClass, s capacity.Strength) (image.Image, error) {
	if ce.fail {
		return nil, errors.New("encoder is broken")
	}

	b, err := packet.Parse(append([]byte(nil), data...))
	if err != nil {
		return nil, err
	}

	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.blocks = append(ce.blocks, b)
	return image.NewGray(image.Rect(0, 0, 1, 1)), nil
}

// receive reassembles the captured blocks, in a shuffled order, the way a
// receiver would.
func (ce *capturingEncoder) receive() ([]byte, *envelope.Envelope, error) {
	blocks := append([]*packet.Block(nil), ce.blocks...)
	rand.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })

	var env *envelope.Envelope
	for _, b := range blocks {
		if b.IsEnvelope() {
			var err error
			if env, err = envelope.FromBlock(b); err != nil {
				return nil, nil, err
			}
		}
	}
	if env == nil {
		return nil, nil, errors.New("no envelope block")
	}
	data, err := env.Unpack(blocks)
	return data, env, err
}

func listDir(path string) []string {
	entries, err := ioutil.ReadDir(path)
	Expect(err).ToNot(HaveOccurred())

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)
	return names
}

var _ = Describe("Run", func() {
	var tdir, inDir, outDir string
	var enc *capturingEncoder
	var cfg Config
	var ctx context.Context

	writeInput := func(name string, data []byte) string {
		path := filepath.Join(inDir, name)
		Expect(ioutil.WriteFile(path, data, 0644)).To(Succeed())
		return path
	}

	randomData := func(size int) []byte {
		data := make([]byte, size)
		rand.New(rand.NewSource(int64(size))).Read(data)
		return data
	}

	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "transfer_test")
		Expect(err).ToNot(HaveOccurred())

		inDir = filepath.Join(tdir, "in")
		outDir = filepath.Join(tdir, "out")
		Expect(os.Mkdir(inDir, 0755)).To(Succeed())
		Expect(os.Mkdir(outDir, 0755)).To(Succeed())

		enc = &capturingEncoder{}
		cfg = Config{
			Encoder:       enc,
			WriteManifest: true,
			Logger:        &logging.Recorder{},
		}
		ctx = context.Background()
	})

	AfterEach(func() {
		if tdir != "" {
			Expect(os.RemoveAll(tdir)).To(Succeed())
		}
	})

	It("splits 3000 bytes at strength M into three artifacts", func() {
		data := randomData(3000)
		input := writeInput("data.bin", data)

		summary, err := cfg.Run(ctx, input, capacity.M, outDir)
		Expect(err).ToNot(HaveOccurred())

		Expect(summary.Artifacts).To(HaveLen(3))
		Expect(summary.Artifacts[0].WireLen).To(Equal(1370))
		Expect(summary.Artifacts[1].WireLen).To(Equal(1370))
		Expect(summary.Artifacts[2].WireLen).To(Equal(263))
		Expect(summary.EnvelopeArtifact.Sequence).To(Equal(packet.EnvelopeSequence))

		Expect(summary.Envelope.NumBlocks).To(Equal(uint64(3)))
		Expect(summary.Envelope.Size).To(Equal(uint64(3000)))
		Expect(summary.Envelope.SymbolStrength()).To(Equal(capacity.M))
		Expect(summary.Envelope.SymbolSizeClass()).To(Equal(capacity.Version30))

		Expect(summary.Paths()).To(Equal([]string{
			filepath.Join(outDir, "data.bin-0.png"),
			filepath.Join(outDir, "data.bin-1.png"),
			filepath.Join(outDir, "data.bin-2.png"),
			filepath.Join(outDir, "data.bin-envelope.png"),
		}))
		Expect(summary.ManifestPath).To(Equal(filepath.Join(outDir, "data.bin.manifest.protostream")))
		Expect(summary.WireBytes()).To(BeNumerically(">", 3000))

		Expect(cfg.Logger.(*logging.Recorder).Messages("info")).To(ContainElement(
			fmt.Sprintf("Wrote 4 artifact(s) for %q to %q.", "data.bin", outDir)))

		Expect(listDir(outDir)).To(Equal([]string{
			"data.bin-0.png",
			"data.bin-1.png",
			"data.bin-2.png",
			"data.bin-envelope.png",
			"data.bin.manifest.protostream",
		}))
	})

	table.DescribeTable("round-trips file content",
		func(size int, s capacity.Strength, comp envelope.Compression) {
			data := randomData(size)
			input := writeInput("file", data)

			cfg.Compression = comp
			summary, err := cfg.Run(ctx, input, s, outDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(summary.Envelope.StreamCompression()).To(Equal(comp))

			received, env, err := enc.receive()
			Expect(err).ToNot(HaveOccurred())
			Expect(received).To(Equal(data))
			Expect(env.DisplayName()).To(Equal("file"))
			Expect(env.Verify(received)).To(Succeed())
		},
		table.Entry("a single byte", 1, capacity.L, envelope.CompressionNone),
		table.Entry("exactly one block", 1731, capacity.L, envelope.CompressionNone),
		table.Entry("one byte over a block", 1732, capacity.L, envelope.CompressionNone),
		table.Entry("many blocks at H", 200*1024, capacity.H, envelope.CompressionNone),
		table.Entry("with SNAPPY", 10000, capacity.Q, envelope.CompressionSnappy),
		table.Entry("with GZIP", 10000, capacity.Q, envelope.CompressionGzip),
		table.Entry("with ZSTD", 10000, capacity.Q, envelope.CompressionZstd),
	)

	It("compresses compressible content into fewer blocks", func() {
		input := writeInput("zeroes", make([]byte, 64*1024))

		cfg.Compression = envelope.CompressionZstd
		summary, err := cfg.Run(ctx, input, capacity.L, outDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Artifacts).To(HaveLen(1))
		Expect(summary.Envelope.StreamSize).To(BeNumerically("<", summary.Envelope.Size))
	})

	It("emits only the envelope for an empty file", func() {
		input := writeInput("empty", nil)

		summary, err := cfg.Run(ctx, input, capacity.L, outDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Artifacts).To(BeEmpty())
		Expect(summary.Envelope.NumBlocks).To(BeZero())
		Expect(listDir(outDir)).To(Equal([]string{"empty-envelope.png", "empty.manifest.protostream"}))

		received, _, err := enc.receive()
		Expect(err).ToNot(HaveOccurred())
		Expect(received).To(BeEmpty())
	})

	It("writes a manifest that describes the artifacts", func() {
		input := writeInput("data.bin", randomData(5000))

		summary, err := cfg.Run(ctx, input, capacity.H, outDir)
		Expect(err).ToNot(HaveOccurred())

		m, err := manifest.Load(summary.ManifestPath)
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Check()).To(Succeed())
		Expect(m.Envelope.Crc32).To(Equal(summary.Envelope.Crc32))
		for i, a := range summary.Artifacts {
			Expect(m.Blocks[i].Artifact).To(Equal(a.Name))
			Expect(m.Blocks[i].Crc32).To(Equal(a.Crc32))
		}
	})

	It("can skip the manifest", func() {
		input := writeInput("data.bin", randomData(100))

		cfg.WriteManifest = false
		summary, err := cfg.Run(ctx, input, capacity.L, outDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.ManifestPath).To(BeEmpty())
		Expect(listDir(outDir)).To(Equal([]string{"data.bin-0.png", "data.bin-envelope.png"}))
	})

	It("writes beside unrelated files", func() {
		unrelated := []string{"other.bin-0.png", "x.bin", "x.bin-notes.txt", "x.bin-1-0.png"}
		for _, name := range unrelated {
			Expect(ioutil.WriteFile(filepath.Join(outDir, name), nil, 0644)).To(Succeed())
		}
		input := writeInput("x.bin", randomData(100))

		cfg.WriteManifest = false
		_, err := cfg.Run(ctx, input, capacity.L, outDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(listDir(outDir)).To(Equal([]string{
			"other.bin-0.png", "x.bin", "x.bin-0.png", "x.bin-1-0.png", "x.bin-envelope.png", "x.bin-notes.txt",
		}))
	})

	It("can stage in a separate directory", func() {
		input := writeInput("data.bin", randomData(100))

		cfg.TempDir = filepath.Join(tdir, "staging")
		Expect(os.Mkdir(cfg.TempDir, 0755)).To(Succeed())

		_, err := cfg.Run(ctx, input, capacity.L, outDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(listDir(cfg.TempDir)).To(BeEmpty())
		Expect(listDir(outDir)).To(HaveLen(3))
	})

	Context("on failure", func() {
		It("rejects an unknown strength before reading anything", func() {
			_, err := cfg.Run(ctx, filepath.Join(inDir, "missing"), capacity.Strength(9), outDir)
			Expect(errkind.KindOf(err)).To(Equal(errkind.Configuration))
		})

		It("rejects an unprovisioned size class", func() {
			input := writeInput("data.bin", randomData(10))

			cfg.SizeClass = capacity.SizeClass(5)
			_, err := cfg.Run(ctx, input, capacity.L, outDir)
			Expect(errkind.KindOf(err)).To(Equal(errkind.Configuration))
		})

		It("reports a missing input as an I/O error", func() {
			_, err := cfg.Run(ctx, filepath.Join(inDir, "missing"), capacity.L, outDir)
			Expect(errkind.KindOf(err)).To(Equal(errkind.IO))
			Expect(listDir(outDir)).To(BeEmpty())
		})

		It("reports a missing output location as an I/O error", func() {
			input := writeInput("data.bin", randomData(10))

			_, err := cfg.Run(ctx, input, capacity.L, filepath.Join(tdir, "nope"))
			Expect(errkind.KindOf(err)).To(Equal(errkind.IO))
		})

		It("requires the output location to be a directory", func() {
			input := writeInput("data.bin", randomData(10))

			_, err := cfg.Run(ctx, input, capacity.L, input)
			Expect(errkind.KindOf(err)).To(Equal(errkind.IO))
			Expect(err).To(MatchError(ContainSubstring("is not a directory")))
		})

		It("rejects an unknown compression", func() {
			input := writeInput("data.bin", randomData(10))

			cfg.Compression = envelope.Compression(99)
			_, err := cfg.Run(ctx, input, capacity.L, outDir)
			Expect(errkind.KindOf(err)).To(Equal(errkind.Configuration))
		})

		It("refuses to write over an earlier set for the same name", func() {
			input := writeInput("x.bin", randomData(5000))
			first, err := cfg.Run(ctx, input, capacity.H, outDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(first.Artifacts).To(HaveLen(7))
			before := listDir(outDir)
			Expect(before).To(HaveLen(9))
			envBefore, err := ioutil.ReadFile(filepath.Join(outDir, "x.bin-envelope.png"))
			Expect(err).ToNot(HaveOccurred())

			// A smaller file with the same base name, from somewhere else.
			otherDir := filepath.Join(tdir, "other")
			Expect(os.Mkdir(otherDir, 0755)).To(Succeed())
			small := filepath.Join(otherDir, "x.bin")
			Expect(ioutil.WriteFile(small, []byte("small"), 0644)).To(Succeed())

			_, err = cfg.Run(ctx, small, capacity.H, outDir)
			Expect(errkind.KindOf(err)).To(Equal(errkind.IO))
			Expect(err).To(MatchError(ContainSubstring(`already holds 9 file(s) for "x.bin"`)))

			Expect(listDir(outDir)).To(Equal(before))
			envAfter, err := ioutil.ReadFile(filepath.Join(outDir, "x.bin-envelope.png"))
			Expect(err).ToNot(HaveOccurred())
			Expect(envAfter).To(Equal(envBefore))
		})

		table.DescribeTable("refuses to mix with leftovers of an earlier set",
			func(leftover string) {
				Expect(ioutil.WriteFile(filepath.Join(outDir, leftover), nil, 0644)).To(Succeed())
				input := writeInput("x.bin", randomData(100))

				_, err := cfg.Run(ctx, input, capacity.L, outDir)
				Expect(errkind.KindOf(err)).To(Equal(errkind.IO))
				Expect(listDir(outDir)).To(Equal([]string{leftover}))
			},
			table.Entry("a data artifact in another format", "x.bin-3.bmp"),
			table.Entry("an envelope artifact", "x.bin-envelope.tiff"),
			table.Entry("a manifest", "x.bin.manifest.protostream"),
		)

		It("leaves nothing behind when encoding fails", func() {
			input := writeInput("data.bin", randomData(10000))

			enc.fail = true
			_, err := cfg.Run(ctx, input, capacity.L, outDir)
			Expect(errkind.KindOf(err)).To(Equal(errkind.Encoding))
			Expect(listDir(outDir)).To(BeEmpty())
		})

		It("leaves nothing behind when cancelled", func() {
			input := writeInput("data.bin", randomData(10000))

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := cfg.Run(cctx, input, capacity.L, outDir)
			Expect(err).To(Equal(context.Canceled))
			Expect(listDir(outDir)).To(BeEmpty())
		})
	})

	It("renders real QR symbols with the default configuration", func() {
		input := writeInput("hello.txt", []byte("hello, airgap"))

		summary, err := Run(ctx, input, capacity.Q, outDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.ManifestPath).To(BeEmpty())

		for _, path := range summary.Paths() {
			data, err := ioutil.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())

			img, err := png.Decode(bytes.NewReader(data))
			Expect(err).ToNot(HaveOccurred())
			size := (capacity.Version30.Modules() + 8) * symbol.DefaultScale
			Expect(img.Bounds()).To(Equal(image.Rect(0, 0, size, size)))
		}
	})
})
