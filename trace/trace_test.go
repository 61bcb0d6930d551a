package trace_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/llcsim/replacement"
	"github.com/sarchlab/llcsim/trace"
)

var _ = Describe("Reader", func() {
	It("should decode records and skip comments", func() {
		input := `# pc and addresses are hex
load 0x400000 0x1000

w 400004 2040 3
2 0x10 0x20
`
		records, err := trace.NewReader(strings.NewReader(input)).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(Equal([]trace.Record{
			{Type: replacement.Load, PC: 0x400000, Address: 0x1000},
			{Type: replacement.Store, PC: 0x400004, Address: 0x2040, ThreadID: 3},
			{Type: replacement.Store, PC: 0x10, Address: 0x20},
		}))
	})

	It("should return io.EOF at the end", func() {
		r := trace.NewReader(strings.NewReader("load 1 2\n"))
		_, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		_, err = r.Next()
		Expect(err).To(Equal(io.EOF))
	})

	DescribeTable("should report malformed lines with their number",
		func(line string) {
			r := trace.NewReader(strings.NewReader("load 1 2\n# ok\n" + line + "\n"))
			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			Expect(err).To(MatchError(trace.ErrMalformedRecord))
			var parseErr *trace.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Line).To(Equal(3))
		},
		Entry("too few fields", "load 0x10"),
		Entry("too many fields", "load 1 2 3 4"),
		Entry("bad type", "jump 1 2"),
		Entry("bad pc", "load xyz 2"),
		Entry("bad address", "load 1 0x"),
		Entry("bad thread", "load 1 2 -1"),
	)
})

var _ = Describe("Writer", func() {
	It("should write records the reader accepts", func() {
		records := trace.Interleave(trace.Sequential(5, 64), trace.MatMul(2, 8))

		var buf bytes.Buffer
		w := trace.NewWriter(&buf)
		Expect(w.WriteComment("generated")).To(Succeed())
		Expect(w.WriteAll(records)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("# generated\nload 0x400000 0x0\n"))

		back, err := trace.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(back).To(Equal(records))
	})
})

var _ = Describe("Files", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	DescribeTable("should store and load traces",
		func(name string) {
			path := filepath.Join(dir, name)
			records := trace.Loop(4096, 64, 3)

			out, err := trace.Create(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(trace.NewWriter(out).WriteAll(records)).To(Succeed())
			Expect(out.Close()).To(Succeed())

			in, err := trace.Open(path)
			Expect(err).NotTo(HaveOccurred())
			defer in.Close()
			back, err := trace.NewReader(in).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(Equal(records))
		},
		Entry("plain", "loop.trace"),
		Entry("snappy", "loop.trace.sz"),
	)

	It("should compress .sz files", func() {
		records := trace.Loop(64*1024, 64, 4)
		for _, name := range []string{"a.trace", "a.trace.sz"} {
			out, err := trace.Create(filepath.Join(dir, name))
			Expect(err).NotTo(HaveOccurred())
			Expect(trace.NewWriter(out).WriteAll(records)).To(Succeed())
			Expect(out.Close()).To(Succeed())
		}
		plain, err := os.Stat(filepath.Join(dir, "a.trace"))
		Expect(err).NotTo(HaveOccurred())
		packed, err := os.Stat(filepath.Join(dir, "a.trace.sz"))
		Expect(err).NotTo(HaveOccurred())
		Expect(packed.Size()).To(BeNumerically("<", plain.Size()))
		Expect(trace.IsCompressed("a.trace.sz")).To(BeTrue())
	})

	It("should fail to open a missing file", func() {
		_, err := trace.Open(filepath.Join(dir, "missing.trace"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Generators", func() {
	It("should stride sequentially", func() {
		records := trace.Sequential(4, 128)
		Expect(records).To(HaveLen(4))
		Expect(records[3].Address).To(Equal(uint64(384)))
	})

	It("should repeat loops", func() {
		records := trace.Loop(256, 64, 3)
		Expect(records).To(HaveLen(12))
		Expect(records[4].Address).To(BeZero())
		Expect(trace.Loop(256, 0, 3)).To(BeEmpty())
	})

	It("should stay inside the uniform span and repeat per seed", func() {
		records := trace.Uniform(9, 500, 4096)
		for _, r := range records {
			Expect(r.Address).To(BeNumerically("<", 4096))
			Expect(r.Address % 64).To(BeZero())
		}
		Expect(trace.Uniform(9, 500, 4096)).To(Equal(records))
	})

	It("should favor low lines under zipf", func() {
		records, err := trace.Zipf(3, 2000, 1024, 1.2)
		Expect(err).NotTo(HaveOccurred())
		var first int
		for _, r := range records {
			Expect(r.Address).To(BeNumerically("<", 1024*64))
			if r.Address == 0 {
				first++
			}
		}
		Expect(first).To(BeNumerically(">", 100))

		_, err = trace.Zipf(3, 10, 1024, 1.0)
		Expect(err).To(HaveOccurred())
	})

	It("should walk matrices in multiply order", func() {
		records := trace.MatMul(3, 8)
		Expect(records).To(HaveLen(3 * 3 * 7))
		Expect(records[0].Address).To(Equal(uint64(0x10000000)))
		Expect(records[1].Address).To(Equal(uint64(0x20000000)))
		Expect(records[3].Address).To(Equal(uint64(0x20000000 + 3*8)))
		Expect(records[6].Type).To(Equal(replacement.Store))
		Expect(records[6].Address).To(Equal(uint64(0x30000000)))
	})

	It("should interleave streams with thread ids", func() {
		records := trace.Interleave(trace.Sequential(2, 64), trace.Sequential(1, 64))
		Expect(records).To(HaveLen(3))
		Expect(records[1].ThreadID).To(Equal(uint32(1)))
		Expect(records[2].ThreadID).To(BeZero())
	})

	It("should run named patterns", func() {
		Expect(trace.Patterns()).To(ContainElements("loop", "matmul", "zipf"))
		records, err := trace.Generate("loop", trace.Params{Span: 128, Stride: 64, Reps: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(4))
		_, err = trace.Generate("spiral", trace.Params{})
		Expect(err).To(HaveOccurred())
	})
})
