package stream_test

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/stream"
)

var _ = Describe("ioReader", func() {
	It("reads exactly the requested number of bytes", func() {
		in := stream.NewIOReader(bytes.NewReader([]byte{1, 2, 3, 4}))
		out := make([]byte, 2)
		Expect(in.Read(out)).To(Succeed())
		Expect(out).To(Equal([]byte{1, 2}))
	})

	It("fails with ErrShortRead on a truncated source", func() {
		in := stream.NewIOReader(bytes.NewReader([]byte{1}))
		out := make([]byte, 2)
		Expect(in.Read(out)).To(MatchError(stream.ErrShortRead))
	})

	It("skips exactly n bytes", func() {
		in := stream.NewIOReader(bytes.NewReader([]byte{1, 2, 3, 4}))
		Expect(in.Skip(2)).To(Succeed())
		out := make([]byte, 2)
		Expect(in.Read(out)).To(Succeed())
		Expect(out).To(Equal([]byte{3, 4}))
	})

	It("fails with ErrShortRead when skipping past the end", func() {
		in := stream.NewIOReader(bytes.NewReader([]byte{1}))
		Expect(in.Skip(5)).To(MatchError(stream.ErrShortRead))
	})
})

var _ = Describe("ioWriter", func() {
	It("writes the full buffer", func() {
		var buf bytes.Buffer
		out := stream.NewIOWriter(&buf)
		Expect(out.Write([]byte("hello"))).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte("hello")))
	})
})
