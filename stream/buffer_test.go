package stream_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/stream"
)

var _ = Describe("BufferInput", func() {
	It("reads exactly the requested number of bytes", func() {
		in := stream.NewBufferInput([]byte{1, 2, 3, 4})
		out := make([]byte, 2)
		Expect(in.Read(out)).To(Succeed())
		Expect(out).To(Equal([]byte{1, 2}))
		Expect(in.Len()).To(Equal(2))
	})

	It("fails with ErrShortRead when exhausted", func() {
		in := stream.NewBufferInput([]byte{1})
		out := make([]byte, 2)
		Expect(in.Read(out)).To(MatchError(stream.ErrShortRead))
	})

	It("skips exactly n bytes", func() {
		in := stream.NewBufferInput([]byte{1, 2, 3, 4})
		Expect(in.Skip(3)).To(Succeed())
		Expect(in.Len()).To(Equal(1))
	})

	It("supports LIFO mark/reset", func() {
		in := stream.NewBufferInput([]byte{1, 2, 3, 4, 5})
		out := make([]byte, 1)

		outer := in.Mark()
		Expect(in.Read(out)).To(Succeed())

		inner := in.Mark()
		Expect(in.Read(out)).To(Succeed())
		Expect(out).To(Equal([]byte{2}))

		Expect(inner.Reset()).To(Succeed())
		Expect(in.Read(out)).To(Succeed())
		Expect(out).To(Equal([]byte{2}))

		Expect(outer.Reset()).To(Succeed())
		Expect(in.Read(out)).To(Succeed())
		Expect(out).To(Equal([]byte{1}))
	})
})

var _ = Describe("BufferOutput", func() {
	It("prefixes accumulated bytes with their varint32 length", func() {
		out := stream.NewBufferOutput()
		payload := []byte("hello")
		Expect(out.Write(payload)).To(Succeed())

		Expect(out.Raw()).To(Equal(payload))

		prefixed := out.LengthPrefixed()
		Expect(prefixed[0]).To(Equal(byte(len(payload))))
		Expect(prefixed[1:]).To(Equal(payload))
	})

	It("encodes a multi-byte varint32 length prefix", func() {
		out := stream.NewBufferOutput()
		payload := make([]byte, 200)
		Expect(out.Write(payload)).To(Succeed())

		prefixed := out.LengthPrefixed()
		// 200 = 0b1100_1000 -> low 7 bits 0x48 with continuation, then 1.
		Expect(prefixed[0]).To(Equal(byte(0xC8)))
		Expect(prefixed[1]).To(Equal(byte(0x01)))
		Expect(prefixed[2:]).To(Equal(payload))
	})
})
