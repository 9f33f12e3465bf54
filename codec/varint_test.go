package codec_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

var _ = Describe("Var32", func() {
	It("encodes -1 as five 0xFF-ish bytes terminated by 0x0F", func() {
		out := stream.NewBufferOutput()
		Expect(codec.Var32(-1).Write(out)).To(Succeed())
		Expect(out.Raw()).To(Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}))
	})

	It("decodes -1 back from its wire form", func() {
		in := stream.NewBufferInput([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F})
		var v codec.Var32
		Expect(v.Read(in)).To(Succeed())
		Expect(v).To(Equal(codec.Var32(-1)))
	})

	It("encodes 0 as a single zero byte", func() {
		out := stream.NewBufferOutput()
		Expect(codec.Var32(0).Write(out)).To(Succeed())
		Expect(out.Raw()).To(Equal([]byte{0x00}))
	})

	It("rejects a terminating byte whose high bits overflow 32 bits", func() {
		in := stream.NewBufferInput([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10})
		var v codec.Var32
		Expect(v.Read(in)).To(MatchError(codec.ErrMalformed))
	})

	It("rejects a varint that never terminates within 5 bytes", func() {
		in := stream.NewBufferInput([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
		var v codec.Var32
		Expect(v.Read(in)).To(MatchError(codec.ErrMalformed))
	})

	It("round-trips a representative positive value", func() {
		out := stream.NewBufferOutput()
		Expect(codec.Var32(300).Write(out)).To(Succeed())
		Expect(out.Raw()).To(Equal([]byte{0xAC, 0x02}))

		in := stream.NewBufferInput(out.Raw())
		var v codec.Var32
		Expect(v.Read(in)).To(Succeed())
		Expect(v).To(Equal(codec.Var32(300)))
	})
})

var _ = Describe("Var64", func() {
	It("round-trips -1", func() {
		out := stream.NewBufferOutput()
		Expect(codec.Var64(-1).Write(out)).To(Succeed())
		Expect(out.Raw()).To(HaveLen(10))

		in := stream.NewBufferInput(out.Raw())
		var v codec.Var64
		Expect(v.Read(in)).To(Succeed())
		Expect(v).To(Equal(codec.Var64(-1)))
	})
})
