package codec_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

func newU8Array() codec.Array[codec.U8] {
	return codec.Array[codec.U8]{
		ReadElem: func(r stream.Reader) (codec.U8, error) {
			var v codec.U8
			err := v.Read(r)
			return v, err
		},
		WriteElem: func(w stream.Writer, e codec.U8) error { return e.Write(w) },
		ReadLen:   codec.Var32ReadLen,
		WriteLen:  codec.Var32WriteLen,
	}
}

var _ = Describe("Array", func() {
	It("round-trips a Var32-length-prefixed sequence of U8", func() {
		a := newU8Array()
		a.Items = []codec.U8{1, 2, 3}

		out := stream.NewBufferOutput()
		Expect(a.Write(out)).To(Succeed())
		Expect(out.Raw()).To(Equal([]byte{3, 1, 2, 3}))

		in := stream.NewBufferInput(out.Raw())
		decoded := newU8Array()
		Expect(decoded.Read(in)).To(Succeed())
		Expect(decoded.Items).To(Equal(a.Items))
	})

	It("round-trips an empty array", func() {
		a := newU8Array()

		out := stream.NewBufferOutput()
		Expect(a.Write(out)).To(Succeed())
		Expect(out.Raw()).To(Equal([]byte{0}))

		in := stream.NewBufferInput(out.Raw())
		decoded := newU8Array()
		Expect(decoded.Read(in)).To(Succeed())
		Expect(decoded.Items).To(BeEmpty())
	})

	It("propagates a short read mid-sequence", func() {
		in := stream.NewBufferInput([]byte{2, 1})
		decoded := newU8Array()
		Expect(decoded.Read(in)).To(MatchError(stream.ErrShortRead))
	})
})
