package codec_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

func utf16Of(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r > 0xFFFF {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
		} else {
			units = append(units, uint16(r))
		}
	}
	return units
}

var _ = Describe("UString", func() {
	It("round-trips an ASCII string", func() {
		out := stream.NewBufferOutput()
		s := codec.UString{Units: utf16Of("hello")}
		Expect(s.Write(out)).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		var decoded codec.UString
		Expect(decoded.Read(in)).To(Succeed())
		Expect(decoded.Units).To(Equal(utf16Of("hello")))
	})

	It("round-trips an astral code point as a surrogate pair", func() {
		out := stream.NewBufferOutput()
		s := codec.UString{Units: utf16Of("\U0001F600")}
		Expect(s.Units).To(HaveLen(2))
		Expect(s.Write(out)).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		var decoded codec.UString
		Expect(decoded.Read(in)).To(Succeed())
		Expect(decoded.Units).To(Equal(s.Units))
	})

	It("rejects a negative declared byte length", func() {
		// 0xFF 0xFF 0xFF 0xFF 0x0F is the Var32 encoding of -1.
		in := stream.NewBufferInput([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F})
		var decoded codec.UString
		Expect(decoded.Read(in)).To(MatchError(codec.ErrMalformed))
	})

	It("enforces MaxLen in code units, not bytes", func() {
		out := stream.NewBufferOutput()
		s := codec.UString{Units: utf16Of("hello")}
		Expect(s.Write(out)).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		decoded := codec.UString{MaxLen: 3}
		Expect(decoded.Read(in)).To(MatchError(codec.ErrTooLong))
	})

	It("fails to encode an unpaired surrogate", func() {
		s := codec.UString{Units: []uint16{0xD800}}
		out := stream.NewBufferOutput()
		Expect(s.Write(out)).To(MatchError(codec.ErrMalformed))
	})

	It("fails to decode a surrogate code point encoded directly as 3 bytes", func() {
		// 0xED 0xA0 0x80 would be a 3-byte encoding of U+D800 (CESU-8 style).
		in := stream.NewBufferInput([]byte{0x03, 0xED, 0xA0, 0x80})
		var decoded codec.UString
		Expect(decoded.Read(in)).To(MatchError(codec.ErrMalformed))
	})

	It("fails to decode an overlong 2-byte encoding", func() {
		// 0xC0 0x80 is an overlong encoding of NUL.
		in := stream.NewBufferInput([]byte{0x02, 0xC0, 0x80})
		var decoded codec.UString
		Expect(decoded.Read(in)).To(MatchError(codec.ErrMalformed))
	})
})

var _ = Describe("JString", func() {
	It("round-trips via a u16be byte length prefix", func() {
		out := stream.NewBufferOutput()
		s := codec.JString{Units: utf16Of("nbt")}
		Expect(s.Write(out)).To(Succeed())
		Expect(out.Raw()[:2]).To(Equal([]byte{0x00, 0x03}))

		in := stream.NewBufferInput(out.Raw())
		var decoded codec.JString
		Expect(decoded.Read(in)).To(Succeed())
		Expect(decoded.Units).To(Equal(utf16Of("nbt")))
	})

	It("rejects encoding a payload over 65535 bytes", func() {
		huge := make([]uint16, 70000)
		for i := range huge {
			huge[i] = 'a'
		}
		s := codec.JString{Units: huge}
		out := stream.NewBufferOutput()
		Expect(s.Write(out)).To(MatchError(codec.ErrTooLong))
	})
})
