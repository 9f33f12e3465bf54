package nbt_test

import (
	"unicode/utf16"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/nbt"
	"github.com/luma/beacon/stream"
)

func jstr(s string) codec.JString {
	return codec.JString{Units: utf16.Encode([]rune(s))}
}

var _ = Describe("ReadItem/WriteItem", func() {
	It("round-trips a byte item", func() {
		out := stream.NewBufferOutput()
		Expect(nbt.WriteItem(out, jstr("health"), nbt.TagByte-1, int8(20))).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		name, ordinal, value, err := nbt.ReadItem(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(name.Units).To(Equal(jstr("health").Units))
		Expect(ordinal).To(Equal(nbt.TagByte - 1))
		Expect(value).To(Equal(int8(20)))
	})

	It("round-trips the end marker", func() {
		out := stream.NewBufferOutput()
		Expect(nbt.WriteItem(out, codec.JString{}, -1, nil)).To(Succeed())
		Expect(out.Raw()).To(Equal([]byte{nbt.TagEnd}))

		in := stream.NewBufferInput(out.Raw())
		_, ordinal, _, err := nbt.ReadItem(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(ordinal).To(Equal(-1))
	})

	It("fails InvalidTag for a tag outside 0..12", func() {
		in := stream.NewBufferInput([]byte{13, 0, 0})
		_, _, _, err := nbt.ReadItem(in)
		Expect(err).To(MatchError(codec.ErrMalformed))
	})

	It("round-trips an int array item", func() {
		out := stream.NewBufferOutput()
		Expect(nbt.WriteItem(out, jstr("ids"), nbt.TagIntArray-1, []int32{1, -2, 3})).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		_, ordinal, value, err := nbt.ReadItem(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(ordinal).To(Equal(nbt.TagIntArray - 1))
		Expect(value).To(Equal([]int32{1, -2, 3}))
	})
})
