package nbt_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/nbt"
	"github.com/luma/beacon/stream"
)

var _ = Describe("List", func() {
	It("fixes its ordinal on first append and rejects a mismatched type", func() {
		l := nbt.NewList()
		Expect(l.Append(nbt.TagInt-1, int32(1))).To(Succeed())
		Expect(l.Ordinal()).To(Equal(nbt.TagInt - 1))
		Expect(l.Append(nbt.TagByte-1, int8(1))).To(MatchError(nbt.ErrInvalidState))
	})

	It("round-trips a list of longs as an item payload", func() {
		l := nbt.NewList()
		Expect(l.Append(nbt.TagLong-1, int64(10))).To(Succeed())
		Expect(l.Append(nbt.TagLong-1, int64(-20))).To(Succeed())

		out := stream.NewBufferOutput()
		Expect(nbt.WriteItem(out, jstr("nums"), nbt.TagList-1, l)).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		_, ordinal, value, err := nbt.ReadItem(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(ordinal).To(Equal(nbt.TagList - 1))

		decoded := value.(*nbt.List)
		Expect(decoded.Ordinal()).To(Equal(nbt.TagLong - 1))
		Expect(decoded.Len()).To(Equal(2))
		Expect(decoded.Item(0)).To(Equal(int64(10)))
		Expect(decoded.Item(1)).To(Equal(int64(-20)))
	})

	It("round-trips an empty list with a zero element tag", func() {
		l := nbt.NewList()

		out := stream.NewBufferOutput()
		Expect(nbt.WriteItem(out, jstr("empty"), nbt.TagList-1, l)).To(Succeed())
		// tag, name-len(2), name bytes(5), elemTag(1)=0, length(4)=0
		Expect(out.Raw()).To(HaveLen(1 + 2 + 5 + 1 + 4))

		in := stream.NewBufferInput(out.Raw())
		_, _, value, err := nbt.ReadItem(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(value.(*nbt.List).Len()).To(Equal(0))
	})

	It("rejects a nonzero length with a zero element tag", func() {
		// tag=TagList, nameLen=0, elemTag=0, length=1 — invalid combination.
		raw := []byte{nbt.TagList, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
		in := stream.NewBufferInput(raw)
		_, _, _, err := nbt.ReadItem(in)
		Expect(err).To(MatchError(codec.ErrMalformed))
	})
})
