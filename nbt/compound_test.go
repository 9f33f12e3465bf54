package nbt_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/nbt"
	"github.com/luma/beacon/stream"
)

var _ = Describe("Compound", func() {
	It("preserves insertion order and supports name lookup", func() {
		c := nbt.NewCompound()
		c.Set(jstr("a"), nbt.TagByte-1, int8(1))
		c.Set(jstr("b"), nbt.TagShort-1, int16(2))
		c.Set(jstr("a"), nbt.TagByte-1, int8(9))

		Expect(c.Len()).To(Equal(2))
		Expect(c.Entries()[0].Value).To(Equal(int8(9)))

		e, ok := c.Get("b")
		Expect(ok).To(BeTrue())
		Expect(e.Value).To(Equal(int16(2)))
	})

	It("round-trips a nested compound as an item payload", func() {
		inner := nbt.NewCompound()
		inner.Set(jstr("x"), nbt.TagInt-1, int32(42))

		outer := nbt.NewCompound()
		outer.Set(jstr("child"), nbt.TagCompound-1, inner)

		out := stream.NewBufferOutput()
		Expect(nbt.WriteItem(out, jstr("root"), nbt.TagCompound-1, outer)).To(Succeed())

		in := stream.NewBufferInput(out.Raw())
		_, ordinal, value, err := nbt.ReadItem(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(ordinal).To(Equal(nbt.TagCompound - 1))

		decoded := value.(*nbt.Compound)
		childEntry, ok := decoded.Get("child")
		Expect(ok).To(BeTrue())
		child := childEntry.Value.(*nbt.Compound)
		xEntry, ok := child.Get("x")
		Expect(ok).To(BeTrue())
		Expect(xEntry.Value).To(Equal(int32(42)))
	})

	It("fails InvalidTag on an item tag outside 0..12", func() {
		// tag=13 with no name bytes after it: the tag is rejected first.
		raw := []byte{13}
		in := stream.NewBufferInput(raw)
		_, _, _, err := nbt.ReadItem(in)
		Expect(err).To(MatchError(codec.ErrMalformed))
	})
})
