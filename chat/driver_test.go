package chat_test

import (
	"strings"
	"unicode/utf16"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/beacon/chat"
)

func parse(tolerant bool, src string) (*chat.Compound, error) {
	tz := chat.NewJSONTokenizer(strings.NewReader(src))
	return chat.NewDriver(tolerant).Parse(tz)
}

func units(s string) []uint16 { return utf16.Encode([]rune(s)) }

var _ = Describe("Driver", func() {
	It("parses a plain text compound", func() {
		c, err := parse(false, `{"text":"hi"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content.Kind).To(Equal(chat.ContentText))
		Expect(c.Content.Text).To(Equal(units("hi")))
	})

	It("accepts boolean and string tristate forms", func() {
		c, err := parse(false, `{"text":"x","bold":true,"italic":"false"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Bold).To(Equal(chat.Enable))
		Expect(c.Italic).To(Equal(chat.Disable))
	})

	It("resolves a named color", func() {
		c, err := parse(false, `{"text":"x","color":"red"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Color).To(Equal(chat.ColorRed))
	})

	It("parses translate with substitutions regardless of key order", func() {
		c, err := parse(false, `{"translate":"some.key","with":["a","b"]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content.Kind).To(Equal(chat.ContentTranslate))
		Expect(c.Content.TranslateKey).To(Equal(units("some.key")))
		Expect(c.Content.With).To(Equal([][]uint16{units("a"), units("b")}))

		c2, err := parse(false, `{"with":["a","b"],"translate":"some.key"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c2.Content.Kind).To(Equal(chat.ContentTranslate))
		Expect(c2.Content.TranslateKey).To(Equal(units("some.key")))
	})

	It("parses score content", func() {
		c, err := parse(false, `{"score":{"name":"Steve","objective":"obj","value":"42"}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content.Kind).To(Equal(chat.ContentScore))
		Expect(c.Content.ScoreName).To(Equal(units("Steve")))
		Expect(c.Content.ScoreObjective).To(Equal(units("obj")))
		Expect(c.Content.ScoreValue).To(Equal(units("42")))
	})

	It("rejects a score objective longer than 16 code units in strict mode", func() {
		_, err := parse(false, `{"score":{"objective":"0123456789abcdefg"}}`)
		Expect(err).To(MatchError(chat.ErrUnexpectedValue))
	})

	It("inherits decorations and color into extra children", func() {
		c, err := parse(false, `{"text":"a","bold":true,"color":"red","extra":[{"text":"b"},{"text":"c","bold":false}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Children).To(HaveLen(2))
		Expect(c.Children[0].Bold).To(Equal(chat.Enable))
		Expect(c.Children[0].Color).To(Equal(chat.ColorRed))
		Expect(c.Children[1].Bold).To(Equal(chat.Disable))
	})

	It("links a hoverEvent show_text value regardless of key order", func() {
		c, err := parse(false, `{"text":"x","hoverEvent":{"action":"show_text","value":{"text":"hovered"}}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Hover.Kind).To(Equal(chat.HoverShowText))
		Expect(c.Hover.ShowText.Content.Text).To(Equal(units("hovered")))

		c2, err := parse(false, `{"text":"x","hoverEvent":{"value":{"text":"hovered"},"action":"show_text"}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c2.Hover.Kind).To(Equal(chat.HoverShowText))
		Expect(c2.Hover.ShowText.Content.Text).To(Equal(units("hovered")))
	})

	It("links a clickEvent value regardless of key order", func() {
		c, err := parse(false, `{"clickEvent":{"value":"https://example.com","action":"open_url"}}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Click.Kind).To(Equal(chat.ClickOpenURL))
		Expect(c.Click.Value).To(Equal(units("https://example.com")))
	})

	It("raises Duplicate on a repeated action key", func() {
		_, err := parse(false, `{"clickEvent":{"action":"open_url","value":"a","action":"run_command"}}`)
		Expect(err).To(MatchError(chat.ErrDuplicate))
	})

	It("raises AmbiguousTrait on conflicting content keys in strict mode", func() {
		_, err := parse(false, `{"text":"hi","translate":"foo"}`)
		Expect(err).To(MatchError(chat.ErrAmbiguousTrait))
	})

	It("keeps the first content trait and ignores the rest in tolerant mode", func() {
		c, err := parse(true, `{"text":"hi","translate":"foo"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content.Kind).To(Equal(chat.ContentText))
		Expect(c.Content.Text).To(Equal(units("hi")))
	})

	It("raises UnexpectedKey on an unknown key in strict mode", func() {
		_, err := parse(false, `{"text":"hi","bogus":"z"}`)
		Expect(err).To(MatchError(chat.ErrUnexpectedKey))
	})

	It("silently ignores unknown keys and their containers in tolerant mode", func() {
		c, err := parse(true, `{"text":"hi","bogus":{"nested":["z", {"deep": true}]},"color":"red"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content.Text).To(Equal(units("hi")))
		Expect(c.Color).To(Equal(chat.ColorRed))
	})

	It("ignores a type-mismatched value for a known key in tolerant mode", func() {
		c, err := parse(true, `{"text":"hi","bold":{"not":"a bool"},"color":"blue"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Bold).To(Equal(chat.Inherit))
		Expect(c.Color).To(Equal(chat.ColorBlue))
	})

	It("raises UnexpectedValue on a type-mismatched value in strict mode", func() {
		_, err := parse(false, `{"text":"hi","bold":{"not":"a bool"}}`)
		Expect(err).To(MatchError(chat.ErrUnexpectedValue))
	})

	It("reads a chat compound with ReadChatCompound", func() {
		src := `{"text":"hi"}`
		c, err := chat.ReadChatCompound(strings.NewReader(src), false, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Content.Text).To(Equal(units("hi")))
	})
})
