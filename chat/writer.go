package chat

import (
	"strconv"
	"unicode/utf16"

	"github.com/tidwall/sjson"
)

// WriteJSON serializes a Compound back to its JSON wire form. The
// original implementation left this direction undefined; it is
// rebuilt here on sjson.SetBytes, the same library the project already
// uses for incrementally building JSON documents by path, in a fixed
// key order so output is deterministic for tests and logging.
func WriteJSON(c *Compound) ([]byte, error) {
	return writeChatCompound(nil, "", c)
}

func writeChatCompound(buf []byte, prefix string, c *Compound) ([]byte, error) {
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		buf, err = sjson.SetBytes(buf, prefix+path, value)
	}

	switch c.Content.Kind {
	case ContentText:
		set("text", string(utf16.Decode(c.Content.Text)))
	case ContentTranslate:
		set("translate", string(utf16.Decode(c.Content.TranslateKey)))
		for i, w := range c.Content.With {
			set(withIndexPath(i), string(utf16.Decode(w)))
		}
	case ContentKeybind:
		set("keybind", string(utf16.Decode(c.Content.Keybind)))
	case ContentScore:
		if c.Content.ScoreName != nil {
			set("score.name", string(utf16.Decode(c.Content.ScoreName)))
		}
		if c.Content.ScoreObjective != nil {
			set("score.objective", string(utf16.Decode(c.Content.ScoreObjective)))
		}
		if c.Content.ScoreValue != nil {
			set("score.value", string(utf16.Decode(c.Content.ScoreValue)))
		}
	}
	if err != nil {
		return nil, err
	}

	writeTristate(set, "bold", c.Bold)
	writeTristate(set, "italic", c.Italic)
	writeTristate(set, "underlined", c.Underlined)
	writeTristate(set, "strikethrough", c.Strikethrough)
	writeTristate(set, "obfuscated", c.Obfuscated)
	if err != nil {
		return nil, err
	}

	if c.Color != ColorNone {
		if name, ok := colorStrings[c.Color]; ok {
			set("color", name)
		}
	}
	if c.Insertion != nil {
		set("insertion", string(utf16.Decode(c.Insertion)))
	}
	if err != nil {
		return nil, err
	}

	if c.Click != nil {
		set("clickEvent.action", clickKindName(c.Click.Kind))
		set("clickEvent.value", string(utf16.Decode(c.Click.Value)))
	}
	if c.Hover != nil {
		if err != nil {
			return nil, err
		}
		buf, err = writeHoverEvent(buf, prefix+"hoverEvent.", c.Hover)
	}
	if err != nil {
		return nil, err
	}

	for i, child := range c.Children {
		buf, err = writeChatCompound(buf, prefix+withIndexPath2("extra", i)+".", child)
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

func writeHoverEvent(buf []byte, prefix string, h *HoverEvent) ([]byte, error) {
	var err error
	action := hoverKindName(h.Kind)
	buf, err = sjson.SetBytes(buf, prefix+"action", action)
	if err != nil {
		return nil, err
	}

	switch h.Kind {
	case HoverShowText:
		if h.ShowText != nil {
			return writeChatCompound(buf, prefix+"value.", h.ShowText)
		}
		return buf, nil
	case HoverShowItem:
		return sjson.SetBytes(buf, prefix+"value", string(utf16.Decode(h.ShowItem)))
	case HoverShowEntity:
		return sjson.SetBytes(buf, prefix+"value", string(utf16.Decode(h.ShowEntity)))
	case HoverShowAchievement:
		return sjson.SetBytes(buf, prefix+"value", string(utf16.Decode(h.ShowAchievement)))
	}
	return buf, nil
}

func writeTristate(set func(string, interface{}), key string, ts Tristate) {
	switch ts {
	case Enable:
		set(key, true)
	case Disable:
		set(key, false)
	}
}

func clickKindName(k ClickKind) string {
	for name, v := range clickActionNames {
		if v == k {
			return name
		}
	}
	return ""
}

func hoverKindName(k HoverKind) string {
	for name, v := range hoverActionNames {
		if v == k {
			return name
		}
	}
	return ""
}

func withIndexPath(i int) string {
	return withIndexPath2("with", i)
}

func withIndexPath2(array string, i int) string {
	return array + "." + strconv.Itoa(i)
}
