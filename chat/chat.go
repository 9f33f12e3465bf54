// Package chat reconstructs a hierarchical chat component tree from an
// incremental JSON event stream via a pushdown automaton: a stack of
// contexts (chat compound, hover/click event, score, extra/with arrays)
// each gating which keys and value types are legal, driven by a token
// dictionary the way the protocol's other structured formats are driven
// by static tables rather than hand-written recursive-descent code.
package chat

import "errors"

// ErrAmbiguousTrait is raised when a second, different content key
// (text/translate/keybind/score) appears on the same compound.
var ErrAmbiguousTrait = errors.New("chat: ambiguous content trait")

// ErrDuplicate is raised when a hover/click event's action or value key
// appears twice.
var ErrDuplicate = errors.New("chat: duplicate key")

// ErrUnexpectedKey is raised in strict mode when a key is not accepted
// by the current context.
var ErrUnexpectedKey = errors.New("chat: unexpected key")

// ErrUnexpectedValue is raised in strict mode when a key's value does
// not match its accepted event kinds.
var ErrUnexpectedValue = errors.New("chat: unexpected value")

// Tristate models a decoration that can inherit its parent's effective
// value rather than being explicitly on or off.
type Tristate int8

const (
	Inherit Tristate = iota
	Enable
	Disable
)

// Color is a reference into the fixed named color table; the zero value
// means "no color set" (nil reference), distinct from any named color.
type Color int

const (
	ColorNone Color = iota
	ColorBlack
	ColorDarkBlue
	ColorDarkGreen
	ColorDarkAqua
	ColorDarkRed
	ColorDarkPurple
	ColorGold
	ColorGray
	ColorDarkGray
	ColorBlue
	ColorGreen
	ColorAqua
	ColorRed
	ColorLightPurple
	ColorYellow
	ColorWhite
	ColorReset
)

var colorNames = map[string]Color{
	"black":        ColorBlack,
	"dark_blue":    ColorDarkBlue,
	"dark_green":   ColorDarkGreen,
	"dark_aqua":    ColorDarkAqua,
	"dark_red":     ColorDarkRed,
	"dark_purple":  ColorDarkPurple,
	"gold":         ColorGold,
	"gray":         ColorGray,
	"dark_gray":    ColorDarkGray,
	"blue":         ColorBlue,
	"green":        ColorGreen,
	"aqua":         ColorAqua,
	"red":          ColorRed,
	"light_purple": ColorLightPurple,
	"yellow":       ColorYellow,
	"white":        ColorWhite,
	"reset":        ColorReset,
}

var colorStrings = func() map[Color]string {
	m := make(map[Color]string, len(colorNames))
	for name, c := range colorNames {
		m[c] = name
	}
	return m
}()

// ContentKind identifies which of the four mutually exclusive content
// traits a Compound carries.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentText
	ContentTranslate
	ContentKeybind
	ContentScore
)

// Content holds whichever fields ContentKind selects. Translate's With
// substitutions are independent of whether Translate itself has been
// set yet — the key and the with array can arrive in either order.
type Content struct {
	Kind ContentKind

	Text []uint16

	TranslateKey []uint16
	With         [][]uint16

	Keybind []uint16

	ScoreName      []uint16
	ScoreObjective []uint16
	ScoreValue     []uint16
}

// ClickKind identifies a click event's action.
type ClickKind int

const (
	ClickOpenURL ClickKind = iota
	ClickRunCommand
	ClickSuggestCommand
	ClickChangePage
)

var clickActionNames = map[string]ClickKind{
	"open_url":        ClickOpenURL,
	"run_command":     ClickRunCommand,
	"suggest_command": ClickSuggestCommand,
	"change_page":     ClickChangePage,
}

// ClickEvent is a click action and its associated string value.
type ClickEvent struct {
	Kind  ClickKind
	Value []uint16
}

// HoverKind identifies a hover event's action. ShowAchievement is
// documented as removed in later protocol versions; it is kept as an
// optional decoder callers may ignore.
type HoverKind int

const (
	HoverShowText HoverKind = iota
	HoverShowItem
	HoverShowEntity
	HoverShowAchievement
)

var hoverActionNames = map[string]HoverKind{
	"show_text":        HoverShowText,
	"show_item":        HoverShowItem,
	"show_entity":      HoverShowEntity,
	"show_achievement": HoverShowAchievement,
}

// HoverEvent is a hover action and whichever value field its kind uses.
type HoverEvent struct {
	Kind            HoverKind
	ShowText        *Compound
	ShowItem        []uint16
	ShowEntity      []uint16
	ShowAchievement []uint16
}

// Compound is one node of the chat component tree. Children inherit
// their parent's decorations and color at construction time — Inherit
// resolves to the parent's effective value, Enable/Disable override.
type Compound struct {
	Bold, Italic, Underlined, Strikethrough, Obfuscated Tristate
	Color                                               Color
	Insertion                                           []uint16

	Content Content

	Click *ClickEvent
	Hover *HoverEvent

	Children []*Compound
}

// effectiveDecoration resolves a tri-state decoration against an own
// value and, if that is Inherit, a parent's already-effective value.
func (c *Compound) effectiveDecoration(own, parentEffective Tristate) Tristate {
	if own == Inherit {
		return parentEffective
	}
	return own
}

// NewChild returns a fresh compound pre-populated with this compound's
// effective decorations and color, ready to have its own fields
// override them.
func (c *Compound) NewChild() *Compound {
	child := &Compound{
		Bold:          c.effectiveDecoration(Inherit, c.Bold),
		Italic:        c.effectiveDecoration(Inherit, c.Italic),
		Underlined:    c.effectiveDecoration(Inherit, c.Underlined),
		Strikethrough: c.effectiveDecoration(Inherit, c.Strikethrough),
		Obfuscated:    c.effectiveDecoration(Inherit, c.Obfuscated),
		Color:         c.Color,
	}
	return child
}
