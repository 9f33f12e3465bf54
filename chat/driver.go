package chat

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// errSkipAssignment is an internal sentinel: setContentKind returns it
// when tolerant mode says "don't raise AmbiguousTrait, but also don't
// overwrite the trait that already won."
var errSkipAssignment = errors.New("chat: skip assignment")

type hoverClickState struct {
	isClick   bool
	clickKind ClickKind
	hoverKind HoverKind

	actionSet bool
	valueSet  bool

	hasPendingString   bool
	pendingString      []uint16
	hasPendingCompound bool
	pendingCompound    *Compound
}

type frame struct {
	kind     FrameKind
	compound *Compound
	hc       *hoverClickState

	pendingKey     string
	hasPendingKey  bool
	pendingUnknown bool
}

// Driver runs the pushdown automaton described in §4.7 against a
// Tokenizer, producing a Compound tree.
type Driver struct {
	tolerant      bool
	stack         []*frame
	ignoreCounter int
	root          *Compound
}

// NewDriver returns a Driver. In tolerant mode, unknown keys and
// type-mismatched values are silently skipped instead of raising
// UnexpectedKey/UnexpectedValue.
func NewDriver(tolerant bool) *Driver {
	return &Driver{tolerant: tolerant}
}

// Parse consumes tokens from tz until the root chat compound closes,
// returning the resulting tree.
func (d *Driver) Parse(tz Tokenizer) (*Compound, error) {
	d.stack = []*frame{{kind: FrameGenesis}}
	d.root = nil
	d.ignoreCounter = 0

	for {
		tok, err := tz.Next()
		if err != nil {
			return nil, err
		}
		if err := d.step(tok); err != nil {
			return nil, err
		}
		if len(d.stack) == 1 && d.stack[0].kind == FrameGenesis && d.root != nil {
			return d.root, nil
		}
	}
}

func (d *Driver) step(tok Token) error {
	if d.ignoreCounter > 0 {
		switch tok.Kind {
		case TokStartObject, TokStartArray:
			d.ignoreCounter++
		case TokEndObject, TokEndArray:
			d.ignoreCounter--
		}
		return nil
	}

	f := d.stack[len(d.stack)-1]

	switch f.kind {
	case FrameGenesis:
		if tok.Kind != TokStartObject {
			return fmt.Errorf("%w: expected a chat compound", ErrUnexpectedValue)
		}
		c := &Compound{}
		d.root = c
		d.stack = append(d.stack, &frame{kind: FrameChatCompound, compound: c})
		return nil
	case FrameChatCompound:
		return d.stepChatCompound(f, tok)
	case FrameHover, FrameClick:
		return d.stepHoverClick(f, tok)
	case FrameScore:
		return d.stepScore(f, tok)
	case FrameExtra:
		return d.stepExtra(f, tok)
	case FrameWith:
		return d.stepWith(f, tok)
	}
	return nil
}

func (d *Driver) pop() {
	d.stack = d.stack[:len(d.stack)-1]
}

func (d *Driver) ignoreOrError(tok Token, err error) error {
	if !d.tolerant {
		return err
	}
	if tok.Kind == TokStartObject || tok.Kind == TokStartArray {
		d.ignoreCounter = 1
	}
	return nil
}

func utf16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func (d *Driver) setContentKind(c *Compound, kind ContentKind) error {
	if c.Content.Kind == ContentNone || c.Content.Kind == kind {
		c.Content.Kind = kind
		return nil
	}
	if d.tolerant {
		return errSkipAssignment
	}
	return ErrAmbiguousTrait
}

var chatCompoundKeys = map[string]bool{
	"bold": true, "italic": true, "underlined": true, "strikethrough": true, "obfuscated": true,
	"color": true, "insertion": true,
	"text": true, "translate": true, "keybind": true, "score": true, "with": true,
	"extra": true, "hoverEvent": true, "clickEvent": true,
}

var hoverClickKeys = map[string]bool{"action": true, "value": true}
var scoreKeys = map[string]bool{"name": true, "objective": true, "value": true}

func (d *Driver) stepChatCompound(f *frame, tok Token) error {
	if !f.hasPendingKey {
		switch tok.Kind {
		case TokEndObject:
			d.pop()
			return nil
		case TokKey:
			if !chatCompoundKeys[tok.String] {
				if !d.tolerant {
					return fmt.Errorf("%w: %s", ErrUnexpectedKey, tok.String)
				}
				f.pendingUnknown = true
				f.hasPendingKey = true
				return nil
			}
			f.pendingKey = tok.String
			f.hasPendingKey = true
			return nil
		default:
			return fmt.Errorf("%w: expected a key or end of compound", ErrUnexpectedValue)
		}
	}

	if f.pendingUnknown {
		f.pendingUnknown = false
		f.hasPendingKey = false
		if tok.Kind == TokStartObject || tok.Kind == TokStartArray {
			d.ignoreCounter = 1
		}
		return nil
	}

	key := f.pendingKey
	f.hasPendingKey = false
	f.pendingKey = ""

	switch key {
	case "bold", "italic", "underlined", "strikethrough", "obfuscated":
		ts, ok := decodeTristate(tok)
		if !ok {
			return d.ignoreOrError(tok, fmt.Errorf("%w: %s", ErrUnexpectedValue, key))
		}
		setDecoration(f.compound, key, ts)
		return nil
	case "color":
		if tok.Kind != TokString {
			return d.ignoreOrError(tok, fmt.Errorf("%w: color", ErrUnexpectedValue))
		}
		c, ok := colorNames[tok.String]
		if !ok {
			return d.ignoreOrError(tok, fmt.Errorf("%w: unknown color %q", ErrUnexpectedValue, tok.String))
		}
		f.compound.Color = c
		return nil
	case "insertion":
		if tok.Kind != TokString {
			return d.ignoreOrError(tok, fmt.Errorf("%w: insertion", ErrUnexpectedValue))
		}
		f.compound.Insertion = utf16Units(tok.String)
		return nil
	case "text", "translate", "keybind":
		if tok.Kind != TokString {
			return d.ignoreOrError(tok, fmt.Errorf("%w: %s", ErrUnexpectedValue, key))
		}
		kind := map[string]ContentKind{"text": ContentText, "translate": ContentTranslate, "keybind": ContentKeybind}[key]
		if err := d.setContentKind(f.compound, kind); err != nil {
			if err == errSkipAssignment {
				return nil
			}
			return err
		}
		switch key {
		case "text":
			f.compound.Content.Text = utf16Units(tok.String)
		case "translate":
			f.compound.Content.TranslateKey = utf16Units(tok.String)
		case "keybind":
			f.compound.Content.Keybind = utf16Units(tok.String)
		}
		return nil
	case "score":
		if tok.Kind != TokStartObject {
			return d.ignoreOrError(tok, fmt.Errorf("%w: score", ErrUnexpectedValue))
		}
		if err := d.setContentKind(f.compound, ContentScore); err != nil {
			if err == errSkipAssignment {
				d.ignoreCounter = 1
				return nil
			}
			return err
		}
		d.stack = append(d.stack, &frame{kind: FrameScore, compound: f.compound})
		return nil
	case "with":
		if tok.Kind != TokStartArray {
			return d.ignoreOrError(tok, fmt.Errorf("%w: with", ErrUnexpectedValue))
		}
		if err := d.setContentKind(f.compound, ContentTranslate); err != nil {
			if err == errSkipAssignment {
				d.ignoreCounter = 1
				return nil
			}
			return err
		}
		d.stack = append(d.stack, &frame{kind: FrameWith, compound: f.compound})
		return nil
	case "extra":
		if tok.Kind != TokStartArray {
			return d.ignoreOrError(tok, fmt.Errorf("%w: extra", ErrUnexpectedValue))
		}
		d.stack = append(d.stack, &frame{kind: FrameExtra, compound: f.compound})
		return nil
	case "hoverEvent":
		if tok.Kind != TokStartObject {
			return d.ignoreOrError(tok, fmt.Errorf("%w: hoverEvent", ErrUnexpectedValue))
		}
		f.compound.Hover = &HoverEvent{}
		d.stack = append(d.stack, &frame{kind: FrameHover, compound: f.compound, hc: &hoverClickState{}})
		return nil
	case "clickEvent":
		if tok.Kind != TokStartObject {
			return d.ignoreOrError(tok, fmt.Errorf("%w: clickEvent", ErrUnexpectedValue))
		}
		f.compound.Click = &ClickEvent{}
		d.stack = append(d.stack, &frame{kind: FrameClick, compound: f.compound, hc: &hoverClickState{isClick: true}})
		return nil
	}
	return nil
}

func decodeTristate(tok Token) (Tristate, bool) {
	switch tok.Kind {
	case TokBool:
		if tok.Bool {
			return Enable, true
		}
		return Disable, true
	case TokString:
		switch tok.String {
		case "true":
			return Enable, true
		case "false":
			return Disable, true
		}
	}
	return Inherit, false
}

func setDecoration(c *Compound, key string, ts Tristate) {
	switch key {
	case "bold":
		c.Bold = ts
	case "italic":
		c.Italic = ts
	case "underlined":
		c.Underlined = ts
	case "strikethrough":
		c.Strikethrough = ts
	case "obfuscated":
		c.Obfuscated = ts
	}
}

func (d *Driver) stepScore(f *frame, tok Token) error {
	if !f.hasPendingKey {
		switch tok.Kind {
		case TokEndObject:
			d.pop()
			return nil
		case TokKey:
			if !scoreKeys[tok.String] {
				if !d.tolerant {
					return fmt.Errorf("%w: %s", ErrUnexpectedKey, tok.String)
				}
				f.pendingUnknown = true
				f.hasPendingKey = true
				return nil
			}
			f.pendingKey = tok.String
			f.hasPendingKey = true
			return nil
		default:
			return fmt.Errorf("%w: expected a key or end of score", ErrUnexpectedValue)
		}
	}
	if f.pendingUnknown {
		f.pendingUnknown = false
		f.hasPendingKey = false
		if tok.Kind == TokStartObject || tok.Kind == TokStartArray {
			d.ignoreCounter = 1
		}
		return nil
	}
	key := f.pendingKey
	f.hasPendingKey = false
	f.pendingKey = ""

	if tok.Kind != TokString {
		return d.ignoreOrError(tok, fmt.Errorf("%w: score.%s", ErrUnexpectedValue, key))
	}
	units := utf16Units(tok.String)
	switch key {
	case "name":
		f.compound.Content.ScoreName = units
	case "objective":
		if len(units) > 16 {
			return d.ignoreOrError(tok, fmt.Errorf("%w: score.objective exceeds 16 code units", ErrUnexpectedValue))
		}
		f.compound.Content.ScoreObjective = units
	case "value":
		f.compound.Content.ScoreValue = units
	}
	return nil
}

func (d *Driver) stepExtra(f *frame, tok Token) error {
	switch tok.Kind {
	case TokEndArray:
		d.pop()
		return nil
	case TokStartObject:
		child := f.compound.NewChild()
		f.compound.Children = append(f.compound.Children, child)
		d.stack = append(d.stack, &frame{kind: FrameChatCompound, compound: child})
		return nil
	default:
		return d.ignoreOrError(tok, fmt.Errorf("%w: extra element", ErrUnexpectedValue))
	}
}

func (d *Driver) stepWith(f *frame, tok Token) error {
	switch tok.Kind {
	case TokEndArray:
		d.pop()
		return nil
	case TokString:
		f.compound.Content.With = append(f.compound.Content.With, utf16Units(tok.String))
		return nil
	default:
		return d.ignoreOrError(tok, fmt.Errorf("%w: with element", ErrUnexpectedValue))
	}
}

func (d *Driver) stepHoverClick(f *frame, tok Token) error {
	hc := f.hc
	if !f.hasPendingKey {
		switch tok.Kind {
		case TokEndObject:
			d.pop()
			return nil
		case TokKey:
			if !hoverClickKeys[tok.String] {
				if !d.tolerant {
					return fmt.Errorf("%w: %s", ErrUnexpectedKey, tok.String)
				}
				f.pendingUnknown = true
				f.hasPendingKey = true
				return nil
			}
			f.pendingKey = tok.String
			f.hasPendingKey = true
			return nil
		default:
			return fmt.Errorf("%w: expected a key or end of event", ErrUnexpectedValue)
		}
	}
	if f.pendingUnknown {
		f.pendingUnknown = false
		f.hasPendingKey = false
		if tok.Kind == TokStartObject || tok.Kind == TokStartArray {
			d.ignoreCounter = 1
		}
		return nil
	}
	key := f.pendingKey
	f.hasPendingKey = false
	f.pendingKey = ""

	if key == "action" {
		if tok.Kind != TokString {
			return d.ignoreOrError(tok, fmt.Errorf("%w: action", ErrUnexpectedValue))
		}
		if hc.actionSet {
			return ErrDuplicate
		}
		hc.actionSet = true
		if hc.isClick {
			kind, ok := clickActionNames[tok.String]
			if !ok {
				return d.ignoreOrError(tok, fmt.Errorf("%w: unknown click action %q", ErrUnexpectedValue, tok.String))
			}
			hc.clickKind = kind
			f.compound.Click.Kind = kind
			if hc.hasPendingString {
				f.compound.Click.Value = hc.pendingString
				hc.hasPendingString = false
			}
			return nil
		}
		kind, ok := hoverActionNames[tok.String]
		if !ok {
			return d.ignoreOrError(tok, fmt.Errorf("%w: unknown hover action %q", ErrUnexpectedValue, tok.String))
		}
		hc.hoverKind = kind
		f.compound.Hover.Kind = kind
		if hc.hasPendingCompound && kind == HoverShowText {
			f.compound.Hover.ShowText = hc.pendingCompound
			hc.hasPendingCompound = false
		} else if hc.hasPendingString {
			applyHoverPendingString(f.compound.Hover, kind, hc.pendingString)
			hc.hasPendingString = false
		}
		return nil
	}

	// key == "value"
	if hc.valueSet {
		return ErrDuplicate
	}
	hc.valueSet = true

	if tok.Kind == TokStartObject && !hc.isClick {
		child := &Compound{}
		if hc.actionSet && hc.hoverKind == HoverShowText {
			f.compound.Hover.ShowText = child
		} else {
			hc.pendingCompound = child
			hc.hasPendingCompound = true
		}
		d.stack = append(d.stack, &frame{kind: FrameChatCompound, compound: child})
		return nil
	}
	if tok.Kind != TokString {
		return d.ignoreOrError(tok, fmt.Errorf("%w: value", ErrUnexpectedValue))
	}
	units := utf16Units(tok.String)
	if !hc.actionSet {
		hc.pendingString = units
		hc.hasPendingString = true
		return nil
	}
	if hc.isClick {
		f.compound.Click.Value = units
		return nil
	}
	applyHoverPendingString(f.compound.Hover, hc.hoverKind, units)
	return nil
}

func applyHoverPendingString(h *HoverEvent, kind HoverKind, units []uint16) {
	switch kind {
	case HoverShowItem:
		h.ShowItem = units
	case HoverShowEntity:
		h.ShowEntity = units
	case HoverShowAchievement:
		h.ShowAchievement = units
	}
}
