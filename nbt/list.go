package nbt

import (
	"fmt"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
	"github.com/luma/beacon/union"
)

// List is a homogeneous NBT list. Its element ordinal, stride and
// triviality are fixed the moment the first element is appended (or the
// list is read off the wire) and never change afterward — the original
// source exposed these as const fields and had a swap() that const_cast
// them away; here they are plain fields, documented write-once.
type List struct {
	ordinal   int // -1 until the first element fixes it
	stride    int
	isTrivial bool
	items     []any
}

// NewList returns an empty list with no element ordinal fixed yet.
func NewList() *List {
	return &List{ordinal: -1}
}

// Ordinal returns the list's fixed payload ordinal, or -1 if empty.
func (l *List) Ordinal() int { return l.ordinal }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// Item returns the element at index i.
func (l *List) Item(i int) any { return l.items[i] }

// Append adds v, declared to be of the given payload ordinal. The first
// call fixes the list's ordinal/stride/isTrivial; subsequent calls with
// a different ordinal fail, since NBT lists are homogeneous.
func (l *List) Append(ordinal int, v any) error {
	if ordinal < 0 || ordinal >= len(payloadVtables) {
		return union.ErrBadOrdinal
	}
	if l.ordinal == -1 {
		l.ordinal = ordinal
		l.isTrivial = payloadVtables[ordinal].IsTrivial
		if l.isTrivial {
			l.stride = payloadVtables[ordinal].Size(nil)
		}
	} else if l.ordinal != ordinal {
		return fmt.Errorf("%w: list ordinal fixed to %d, got %d", ErrInvalidState, l.ordinal, ordinal)
	}
	l.items = append(l.items, v)
	return nil
}

func readList(r stream.Reader) (*List, error) {
	var elemTag codec.U8
	if err := elemTag.Read(r); err != nil {
		return nil, err
	}
	var length codec.S32
	if err := length.Read(r); err != nil {
		return nil, err
	}
	list := NewList()
	if elemTag == 0 {
		if length != 0 {
			return nil, fmt.Errorf("%w: zero element tag requires zero length", codec.ErrMalformed)
		}
		return list, nil
	}
	ordinal, err := ordinalForTag(int(elemTag))
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative list length", codec.ErrMalformed)
	}
	vt := payloadVtables[ordinal]
	for i := 0; i < int(length); i++ {
		v, err := vt.Read(r)
		if err != nil {
			return nil, err
		}
		if err := list.Append(ordinal, v); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func writeList(w stream.Writer, l *List) error {
	elemTag := byte(0)
	if l.ordinal != -1 {
		elemTag = byte(l.ordinal + 1)
	}
	if err := codec.U8(elemTag).Write(w); err != nil {
		return err
	}
	if err := codec.S32(l.Len()).Write(w); err != nil {
		return err
	}
	if l.ordinal == -1 {
		return nil
	}
	vt := payloadVtables[l.ordinal]
	for _, item := range l.items {
		if err := vt.Write(w, item); err != nil {
			return err
		}
	}
	return nil
}

// skipListBody skips a list's length+elements, given that elemTag has
// already been consumed and its ordinal is known. Used by the SAX
// reader when a typed-list action's elemTag has already been peeked.
func skipListBody(r stream.Reader, ordinal int) error {
	var length codec.S32
	if err := length.Read(r); err != nil {
		return err
	}
	if length < 0 {
		return fmt.Errorf("%w: negative list length", codec.ErrMalformed)
	}
	vt := payloadVtables[ordinal]
	if vt.IsTrivial {
		return r.Skip(int(length) * vt.Size(nil))
	}
	for i := 0; i < int(length); i++ {
		if err := vt.Skip(r); err != nil {
			return err
		}
	}
	return nil
}

func skipList(r stream.Reader) error {
	var elemTag codec.U8
	if err := elemTag.Read(r); err != nil {
		return err
	}
	var length codec.S32
	if err := length.Read(r); err != nil {
		return err
	}
	if elemTag == 0 {
		return nil
	}
	ordinal, err := ordinalForTag(int(elemTag))
	if err != nil {
		return err
	}
	if length < 0 {
		return fmt.Errorf("%w: negative list length", codec.ErrMalformed)
	}
	vt := payloadVtables[ordinal]
	if vt.IsTrivial {
		return r.Skip(int(length) * vt.Size(nil))
	}
	for i := 0; i < int(length); i++ {
		if err := vt.Skip(r); err != nil {
			return err
		}
	}
	return nil
}
