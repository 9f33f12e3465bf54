package nbt

import (
	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

// ReadItem reads tag(byte) name(JavaString) payload(by tag). Callers at
// the top of a stream (rather than inside a compound loop) use this
// directly; TagEnd is a valid result and carries no name or value.
func ReadItem(r stream.Reader) (name codec.JString, ordinal int, value any, err error) {
	var tag codec.U8
	if err = tag.Read(r); err != nil {
		return
	}
	if tag == TagEnd {
		return codec.JString{}, -1, nil, nil
	}
	ordinal, err = ordinalForTag(int(tag))
	if err != nil {
		return
	}
	if err = name.Read(r); err != nil {
		return
	}
	value, err = payloadVtables[ordinal].Read(r)
	return
}

// WriteItem writes tag(byte) name(JavaString) payload(by tag). Pass
// ordinal -1 to write the end-of-compound marker.
func WriteItem(w stream.Writer, name codec.JString, ordinal int, value any) error {
	if ordinal < 0 {
		return codec.U8(TagEnd).Write(w)
	}
	if err := codec.U8(ordinal + 1).Write(w); err != nil {
		return err
	}
	if err := name.Write(w); err != nil {
		return err
	}
	return payloadVtables[ordinal].Write(w, value)
}

// Skip consumes the payload for tag (1..12) without allocating a value.
func Skip(tag int, r stream.Reader) error {
	ordinal, err := ordinalForTag(tag)
	if err != nil {
		return err
	}
	return payloadVtables[ordinal].Skip(r)
}
