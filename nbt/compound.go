package nbt

import (
	"unicode/utf16"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

// CompoundEntry is one named item of a Compound, in the order it was
// inserted or read off the wire.
type CompoundEntry struct {
	Name    codec.JString
	Ordinal int
	Value   any
}

// Compound is an insertion-order-preserving, name-keyed map of NBT
// items. Lookup is by the decoded UTF-16 name as a Go string; insertion
// order is preserved for writing (the original only required "emit each
// item in any order" on write, but preserving read order makes
// round-trips byte-stable, which the writer takes advantage of).
type Compound struct {
	entries []CompoundEntry
	index   map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{index: map[string]int{}}
}

func nameKey(units []uint16) string {
	return string(utf16.Decode(units))
}

// Set inserts or replaces the entry named by name.
func (c *Compound) Set(name codec.JString, ordinal int, value any) {
	key := nameKey(name.Units)
	if i, ok := c.index[key]; ok {
		c.entries[i].Ordinal = ordinal
		c.entries[i].Value = value
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, CompoundEntry{Name: name, Ordinal: ordinal, Value: value})
}

// Get looks up an entry by its decoded name.
func (c *Compound) Get(key string) (CompoundEntry, bool) {
	i, ok := c.index[key]
	if !ok {
		return CompoundEntry{}, false
	}
	return c.entries[i], true
}

// Len returns the number of entries.
func (c *Compound) Len() int { return len(c.entries) }

// Entries returns the entries in insertion order.
func (c *Compound) Entries() []CompoundEntry { return c.entries }

func readCompound(r stream.Reader) (*Compound, error) {
	c := NewCompound()
	for {
		var tag codec.U8
		if err := tag.Read(r); err != nil {
			return nil, err
		}
		if tag == TagEnd {
			return c, nil
		}
		var name codec.JString
		if err := name.Read(r); err != nil {
			return nil, err
		}
		ordinal, err := ordinalForTag(int(tag))
		if err != nil {
			return nil, err
		}
		v, err := payloadVtables[ordinal].Read(r)
		if err != nil {
			return nil, err
		}
		c.Set(name, ordinal, v)
	}
}

func writeCompound(w stream.Writer, c *Compound) error {
	for _, e := range c.entries {
		if err := codec.U8(e.Ordinal + 1).Write(w); err != nil {
			return err
		}
		if err := e.Name.Write(w); err != nil {
			return err
		}
		if err := payloadVtables[e.Ordinal].Write(w, e.Value); err != nil {
			return err
		}
	}
	return codec.U8(TagEnd).Write(w)
}

func skipCompound(r stream.Reader) error {
	for {
		var tag codec.U8
		if err := tag.Read(r); err != nil {
			return err
		}
		if tag == TagEnd {
			return nil
		}
		var name codec.JString
		if err := name.Read(r); err != nil {
			return err
		}
		ordinal, err := ordinalForTag(int(tag))
		if err != nil {
			return err
		}
		if err := payloadVtables[ordinal].Skip(r); err != nil {
			return err
		}
	}
}
