// Package nbt implements the tagged binary tree format used as the
// payload container for the protocol's structured data: a closed set of
// twelve value kinds dispatched through the union package's type-erased
// vtable shape, homogeneous lists that fix their element ordinal on
// their first append, insertion-order-preserving compounds, and a SAX-style
// compound reader driven by a caller-supplied action dictionary.
package nbt

import (
	"errors"
	"fmt"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/union"
)

// Tag values as they appear on the wire. TagEnd has no name and no
// payload; every other tag is followed by a JavaString name and then a
// payload dispatched on ordinal = tag-1.
const (
	TagEnd       = 0
	TagByte      = 1
	TagShort     = 2
	TagInt       = 3
	TagLong      = 4
	TagFloat     = 5
	TagDouble    = 6
	TagByteArray = 7
	TagString    = 8
	TagList      = 9
	TagCompound  = 10
	TagIntArray  = 11
	TagLongArray = 12
)

// ErrInvalidState is returned when a list is accessed against an
// ordinal other than the one it was constructed with, or a SAX action
// declares an expectedType outside 0..25.
var ErrInvalidState = errors.New("nbt: invalid state")

// numOrdinals is the number of payload types (tags 1..12).
const numOrdinals = 12

// ordinalForTag validates a wire tag byte and converts it to a payload
// ordinal. An out-of-range tag is a wire-format defect, so it reports
// through codec.ErrMalformed rather than a package-local error.
func ordinalForTag(tag int) (int, error) {
	if tag < TagByte || tag > TagLongArray {
		return 0, fmt.Errorf("%w: invalid nbt tag %d", codec.ErrMalformed, tag)
	}
	return tag - 1, nil
}

// vtables exposes the payload union's per-ordinal operations; the sax
// reader and list/compound codecs all dispatch through it instead of a
// switch statement, per the type-erased vtable shape the design favors.
func vtables() []union.Vtable { return payloadVtables }
