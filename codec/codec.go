// Package codec implements the wire-value model described in §4.2: fixed
// big-endian scalars, LEB128-style variable-length integers, length-prefixed
// strings that travel as UTF-8 but are held in memory as UTF-16 code units
// (mirroring Java's String, which the wire protocol was designed around),
// and length-prefixed arrays.
//
// The original library expresses each of these as instantiations of one
// C++ class template, `DataType<T, Flavour>`. Go generics don't support
// per-instantiation specialization, so this package uses the more direct
// idiomatic-Go equivalent: one small concrete type per wire representation
// (Var32, U16, UString, ...), each exposing the same Read(stream.Reader)
// error / Write(stream.Writer) error shape.
package codec

import "errors"

// ErrMalformed indicates the bytes on the wire cannot represent a value of
// the expected type: a varint whose trailing bits overflow the target
// width, an ill-formed UTF-8 sequence, and so on.
var ErrMalformed = errors.New("codec: malformed value")

// ErrTooLong indicates a string or array exceeded a declared capacity.
var ErrTooLong = errors.New("codec: value too long")
