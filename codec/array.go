package codec

import (
	"fmt"

	"github.com/luma/beacon/stream"
)

// Array is a length-prefixed homogeneous sequence. It is configured with
// plain functions rather than an element interface, since Go generics
// can't express "T or *T implements Read/Write" uniformly for both value
// types (U8, Var32, ...) and struct types (UString, nested Array, ...).
// ReadLen/WriteLen plug in whichever length representation the wire
// format calls for (Var32 almost everywhere, U16/U8 in a few fixed-size
// contexts).
type Array[E any] struct {
	Items []E

	ReadElem  func(r stream.Reader) (E, error)
	WriteElem func(w stream.Writer, e E) error
	ReadLen   func(r stream.Reader) (int, error)
	WriteLen  func(w stream.Writer, n int) error
}

func (a *Array[E]) Read(r stream.Reader) error {
	n, err := a.ReadLen(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: negative array length", ErrMalformed)
	}
	items := make([]E, n)
	for i := 0; i < n; i++ {
		item, err := a.ReadElem(r)
		if err != nil {
			return err
		}
		items[i] = item
	}
	a.Items = items
	return nil
}

func (a Array[E]) Write(w stream.Writer) error {
	if err := a.WriteLen(w, len(a.Items)); err != nil {
		return err
	}
	for _, item := range a.Items {
		if err := a.WriteElem(w, item); err != nil {
			return err
		}
	}
	return nil
}

// Var32ReadLen and Var32WriteLen read/write an array length as a Var32;
// this is the length representation most wire arrays use.
func Var32ReadLen(r stream.Reader) (int, error) {
	var n Var32
	if err := n.Read(r); err != nil {
		return 0, err
	}
	return int(n), nil
}

func Var32WriteLen(w stream.Writer, n int) error {
	return Var32(n).Write(w)
}
