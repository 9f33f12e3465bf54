package nbt

import (
	"fmt"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
	"github.com/luma/beacon/union"
)

// payloadVtables holds one union.Vtable per ordinal (tag-1), built once
// at package init. Ordinals 0..5 are the fixed-width primitives and are
// trivial (stride-skippable); ordinals 6..11 are the variable-length
// container kinds and must be skipped via their own Skip function.
var payloadVtables []union.Vtable

func init() {
	payloadVtables = []union.Vtable{
		primitiveVtable(1, func(r stream.Reader) (any, error) {
			var v codec.S8
			err := v.Read(r)
			return int8(v), err
		}, func(w stream.Writer, v any) error {
			return codec.S8(v.(int8)).Write(w)
		}),
		primitiveVtable(2, func(r stream.Reader) (any, error) {
			var v codec.S16
			err := v.Read(r)
			return int16(v), err
		}, func(w stream.Writer, v any) error {
			return codec.S16(v.(int16)).Write(w)
		}),
		primitiveVtable(4, func(r stream.Reader) (any, error) {
			var v codec.S32
			err := v.Read(r)
			return int32(v), err
		}, func(w stream.Writer, v any) error {
			return codec.S32(v.(int32)).Write(w)
		}),
		primitiveVtable(8, func(r stream.Reader) (any, error) {
			var v codec.S64
			err := v.Read(r)
			return int64(v), err
		}, func(w stream.Writer, v any) error {
			return codec.S64(v.(int64)).Write(w)
		}),
		primitiveVtable(4, func(r stream.Reader) (any, error) {
			var v codec.F32
			err := v.Read(r)
			return float32(v), err
		}, func(w stream.Writer, v any) error {
			return codec.F32(v.(float32)).Write(w)
		}),
		primitiveVtable(8, func(r stream.Reader) (any, error) {
			var v codec.F64
			err := v.Read(r)
			return float64(v), err
		}, func(w stream.Writer, v any) error {
			return codec.F64(v.(float64)).Write(w)
		}),
		{
			Read:  readByteArray,
			Write: writeByteArray,
			Skip:  skipSizedSequence(1),
		},
		{
			Read: func(r union.Reader) (any, error) {
				var s codec.JString
				err := s.Read(r.(stream.Reader))
				return s, err
			},
			Write: func(w union.Writer, v any) error {
				return v.(codec.JString).Write(w.(stream.Writer))
			},
			Skip: skipJavaString,
		},
		{
			Read: func(r union.Reader) (any, error) {
				return readList(r.(stream.Reader))
			},
			Write: func(w union.Writer, v any) error {
				return writeList(w.(stream.Writer), v.(*List))
			},
			Skip: func(r union.Reader) error {
				return skipList(r.(stream.Reader))
			},
		},
		{
			Read: func(r union.Reader) (any, error) {
				return readCompound(r.(stream.Reader))
			},
			Write: func(w union.Writer, v any) error {
				return writeCompound(w.(stream.Writer), v.(*Compound))
			},
			Skip: func(r union.Reader) error {
				return skipCompound(r.(stream.Reader))
			},
		},
		{
			Read:  readIntArray,
			Write: writeIntArray,
			Skip:  skipSizedSequence(4),
		},
		{
			Read:  readLongArray,
			Write: writeLongArray,
			Skip:  skipSizedSequence(8),
		},
	}
}

// primitiveVtable builds a Vtable for a fixed-width, trivially copyable
// payload type: its Skip skips the fixed stride directly, reading no
// length.
func primitiveVtable(stride int, read func(stream.Reader) (any, error), write func(stream.Writer, any) error) union.Vtable {
	return union.Vtable{
		Read: func(r union.Reader) (any, error) {
			return read(r.(stream.Reader))
		},
		Write: func(w union.Writer, v any) error {
			return write(w.(stream.Writer), v)
		},
		Skip: func(r union.Reader) error {
			return r.Skip(stride)
		},
		Size:      func(any) int { return stride },
		IsTrivial: true,
	}
}

func readByteArray(r union.Reader) (any, error) {
	sr := r.(stream.Reader)
	var length codec.S32
	if err := length.Read(sr); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length", codec.ErrMalformed)
	}
	out := make([]int8, length)
	for i := range out {
		var v codec.S8
		if err := v.Read(sr); err != nil {
			return nil, err
		}
		out[i] = int8(v)
	}
	return out, nil
}

func writeByteArray(w union.Writer, v any) error {
	sw := w.(stream.Writer)
	items := v.([]int8)
	if err := codec.S32(len(items)).Write(sw); err != nil {
		return err
	}
	for _, item := range items {
		if err := codec.S8(item).Write(sw); err != nil {
			return err
		}
	}
	return nil
}

func readIntArray(r union.Reader) (any, error) {
	sr := r.(stream.Reader)
	var length codec.S32
	if err := length.Read(sr); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length", codec.ErrMalformed)
	}
	out := make([]int32, length)
	for i := range out {
		var v codec.S32
		if err := v.Read(sr); err != nil {
			return nil, err
		}
		out[i] = int32(v)
	}
	return out, nil
}

func writeIntArray(w union.Writer, v any) error {
	sw := w.(stream.Writer)
	items := v.([]int32)
	if err := codec.S32(len(items)).Write(sw); err != nil {
		return err
	}
	for _, item := range items {
		if err := codec.S32(item).Write(sw); err != nil {
			return err
		}
	}
	return nil
}

func readLongArray(r union.Reader) (any, error) {
	sr := r.(stream.Reader)
	var length codec.S32
	if err := length.Read(sr); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length", codec.ErrMalformed)
	}
	out := make([]int64, length)
	for i := range out {
		var v codec.S64
		if err := v.Read(sr); err != nil {
			return nil, err
		}
		out[i] = int64(v)
	}
	return out, nil
}

func writeLongArray(w union.Writer, v any) error {
	sw := w.(stream.Writer)
	items := v.([]int64)
	if err := codec.S32(len(items)).Write(sw); err != nil {
		return err
	}
	for _, item := range items {
		if err := codec.S64(item).Write(sw); err != nil {
			return err
		}
	}
	return nil
}

// skipSizedSequence returns a Skip func for the array payload kinds:
// read the s32 length, then skip length*elemStride raw bytes.
func skipSizedSequence(elemStride int) func(union.Reader) error {
	return func(r union.Reader) error {
		sr := r.(stream.Reader)
		var length codec.S32
		if err := length.Read(sr); err != nil {
			return err
		}
		if length < 0 {
			return fmt.Errorf("%w: negative array length", codec.ErrMalformed)
		}
		return sr.Skip(int(length) * elemStride)
	}
}

func skipJavaString(r union.Reader) error {
	sr := r.(stream.Reader)
	var byteLen codec.U16
	if err := byteLen.Read(sr); err != nil {
		return err
	}
	return sr.Skip(int(byteLen))
}
