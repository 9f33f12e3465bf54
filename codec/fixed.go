package codec

import (
	"math"

	"github.com/luma/beacon/stream"
)

// U8 is an unsigned, unconverted single byte.
type U8 uint8

func (v *U8) Read(r stream.Reader) error {
	var buf [1]byte
	if err := r.Read(buf[:]); err != nil {
		return err
	}
	*v = U8(buf[0])
	return nil
}

func (v U8) Write(w stream.Writer) error {
	return w.Write([]byte{byte(v)})
}

// S8 is a signed, unconverted single byte.
type S8 int8

func (v *S8) Read(r stream.Reader) error {
	var buf [1]byte
	if err := r.Read(buf[:]); err != nil {
		return err
	}
	*v = S8(int8(buf[0]))
	return nil
}

func (v S8) Write(w stream.Writer) error {
	return w.Write([]byte{byte(v)})
}

// U16 is a big-endian unsigned 16-bit integer.
type U16 uint16

func (v *U16) Read(r stream.Reader) error {
	var buf [2]byte
	if err := r.Read(buf[:]); err != nil {
		return err
	}
	*v = U16(uint16(buf[0])<<8 | uint16(buf[1]))
	return nil
}

func (v U16) Write(w stream.Writer) error {
	return w.Write([]byte{byte(v >> 8), byte(v)})
}

// S16 is a big-endian signed 16-bit integer.
type S16 int16

func (v *S16) Read(r stream.Reader) error {
	var u U16
	if err := u.Read(r); err != nil {
		return err
	}
	*v = S16(int16(u))
	return nil
}

func (v S16) Write(w stream.Writer) error {
	return U16(v).Write(w)
}

// U32 is a big-endian unsigned 32-bit integer.
type U32 uint32

func (v *U32) Read(r stream.Reader) error {
	var buf [4]byte
	if err := r.Read(buf[:]); err != nil {
		return err
	}
	*v = U32(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
	return nil
}

func (v U32) Write(w stream.Writer) error {
	return w.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// S32 is a big-endian signed 32-bit integer.
type S32 int32

func (v *S32) Read(r stream.Reader) error {
	var u U32
	if err := u.Read(r); err != nil {
		return err
	}
	*v = S32(int32(u))
	return nil
}

func (v S32) Write(w stream.Writer) error {
	return U32(v).Write(w)
}

// U64 is a big-endian unsigned 64-bit integer.
type U64 uint64

func (v *U64) Read(r stream.Reader) error {
	var buf [8]byte
	if err := r.Read(buf[:]); err != nil {
		return err
	}
	var u uint64
	for _, b := range buf {
		u = u<<8 | uint64(b)
	}
	*v = U64(u)
	return nil
}

func (v U64) Write(w stream.Writer) error {
	buf := [8]byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
	return w.Write(buf[:])
}

// S64 is a big-endian signed 64-bit integer.
type S64 int64

func (v *S64) Read(r stream.Reader) error {
	var u U64
	if err := u.Read(r); err != nil {
		return err
	}
	*v = S64(int64(u))
	return nil
}

func (v S64) Write(w stream.Writer) error {
	return U64(v).Write(w)
}

// F32 is an IEEE-754 single precision float, transported as the big-endian
// bit pattern of its 32-bit integer representation. NaN, -0.0 and
// subnormals travel as whatever bit pattern the host produced; no
// canonicalization happens here.
type F32 float32

func (v *F32) Read(r stream.Reader) error {
	var bits U32
	if err := bits.Read(r); err != nil {
		return err
	}
	*v = F32(math.Float32frombits(uint32(bits)))
	return nil
}

func (v F32) Write(w stream.Writer) error {
	return U32(math.Float32bits(float32(v))).Write(w)
}

// F64 is an IEEE-754 double precision float, transported as the big-endian
// bit pattern of its 64-bit integer representation.
type F64 float64

func (v *F64) Read(r stream.Reader) error {
	var bits U64
	if err := bits.Read(r); err != nil {
		return err
	}
	*v = F64(math.Float64frombits(uint64(bits)))
	return nil
}

func (v F64) Write(w stream.Writer) error {
	return U64(math.Float64bits(float64(v))).Write(w)
}
