package codec

import (
	"fmt"

	"github.com/luma/beacon/stream"
)

// readVarint reads a LEB128-style variable length integer: 7 data bits per
// byte, continuation bit in the MSB. maxBytes bounds how many groups may be
// read before giving up (5 for 32-bit, 10 for 64-bit); bitWidth is the
// width of the value being reconstructed. Once the terminating byte (no
// continuation bit) is read, any accumulated bits beyond bitWidth must be
// zero, or the encoding is malformed.
func readVarint(r stream.Reader, maxBytes, bitWidth int) (uint64, error) {
	var result uint64
	for i := 0; i < maxBytes; i++ {
		var b [1]byte
		if err := r.Read(b[:]); err != nil {
			return 0, err
		}
		shift := uint(i * 7)
		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			if shift+7 > uint(bitWidth) {
				// The 7 data bits in this terminating byte straddle the
				// bitWidth boundary; allowed is how many of them (from the
				// low end) still fit. Computed in byte space, not by
				// shifting a uint64 mask by bitWidth, since that shift is
				// a no-op in Go when bitWidth is 64.
				allowed := bitWidth - int(shift)
				if allowed < 0 {
					allowed = 0
				}
				invalidMask := byte(0x7f &^ ((1 << uint(allowed)) - 1))
				if b[0]&invalidMask != 0 {
					return 0, fmt.Errorf("%w: varint overflows %d bits", ErrMalformed, bitWidth)
				}
			}
			return result, nil
		}
	}
	return 0, fmt.Errorf("%w: varint exceeds %d bytes", ErrMalformed, maxBytes)
}

// writeVarint emits v as consecutive 7-bit groups, low bits first, trimming
// trailing all-zero groups. The value zero always emits exactly one byte.
func writeVarint(w stream.Writer, v uint64) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := w.Write([]byte{b}); err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
}

// Var32 is a variable-length 32-bit integer: up to 5 bytes on the wire,
// the unsigned (zero-extended) bit pattern of the value.
type Var32 int32

func (v *Var32) Read(r stream.Reader) error {
	u, err := readVarint(r, 5, 32)
	if err != nil {
		return err
	}
	*v = Var32(int32(uint32(u)))
	return nil
}

func (v Var32) Write(w stream.Writer) error {
	return writeVarint(w, uint64(uint32(v)))
}

// Var64 is a variable-length 64-bit integer: up to 10 bytes on the wire.
type Var64 int64

func (v *Var64) Read(r stream.Reader) error {
	u, err := readVarint(r, 10, 64)
	if err != nil {
		return err
	}
	*v = Var64(int64(u))
	return nil
}

func (v Var64) Write(w stream.Writer) error {
	return writeVarint(w, uint64(v))
}
