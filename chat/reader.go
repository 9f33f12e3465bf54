package chat

import (
	"fmt"
	"io"
)

// countingReader tracks how many bytes have been pulled from the
// underlying reader, so ReadChatCompound can enforce expectedSize
// against a tokenizer that buffers ahead of the JSON it has emitted.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// ErrExceededExpectedSize is raised when a chat compound's JSON
// encoding consumes more of its input window than the caller declared.
var ErrExceededExpectedSize = fmt.Errorf("chat: exceeded expected size")

// ReadChatCompound parses one chat compound from r, the way the rest of
// the protocol's readers take a size budget up front: expectedSize
// bounds how many bytes of r the JSON encoding may occupy. tolerant
// selects whether unknown keys and type-mismatched values are silently
// skipped (true) or raise UnexpectedKey/UnexpectedValue (false).
func ReadChatCompound(r io.Reader, tolerant bool, expectedSize int) (*Compound, error) {
	cr := &countingReader{r: r}
	tz := NewJSONTokenizer(cr)
	c, err := NewDriver(tolerant).Parse(tz)
	if err != nil {
		return nil, err
	}
	if expectedSize >= 0 && cr.n > expectedSize {
		return nil, fmt.Errorf("%w: consumed %d of %d bytes", ErrExceededExpectedSize, cr.n, expectedSize)
	}
	return c, nil
}
