// Package testconn is a small raw-socket client used by the protocol
// stack's integration tests. It dials a running Listener and speaks
// the length-prefixed frame format directly, playing the role the
// teacher's client.Conn played for the old text command protocol, but
// without any request-ID/response-channel bookkeeping: tests read and
// write whole frames and assert on them directly.
package testconn

import (
	"fmt"
	"net"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

// Conn is a dialed connection to a Beacon listener.
type Conn struct {
	conn net.Conn
	r    stream.Reader
	w    stream.Writer
}

// Dial connects to addr over TCP.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("testconn: dial %s: %w", addr, err)
	}
	return &Conn{
		conn: c,
		r:    stream.NewIOReader(c),
		w:    stream.NewIOWriter(c),
	}, nil
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// SendFrame writes body as one length-prefixed packet.
func (c *Conn) SendFrame(body []byte) error {
	out := stream.NewBufferOutput()
	if err := out.Write(body); err != nil {
		return err
	}
	return c.w.Write(out.LengthPrefixed())
}

// ReadFrame blocks for one complete length-prefixed packet and
// returns its body.
func (c *Conn) ReadFrame() ([]byte, error) {
	size, err := codec.Var32ReadLen(c.r)
	if err != nil {
		return nil, fmt.Errorf("testconn: read length prefix: %w", err)
	}
	body := make([]byte, size)
	if err := c.r.Read(body); err != nil {
		return nil, fmt.Errorf("testconn: read body: %w", err)
	}
	return body, nil
}
