package transport

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/luma/beacon/reactor"
	"github.com/luma/beacon/stream"
)

// readState is the per-connection framing state machine from §4.6:
// five length-byte states (Len0..Len4, the i+1-th byte of the varint32
// prefix), a terminal overflow state, and the Data state reading the
// declared body.
type readState int

const (
	stateLen0 readState = iota
	stateLen1
	stateLen2
	stateLen3
	stateLen4
	stateLenOverflow
	stateData
)

// ErrPacketTooLarge is raised when a declared packet length exceeds
// the connection's configured maximum.
var ErrPacketTooLarge = errors.New("transport: packet exceeds max size")

// ErrZeroLengthPacket is raised when a frame declares a zero-length
// body, which §4.6 treats as illegal.
var ErrZeroLengthPacket = errors.New("transport: zero-length packet")

// ErrLengthOverflow is raised when the varint32 length prefix runs
// past its fifth byte with the continuation bit still set.
var ErrLengthOverflow = errors.New("transport: packet length overflow")

// DataHandler processes one complete packet body. It is invoked with a
// stream bounded exactly to the declared packet length.
type DataHandler func(conn *Connection, body stream.Reader) error

// Connection is a Descriptor+Writable per §6: a non-blocking socket
// driving the length-prefixed framing state machine on its read side
// and the writable mixin on its write side.
type Connection struct {
	fd int

	Writable

	maxPacketSize   int
	stackBufferSize int

	state      readState
	packetSize int
	lenShift   int
	body       []byte
	bodyFilled int
	dispatched int

	readClosed bool

	interest reactor.Event

	onData   DataHandler
	stackBuf []byte
}

// NewConnection wraps an already-accepted, non-blocking fd.
func NewConnection(fd int, maxPacketSize, stackBufferSize int, onData DataHandler) *Connection {
	c := &Connection{
		fd:              fd,
		Writable:        newWritable(fd),
		maxPacketSize:   maxPacketSize,
		stackBufferSize: stackBufferSize,
		interest:        reactor.EventRead,
		onData:          onData,
		stackBuf:        make([]byte, stackBufferSize),
	}
	return c
}

func (c *Connection) Fd() int                        { return c.fd }
func (c *Connection) Interest() reactor.Event        { return c.interest }
func (c *Connection) SetInterest(mask reactor.Event) { c.interest = mask }

// Close releases the underlying socket fd.
func (c *Connection) Close() error {
	return unix.Close(c.fd)
}

// IndicateDisconnect marks both halves for graceful shutdown: no more
// data will be read, and queued writes continue until drained.
func (c *Connection) IndicateDisconnect() {
	c.readClosed = true
	c.IndicateWriteClose()
}

// Handle implements reactor.Descriptor, combining the writable mixin's
// drain with the framing state machine's read pump. A read-side failure
// closes the read half; once the write queue is empty Handle returns
// Final together with that failure.
func (c *Connection) Handle(active reactor.Event) (reactor.NextStatus, error) {
	if active&reactor.EventError != 0 {
		return reactor.Final, fmt.Errorf("transport: descriptor error mask set")
	}

	status := reactor.Poll

	if active&reactor.EventWrite != 0 || c.Writable.Active() {
		outcome, err := c.Writable.handleWrite()
		if err != nil {
			return reactor.Final, err
		}
		if outcome == writeFinal {
			status = reactor.Final
		}
	}

	var readErr error
	if !c.readClosed && active&reactor.EventRead != 0 {
		more, err := c.pumpRead()
		if err != nil {
			c.readClosed = true
			c.IndicateWriteClose()
			readErr = err
		}
		if more {
			status = mergeMore(status)
		}
	}

	if c.readClosed && !c.Writable.Active() {
		status = reactor.Final
	}

	c.updateInterest()
	if status == reactor.Final {
		return status, readErr
	}
	return status, nil
}

func mergeMore(status reactor.NextStatus) reactor.NextStatus {
	if status == reactor.Final {
		return status
	}
	return reactor.More
}

func (c *Connection) updateInterest() {
	mask := reactor.EventRead
	if c.readClosed {
		mask = 0
	}
	if c.Writable.Active() {
		mask |= reactor.EventWrite
	}
	c.SetInterest(mask)
}

// pumpRead performs one read syscall and feeds whatever it returns
// through the framing state machine, dispatching every complete
// packet the buffer happens to contain. Per §4.6's handleData step it
// reports More whenever a packet was dispatched or the read filled
// its buffer (either is a sign there is work left that doesn't need
// another trip through the OS poller), so each Handle call consumes at
// most one read's worth of bytes rather than draining an unbounded
// backlog in a single call.
func (c *Connection) pumpRead() (bool, error) {
	var scratch [4096]byte

	n, err := unix.Read(c.fd, scratch[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return false, nil
		}
		return false, fmt.Errorf("transport: read: %w", err)
	}
	if n == 0 {
		return false, fmt.Errorf("transport: read: connection closed")
	}

	c.dispatched = 0
	if err := c.feed(scratch[:n]); err != nil {
		return false, err
	}

	return c.dispatched > 0 || n == len(scratch), nil
}

// feed advances the state machine over buf, which may contain any
// number of length-prefix bytes and packet bodies in any split.
func (c *Connection) feed(buf []byte) error {
	for len(buf) > 0 {
		switch c.state {
		case stateLen0, stateLen1, stateLen2, stateLen3, stateLen4:
			b := buf[0]
			buf = buf[1:]
			c.packetSize |= int(b&0x7f) << c.lenShift
			c.lenShift += 7

			if b&0x80 != 0 {
				if c.state == stateLen4 {
					c.state = stateLenOverflow
					return ErrLengthOverflow
				}
				c.state++
				continue
			}

			if c.packetSize <= 0 {
				return ErrZeroLengthPacket
			}
			if c.maxPacketSize > 0 && c.packetSize > c.maxPacketSize {
				return ErrPacketTooLarge
			}

			if c.packetSize <= c.stackBufferSize {
				c.body = c.stackBuf[:c.packetSize]
			} else {
				c.body = make([]byte, c.packetSize)
			}
			c.bodyFilled = 0
			c.state = stateData

		case stateData:
			need := c.packetSize - c.bodyFilled
			take := len(buf)
			if take > need {
				take = need
			}
			copy(c.body[c.bodyFilled:], buf[:take])
			c.bodyFilled += take
			buf = buf[take:]

			if c.bodyFilled == c.packetSize {
				if err := c.dispatch(); err != nil {
					return err
				}
				c.resetFraming()
			}

		case stateLenOverflow:
			return ErrLengthOverflow
		}
	}
	return nil
}

func (c *Connection) dispatch() error {
	c.dispatched++
	if c.onData == nil {
		return nil
	}
	in := stream.NewBufferInput(c.body)
	return c.onData(c, in)
}

func (c *Connection) resetFraming() {
	c.state = stateLen0
	c.packetSize = 0
	c.lenShift = 0
	c.body = nil
	c.bodyFilled = 0
}

var _ reactor.Descriptor = (*Connection)(nil)
