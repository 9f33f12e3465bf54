package transport

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// writeNode is one pending unit of outbound data: either an in-memory
// byte range or a file range transferred via sendfile. Per §4.6 the
// writable mixin's FIFO holds these so writes made while a previous
// one is still draining stay strictly ordered.
type writeNode interface {
	// writeTo flushes as much of the node as the fd accepts without
	// blocking. done reports whether the node is fully drained.
	writeTo(fd int) (n int, done bool, err error)
}

type bufferNode struct {
	data []byte
	off  int
}

func (b *bufferNode) writeTo(fd int) (int, bool, error) {
	n, err := unix.Write(fd, b.data[b.off:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("transport: write: %w", err)
	}
	b.off += n
	return n, b.off >= len(b.data), nil
}

type fileRangeNode struct {
	fd        int
	off       int64
	remaining int
}

func (f *fileRangeNode) writeTo(dstFd int) (int, bool, error) {
	n, err := unix.Sendfile(dstFd, f.fd, &f.off, f.remaining)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("transport: sendfile: %w", err)
	}
	f.remaining -= n
	return n, f.remaining <= 0, nil
}

// Writable is the non-blocking writable mixin from §4.6: a FIFO of
// buffer/file-range nodes, a fast syscall path when the queue is
// empty, and EAGAIN handling that enqueues the unsent remainder.
type Writable struct {
	fd             int
	queue          []writeNode
	closeIndicated bool
}

func newWritable(fd int) Writable {
	return Writable{fd: fd}
}

// Active reports whether the queue holds unsent data, i.e. whether
// write interest should be armed on the next re-arm.
func (w *Writable) Active() bool { return len(w.queue) > 0 }

// Write appends buf for sending, taking the fast syscall path if
// nothing is already queued. The unsent remainder, if any, is copied
// before being enqueued since the caller may reuse buf after return.
func (w *Writable) Write(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if len(w.queue) == 0 {
		n, err := unix.Write(w.fd, buf)
		if err != nil && !errors.Is(err, unix.EAGAIN) {
			return fmt.Errorf("transport: write: %w", err)
		}
		if n < 0 {
			n = 0
		}
		if n == len(buf) {
			return nil
		}
		rest := make([]byte, len(buf)-n)
		copy(rest, buf[n:])
		w.queue = append(w.queue, &bufferNode{data: rest})
		return nil
	}
	rest := make([]byte, len(buf))
	copy(rest, buf)
	w.queue = append(w.queue, &bufferNode{data: rest})
	return nil
}

// WriteShared behaves like Write but aliases buf instead of copying
// the unsent remainder; the caller must not mutate buf afterward.
func (w *Writable) WriteShared(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if len(w.queue) == 0 {
		n, err := unix.Write(w.fd, buf)
		if err != nil && !errors.Is(err, unix.EAGAIN) {
			return fmt.Errorf("transport: write: %w", err)
		}
		if n < 0 {
			n = 0
		}
		if n == len(buf) {
			return nil
		}
		w.queue = append(w.queue, &bufferNode{data: buf, off: n})
		return nil
	}
	w.queue = append(w.queue, &bufferNode{data: buf})
	return nil
}

// Sendfile queues a zero-copy transfer of length bytes from srcFd
// starting at off, taking the same fast-path-then-enqueue approach as
// Write.
func (w *Writable) Sendfile(srcFd int, off int64, length int) error {
	if length <= 0 {
		return nil
	}
	node := &fileRangeNode{fd: srcFd, off: off, remaining: length}
	if len(w.queue) == 0 {
		n, done, err := node.writeTo(w.fd)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		_ = n
		w.queue = append(w.queue, node)
		return nil
	}
	w.queue = append(w.queue, node)
	return nil
}

// IndicateWriteClose marks the write half for graceful shutdown: once
// the queue has drained, handleWrite reports writeFinal. Write, WriteShared
// and Sendfile still accept data after this call.
func (w *Writable) IndicateWriteClose() {
	w.closeIndicated = true
}

// writeOutcome mirrors reactor.NextStatus without importing it, so
// Connection can combine read- and write-side results independently.
type writeOutcome int

const (
	writeFinal writeOutcome = iota
	writePoll
)

// handleWrite drains as much of the queue as the fd accepts, per the
// handleWrite(active) algorithm in §4.6.
func (w *Writable) handleWrite() (writeOutcome, error) {
	if len(w.queue) == 0 {
		if w.closeIndicated {
			return writeFinal, nil
		}
		return writePoll, nil
	}

	for len(w.queue) > 0 {
		front := w.queue[0]
		n, done, err := front.writeTo(w.fd)
		if err != nil {
			w.queue = nil
			return writeFinal, err
		}
		if n == 0 && !done {
			return writePoll, nil
		}
		if done {
			w.queue = w.queue[1:]
			continue
		}
		return writePoll, nil
	}

	if w.closeIndicated {
		return writeFinal, nil
	}
	return writePoll, nil
}
