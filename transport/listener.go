package transport

import (
	"fmt"
	"net"
	"os"
	"strconv"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/luma/beacon/reactor"
)

// Listener is a reactor.Descriptor over a listening socket's fd. It
// replaces the teacher's goroutine-per-connection net.Listener.Accept
// loop with a non-blocking accept driven by the reactor, while keeping
// the teacher's SO_REUSEPORT bootstrap (go_reuseport) and zap/multierr
// logging conventions.
type Listener struct {
	fd   int
	file *os.File // keeps the dup'd fd alive; never read after construction
	addr net.Addr

	log      *zap.Logger
	opts     Options
	reactor  *reactor.Reactor
	onAccept DataHandler

	interest reactor.Event
}

func (l *Listener) Fd() int                   { return l.fd }
func (l *Listener) Interest() reactor.Event   { return l.interest }
func (l *Listener) SetInterest(reactor.Event) {}

// Addr returns the bound local address, useful when Options.Port is 0
// and the kernel chose an ephemeral port.
func (l *Listener) Addr() net.Addr { return l.addr }

// NewListener binds addr, optionally with SO_REUSEPORT, and extracts a
// raw non-blocking fd suitable for epoll registration.
func NewListener(r *reactor.Reactor, opts Options, onAccept DataHandler) (*Listener, error) {
	opts = opts.withDefaults()
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))

	var ln net.Listener
	var err error
	if opts.Reuseport {
		ln, err = reuseport.Listen("tcp", addr)
	} else {
		ln, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}

	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("transport: listener for %s is not a *net.TCPListener", addr)
	}

	boundAddr := tcpLn.Addr()

	file, err := tcpLn.File()
	if err != nil {
		tcpLn.Close()
		return nil, fmt.Errorf("transport: extract listener fd: %w", err)
	}
	// file is a dup of the listening socket; the original net.Listener
	// can be closed once the dup is in hand.
	tcpLn.Close()

	fd := int(file.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		file.Close()
		return nil, fmt.Errorf("transport: set nonblocking: %w", err)
	}

	return &Listener{
		fd:       fd,
		file:     file,
		addr:     boundAddr,
		log:      opts.Log,
		opts:     opts,
		reactor:  r,
		onAccept: onAccept,
		interest: reactor.EventRead,
	}, nil
}

// Handle accepts as many pending connections as are ready and
// registers each with the reactor.
func (l *Listener) Handle(active reactor.Event) (reactor.NextStatus, error) {
	if active&reactor.EventError != 0 {
		return reactor.Final, fmt.Errorf("transport: listener descriptor error mask set")
	}

	var errs error
	for {
		connFd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN {
				break
			}
			errs = multierr.Append(errs, err)
			break
		}

		conn := NewConnection(connFd, l.opts.MaxPacketSize, l.opts.StackBufferSize, l.onAccept)
		if err := l.reactor.Insert(conn); err != nil {
			l.log.Warn("transport: failed to register accepted connection", zap.Error(err))
			unix.Close(connFd)
			continue
		}
	}

	if errs != nil {
		l.log.Warn("transport: accept errors", zap.Error(errs))
	}
	return reactor.Poll, nil
}

// Close releases the listening socket's fd.
func (l *Listener) Close() error {
	return l.file.Close()
}

var _ reactor.Descriptor = (*Listener)(nil)
