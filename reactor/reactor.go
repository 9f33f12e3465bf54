// Package reactor implements a single-threaded epoll event loop.
// Descriptors register an interest mask and are armed edge-triggered
// and one-shot; a periodic timer bounds how long a single Execute call
// may run. The loop, the wake eventfd, and the interest bookkeeping
// are grounded on the teacher's transport.Poller, generalized from a
// single fixed wake descriptor into the registerable Descriptor model
// the wider protocol stack (connections, the deferred-work executor)
// is built on.
package reactor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Event is a bitmask over the interests/readiness a Descriptor cares
// about, mapped directly onto the epoll bit values it wraps.
type Event uint32

const (
	EventRead  Event = unix.EPOLLIN
	EventWrite Event = unix.EPOLLOUT
	EventError Event = unix.EPOLLERR | unix.EPOLLHUP
)

// NextStatus is the result of a Descriptor's Handle call.
type NextStatus int

const (
	// Final means the descriptor is done; the reactor removes and
	// destroys it and will not call Handle again.
	Final NextStatus = iota
	// Poll means re-arm the descriptor in the OS multiplexer with its
	// current interest and wait for the next event.
	Poll
	// More means call Handle again without waiting on the OS
	// multiplexer; used to yield between batches of work.
	More
)

// Descriptor is anything the reactor can multiplex. Handle receives the
// OS-reported active mask and returns the next status; implementations
// that hold OS resources should also implement io.Closer, which the
// reactor calls when a descriptor reaches Final.
type Descriptor interface {
	Fd() int
	Interest() Event
	SetInterest(Event)
	Handle(active Event) (NextStatus, error)
}

type closer interface {
	Close() error
}

var (
	// ErrAlreadyRegistered is returned by Insert for a descriptor whose
	// fd is already known to the reactor.
	ErrAlreadyRegistered = errors.New("reactor: descriptor already registered")
	// ErrNotRegistered is returned by Erase for an fd the reactor does
	// not currently track.
	ErrNotRegistered = errors.New("reactor: descriptor not registered")
)

type entry struct {
	desc                Descriptor
	executing           bool
	markedRemoval       bool
	lastAppliedInterest Event
	inReadyQueue        bool
	pendingActive       Event
}

// Reactor is a single-threaded epoll event loop with one-shot,
// edge-triggered descriptors and a periodic tick timer.
type Reactor struct {
	epfd    int
	wakeFd  int
	timerFd int

	tickNanos uint64

	entries    map[int]*entry
	readyQueue []*entry

	// descriptorCount and readyQueueLen mirror len(entries) and
	// len(readyQueue) behind atomics so a debug/status endpoint on
	// another goroutine can read them without racing Execute, which
	// owns both slices/maps exclusively.
	descriptorCount int64
	readyQueueLen   int64

	log *zap.Logger
}

// New creates a Reactor with a default 50ms tick.
func New(log *zap.Logger) (*Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &unix.EpollEvent{Fd: int32(wakeFd), Events: unix.EPOLLIN}); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: epoll_ctl(wakeFd): %w", err)
	}

	timerFd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: timerfd_create: %w", err)
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, timerFd, &unix.EpollEvent{Fd: int32(timerFd), Events: unix.EPOLLIN}); err != nil {
		unix.Close(timerFd)
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: epoll_ctl(timerFd): %w", err)
	}

	r := &Reactor{
		epfd:    epfd,
		wakeFd:  wakeFd,
		timerFd: timerFd,
		entries: make(map[int]*entry),
		log:     log,
	}
	if err := r.SetTickNanos(50 * 1000 * 1000); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the reactor's own kernel resources. Registered
// descriptors are not touched; callers should Erase them first.
func (r *Reactor) Close() error {
	return errors.Join(unix.Close(r.timerFd), unix.Close(r.wakeFd), unix.Close(r.epfd))
}

// Wake interrupts a blocked Execute call, e.g. from a signal handler
// goroutine that wants the caller's run loop to notice a shutdown
// request without waiting a full tick.
func (r *Reactor) Wake() error {
	var one [8]byte
	one[7] = 1
	_, err := unix.Write(r.wakeFd, one[:])
	if err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("reactor: wake: %w", err)
	}
	return nil
}

// TickNanos returns the current tick period.
func (r *Reactor) TickNanos() uint64 { return r.tickNanos }

// DescriptorCount reports how many descriptors are currently
// registered. Safe to call from any goroutine.
func (r *Reactor) DescriptorCount() int { return int(atomic.LoadInt64(&r.descriptorCount)) }

// ReadyQueueLen reports how many descriptors are waiting for another
// Handle call without going back through the OS multiplexer. Safe to
// call from any goroutine.
func (r *Reactor) ReadyQueueLen() int { return int(atomic.LoadInt64(&r.readyQueueLen)) }

// SetTickNanos reprograms the tick timer's period.
func (r *Reactor) SetTickNanos(ns uint64) error {
	r.tickNanos = ns
	spec := &unix.ItimerSpec{
		Interval: unix.NsecToTimespec(int64(ns)),
		Value:    unix.NsecToTimespec(int64(ns)),
	}
	if err := unix.TimerfdSettime(r.timerFd, 0, spec, nil); err != nil {
		return fmt.Errorf("reactor: timerfd_settime: %w", err)
	}
	return nil
}

// Insert registers a descriptor and arms it edge-triggered, one-shot
// with its current interest.
func (r *Reactor) Insert(d Descriptor) error {
	fd := d.Fd()
	if _, ok := r.entries[fd]; ok {
		return ErrAlreadyRegistered
	}
	e := &entry{desc: d, lastAppliedInterest: d.Interest()}
	ev := &unix.EpollEvent{Fd: int32(fd), Events: uint32(e.lastAppliedInterest) | unix.EPOLLET | unix.EPOLLONESHOT}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl(add, fd=%d): %w", fd, err)
	}
	r.entries[fd] = e
	atomic.AddInt64(&r.descriptorCount, 1)
	return nil
}

// Erase unregisters a descriptor. If called reentrantly from inside
// that descriptor's own Handle, the removal is deferred until Handle
// returns (see markedRemoval in Execute).
func (r *Reactor) Erase(d Descriptor) error {
	fd := d.Fd()
	e, ok := r.entries[fd]
	if !ok {
		return ErrNotRegistered
	}
	if e.executing {
		e.markedRemoval = true
		return nil
	}
	return r.destroy(e)
}

func (r *Reactor) destroy(e *entry) error {
	fd := e.desc.Fd()
	delete(r.entries, fd)
	atomic.AddInt64(&r.descriptorCount, -1)
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if c, ok := e.desc.(closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Reactor) rearm(e *entry) error {
	fd := e.desc.Fd()
	interest := e.desc.Interest()
	e.lastAppliedInterest = interest
	ev := &unix.EpollEvent{Fd: int32(fd), Events: uint32(interest) | unix.EPOLLET | unix.EPOLLONESHOT}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, ev)
}

// Execute runs the loop per §4.5: poll, dispatch, repeat until the tick
// timer has fired at least once during this call.
func (r *Reactor) Execute() error {
	tickElapsed := false
	eventBuf := make([]unix.EpollEvent, 64)

	for !tickElapsed {
		timeout := -1
		if len(r.readyQueue) > 0 {
			timeout = 0
		}

		n, err := unix.EpollWait(r.epfd, eventBuf, timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("reactor: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := eventBuf[i]
			fd := int(ev.Fd)

			switch fd {
			case r.timerFd:
				drainTimer(r.timerFd)
				tickElapsed = true
				continue
			case r.wakeFd:
				drainTimer(r.wakeFd)
				continue
			}

			e, ok := r.entries[fd]
			if !ok {
				continue
			}
			if Event(ev.Events)&EventError != 0 {
				if err := r.destroy(e); err != nil {
					r.log.Warn("reactor: error destroying descriptor", zap.Int("fd", fd), zap.Error(err))
				}
				continue
			}
			if !e.inReadyQueue {
				e.inReadyQueue = true
				r.readyQueue = append(r.readyQueue, e)
			}
			e.pendingActive = Event(ev.Events)
		}

		atomic.StoreInt64(&r.readyQueueLen, int64(len(r.readyQueue)))
		r.drainReadyQueue()
	}

	return nil
}

func (r *Reactor) drainReadyQueue() {
	queue := r.readyQueue
	r.readyQueue = nil
	atomic.StoreInt64(&r.readyQueueLen, 0)

	for _, e := range queue {
		e.inReadyQueue = false
		active := e.pendingActive

		e.executing = true
		status, err := e.desc.Handle(active)
		e.executing = false

		if err != nil {
			r.log.Warn("reactor: descriptor handle error", zap.Int("fd", e.desc.Fd()), zap.Error(err))
			status = Final
		}
		if e.markedRemoval {
			status = Final
		}

		switch status {
		case Final:
			if err := r.destroy(e); err != nil {
				r.log.Warn("reactor: error destroying descriptor", zap.Int("fd", e.desc.Fd()), zap.Error(err))
			}
		case Poll:
			if err := r.rearm(e); err != nil {
				r.log.Warn("reactor: error re-arming descriptor", zap.Int("fd", e.desc.Fd()), zap.Error(err))
				_ = r.destroy(e)
			}
		case More:
			e.inReadyQueue = true
			r.readyQueue = append(r.readyQueue, e)
			atomic.StoreInt64(&r.readyQueueLen, int64(len(r.readyQueue)))
		}
	}
}

func drainTimer(fd int) {
	var buf [8]byte
	for {
		_, err := unix.Read(fd, buf[:])
		if err != nil {
			return
		}
	}
}
