// Package executor implements the deferred-work executor described in
// §4.5: a reactor.Descriptor whose readiness signal is a counting wake
// object (an eventfd), draining a FIFO of tasks in bounded batches so a
// single slow task cannot starve the reactor's tick budget.
package executor

import (
	"errors"
	"fmt"

	"github.com/luma/beacon/reactor"
	"golang.org/x/sys/unix"
)

// batchSize is N from §4.5: the maximum number of tasks advanced per
// Handle call before yielding back to the reactor.
const batchSize = 16

// Task is one unit of deferred work. Advance returns true while more
// work remains and the task should be re-queued; false (or an error)
// means the task is finished and is dropped.
type Task interface {
	Advance() (bool, error)
}

// Executor is a reactor.Descriptor backed by an eventfd wake object and
// a FIFO task queue.
type Executor struct {
	wakeFd   int
	interest reactor.Event

	queue []Task
}

// New creates an Executor. Register it with a reactor.Reactor via
// Insert before calling Enqueue.
func New() (*Executor, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("executor: eventfd: %w", err)
	}
	return &Executor{wakeFd: fd, interest: reactor.EventRead}, nil
}

var _ reactor.Descriptor = (*Executor)(nil)

func (e *Executor) Fd() int                 { return e.wakeFd }
func (e *Executor) Interest() reactor.Event { return e.interest }
func (e *Executor) SetInterest(mask reactor.Event) { e.interest = mask }

// Close releases the eventfd. Call this after erasing the executor
// from its reactor.
func (e *Executor) Close() error {
	return unix.Close(e.wakeFd)
}

// Enqueue appends task to the back of the queue. If the queue was
// empty, it signals the wake object so the reactor reports read-ready.
func (e *Executor) Enqueue(task Task) error {
	wasEmpty := len(e.queue) == 0
	e.queue = append(e.queue, task)
	if wasEmpty {
		return e.wake()
	}
	return nil
}

func (e *Executor) wake() error {
	var one [8]byte
	one[7] = 1
	_, err := unix.Write(e.wakeFd, one[:])
	if err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("executor: wake: %w", err)
	}
	return nil
}

func (e *Executor) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(e.wakeFd, buf[:])
}

// Handle advances up to batchSize tasks from the front of the queue,
// re-queueing those that report more work remaining.
func (e *Executor) Handle(active reactor.Event) (reactor.NextStatus, error) {
	n := len(e.queue)
	if n > batchSize {
		n = batchSize
	}

	batch := e.queue[:n]
	e.queue = e.queue[n:]

	for _, task := range batch {
		more, err := task.Advance()
		if err != nil {
			continue
		}
		if more {
			e.queue = append(e.queue, task)
		}
	}

	if len(e.queue) > 0 {
		return reactor.More, nil
	}
	e.drainWake()
	return reactor.Poll, nil
}
