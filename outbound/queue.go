// Package outbound implements the bounded queue between device listeners
// and the server transport.
//
// Many producers hold a Sender each; a single consumer drains Actions.
// When the last Sender is closed the channel is closed, which the consumer
// observes as end of input. When the consumer detaches, blocked and future
// sends fail with ErrClosed instead of blocking forever.
package outbound

import (
	"errors"
	"sync"
	"sync/atomic"

	"devicectrl/inputbridge/protocol"
)

// ErrClosed is returned by Send when the consumer is gone or the sender was closed
var ErrClosed = errors.New("outbound queue closed")

type Queue struct {
	ch       chan protocol.Action
	detached chan struct{}
	once     sync.Once

	mu        sync.Mutex
	producers int
	drained   bool
}

// New creates a queue holding at most capacity pending actions
func New(capacity int) *Queue {
	return &Queue{
		ch:       make(chan protocol.Action, capacity),
		detached: make(chan struct{}),
	}
}

// Sender registers a new producer. Once every earlier Sender has been
// closed the queue is finished and the returned Sender is already closed.
func (q *Queue) Sender() *Sender {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := &Sender{q: q}
	if q.drained {
		s.closed.Store(true)
		return s
	}
	q.producers++
	return s
}

// Actions is the consumer side. It is closed once every Sender is closed.
func (q *Queue) Actions() <-chan protocol.Action {
	return q.ch
}

// Detach marks the consumer as gone
func (q *Queue) Detach() {
	q.once.Do(func() { close(q.detached) })
}

// Len is the number of pending actions
func (q *Queue) Len() int { return len(q.ch) }

// Cap is the queue capacity
func (q *Queue) Cap() int { return cap(q.ch) }

func (q *Queue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.producers--
	if q.producers == 0 && !q.drained {
		q.drained = true
		close(q.ch)
	}
}

// Sender is one producer's handle on the queue
type Sender struct {
	q      *Queue
	closed atomic.Bool
}

// Send enqueues a, blocking while the queue is full
func (s *Sender) Send(a protocol.Action) error {
	if s.closed.Load() {
		return ErrClosed
	}
	select {
	case <-s.q.detached:
		return ErrClosed
	default:
	}
	select {
	case s.q.ch <- a:
		return nil
	case <-s.q.detached:
		return ErrClosed
	}
}

// Clone registers another producer on the same queue
func (s *Sender) Clone() *Sender {
	return s.q.Sender()
}

// Close releases this producer. Closing twice is a no-op.
func (s *Sender) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.q.release()
	}
}
