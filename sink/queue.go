// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sync/atomic"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/tap"
)

// Item is one notification pushed through a Queue. Exactly one of Buffer
// and Err is set.
type Item struct {
	Session *tap.Session
	// Buffer is a copy owned by the receiver.
	Buffer *audio.Buffer
	Err    error
}

// Queue moves notifications off the render goroutine onto a channel.
// Sends never block: when the channel is full the buffer is dropped and
// counted. A render failure that does not fit is kept for Err.
type Queue struct {
	ch      chan Item
	dropped atomic.Uint64
	err     atomic.Pointer[error]
}

// NewQueue creates a queue holding up to size notifications.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Item, max(size, 1))}
}

// C returns the channel to receive from. It is never closed; stop
// receiving after an Item carrying Err.
func (q *Queue) C() <-chan Item { return q.ch }

// BufferProduced implements tap.Sink.
func (q *Queue) BufferProduced(s *tap.Session, buf *audio.Buffer) {
	select {
	case q.ch <- Item{Session: s, Buffer: buf.Copy()}:
	default:
		q.dropped.Add(1)
	}
}

// ErrorOccurred implements tap.Sink.
func (q *Queue) ErrorOccurred(s *tap.Session, err error) {
	q.err.Store(&err)

	select {
	case q.ch <- Item{Session: s, Err: err}:
	default:
	}
}

// Dropped returns the number of buffers that did not fit.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Err returns the last render failure received, even if it could not be
// queued.
func (q *Queue) Err() error {
	if p := q.err.Load(); p != nil {
		return *p
	}
	return nil
}
