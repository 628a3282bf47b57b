// SPDX-License-Identifier: EPL-2.0

package tap

import (
	"weak"

	"github.com/ik5/audtap/audio"
)

// Sink receives what a Session taps. Both methods run on the player's
// render goroutine and hold it up for as long as they take.
type Sink interface {
	// BufferProduced is called once per rendered chunk, in render order.
	// buf is only valid until the call returns; use buf.Copy to keep it.
	BufferProduced(s *Session, buf *audio.Buffer)
	// ErrorOccurred is called at most once, with a *RenderError, after
	// which the session is detached.
	ErrorOccurred(s *Session, err error)
}

// SinkFuncs adapts plain functions to Sink. Nil fields ignore the
// notification.
type SinkFuncs struct {
	OnBuffer func(s *Session, buf *audio.Buffer)
	OnError  func(s *Session, err error)
}

func (f SinkFuncs) BufferProduced(s *Session, buf *audio.Buffer) {
	if f.OnBuffer != nil {
		f.OnBuffer(s, buf)
	}
}

func (f SinkFuncs) ErrorOccurred(s *Session, err error) {
	if f.OnError != nil {
		f.OnError(s, err)
	}
}

// Weak returns a Sink that does not keep p alive. Once p has been
// garbage collected the session treats the sink as absent.
func Weak[T any, P interface {
	*T
	Sink
}](p P) Sink {
	return weakSink[T, P]{ptr: weak.Make((*T)(p))}
}

type weakSink[T any, P interface {
	*T
	Sink
}] struct {
	ptr weak.Pointer[T]
}

func (w weakSink[T, P]) resolve() Sink {
	v := w.ptr.Value()
	if v == nil {
		return nil
	}
	return P(v)
}

func (w weakSink[T, P]) BufferProduced(s *Session, buf *audio.Buffer) {
	if sink := w.resolve(); sink != nil {
		sink.BufferProduced(s, buf)
	}
}

func (w weakSink[T, P]) ErrorOccurred(s *Session, err error) {
	if sink := w.resolve(); sink != nil {
		sink.ErrorOccurred(s, err)
	}
}

// resolver is implemented by sinks that may have gone away.
type resolver interface {
	resolve() Sink
}

// sinkBox lets an interface value live behind an atomic.Pointer.
type sinkBox struct {
	sink Sink
}
