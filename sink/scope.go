// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sync"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/tap"
)

// Scope keeps the most recent mono mix of tapped audio in a ring buffer,
// for waveform displays.
type Scope struct {
	mu    sync.Mutex
	buf   []float32
	pos   int
	full  bool
	mixer *audio.MonoMixer
	mono  []float32
}

// NewScope creates a scope remembering size mono samples.
func NewScope(size int) *Scope {
	return &Scope{buf: make([]float32, max(size, 1))}
}

// BufferProduced implements tap.Sink.
func (s *Scope) BufferProduced(_ *tap.Session, buf *audio.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch := buf.Format().Channels; s.mixer == nil || s.mixer.Channels() != ch {
		s.mixer = audio.NewMonoMixer(ch)
	}

	mono, err := s.mixer.Mix(s.mono[:0], buf.Samples())
	if err != nil {
		return
	}
	s.mono = mono

	for _, v := range mono {
		s.buf[s.pos] = v
		s.pos++
		if s.pos == len(s.buf) {
			s.pos = 0
			s.full = true
		}
	}
}

// ErrorOccurred implements tap.Sink.
func (s *Scope) ErrorOccurred(*tap.Session, error) {}

// Samples returns up to the last n samples in chronological order.
func (s *Scope) Samples(n int) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	avail := s.pos
	if s.full {
		avail = len(s.buf)
	}
	n = min(n, avail)

	out := make([]float32, n)
	start := (s.pos - n + len(s.buf)) % len(s.buf)
	for i := range n {
		out[i] = s.buf[(start+i)%len(s.buf)]
	}

	return out
}
