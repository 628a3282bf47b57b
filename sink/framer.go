// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sync"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/tap"
	"github.com/ik5/audtap/utils"
)

// Framer turns tapped audio into fixed-size mono 16-bit frames at a fixed
// sample rate, the shape speech recognizers and voice encoders want.
// OnFrame is called on the render goroutine; the frame slice is reused
// after it returns.
type Framer struct {
	rate    int
	size    int
	onFrame func(frame []int16)

	mu        sync.Mutex
	format    audio.Format
	mixer     *audio.MonoMixer
	resampler *audio.Resampler
	mono      []float32
	pending   []float32
	frame     []int16
	frames    uint64
}

// NewFramer creates a framer emitting size samples at rate Hz per frame.
func NewFramer(rate, size int, onFrame func(frame []int16)) *Framer {
	return &Framer{
		rate:    rate,
		size:    max(size, 1),
		onFrame: onFrame,
	}
}

// BufferProduced implements tap.Sink.
func (f *Framer) BufferProduced(_ *tap.Session, buf *audio.Buffer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if format := buf.Format(); f.mixer == nil ||
		format.Channels != f.format.Channels || format.SampleRate != f.format.SampleRate {
		f.reset(format)
	}

	var err error
	f.mono, err = f.mixer.Mix(f.mono[:0], buf.Samples())
	if err != nil {
		return
	}
	f.pending, err = f.resampler.Process(f.pending, f.mono)
	if err != nil {
		return
	}

	f.emit()
}

// ErrorOccurred implements tap.Sink. It flushes what is buffered.
func (f *Framer) ErrorOccurred(*tap.Session, error) {
	f.Flush()
}

// Flush emits buffered audio, padding the last frame with silence.
func (f *Framer) Flush() { f.flush(true) }

// Drain emits buffered audio like Flush, but hands the last partial frame
// over as a shorter frame instead of padding it.
func (f *Framer) Drain() { f.flush(false) }

func (f *Framer) flush(pad bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resampler != nil {
		f.pending = f.resampler.Flush(f.pending)
		f.resampler.Reset()
	}
	if rem := len(f.pending) % f.size; rem != 0 && pad {
		f.pending = append(f.pending, make([]float32, f.size-rem)...)
	}

	f.emit()
	if len(f.pending) > 0 {
		f.frame = utils.Float32ToInt16Slice(f.frame, f.pending)
		f.pending = f.pending[:0]
		f.frames++
		if f.onFrame != nil {
			f.onFrame(f.frame)
		}
	}
}

// Frames returns the number of frames emitted.
func (f *Framer) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.frames
}

func (f *Framer) reset(format audio.Format) {
	f.format = format
	f.mixer = audio.NewMonoMixer(format.Channels)
	f.resampler = audio.NewResampler(1, format.SampleRate, f.rate)
	f.pending = f.pending[:0]
}

func (f *Framer) emit() {
	n := 0
	for len(f.pending)-n >= f.size {
		f.frame = utils.Float32ToInt16Slice(f.frame, f.pending[n:n+f.size])
		n += f.size
		f.frames++
		if f.onFrame != nil {
			f.onFrame(f.frame)
		}
	}

	f.pending = f.pending[:copy(f.pending, f.pending[n:])]
}
