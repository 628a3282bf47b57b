// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"

	goaudio "github.com/go-audio/audio"
)

// Buffer is one rendered chunk of decoded audio.
//
// A Buffer handed to an observer borrows the renderer's storage and is only
// valid until the call that delivered it returns. Call Copy to retain it.
// Callers must not modify the slice returned by Samples.
type Buffer struct {
	format  Format
	frames  int
	seq     uint64
	offset  int64
	samples []float32
}

// NewBuffer wraps samples without copying them. seq is the chunk's position
// in render order and offset the track frame of its first frame.
func NewBuffer(format Format, seq uint64, offset int64, samples []float32) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if len(samples)%format.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples, %d channels", ErrPartialFrame, len(samples), format.Channels)
	}

	return &Buffer{
		format:  format,
		frames:  len(samples) / format.Channels,
		seq:     seq,
		offset:  offset,
		samples: samples,
	}, nil
}

func (b *Buffer) Format() Format   { return b.format }
func (b *Buffer) FrameCount() int  { return b.frames }
func (b *Buffer) Sequence() uint64 { return b.seq }
func (b *Buffer) Offset() int64    { return b.offset }

// Samples returns the interleaved samples. The slice is borrowed.
func (b *Buffer) Samples() []float32 { return b.samples }

// Sample returns the value of channel ch in frame.
func (b *Buffer) Sample(frame, ch int) float32 {
	return b.samples[frame*b.format.Channels+ch]
}

// Duration is the playback time covered by the buffer.
func (b *Buffer) Duration() time.Duration { return b.format.Duration(b.frames) }

// Copy returns a Buffer that owns its storage.
func (b *Buffer) Copy() *Buffer {
	c := *b
	c.samples = make([]float32, len(b.samples))
	copy(c.samples, b.samples)
	return &c
}

// Float32Buffer copies the samples into a go-audio float buffer.
func (b *Buffer) Float32Buffer() *goaudio.Float32Buffer {
	data := make([]float32, len(b.samples))
	copy(data, b.samples)

	return &goaudio.Float32Buffer{
		Format:         b.format.GoAudio(),
		Data:           data,
		SourceBitDepth: b.format.BitDepth,
	}
}

// IntBuffer copies the samples into a go-audio int buffer scaled to the
// format's bit depth.
func (b *Buffer) IntBuffer() *goaudio.IntBuffer {
	scale := FullScale(b.format.BitDepth)
	limit := scale - 1

	data := make([]int, len(b.samples))
	for i, s := range b.samples {
		v := float64(s) * scale
		if v > limit {
			v = limit
		} else if v < -scale {
			v = -scale
		}
		data[i] = int(v)
	}

	return &goaudio.IntBuffer{
		Format:         b.format.GoAudio(),
		Data:           data,
		SourceBitDepth: b.format.BitDepth,
	}
}

// FullScale returns the magnitude of the most negative integer sample at
// bitDepth. Unknown depths are treated as 16-bit.
func FullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}
