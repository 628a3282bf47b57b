// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"math"
	"sync/atomic"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/tap"
)

// Levels is a snapshot of a Meter.
type Levels struct {
	// RMS and Peak are per channel, for the most recent chunk.
	RMS  []float64
	Peak []float64
	// Frames and Chunks count everything the meter has seen.
	Frames int64
	Chunks uint64
	Format audio.Format
}

// Meter measures the level of tapped audio. Levels can be read from any
// goroutine while the render goroutine updates them. The running totals
// assume one render goroutine feeds the meter.
type Meter struct {
	levels atomic.Pointer[Levels]
	err    atomic.Pointer[error]
}

func NewMeter() *Meter {
	m := &Meter{}
	m.levels.Store(&Levels{})
	return m
}

// BufferProduced implements tap.Sink.
func (m *Meter) BufferProduced(_ *tap.Session, buf *audio.Buffer) {
	prev := m.levels.Load()
	format := buf.Format()

	next := &Levels{
		RMS:    make([]float64, format.Channels),
		Peak:   make([]float64, format.Channels),
		Frames: prev.Frames + int64(buf.FrameCount()),
		Chunks: prev.Chunks + 1,
		Format: format,
	}

	samples := buf.Samples()
	for i, s := range samples {
		ch := i % format.Channels
		v := math.Abs(float64(s))
		next.RMS[ch] += v * v
		next.Peak[ch] = max(next.Peak[ch], v)
	}
	if frames := buf.FrameCount(); frames > 0 {
		for ch := range next.RMS {
			next.RMS[ch] = math.Sqrt(next.RMS[ch] / float64(frames))
		}
	}

	m.levels.Store(next)
}

// ErrorOccurred implements tap.Sink.
func (m *Meter) ErrorOccurred(_ *tap.Session, err error) {
	m.err.Store(&err)
}

// Levels returns the latest snapshot. The slices must not be modified.
func (m *Meter) Levels() Levels { return *m.levels.Load() }

// Err returns the render failure the meter was told about, if any.
func (m *Meter) Err() error {
	if p := m.err.Load(); p != nil {
		return *p
	}
	return nil
}

// DBFS converts a linear level in [0, 1] to decibels relative to full
// scale. Silence is -Inf.
func DBFS(level float64) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(level)
}
