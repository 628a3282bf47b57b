// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
	"sync"

	"github.com/ik5/audtap/audio"
)

// MockSource is a test helper that generates audio data for testing.
// It implements audio.Source and can be told to fail or to change format
// after a number of frames, which is how tests simulate render failures.
type MockSource struct {
	mu           sync.Mutex
	format       audio.Format
	totalFrames  int // Total frames to generate, <0 for endless
	generated    int // Frames generated so far
	waveform     func(frame int, channel int) float32
	failAfter    int
	failErr      error
	switchAfter  int
	switchFormat audio.Format
	closed       bool
}

// NewMockSource creates a new mock audio source.
// totalFrames is the total number of frames to generate, negative for an endless source.
// waveform is a function that generates sample values given frame index and channel.
func NewMockSource(format audio.Format, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		format:      format,
		totalFrames: totalFrames,
		waveform:    waveform,
		failAfter:   -1,
		switchAfter: -1,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(format audio.Format, totalFrames int) *MockSource {
	return NewMockSource(format, totalFrames, func(frame int, channel int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(format audio.Format, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(format, totalFrames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(format.SampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(format audio.Format, totalFrames int, value float32) *MockSource {
	return NewMockSource(format, totalFrames, func(frame int, channel int) float32 {
		return value
	})
}

// NewRampSource creates a mock source whose every sample equals its frame
// index scaled by step, so tests can recover frame positions from samples.
func NewRampSource(format audio.Format, totalFrames int, step float32) *MockSource {
	return NewMockSource(format, totalFrames, func(frame int, channel int) float32 {
		return float32(frame) * step
	})
}

// FailAfter makes ReadSamples return err once frames frames have been produced.
func (m *MockSource) FailAfter(frames int, err error) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failAfter = frames
	m.failErr = err
	return m
}

// SwitchFormatAfter makes Format report f once frames frames have been produced.
func (m *MockSource) SwitchFormatAfter(frames int, f audio.Format) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.switchAfter = frames
	m.switchFormat = f
	return m
}

func (m *MockSource) Format() audio.Format {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.switchAfter >= 0 && m.generated >= m.switchAfter {
		return m.switchFormat
	}
	return m.format
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

// Generated returns the number of frames produced so far.
func (m *MockSource) Generated() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.generated
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAfter >= 0 && m.generated >= m.failAfter {
		return 0, m.failErr
	}
	if m.totalFrames >= 0 && m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	channels := m.format.Channels
	framesToWrite := len(dst) / channels
	if m.totalFrames >= 0 {
		framesToWrite = min(framesToWrite, m.totalFrames-m.generated)
	}
	if m.failAfter >= 0 {
		framesToWrite = min(framesToWrite, m.failAfter-m.generated)
	}
	if m.switchAfter > m.generated {
		framesToWrite = min(framesToWrite, m.switchAfter-m.generated)
	}

	for frame := range framesToWrite {
		for ch := range channels {
			dst[frame*channels+ch] = m.waveform(m.generated+frame, ch)
		}
	}

	m.generated += framesToWrite

	return framesToWrite * channels, nil
}
