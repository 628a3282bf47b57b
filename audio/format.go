// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"

	goaudio "github.com/go-audio/audio"
)

// MaxChannels is the largest channel count a Format may describe.
const MaxChannels = 32

// Format describes the sample layout of decoded audio.
//
// Samples are always interleaved float32 in [-1,1]; BitDepth records the
// resolution of the source the samples were decoded from.
type Format struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// Validate reports whether f describes a layout a buffer can carry.
func (f Format) Validate() error {
	if f.Channels < 1 || f.Channels > MaxChannels {
		return fmt.Errorf("%w: got %d", ErrInvalidChannels, f.Channels)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleRate, f.SampleRate)
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidBitDepth, f.BitDepth)
	}
	return nil
}

// Samples returns the number of interleaved values in frames frames.
func (f Format) Samples(frames int) int { return frames * f.Channels }

// Duration returns the playback time of frames frames.
func (f Format) Duration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// GoAudio converts f to the go-audio format descriptor.
func (f Format) GoAudio() *goaudio.Format {
	return &goaudio.Format{
		NumChannels: f.Channels,
		SampleRate:  f.SampleRate,
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz %dch %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}
