// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer folds interleaved multi-channel samples into mono by averaging.
type MonoMixer struct {
	channels int
}

func NewMonoMixer(channels int) *MonoMixer {
	return &MonoMixer{channels: channels}
}

func (m *MonoMixer) Channels() int { return m.channels }

// Mix appends one averaged sample per frame of src to dst and returns it.
func (m *MonoMixer) Mix(dst, src []float32) ([]float32, error) {
	if len(src)%m.channels != 0 {
		return dst, fmt.Errorf("%w: %d samples, %d channels", ErrPartialFrame, len(src), m.channels)
	}

	frames := len(src) / m.channels

	switch m.channels {
	case 1:
		return append(dst, src...), nil
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1
			dst = append(dst, (src[idx]+src[idx+1])*0.5)
		}
	default:
		invChannels := float32(1.0) / float32(m.channels)
		for f := range frames {
			var sum float32
			base := f * m.channels
			for c := range m.channels {
				sum += src[base+c]
			}
			dst = append(dst, sum*invChannels)
		}
	}

	return dst, nil
}
