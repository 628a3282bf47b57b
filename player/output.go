// SPDX-License-Identifier: EPL-2.0

package player

import (
	"github.com/ik5/audtap/audio"
)

// Output is where rendered audio goes after the taps saw it.
type Output interface {
	// Open prepares the output for format. It is called again when the
	// render format changes.
	Open(format audio.Format) error
	// Write plays interleaved samples. It may block to pace rendering.
	Write(samples []float32) error
	Close() error
}

// VolumeControl is implemented by outputs with software volume.
type VolumeControl interface {
	SetVolume(volume int)
	Volume() int
	SetMuted(muted bool)
	Muted() bool
}

// Discard drops every sample without pacing, so a player using it renders
// as fast as its source decodes.
var Discard Output = discard{}

type discard struct{}

func (discard) Open(audio.Format) error { return nil }
func (discard) Write([]float32) error   { return nil }
func (discard) Close() error            { return nil }

// applyVolume writes src scaled by volume into dst and returns it.
func applyVolume(dst, src []float32, volume int, muted bool) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]

	multiplier := float32(getVolumeMultiplier(volume, muted))
	for i, s := range src {
		dst[i] = s * multiplier
	}

	return dst
}

func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

func clampVolume(volume int) int {
	return max(0, min(volume, 100))
}
