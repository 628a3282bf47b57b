// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/audtap/utils"
)

// Resampler converts interleaved samples pushed in arbitrary chunk sizes
// from one sample rate to another using cubic interpolation.
// Preserves channel count. A one-pole low-pass filter is applied to the
// input when downsampling.
type Resampler struct {
	channels int
	srcRate  int
	dstRate  int
	ratio    float64 // srcRate / dstRate - how many source frames per output frame

	// Last 4 source frames: frames[1] and frames[2] bound the interval
	// being interpolated, frames[0] and frames[3] are its neighbours.
	frames [4][]float32
	seen   int

	// Position within the current interval, in source frames.
	pos float64

	useFilter   bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(channels, srcRate, dstRate int) *Resampler {
	ratio := float64(srcRate) / float64(dstRate)

	r := &Resampler{
		channels:    channels,
		srcRate:     srcRate,
		dstRate:     dstRate,
		ratio:       ratio,
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SourceRate() int { return r.srcRate }
func (r *Resampler) TargetRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

// Process appends the resampled form of src to dst and returns it.
// src length must be a multiple of the channel count.
func (r *Resampler) Process(dst, src []float32) ([]float32, error) {
	if len(src)%r.channels != 0 {
		return dst, fmt.Errorf("%w: %d samples, %d channels", ErrPartialFrame, len(src), r.channels)
	}

	if r.srcRate == r.dstRate {
		return append(dst, src...), nil
	}

	for f := 0; f < len(src); f += r.channels {
		dst = r.push(dst, src[f:f+r.channels])
	}

	return dst, nil
}

// Flush emits the interval that is still waiting for a look-ahead frame
// by repeating the last frame. The Resampler can keep being used afterwards.
func (r *Resampler) Flush(dst []float32) []float32 {
	if r.seen < 2 || r.srcRate == r.dstRate {
		return dst
	}

	last := make([]float32, r.channels)
	copy(last, r.frames[3])

	// the repeated frame must not go through the filter twice
	filter := r.useFilter
	r.useFilter = false
	dst = r.push(dst, last)
	r.useFilter = filter

	return dst
}

// Reset drops all history.
func (r *Resampler) Reset() {
	r.seen = 0
	r.pos = 0
	clear(r.filterState)
}

func (r *Resampler) push(dst, frame []float32) []float32 {
	if r.seen == 0 {
		if r.useFilter {
			copy(r.filterState, frame)
		}
		for i := range r.frames {
			copy(r.frames[i], frame)
		}
		r.seen++
		return dst
	}

	// Shift frames: [0,1,2,3] -> [1,2,3,new]
	first := r.frames[0]
	r.frames[0], r.frames[1], r.frames[2] = r.frames[1], r.frames[2], r.frames[3]
	r.frames[3] = first
	copy(r.frames[3], frame)

	if r.useFilter {
		for c := range r.channels {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			r.frames[3][c] = r.filterAlpha*r.frames[3][c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = r.frames[3][c]
		}
	}

	r.seen++
	if r.seen < 3 {
		return dst
	}

	for r.pos < 1.0 {
		alpha := float32(r.pos)
		for c := range r.channels {
			dst = append(dst, utils.CubicInterpolate(
				r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha))
		}
		r.pos += r.ratio
	}
	r.pos -= 1.0

	return dst
}
