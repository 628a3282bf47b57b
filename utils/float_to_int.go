// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it by 32767, so the
// range is symmetric and never reaches math.MinInt16.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * 32767.0)
}

// Float32ToInt16Slice converts src into dst and returns dst[:len(src)].
// dst is grown when it is too short.
func Float32ToInt16Slice(dst []int16, src []float32) []int16 {
	if cap(dst) < len(src) {
		dst = make([]int16, len(src))
	}
	dst = dst[:len(src)]

	for i, v := range src {
		dst[i] = Float32ToInt16(v)
	}

	return dst
}
