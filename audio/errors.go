// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidChannels   = errors.New("channel count must be between 1 and 32")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidBitDepth   = errors.New("bit depth must be 8, 16, 24 or 32")
	ErrPartialFrame      = errors.New("sample count is not a whole number of frames")
)
