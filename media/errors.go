// SPDX-License-Identifier: EPL-2.0

package media

import "errors"

var (
	ErrNoTrack          = errors.New("no track")
	ErrNotAudio         = errors.New("track has no audio")
	ErrNoSource         = errors.New("track has no decoded source")
	ErrUnknownExtension = errors.New("no decoder for file extension")
)
