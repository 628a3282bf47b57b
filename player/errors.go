// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	ErrClosed            = errors.New("player is closed")
	ErrNoTrack           = errors.New("no track loaded")
	ErrTrackNotLoaded    = errors.New("track is not loaded in this player")
	ErrUnsupportedFormat = errors.New("unsupported render format")
	ErrFormatChanged     = errors.New("render format changed")
	ErrTrackReplaced     = errors.New("track was replaced")
	ErrStopped           = errors.New("playback stopped")
	ErrOutputNotOpen     = errors.New("output not initialized")
)
