// SPDX-License-Identifier: EPL-2.0

package media

import (
	"github.com/ik5/audtap/audio"
)

// Kind is the media type of a track.
type Kind int

const (
	KindAudio Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Track is one playable stream of a media item. Audio tracks carry the
// decoded Source the player renders from.
type Track struct {
	ID     string
	Kind   Kind
	Source audio.Source
}

// NewAudioTrack returns an audio track rendering from src.
func NewAudioTrack(id string, src audio.Source) *Track {
	return &Track{ID: id, Kind: KindAudio, Source: src}
}

// Format returns the current format of the track's source, or the zero
// Format when the track has none.
func (t *Track) Format() audio.Format {
	if t == nil || t.Source == nil {
		return audio.Format{}
	}
	return t.Source.Format()
}

// Playable reports whether the track can be rendered as audio.
func (t *Track) Playable() error {
	if t == nil {
		return ErrNoTrack
	}
	if t.Kind != KindAudio {
		return ErrNotAudio
	}
	if t.Source == nil {
		return ErrNoSource
	}
	return nil
}

// Close releases the track's source.
func (t *Track) Close() error {
	if t == nil || t.Source == nil {
		return nil
	}
	return t.Source.Close()
}

// Processor receives the output of a render path. A player calls both
// methods from its render goroutine; they must not block.
type Processor interface {
	// Process is called once per rendered chunk, in render order. buf is
	// only valid until Process returns.
	Process(buf *audio.Buffer)
	// Fail reports a terminal render failure. The player drops the
	// processor after calling Fail and never calls it again.
	Fail(err error)
}

// Installation is a Processor registered on a render path.
type Installation interface {
	// Remove unregisters the processor. It is safe to call more than once
	// and after the player dropped the processor.
	Remove() error
}
