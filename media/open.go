// SPDX-License-Identifier: EPL-2.0

package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/formats/aiff"
	"github.com/ik5/audtap/formats/mp3"
	"github.com/ik5/audtap/formats/vorbis"
	"github.com/ik5/audtap/formats/wav"
)

// DefaultRegistry returns a registry with every decoder in formats/.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})

	return reg
}

// Open decodes the file at path into an audio track, picking the decoder
// by file extension. A nil registry means DefaultRegistry. Closing the
// track closes the file.
func Open(path string, reg *audio.Registry) (*Track, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	ext := filepath.Ext(path)
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	return NewAudioTrack(filepath.Base(path), &fileSource{Source: src, file: f}), nil
}

// fileSource closes the file backing a decoded source.
type fileSource struct {
	audio.Source
	file *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.file.Close())
}
