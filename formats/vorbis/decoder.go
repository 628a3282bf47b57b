// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audtap/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// vorbisBitDepth is reported for decoded Vorbis, which has no integer resolution.
const vorbisBitDepth = 32

type source struct {
	dec    oggReader
	format audio.Format
}

func newSource(dec oggReader) *source {
	return &source{
		dec: dec,
		format: audio.Format{
			Channels:   dec.Channels(),
			SampleRate: dec.SampleRate(),
			BitDepth:   vorbisBitDepth,
		},
	}
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Close() error         { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	// whole frames only
	want := len(dst) - len(dst)%s.format.Channels
	if want == 0 {
		return 0, nil
	}

	// oggvorbis returns the number of values decoded, which may be short
	total := 0
	for total < want {
		n, err := s.dec.Read(dst[total:want])
		total += n
		if err != nil {
			if total == 0 {
				return 0, err
			}
			return total, err
		}
		if n == 0 {
			break
		}
	}

	return total, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src := newSource(dec)
	if err := src.format.Validate(); err != nil {
		return nil, err
	}

	return src, nil
}
