// SPDX-License-Identifier: EPL-2.0

// Package intsource adapts go-audio integer PCM decoders to audio.Source.
package intsource

import (
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audtap/audio"
)

// Reader is the part of the go-audio wav and aiff decoders a Source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source wraps a go-audio decoder to implement audio.Source.
type Source struct {
	dec    Reader
	format audio.Format
	closer io.Closer
	intBuf *goaudio.IntBuffer
	eof    bool
	// bias is subtracted from every decoded sample before scaling.
	bias int
}

// Option configures a Source.
type Option func(*Source)

// Unsigned8 marks 8-bit samples as unsigned with 128 as silence, as WAV
// stores them. It has no effect at other bit depths.
func Unsigned8() Option {
	return func(s *Source) {
		if s.format.BitDepth == 8 {
			s.bias = 128
		}
	}
}

// New returns a Source reading from dec. closer may be nil.
func New(dec Reader, format audio.Format, closer io.Closer, opts ...Option) *Source {
	s := &Source{
		dec:    dec,
		format: format,
		closer: closer,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Source) Format() audio.Format { return s.format }

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.eof {
		return 0, io.EOF
	}

	// Resize buffer if needed
	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format.GoAudio(),
			SourceBitDepth: s.format.BitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		s.eof = true
		return 0, io.EOF
	}

	maxVal := float32(audio.FullScale(s.format.BitDepth))
	for i := 0; i < n; i++ {
		dst[i] = float32(s.intBuf.Data[i]-s.bias) / maxVal
	}

	// go-audio reports a short read without an error at the end of the data
	if n < len(dst) && err == nil {
		s.eof = true
		return n, io.EOF
	}

	return n, err
}
