// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audtap/audio"
)

// Writer streams audio buffers into a PCM WAV file.
// The header sizes are patched on Close, so w must be seekable.
type Writer struct {
	enc    *gowav.Encoder
	format audio.Format
	frames int64
}

func NewWriter(w io.WriteSeeker, format audio.Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	return &Writer{
		enc:    gowav.NewEncoder(w, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM),
		format: format,
	}, nil
}

func (w *Writer) Format() audio.Format { return w.format }

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Write appends buf. Its channel count and sample rate must match the writer.
func (w *Writer) Write(buf *audio.Buffer) error {
	f := buf.Format()
	if f.Channels != w.format.Channels || f.SampleRate != w.format.SampleRate {
		return fmt.Errorf("%w: got %v, want %v", ErrFormatMismatch, f, w.format)
	}

	return w.WriteSamples(buf.Samples())
}

// WriteSamples appends interleaved float32 samples.
func (w *Writer) WriteSamples(samples []float32) error {
	buf, err := audio.NewBuffer(w.format, 0, 0, samples)
	if err != nil {
		return err
	}

	ib := buf.IntBuffer()
	// 8-bit WAV is unsigned with 128 as silence
	if w.format.BitDepth == 8 {
		for i := range ib.Data {
			ib.Data[i] += 128
		}
	}

	if err := w.enc.Write(ib); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	w.frames += int64(buf.FrameCount())

	return nil
}

// Close finalizes the WAV header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}
	return nil
}
