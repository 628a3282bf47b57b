// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	offset     int
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	// one packet of at most 4 values per call
	n := copy(buf[:min(len(buf), 4)], m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func TestSource_Format(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2})
	f := src.Format()

	if f.Channels != 2 || f.SampleRate != 48000 || f.BitDepth != vorbisBitDepth {
		t.Errorf("Format() = %v", f)
	}
}

func TestSource_ReadSamplesAcrossPackets(t *testing.T) {
	t.Parallel()

	samples := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3, 0.4, -0.4, 0.5, -0.5}
	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: samples})

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if err != nil || n != 8 {
		t.Fatalf("ReadSamples() = %d, %v, want 8, nil", n, err)
	}
	for i := range 8 {
		if dst[i] != samples[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], samples[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 2 || err != io.EOF {
		t.Errorf("ReadSamples() tail = %d, %v, want 2, EOF", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, EOF", n, err)
	}
}

func TestSource_PartialFrameDst(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: []float32{1, 1, 1, 1}})

	n, err := src.ReadSamples(make([]float32, 3))
	if err != nil || n != 2 {
		t.Errorf("ReadSamples() = %d, %v, want 2, nil", n, err)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad packet")
	src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: 1, err: boom})

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not Ogg Vorbis data"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}
