// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/audtap/audio"
)

var stereo = audio.Format{Channels: 2, SampleRate: 48000, BitDepth: 16}

func mustBuffer(t *testing.T, format audio.Format, seq uint64, samples []float32) *audio.Buffer {
	t.Helper()

	buf, err := audio.NewBuffer(format, seq, 0, samples)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	return buf
}

func TestMeter(t *testing.T) {
	t.Parallel()

	m := NewMeter()
	if got := m.Levels(); got.Chunks != 0 || len(got.RMS) != 0 {
		t.Fatalf("fresh meter Levels() = %+v", got)
	}

	// left is a constant 0.5, right alternates between 1 and -1
	samples := []float32{0.5, 1, 0.5, -1, 0.5, 1, 0.5, -1}
	m.BufferProduced(nil, mustBuffer(t, stereo, 0, samples))
	m.BufferProduced(nil, mustBuffer(t, stereo, 1, samples))

	got := m.Levels()
	if got.Chunks != 2 || got.Frames != 8 {
		t.Errorf("Chunks=%d Frames=%d, want 2 and 8", got.Chunks, got.Frames)
	}
	if got.Format != stereo {
		t.Errorf("Format = %v", got.Format)
	}
	want := []struct{ rms, peak float64 }{{0.5, 0.5}, {1, 1}}
	for ch, w := range want {
		if math.Abs(got.RMS[ch]-w.rms) > 1e-6 || got.Peak[ch] != w.peak {
			t.Errorf("channel %d: rms=%v peak=%v, want %v and %v", ch, got.RMS[ch], got.Peak[ch], w.rms, w.peak)
		}
	}

	if m.Err() != nil {
		t.Errorf("Err() = %v before any failure", m.Err())
	}
	boom := errors.New("boom")
	m.ErrorOccurred(nil, boom)
	if !errors.Is(m.Err(), boom) {
		t.Errorf("Err() = %v, want %v", m.Err(), boom)
	}
}

func TestDBFS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level float64
		want  float64
	}{
		{1, 0},
		{0.5, -6.0206},
		{0.1, -20},
	}
	for _, tt := range tests {
		if got := DBFS(tt.level); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("DBFS(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
	if !math.IsInf(DBFS(0), -1) {
		t.Error("DBFS(0) is not -Inf")
	}
}

func TestScope(t *testing.T) {
	t.Parallel()

	s := NewScope(4)
	if got := s.Samples(10); len(got) != 0 {
		t.Fatalf("empty scope Samples() = %v", got)
	}

	// mono mix of each frame: 0.1, 0.2, 0.3
	s.BufferProduced(nil, mustBuffer(t, stereo, 0, []float32{0, 0.2, 0.2, 0.2, 0.3, 0.3}))
	got := s.Samples(10)
	if len(got) != 3 {
		t.Fatalf("Samples() = %v, want 3 values", got)
	}

	mono := audio.Format{Channels: 1, SampleRate: 48000, BitDepth: 16}
	s.BufferProduced(nil, mustBuffer(t, mono, 1, []float32{0.4, 0.5, 0.6}))

	got = s.Samples(4)
	want := []float32{0.3, 0.4, 0.5, 0.6}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("Samples()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := s.Samples(2); len(got) != 2 || got[1] != 0.6 {
		t.Errorf("Samples(2) = %v", got)
	}
}

func TestQueue(t *testing.T) {
	t.Parallel()

	q := NewQueue(2)
	samples := []float32{0.1, 0.2}

	for seq := range 3 {
		q.BufferProduced(nil, mustBuffer(t, stereo, uint64(seq), samples))
	}
	samples[0] = 0.9 // the queue holds copies

	if q.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", q.Dropped())
	}

	boom := errors.New("boom")
	q.ErrorOccurred(nil, boom)
	if !errors.Is(q.Err(), boom) {
		t.Errorf("Err() = %v, want %v", q.Err(), boom)
	}

	for seq := range 2 {
		item := <-q.C()
		if item.Err != nil || item.Buffer == nil {
			t.Fatalf("item %d = %+v", seq, item)
		}
		if item.Buffer.Sequence() != uint64(seq) {
			t.Errorf("item %d has sequence %d", seq, item.Buffer.Sequence())
		}
		if item.Buffer.Samples()[0] != 0.1 {
			t.Errorf("item %d was not copied", seq)
		}
	}

	q.ErrorOccurred(nil, boom)
	if item := <-q.C(); !errors.Is(item.Err, boom) {
		t.Errorf("error item = %+v", item)
	}
}

func TestFramer(t *testing.T) {
	t.Parallel()

	var frames [][]int16
	f := NewFramer(8000, 160, func(frame []int16) {
		frames = append(frames, append([]int16(nil), frame...))
	})

	// 48kHz stereo to 8kHz mono: 960 frames in, 160 out
	format := audio.Format{Channels: 2, SampleRate: 48000, BitDepth: 16}
	samples := make([]float32, 2*960)
	for i := range samples {
		samples[i] = 0.5
	}

	for seq := range 3 {
		f.BufferProduced(nil, mustBuffer(t, format, uint64(seq), samples))
	}

	if len(frames) < 2 {
		t.Fatalf("got %d frames after 3 chunks, want at least 2", len(frames))
	}
	for i, fr := range frames {
		if len(fr) != 160 {
			t.Errorf("frame %d has %d samples", i, len(fr))
		}
	}
	// steady state of a constant signal
	if v := frames[1][80]; v < 16000 || v > 16400 {
		t.Errorf("frame 1 sample = %d, want about 16383", v)
	}

	before := len(frames)
	f.ErrorOccurred(nil, errors.New("done"))
	if len(frames) != before+1 {
		t.Errorf("flush emitted %d frames, want 1", len(frames)-before)
	}
	if f.Frames() != uint64(len(frames)) {
		t.Errorf("Frames() = %d, want %d", f.Frames(), len(frames))
	}
}

func TestFramer_PassThroughRate(t *testing.T) {
	t.Parallel()

	var got []int16
	f := NewFramer(16000, 4, func(frame []int16) { got = append(got, frame...) })

	mono := audio.Format{Channels: 1, SampleRate: 16000, BitDepth: 16}
	f.BufferProduced(nil, mustBuffer(t, mono, 0, []float32{0, 0.5, 1, -1, 0.5, 0.5}))

	want := []int16{0, 16383, 32767, -32767}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}

	f.Flush()
	if len(got) != 8 || got[4] != 16383 || got[6] != 0 {
		t.Errorf("after Flush got %v", got)
	}
}

func TestFramer_Drain(t *testing.T) {
	t.Parallel()

	var got []int16
	var sizes []int
	f := NewFramer(16000, 4, func(frame []int16) {
		got = append(got, frame...)
		sizes = append(sizes, len(frame))
	})

	mono := audio.Format{Channels: 1, SampleRate: 16000, BitDepth: 16}
	f.BufferProduced(nil, mustBuffer(t, mono, 0, []float32{0, 0.5, 1, -1, 0.5, -0.5}))
	f.Drain()

	if len(sizes) != 2 || sizes[0] != 4 || sizes[1] != 2 {
		t.Fatalf("frame sizes = %v, want [4 2]", sizes)
	}
	if got[4] != 16383 || got[5] != -16383 {
		t.Errorf("tail = %v, want [16383 -16383]", got[4:])
	}
	if f.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", f.Frames())
	}

	// nothing left to drain
	f.Drain()
	if len(sizes) != 2 {
		t.Errorf("second Drain emitted %v", sizes[2:])
	}
}
