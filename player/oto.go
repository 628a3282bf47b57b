// SPDX-License-Identifier: EPL-2.0

package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/utils"
)

// OtoOutput plays audio on the default device through oto. Writes block
// until the device pipe accepts them, which paces a player in real time.
//
// oto allows a single context per process, so an OtoOutput keeps the
// format it was first opened with.
type OtoOutput struct {
	log *slog.Logger

	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	format     audio.Format
	ready      bool

	volume atomic.Int32
	muted  atomic.Bool

	// render goroutine scratch
	scaled  []float32
	samples []int16
	bytes   []byte
}

// NewOto creates an unopened device output at full volume. A nil logger
// discards log output.
func NewOto(logger *slog.Logger) *OtoOutput {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	o := &OtoOutput{log: logger}
	o.volume.Store(100)

	return o
}

func (o *OtoOutput) Open(format audio.Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		if o.format != format {
			o.log.Warn("format change ignored by device output",
				slog.String("from", o.format.String()),
				slog.String("to", format.String()))
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.format = format

	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()

	o.ready = true

	o.log.Info("audio output initialized",
		slog.Int("sample_rate", format.SampleRate),
		slog.Int("channels", format.Channels))

	return nil
}

// Write converts samples to 16-bit PCM after volume and mute and feeds
// them to the device. It blocks until the pipe has taken them. Write is
// meant to be called from one render goroutine at a time.
func (o *OtoOutput) Write(samples []float32) error {
	o.mu.Lock()
	pw := o.pipeWriter
	ready := o.ready
	o.mu.Unlock()

	if !ready || pw == nil {
		return ErrOutputNotOpen
	}

	o.scaled = applyVolume(o.scaled, samples, int(o.volume.Load()), o.muted.Load())
	o.samples = utils.Float32ToInt16Slice(o.samples, o.scaled)

	if cap(o.bytes) < len(o.samples)*2 {
		o.bytes = make([]byte, len(o.samples)*2)
	}
	out := o.bytes[:len(o.samples)*2]
	for i, sample := range o.samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}

	// Close unblocks a pending write by closing the pipe.
	if _, err := pw.Write(out); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			o.log.Warn("suspending audio context", slog.Any("error", err))
		}
	}
	o.ready = false

	return nil
}

// SetVolume sets the volume in percent, clamped to 0-100.
func (o *OtoOutput) SetVolume(volume int) {
	o.volume.Store(int32(clampVolume(volume)))
}

func (o *OtoOutput) Volume() int { return int(o.volume.Load()) }

func (o *OtoOutput) SetMuted(muted bool) { o.muted.Store(muted) }

func (o *OtoOutput) Muted() bool { return o.muted.Load() }
