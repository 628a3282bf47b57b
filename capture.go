// SPDX-License-Identifier: EPL-2.0

package audtap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/audtap/audio"
	"github.com/ik5/audtap/media"
	"github.com/ik5/audtap/player"
	"github.com/ik5/audtap/sink"
	"github.com/ik5/audtap/tap"
)

// CaptureOptions tunes Capture. The zero value is usable.
type CaptureOptions struct {
	// FrameSize is the number of frames per rendered chunk.
	FrameSize int
	Logger    *slog.Logger
}

// Capture renders track from start to end without a playback device and
// taps every chunk into dst. It returns the session statistics and the
// first failure: an attach error, a render failure or ctx's error.
//
// The track is not closed.
func Capture(ctx context.Context, track *media.Track, dst tap.Sink, opts CaptureOptions) (tap.Stats, error) {
	p := player.New(player.Config{
		FrameSize: opts.FrameSize,
		Output:    player.Discard,
		Logger:    opts.Logger,
	})
	defer p.Close()

	if err := p.Load(track); err != nil {
		return tap.Stats{}, fmt.Errorf("loading track: %w", err)
	}

	var renderErr error
	session, err := tap.New(track, p,
		tap.WithLogger(opts.Logger),
		tap.WithSink(tap.SinkFuncs{
			OnBuffer: dst.BufferProduced,
			OnError: func(s *tap.Session, err error) {
				renderErr = err
				dst.ErrorOccurred(s, err)
			},
		}),
	)
	if err != nil {
		return tap.Stats{}, err
	}
	if err := session.Attach(); err != nil {
		return session.Stats(), err
	}
	defer session.Detach()

	for {
		if err := ctx.Err(); err != nil {
			return session.Stats(), err
		}

		// the player may fail the tap and keep rendering
		err := p.RenderChunk()
		if renderErr != nil {
			return session.Stats(), renderErr
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return session.Stats(), nil
		default:
			return session.Stats(), err
		}
	}
}

// CaptureMono16 renders track and returns it as mono 16-bit PCM at
// targetRate, using cubic resampling and channel averaging.
func CaptureMono16(ctx context.Context, track *media.Track, targetRate int) ([]int16, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidSampleRate, targetRate)
	}

	// Estimate: one second of output to start with
	pcm := make([]int16, 0, targetRate)
	framer := sink.NewFramer(targetRate, mono16Frame, func(frame []int16) {
		pcm = append(pcm, frame...)
	})

	if _, err := Capture(ctx, track, framer, CaptureOptions{}); err != nil {
		return nil, err
	}
	framer.Drain()

	return pcm, nil
}

// mono16Frame is the framer frame size CaptureMono16 collects in.
const mono16Frame = 4096
