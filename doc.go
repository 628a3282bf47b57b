// SPDX-License-Identifier: EPL-2.0

// Package audtap taps the decoded audio of a playing track and hands every
// rendered buffer to an observer without interrupting playback.
//
// The pieces live in subpackages:
//   - tap: the Session that attaches to a player's render path and the
//     Sink contract it reports to
//   - player: a small player that renders a media.Track into an output
//     device (oto) or nowhere, and accepts taps
//   - media: tracks and the render path processor contract
//   - audio: the Buffer handed to sinks, formats, resampling and mixing
//   - sink: ready made sinks (level meter, scope, WAV recorder, channel
//     queue, fixed-size frame producer)
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders
//
// # Quick Start
//
// Tap a file while it plays on the default audio device:
//
//	track, err := media.Open("song.mp3", nil)
//	defer track.Close()
//
//	p := player.New(player.Config{Output: player.NewOto(nil)})
//	defer p.Close()
//	_ = p.Load(track)
//
//	meter := sink.NewMeter()
//	s, _ := tap.New(track, p, tap.WithSink(meter))
//	if err := s.Attach(); err != nil {
//		// errors.Is(err, tap.ErrAttachmentFailed)
//	}
//	defer s.Detach()
//
//	_ = p.Play()
//	go p.Run(ctx)
//
// This package adds offline helpers on top. Capture renders a whole track
// as fast as it decodes into a sink, and CaptureMono16 returns a track as
// mono 16-bit PCM at a chosen rate:
//
//	pcm16, err := audtap.CaptureMono16(ctx, track, 8000)
//
// # Format Decoders
//
// Each format has its own decoder returning an audio.Source; media.Open
// picks one by file extension:
//
//	src, _ := wav.Decoder{}.Decode(reader)
//	src, _ := mp3.Decoder{}.Decode(reader)
//	src, _ := vorbis.Decoder{}.Decode(reader)
//	src, _ := aiff.Decoder{}.Decode(reader)
//
// # Real-time Constraints
//
// Sinks run on the player's render goroutine. A sink that blocks delays
// playback; sinks doing real work should copy the buffer and move it to
// another goroutine, as sink.Queue and sink.Recorder do.
package audtap
