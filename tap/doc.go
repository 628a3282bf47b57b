// SPDX-License-Identifier: EPL-2.0

// Package tap observes the decoded audio a player renders for one track
// without disturbing playback.
//
// A Session is bound to a track and a Player. Attach installs a processor
// on the player's render path; from then on every rendered chunk is
// handed to the session's Sink as an *audio.Buffer, on the render
// goroutine and in render order. A failure of the render path (track
// replaced, format change, decode error, player closed) reaches the sink
// once as a *RenderError and leaves the session detached. Detach removes
// the processor and is safe to call at any time, from any goroutine.
//
//	s, err := tap.New(track, p, tap.WithSink(tap.SinkFuncs{
//		OnBuffer: func(s *tap.Session, buf *audio.Buffer) {
//			// buf is only valid during the call
//		},
//	}))
//	if err := s.Attach(); err != nil {
//		// errors.Is(err, tap.ErrAttachmentFailed)
//	}
//	defer s.Detach()
//
// # Sinks
//
// The render goroutine waits for the sink, so a slow sink slows playback.
// Sinks that need to do real work should copy the buffer and hand it to
// another goroutine; the sink package has ready made ones.
//
// A session never owns its sink. Either clear it with ClearSink before
// the sink is discarded, or wrap it with Weak so that the session stops
// dispatching once it has been collected. Chunks rendered while no sink is
// set are dropped and counted in Stats.
package tap
