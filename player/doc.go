// SPDX-License-Identifier: EPL-2.0

// Package player is a minimal media player: it renders the decoded audio
// of one loaded track in fixed-size chunks and hands every chunk first to
// the processors installed on its render path, then to an Output.
//
//	p := player.New(player.Config{Output: player.NewOto(logger)})
//	defer p.Close()
//
//	track, _ := media.Open("song.ogg", nil)
//	_ = p.Load(track)
//	_ = p.Play()
//	go p.Run(ctx)
//
// Installed processors form an immutable slice that is swapped on every
// install and removal, so the render goroutine never waits on installers.
// Processors lose their installation when the track is replaced, when
// playback stops, when the player closes, when the render format changes
// and when the track fails to decode. Each of those reaches the processor
// once through Fail.
package player
