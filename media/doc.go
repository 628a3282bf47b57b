// SPDX-License-Identifier: EPL-2.0

// Package media describes tracks and the contract between a render path
// and the processors installed on it.
//
// A Track is what a tap session is bound to. Audio tracks wrap the
// audio.Source a player renders from; video tracks exist so that hosts can
// hand any track of an item to a session and get a clean attach failure.
//
//	track, err := media.Open("song.mp3", nil)
//	defer track.Close()
//
// A Processor is called by the player's render goroutine for every chunk
// and once on terminal failure. An Installation removes it again.
package media
