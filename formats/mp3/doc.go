// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
// go-mp3 always produces 16-bit stereo, so the Source reports a 2-channel
// 16-bit audio.Format at the stream's sample rate.
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// ReadSamples fills dst completely unless the stream ends, even though the
// underlying decoder hands out data in frame-sized pieces.
package mp3
