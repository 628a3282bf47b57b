// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files into an
// audio.Source that a player can render and a tap can observe.
//
// # Supported Formats
//
//   - integer PCM, 8, 16, 24 and 32-bit
//   - mono and multi-channel
//   - any sample rate
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory first.
package aiff
