// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio decoding.
//
// This package uses github.com/jfreymuth/oggvorbis. Vorbis decodes to
// floating point, so the Source reports a 32-bit audio.Format.
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
package vorbis
