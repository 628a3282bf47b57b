// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// It uses the github.com/go-audio/wav library for RIFF chunk handling.
//
// # Supported Formats
//
//   - integer PCM, 8, 16, 24 and 32-bit
//   - any channel count up to audio.MaxChannels
//   - any sample rate
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The decoder returns an audio.Source that provides samples as float32
// values in the range [-1.0, 1.0].
//
// # Writing WAV Files
//
// A Writer appends audio.Buffers as they arrive, which is how tapped audio
// is recorded:
//
//	file, _ := os.Create("output.wav")
//	w, _ := wav.NewWriter(file, buf.Format())
//	_ = w.Write(buf)
//	_ = w.Close()
package wav
