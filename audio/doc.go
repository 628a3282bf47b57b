// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level types shared by the player and the tap.
//
// # Source Interface
//
// A Source is the decoded PCM supply behind a media track:
//
//	type Source interface {
//	    Format() Format
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Format decoders in the formats subpackages return Sources, and the
// player pulls from them one render chunk at a time.
//
// # Buffers
//
// A Buffer is the envelope handed to tap observers for every rendered
// chunk. It carries the Format, the frame count, the render sequence
// number and the track offset of its first frame:
//
//	fmt.Println(buf.Format(), buf.FrameCount(), buf.Sequence())
//
// The samples of a delivered Buffer are borrowed from the renderer and
// are valid only during the call that delivered them. Retain with Copy,
// or convert to go-audio buffers with Float32Buffer and IntBuffer.
//
// # Sample Format
//
// Audio samples are represented as interleaved float32 in the range [-1.0, 1.0].
// Format.BitDepth records the resolution of the source they were decoded from.
//
// # Conversion
//
// Resampler and MonoMixer are push-style converters for consumers that
// receive buffers in arbitrary chunk sizes:
//
//	r := audio.NewResampler(2, 44100, 16000)
//	m := audio.NewMonoMixer(2)
//	resampled, _ := r.Process(nil, buf.Samples())
//	mono, _ := m.Mix(nil, resampled)
//
// # Format Registry
//
// The registry maps format keys (file extensions) to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get(".wav")
package audio
