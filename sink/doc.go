// SPDX-License-Identifier: EPL-2.0

// Package sink has ready made tap.Sink implementations.
//
// Meter and Scope keep a small amount of state that other goroutines
// read. Queue and Recorder copy each buffer and hand it to another
// goroutine, so the render goroutine is never held up for longer than a
// copy; when they fall behind they drop buffers and count them. Framer
// reshapes audio into fixed-size mono frames for speech pipelines.
//
// Every sink here may serve several sessions at once.
package sink
