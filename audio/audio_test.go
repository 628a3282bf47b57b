// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"
)

// mockDecoder is a test decoder implementation
type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return nil, errors.New(d.name + ": not implemented")
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}

	registry.Register("wav", decoder)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}

	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	_, ok := registry.Get("nonexistent")
	if ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_ExtensionKeys(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	mp3Decoder := &mockDecoder{name: "mp3"}
	registry.Register("MP3", mp3Decoder)

	for _, key := range []string{"mp3", ".mp3", ".MP3", "Mp3"} {
		got, ok := registry.Get(key)
		if !ok || got != mp3Decoder {
			t.Errorf("Registry.Get(%q) = %v, %v, want registered decoder", key, got, ok)
		}
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{name: "wav"})
	registry.Register("ogg", &mockDecoder{name: "ogg"})
	registry.Register("aiff", &mockDecoder{name: "aiff"})

	want := []string{"aiff", "ogg", "wav"}
	if got := registry.Formats(); !slices.Equal(got, want) {
		t.Errorf("Registry.Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	done := make(chan bool)

	for i := range 10 {
		go func(id int) {
			registry.Register("fmt", &mockDecoder{name: "fmt"})
			registry.Get("fmt")
			done <- true
		}(i)
	}

	for range 10 {
		<-done
	}

	if _, ok := registry.Get("fmt"); !ok {
		t.Error("Registry.Get() failed after concurrent registration")
	}
}
