// Package playback implements the audio playback engine (C8): a network
// producer that writes decoded PCM into a frame ring, and a device-callback
// consumer that reads from the same ring directly under its lock (no
// cross-thread coroutine scheduling, per spec.md §9's redesign note).
package playback

import "github.com/wmbest2/govban/vban"

// Format describes the PCM format the device is currently configured for.
type Format struct {
	SampleRate    uint32
	Channels      int
	BitResolution vban.BitResolution
}

// BytesPerFrame returns channels * byte_width(bit_resolution).
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitResolution.ByteWidth()
}

// Equal reports whether f and other describe the same PCM format.
func (f Format) Equal(other Format) bool {
	return f == other
}

// Callback is invoked by the device on its own audio thread to pull the
// next chunk of PCM. It returns at least frameCount frames worth of bytes
// for the device's current format; Engine returns more (cushionFrames of
// silence) while it waits for the cushion to fill, and a device uses only
// the first frameCount frames.
type Callback func(frameCount int) []byte

// Device is the external audio-output collaborator this engine drives. A
// concrete adapter (PortAudioDevice) implements it over a real sound card;
// tests use an in-memory fake.
type Device interface {
	// Open configures the device for format, with framesPerBuffer frames
	// per callback invocation, and registers cb as the pull callback.
	Open(format Format, framesPerBuffer int, cb Callback) error
	Start() error
	Stop() error
	Close() error
}
