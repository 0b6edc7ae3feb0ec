// Package capture implements the audio capture engine (C9): the reverse of
// playback. The device delivers PCM from a sound card in
// framebuffer_size-frame chunks, and the device callback itself stamps and
// sends each chunk as its own VBAN audio packet (there is no separate
// network consumer).
package capture

import "github.com/wmbest2/govban/vban"

// Format describes the PCM format the input device is configured for.
type Format struct {
	SampleRate    uint32
	Channels      int
	BitResolution vban.BitResolution
}

// BytesPerFrame returns channels * byte_width(bit_resolution).
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitResolution.ByteWidth()
}

// Callback is invoked by the device on its own audio thread with exactly
// frameCount frames worth of captured PCM.
type Callback func(data []byte, frameCount int)

// Device is the external audio-input collaborator this engine drives. A
// concrete adapter (PortAudioDevice) implements it over a real sound card;
// tests use an in-memory fake.
type Device interface {
	// Open configures the device for format, with framesPerBuffer frames
	// per callback invocation, and registers cb as the push callback.
	Open(format Format, framesPerBuffer int, cb Callback) error
	Start() error
	Stop() error
	Close() error
}
