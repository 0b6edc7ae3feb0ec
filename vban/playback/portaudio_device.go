package playback

import (
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"

	"github.com/wmbest2/govban/vban"
)

// PortAudioDevice is the concrete Device adapter over
// github.com/gordonklaus/portaudio, the only portaudio-shaped dependency
// anywhere in the retrieved pack.
type PortAudioDevice struct {
	DeviceIndex int

	stream *portaudio.Stream
	cb     Callback
	format Format
}

// NewPortAudioDevice creates a device bound to the given output device
// index (0 selects the host default).
func NewPortAudioDevice(deviceIndex int) *PortAudioDevice {
	return &PortAudioDevice{DeviceIndex: deviceIndex}
}

// Open configures and opens a PortAudio output stream for format, calling
// cb once per framesPerBuffer-sized callback.
func (d *PortAudioDevice) Open(format Format, framesPerBuffer int, cb Callback) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("playback: portaudio init: %w", err)
	}
	d.cb = cb
	d.format = format

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("playback: enumerate devices: %w", err)
	}
	if d.DeviceIndex < 0 || d.DeviceIndex >= len(devices) {
		return fmt.Errorf("playback: device index %d out of range", d.DeviceIndex)
	}

	params := portaudio.HighLatencyParameters(nil, devices[d.DeviceIndex])
	params.Output.Channels = format.Channels
	params.SampleRate = float64(format.SampleRate)
	params.FramesPerBuffer = framesPerBuffer

	switch format.BitResolution {
	case vban.BitResolutionInt16:
		s, err := portaudio.OpenStream(params, d.callbackInt16)
		if err != nil {
			return fmt.Errorf("playback: open stream: %w", err)
		}
		d.stream = s
	default:
		s, err := portaudio.OpenStream(params, d.callbackFloat32)
		if err != nil {
			return fmt.Errorf("playback: open stream: %w", err)
		}
		d.stream = s
	}
	return nil
}

func (d *PortAudioDevice) callbackInt16(out []int16) {
	raw := d.cb(len(out) / d.format.Channels)
	for i := range out {
		lo, hi := raw[i*2], raw[i*2+1]
		out[i] = int16(uint16(lo) | uint16(hi)<<8)
	}
}

func (d *PortAudioDevice) callbackFloat32(out []float32) {
	raw := d.cb(len(out) / d.format.Channels)
	for i := range out {
		var bits uint32
		for b := 0; b < 4; b++ {
			bits |= uint32(raw[i*4+b]) << (8 * b)
		}
		out[i] = math.Float32frombits(bits)
	}
}

func (d *PortAudioDevice) Start() error { return d.stream.Start() }
func (d *PortAudioDevice) Stop() error  { return d.stream.Stop() }

func (d *PortAudioDevice) Close() error {
	if d.stream == nil {
		return nil
	}
	err := d.stream.Close()
	portaudio.Terminate()
	return err
}
