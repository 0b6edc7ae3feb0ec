package capture

import (
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"

	"github.com/wmbest2/govban/vban"
)

// PortAudioDevice is the concrete Device adapter over
// github.com/gordonklaus/portaudio, mirroring playback.PortAudioDevice for
// the input side.
type PortAudioDevice struct {
	DeviceIndex int

	stream *portaudio.Stream
	cb     Callback
	format Format
}

// NewPortAudioDevice creates a device bound to the given input device
// index (0 selects the host default).
func NewPortAudioDevice(deviceIndex int) *PortAudioDevice {
	return &PortAudioDevice{DeviceIndex: deviceIndex}
}

// Open configures and opens a PortAudio input stream for format, calling cb
// once per framesPerBuffer frames captured.
func (d *PortAudioDevice) Open(format Format, framesPerBuffer int, cb Callback) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("capture: portaudio init: %w", err)
	}
	d.cb = cb
	d.format = format

	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("capture: enumerate devices: %w", err)
	}
	if d.DeviceIndex < 0 || d.DeviceIndex >= len(devices) {
		return fmt.Errorf("capture: device index %d out of range", d.DeviceIndex)
	}

	params := portaudio.HighLatencyParameters(devices[d.DeviceIndex], nil)
	params.Input.Channels = format.Channels
	params.SampleRate = float64(format.SampleRate)
	params.FramesPerBuffer = framesPerBuffer

	switch format.BitResolution {
	case vban.BitResolutionInt16:
		s, err := portaudio.OpenStream(params, d.callbackInt16)
		if err != nil {
			return fmt.Errorf("capture: open stream: %w", err)
		}
		d.stream = s
	default:
		s, err := portaudio.OpenStream(params, d.callbackFloat32)
		if err != nil {
			return fmt.Errorf("capture: open stream: %w", err)
		}
		d.stream = s
	}
	return nil
}

func (d *PortAudioDevice) callbackInt16(in []int16) {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		out[i*2] = byte(uint16(s))
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	d.cb(out, len(in)/d.format.Channels)
}

func (d *PortAudioDevice) callbackFloat32(in []float32) {
	out := make([]byte, len(in)*4)
	for i, s := range in {
		bits := math.Float32bits(s)
		for b := 0; b < 4; b++ {
			out[i*4+b] = byte(bits >> (8 * b))
		}
	}
	d.cb(out, len(in)/d.format.Channels)
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
