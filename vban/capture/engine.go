package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/stream"
	"github.com/wmbest2/govban/vban/vbanlog"
)

// Engine is the capture engine for one outgoing audio stream: it owns the
// input Device and, on every device callback, stamps and ships the pulled
// PCM as one VBAN audio packet over an OutgoingStream. Ground:
// original_source's VBANAudioSender (read_callback/send loop), translated
// from its PyAudio callback into a direct synchronous send from the device
// callback (no queue hop: a dropped or blocked send here would itself be
// audible as a capture glitch, so spec.md §9 keeps capture's network write
// on the device thread rather than bouncing through vban/queue).
type Engine struct {
	outgoing *stream.OutgoingStream
	device   Device
	log      *slog.Logger

	format          Format
	framesPerBuffer int
}

// NewEngine creates a capture engine that sends format-shaped audio packets
// over outgoing, pulling framesPerBuffer frames per device callback.
func NewEngine(outgoing *stream.OutgoingStream, device Device, format Format, framesPerBuffer int, log *slog.Logger) *Engine {
	if log == nil {
		log = vbanlog.Default()
	}
	return &Engine{
		outgoing:        outgoing,
		device:          device,
		log:             log,
		format:          format,
		framesPerBuffer: framesPerBuffer,
	}
}

// Run opens and starts the device, blocking until ctx is cancelled, then
// stops and closes it.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.device.Open(e.format, e.framesPerBuffer, e.deviceCallback); err != nil {
		return fmt.Errorf("capture: open device: %w", err)
	}
	if err := e.device.Start(); err != nil {
		return fmt.Errorf("capture: start device: %w", err)
	}
	<-ctx.Done()
	_ = e.device.Stop()
	_ = e.device.Close()
	return nil
}

// deviceCallback runs on the device's own thread. It builds one audio
// packet per callback and sends it synchronously; a send error is logged at
// debug level and the frame is dropped. It is not retried and Run does not
// report it, since UDP capture has no redelivery story (spec.md §4.4).
func (e *Engine) deviceCallback(data []byte, frameCount int) {
	sri, ok := vban.SRIndexForRate(e.format.SampleRate)
	if !ok {
		e.log.Info("capture: unsupported sample rate, dropping frame", "sample_rate", e.format.SampleRate)
		return
	}

	h := vban.NewHeader(vban.ProtocolAudio, "")
	if err := h.SetAudioFormat(vban.AudioFormat{
		SampleRateIndex: sri,
		SamplesPerFrame: frameCount,
		Channels:        e.format.Channels,
		BitResolution:   e.format.BitResolution,
	}); err != nil {
		e.log.Info("capture: invalid audio format, dropping frame", "error", err)
		return
	}

	if err := e.outgoing.Send(h, data); err != nil {
		e.log.Debug("capture: send failed, dropping frame", "error", err)
	}
}
