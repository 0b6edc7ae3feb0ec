package playback

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/ring"
	"github.com/wmbest2/govban/vban/stream"
	"github.com/wmbest2/govban/vban/vbanlog"
)

// Engine is the playback engine for one incoming audio stream. It owns no
// process-wide global audio handle (spec.md §9): the Device is created and
// torn down with the engine. Ground:
// original_source's VBANAudioPlayer (check_pyaudio/data_callback_in_thread/
// commit_data), translated from its PyAudio-callback-into-asyncio bridge to
// direct ring access from the device callback goroutine.
type Engine struct {
	incoming *stream.IncomingStream
	device   Device
	ring     *ring.Ring
	log      *slog.Logger

	format             Format
	framebufferSize    int
	maxFramebufferSize int
	cushionFrames      int
	// synced is read and written from both the network-producer goroutine
	// (syncBuffers, on format change) and the device-callback goroutine
	// (deviceCallback); spec.md §5 only guarantees the ring itself is
	// safe to share across those two, so this needs its own atomic.
	synced atomic.Bool

	// UnderflowLogProbability samples how often a buffer underflow is
	// logged (original_source's ProbabilityFilter at 0.01); 0 disables,
	// 1 logs every occurrence.
	UnderflowLogProbability float64
}

// NewEngine creates a playback engine. framebufferSize is the device's
// frames-per-callback; the ring's capacity is 4x that, matching
// original_source's max_framebuffer_size = framebuffer_size * 4.
func NewEngine(incoming *stream.IncomingStream, device Device, initial Format, framebufferSize int, log *slog.Logger) *Engine {
	if log == nil {
		log = vbanlog.Default()
	}
	maxFrames := framebufferSize * 4
	return &Engine{
		incoming:                incoming,
		device:                  device,
		ring:                    ring.New(maxFrames, initial.BytesPerFrame()),
		log:                     log,
		format:                  initial,
		framebufferSize:         framebufferSize,
		maxFramebufferSize:      maxFrames,
		cushionFrames:           framebufferSize * 2,
		UnderflowLogProbability: 0.01,
	}
}

// Run opens the device and processes incoming packets until ctx is
// cancelled, at which point the device is stopped and closed.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.device.Open(e.format, e.framebufferSize, e.deviceCallback); err != nil {
		return fmt.Errorf("playback: open device: %w", err)
	}
	if err := e.device.Start(); err != nil {
		return fmt.Errorf("playback: start device: %w", err)
	}
	defer func() {
		_ = e.device.Stop()
		_ = e.device.Close()
	}()

	for {
		pkt, err := e.incoming.GetPacket(ctx)
		if err != nil {
			return nil
		}
		if pkt.Header.SubProtocol() != vban.ProtocolAudio {
			continue
		}
		body, ok := pkt.Body.([]byte)
		if !ok {
			continue
		}

		if e.maybeReconfigure(pkt.Header) {
			e.syncBuffers()
		}
		af := pkt.Header.AudioFormat()
		if want := af.BodySize(); len(body) > want {
			body = body[:want]
		}
		e.ring.Write(body, af.SamplesPerFrame)
	}
}

// maybeReconfigure reopens the device when the incoming header's audio
// format differs from the engine's current format (spec.md §9 open
// question, resolved as: "header is audio AND (rate, channels, or
// resolution differs)"). Returns true if it reconfigured.
func (e *Engine) maybeReconfigure(h vban.Header) bool {
	if h.SubProtocol() != vban.ProtocolAudio {
		return false
	}
	af := h.AudioFormat()
	rate, _ := af.SampleRateIndex.SampleRate()
	want := Format{SampleRate: rate, Channels: af.Channels, BitResolution: af.BitResolution}
	if want.Equal(e.format) {
		return false
	}

	e.log.Info("reconfiguring playback device", "channels", want.Channels, "sample_rate", want.SampleRate)
	_ = e.device.Stop()
	_ = e.device.Close()

	e.format = want
	if err := e.device.Open(e.format, e.framebufferSize, e.deviceCallback); err != nil {
		e.log.Info("failed to reopen playback device", "error", err)
		return true
	}
	if err := e.device.Start(); err != nil {
		e.log.Info("failed to restart playback device", "error", err)
	}
	return true
}

// syncBuffers clears the ring for the current frame width and resets the
// cushion-start state: the next device callbacks return silence until
// cushionFrames have accumulated (spec.md §4.8 step 2, §8.1 scenario 5).
func (e *Engine) syncBuffers() {
	e.ring.Synchronize(e.format.BytesPerFrame())
	e.synced.Store(false)
}

// deviceCallback is invoked on the device's own thread/goroutine. It reads
// directly from the shared ring under its own lock; there is no hop back
// onto a coroutine-scheduled loop (the variant spec.md §9 explicitly
// rejects).
func (e *Engine) deviceCallback(frameCount int) []byte {
	if !e.synced.Load() {
		_, available := e.ring.Size()
		if available < e.cushionFrames {
			return e.silence(e.cushionFrames)
		}
		e.synced.Store(true)
	}

	data, available, dropped := e.ring.Read(frameCount, true)
	if dropped > 0 {
		e.log.Info("dropping frames to honor ring capacity", "dropped", dropped, "max_frames", e.maxFramebufferSize)
	}
	if available < frameCount {
		missing := frameCount - available
		if e.shouldLogUnderflow() {
			e.log.Info("playback buffer underflow", "missing_frames", missing)
		}
		return append(e.silence(missing), data...)
	}
	return data
}

// silence returns n frames of silence for the engine's current format:
// 0x80 for 8-bit unsigned PCM (the wire's zero-signal value for that
// encoding), 0x00 for every other bit resolution.
func (e *Engine) silence(frames int) []byte {
	n := frames * e.format.BytesPerFrame()
	out := make([]byte, n)
	if e.format.BitResolution == vban.BitResolutionByte8 {
		for i := range out {
			out[i] = 0x80
		}
	}
	return out
}

func (e *Engine) shouldLogUnderflow() bool {
	if e.UnderflowLogProbability >= 1 {
		return true
	}
	if e.UnderflowLogProbability <= 0 {
		return false
	}
	return rand.Float64() < e.UnderflowLogProbability
}
