package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/stream"
)

type recordingSender struct {
	mu   sync.Mutex
	sent [][]byte
}

func (s *recordingSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte(nil), data...)
	s.sent = append(s.sent, cp)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) first() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[0]
}

// fakeDevice drives the capture callback on a ticker, simulating a sound
// card pushing framesPerBuffer frames of silence at each tick.
type fakeDevice struct {
	mu              sync.Mutex
	opened, started int
	closed          bool
	format          Format
	framesPerBuffer int
	cb              Callback
	stopCh          chan struct{}
}

func (d *fakeDevice) Open(format Format, framesPerBuffer int, cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened++
	d.format = format
	d.framesPerBuffer = framesPerBuffer
	d.cb = cb
	d.stopCh = make(chan struct{})
	return nil
}

func (d *fakeDevice) Start() error {
	d.mu.Lock()
	d.started++
	stopCh := d.stopCh
	cb := d.cb
	frames := d.framesPerBuffer
	bpf := d.format.BytesPerFrame()
	d.mu.Unlock()

	go func() {
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				cb(make([]byte, frames*bpf), frames)
			}
		}
	}()
	return nil
}

func (d *fakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopCh != nil {
		select {
		case <-d.stopCh:
		default:
			close(d.stopCh)
		}
	}
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func TestEngineSendsAudioPacketsFromDevice(t *testing.T) {
	sender := &recordingSender{}
	out := stream.NewOutgoingStream("capture", sender)
	dev := &fakeDevice{}
	format := Format{SampleRate: 48000, Channels: 2, BitResolution: vban.BitResolutionInt16}
	eng := NewEngine(out, dev, format, 64, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	require.Eventually(t, func() bool { return sender.count() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}

	dev.mu.Lock()
	assert.Equal(t, 1, dev.opened)
	assert.Equal(t, 1, dev.started)
	assert.True(t, dev.closed)
	dev.mu.Unlock()

	raw := sender.first()
	var h vban.Header
	require.NoError(t, h.UnmarshalBinary(raw[:28]))
	assert.Equal(t, vban.ProtocolAudio, h.SubProtocol())
	af := h.AudioFormat()
	assert.Equal(t, 2, af.Channels)
	assert.Equal(t, uint32(1), h.Framecount)
	assert.Equal(t, "capture", h.GetStreamName())
}

func TestEngineFramecountIncreasesAcrossPackets(t *testing.T) {
	sender := &recordingSender{}
	out := stream.NewOutgoingStream("capture", sender)
	dev := &fakeDevice{}
	format := Format{SampleRate: 44100, Channels: 1, BitResolution: vban.BitResolutionInt16}
	eng := NewEngine(out, dev, format, 32, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	require.Eventually(t, func() bool { return sender.count() >= 3 }, time.Second, 5*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	var last uint32
	for i, raw := range sender.sent {
		var h vban.Header
		require.NoError(t, h.UnmarshalBinary(raw[:28]))
		if i > 0 {
			assert.Greater(t, h.Framecount, last)
		}
		last = h.Framecount
	}
}
