package transport

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmbest2/govban/vban"
)

func TestListenerDispatchesDecodedPacket(t *testing.T) {
	var mu sync.Mutex
	var received []*vban.Packet

	dsp := DispatcherFunc(func(ctx context.Context, src *net.UDPAddr, pkt *vban.Packet) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, pkt)
		return nil
	})

	l, err := Listen(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}, nil, dsp, nil)
	require.NoError(t, err)
	defer l.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.Start(ctx)

	h := vban.NewHeader(vban.ProtocolAudio, "mic")
	require.NoError(t, h.SetAudioFormat(vban.AudioFormat{SamplesPerFrame: 1, Channels: 1, BitResolution: vban.BitResolutionInt16}))
	raw, err := vban.EncodePacket(h, []byte{1, 2})
	require.NoError(t, err)

	conn, err := net.DialUDP("udp", nil, l.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(raw)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)
}

type rejectAll struct{}

func (rejectAll) QuickReject(string) bool { return true }

func TestListenerQuickRejectSkipsDispatch(t *testing.T) {
	var calls int
	dsp := DispatcherFunc(func(ctx context.Context, src *net.UDPAddr, pkt *vban.Packet) error {
		calls++
		return nil
	})

	l, err := Listen(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}, rejectAll{}, dsp, nil)
	require.NoError(t, err)
	defer l.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.Start(ctx)

	h := vban.NewHeader(vban.ProtocolAudio, "mic")
	raw, err := vban.EncodePacket(h, []byte{0})
	require.NoError(t, err)

	conn, err := net.DialUDP("udp", nil, l.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(raw)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, calls)
}

func TestEndpointSendRoundTrip(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer serverConn.Close()

	ep, err := NewEndpoint(nil, serverConn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer ep.Close()

	require.NoError(t, ep.Send([]byte("hello")))

	buf := make([]byte, 16)
	serverConn.SetReadDeadline(time.Now().Add(time.Second))
	n, _, err := serverConn.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestEndpointPoolReusesEndpoint(t *testing.T) {
	remote := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6980}
	pool := NewEndpointPool(nil)
	e1, err := pool.Get(remote)
	require.NoError(t, err)
	e2, err := pool.Get(remote)
	require.NoError(t, err)
	assert.Same(t, e1, e2)
	require.NoError(t, pool.Close())
}
