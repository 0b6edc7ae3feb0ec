package vban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAudioFormatRoundTrip(t *testing.T) {
	h := NewHeader(ProtocolAudio, "mic")
	want := AudioFormat{
		SampleRateIndex: 16, // 44100 Hz
		SamplesPerFrame: 256,
		Channels:        8,
		BitResolution:   BitResolutionFloat32,
		Codec:           CodecPCM,
	}
	require.NoError(t, h.SetAudioFormat(want))
	got := h.AudioFormat()
	assert.Equal(t, want, got)

	rate, ok := got.SampleRateIndex.SampleRate()
	require.True(t, ok)
	assert.Equal(t, uint32(44100), rate)
}

func TestAudioFormatRejectsOutOfRange(t *testing.T) {
	h := NewHeader(ProtocolAudio, "mic")
	err := h.SetAudioFormat(AudioFormat{SamplesPerFrame: 0, Channels: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPacket)

	err = h.SetAudioFormat(AudioFormat{SamplesPerFrame: 1, Channels: 257})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPacket)
}

func TestAudioBodySize(t *testing.T) {
	f := AudioFormat{SamplesPerFrame: 128, Channels: 2, BitResolution: BitResolutionInt16}
	assert.Equal(t, 512, f.BodySize())
}

// TestAudioFormatRoundTripProperty checks that samples/channels in [1,256]
// always survive the value-1 wire encoding exactly.
func TestAudioFormatRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		samples := rapid.IntRange(1, 256).Draw(t, "samples")
		channels := rapid.IntRange(1, 256).Draw(t, "channels")
		bit := BitResolution(rapid.IntRange(0, 7).Draw(t, "bit"))

		h := NewHeader(ProtocolAudio, "s")
		want := AudioFormat{SamplesPerFrame: samples, Channels: channels, BitResolution: bit}
		require.NoError(t, h.SetAudioFormat(want))
		got := h.AudioFormat()
		assert.Equal(t, samples, got.SamplesPerFrame)
		assert.Equal(t, channels, got.Channels)
		assert.Equal(t, bit, got.BitResolution)
	})
}
