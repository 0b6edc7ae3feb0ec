package vban

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func exampleRTPacket() *RTPacket {
	r := &RTPacket{
		VoicemeeterType: 1,
		BufferSize:      512,
		VersionB:        5,
		VersionC:        4,
		VersionD:        2,
		VersionE:        1,
		OptionBits:      0xABCD,
		SampleRate:      48000,
		TransportBits:   1,
	}
	for i := range r.Strips {
		r.Strips[i].State = uint32(i + 1)
		r.Strips[i].SetNameStr("Strip")
		for j := range r.Strips[i].LayerGains {
			r.Strips[i].LayerGains[j] = uint16(i*10 + j)
		}
	}
	for i := range r.Buses {
		r.Buses[i].State = uint32(i + 100)
		r.Buses[i].Gain = uint16(i)
		r.Buses[i].SetNameStr("Bus")
	}
	return r
}

func TestRTPacketRoundTrip(t *testing.T) {
	r := exampleRTPacket()
	buf, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, buf, RTBodySize)

	var got RTPacket
	require.NoError(t, got.UnmarshalBinary(buf))
	assert.Equal(t, *r, got)
	assert.Equal(t, "5.4.2.1", got.Version())
	assert.Equal(t, "Strip", got.Strips[0].NameStr())
	assert.Equal(t, "Bus", got.Buses[7].NameStr())
}

func TestRTPacketOneByteShortRejected(t *testing.T) {
	r := exampleRTPacket()
	buf, err := r.MarshalBinary()
	require.NoError(t, err)

	var got RTPacket
	err = got.UnmarshalBinary(buf[:RTBodySize-1])
	require.Error(t, err)
	var berr *BodyError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, RTBodySize, berr.Wanted)
}

func TestRTPacketExtraTrailingBytesIgnored(t *testing.T) {
	r := exampleRTPacket()
	buf, err := r.MarshalBinary()
	require.NoError(t, err)
	buf = append(buf, 0xFF, 0xFF, 0xFF)

	var got RTPacket
	require.NoError(t, got.UnmarshalBinary(buf))
	assert.Equal(t, *r, got)
}

// TestRTPacketLayerGainsAreLayerMajor pins the wire layout of
// strip_layer_gains to layer-major order (all 8 strips' layer-0 gains, then
// all 8 strips' layer-1 gains, ...), matching original_source's
// rt_packets.py pack(): outer loop over layer index, inner over strips.
func TestRTPacketLayerGainsAreLayerMajor(t *testing.T) {
	r := &RTPacket{}
	for i := range r.Strips {
		for layer := range r.Strips[i].LayerGains {
			r.Strips[i].LayerGains[layer] = uint16(i*100 + layer)
		}
	}
	buf, err := r.MarshalBinary()
	require.NoError(t, err)

	layerGainsOff := 16 + rtInputLevels*2 + rtOutputLevels*2 + 4 + rtStripCount*4 + rtBusCount*4
	for layer := 0; layer < rtLayersPerStrip; layer++ {
		for i := 0; i < rtStripCount; i++ {
			off := layerGainsOff + layer*rtStripCount*2 + i*2
			got := byteOrder.Uint16(buf[off : off+2])
			assert.Equal(t, uint16(i*100+layer), got, "layer=%d strip=%d", layer, i)
		}
	}
}

func TestRTPacketRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fixture := rapid.SliceOfN(rapid.Byte(), RTBodySize, RTBodySize).Draw(t, "fixture")

		var r RTPacket
		require.NoError(t, r.UnmarshalBinary(fixture))
		out, err := r.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, fixture, out)
	})
}
