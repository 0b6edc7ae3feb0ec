package vban

import "fmt"

const (
	rtStripCount     = 8
	rtBusCount       = 8
	rtInputLevels    = 34
	rtOutputLevels   = 64
	rtLayersPerStrip = 8
	rtNameLen        = 60
)

// Strip is one of the 8 Voicemeeter strip slots carried in an RTPacket.
type Strip struct {
	State      uint32
	LayerGains [rtLayersPerStrip]uint16
	Name       [rtNameLen]byte
}

// NameStr returns the strip name truncated at the first NUL.
func (s *Strip) NameStr() string { return getFixedString(s.Name[:]) }

// SetNameStr sets the strip name, NUL-padding/truncating to rtNameLen bytes.
func (s *Strip) SetNameStr(name string) { setFixedString(s.Name[:], name) }

// Bus is one of the 8 Voicemeeter bus slots carried in an RTPacket.
type Bus struct {
	State uint32
	Gain  uint16
	Name  [rtNameLen]byte
}

// NameStr returns the bus name truncated at the first NUL.
func (b *Bus) NameStr() string { return getFixedString(b.Name[:]) }

// SetNameStr sets the bus name, NUL-padding/truncating to rtNameLen bytes.
func (b *Bus) SetNameStr(name string) { setFixedString(b.Name[:], name) }

// RTPacket is the 1384-byte service RT-packet body (type 0): a full snapshot
// of a Voicemeeter mixer's strips, buses and meter levels.
type RTPacket struct {
	VoicemeeterType uint8
	Reserved        uint8
	BufferSize      uint16
	VersionB        uint8
	VersionC        uint8
	VersionD        uint8
	VersionE        uint8
	OptionBits      uint32
	SampleRate      uint32
	InputLevels     [rtInputLevels]uint16
	OutputLevels    [rtOutputLevels]uint16
	TransportBits   uint32
	Strips          [rtStripCount]Strip
	Buses           [rtBusCount]Bus
}

// Version renders the dotted version string "b.c.d.e" (wire order is the
// same order as rendered, unlike the Ping body's reversed version bytes).
func (r *RTPacket) Version() string {
	return fmt.Sprintf("%d.%d.%d.%d", r.VersionB, r.VersionC, r.VersionD, r.VersionE)
}

// MarshalBinary encodes the RTPacket to exactly RTBodySize bytes.
func (r *RTPacket) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RTBodySize)
	buf[0] = r.VoicemeeterType
	buf[1] = r.Reserved
	byteOrder.PutUint16(buf[2:4], r.BufferSize)
	buf[4], buf[5], buf[6], buf[7] = r.VersionB, r.VersionC, r.VersionD, r.VersionE
	byteOrder.PutUint32(buf[8:12], r.OptionBits)
	byteOrder.PutUint32(buf[12:16], r.SampleRate)

	off := 16
	for _, v := range r.InputLevels {
		byteOrder.PutUint16(buf[off:off+2], v)
		off += 2
	}
	for _, v := range r.OutputLevels {
		byteOrder.PutUint16(buf[off:off+2], v)
		off += 2
	}
	byteOrder.PutUint32(buf[off:off+4], r.TransportBits)
	off += 4

	stripStatesOff := off
	for i, s := range r.Strips {
		byteOrder.PutUint32(buf[stripStatesOff+i*4:stripStatesOff+i*4+4], s.State)
	}
	off = stripStatesOff + rtStripCount*4

	busStatesOff := off
	for i, b := range r.Buses {
		byteOrder.PutUint32(buf[busStatesOff+i*4:busStatesOff+i*4+4], b.State)
	}
	off = busStatesOff + rtBusCount*4

	// Layer-major: all strips' layer-0 gains, then all strips' layer-1
	// gains, etc. (original_source's rt_packets.py pack(): outer loop over
	// layer index, inner over strips).
	layerGainsOff := off
	for layer := 0; layer < rtLayersPerStrip; layer++ {
		base := layerGainsOff + layer*rtStripCount*2
		for i, s := range r.Strips {
			byteOrder.PutUint16(buf[base+i*2:base+i*2+2], s.LayerGains[layer])
		}
	}
	off = layerGainsOff + rtLayersPerStrip*rtStripCount*2

	busGainsOff := off
	for i, b := range r.Buses {
		byteOrder.PutUint16(buf[busGainsOff+i*2:busGainsOff+i*2+2], b.Gain)
	}
	off = busGainsOff + rtBusCount*2

	stripNamesOff := off
	for i, s := range r.Strips {
		copy(buf[stripNamesOff+i*rtNameLen:stripNamesOff+(i+1)*rtNameLen], s.Name[:])
	}
	off = stripNamesOff + rtStripCount*rtNameLen

	busNamesOff := off
	for i, b := range r.Buses {
		copy(buf[busNamesOff+i*rtNameLen:busNamesOff+(i+1)*rtNameLen], b.Name[:])
	}
	off = busNamesOff + rtBusCount*rtNameLen

	if off != RTBodySize {
		return nil, fmt.Errorf("vban: internal error: marshaled rtpacket is %d bytes, want %d", off, RTBodySize)
	}
	return buf, nil
}

// UnmarshalBinary decodes an RTPacket body. The input must be at least
// RTBodySize bytes (§4.1: "RTPacket with function=0 ... requires ≥1384 bytes");
// any bytes beyond RTBodySize are ignored.
func (r *RTPacket) UnmarshalBinary(data []byte) error {
	if len(data) < RTBodySize {
		return newBodyTooShort(RTBodySize, len(data))
	}
	r.VoicemeeterType = data[0]
	r.Reserved = data[1]
	r.BufferSize = byteOrder.Uint16(data[2:4])
	r.VersionB, r.VersionC, r.VersionD, r.VersionE = data[4], data[5], data[6], data[7]
	r.OptionBits = byteOrder.Uint32(data[8:12])
	r.SampleRate = byteOrder.Uint32(data[12:16])

	off := 16
	for i := range r.InputLevels {
		r.InputLevels[i] = byteOrder.Uint16(data[off : off+2])
		off += 2
	}
	for i := range r.OutputLevels {
		r.OutputLevels[i] = byteOrder.Uint16(data[off : off+2])
		off += 2
	}
	r.TransportBits = byteOrder.Uint32(data[off : off+4])
	off += 4

	stripStatesOff := off
	for i := range r.Strips {
		r.Strips[i].State = byteOrder.Uint32(data[stripStatesOff+i*4 : stripStatesOff+i*4+4])
	}
	off = stripStatesOff + rtStripCount*4

	busStatesOff := off
	for i := range r.Buses {
		r.Buses[i].State = byteOrder.Uint32(data[busStatesOff+i*4 : busStatesOff+i*4+4])
	}
	off = busStatesOff + rtBusCount*4

	// Layer-major, matching MarshalBinary: outer loop over layer index,
	// inner over strips.
	layerGainsOff := off
	for layer := 0; layer < rtLayersPerStrip; layer++ {
		base := layerGainsOff + layer*rtStripCount*2
		for i := range r.Strips {
			r.Strips[i].LayerGains[layer] = byteOrder.Uint16(data[base+i*2 : base+i*2+2])
		}
	}
	off = layerGainsOff + rtLayersPerStrip*rtStripCount*2

	busGainsOff := off
	for i := range r.Buses {
		r.Buses[i].Gain = byteOrder.Uint16(data[busGainsOff+i*2 : busGainsOff+i*2+2])
	}
	off = busGainsOff + rtBusCount*2

	stripNamesOff := off
	for i := range r.Strips {
		copy(r.Strips[i].Name[:], data[stripNamesOff+i*rtNameLen:stripNamesOff+(i+1)*rtNameLen])
	}
	off = stripNamesOff + rtStripCount*rtNameLen

	busNamesOff := off
	for i := range r.Buses {
		copy(r.Buses[i].Name[:], data[busNamesOff+i*rtNameLen:busNamesOff+(i+1)*rtNameLen])
	}

	return nil
}
