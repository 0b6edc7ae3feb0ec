package vban

// SerialStopBit enumerates the stop-bit configuration carried in byte_a bits 0-1.
type SerialStopBit uint8

const (
	SerialStopOne         SerialStopBit = 0x00
	SerialStopOnePointFive SerialStopBit = 0x01
	SerialStopTwo         SerialStopBit = 0x02
)

// SerialFormat is the typed view over header bytes 4-7 for the Serial sub-protocol.
// Serial bodies are opaque to this core (spec.md §1 Non-goals); only the
// header is decoded/encoded.
type SerialFormat struct {
	BaudIndex      SRIndex
	Channel        uint8
	StopBit        SerialStopBit
	StartBit       bool
	ParityChecking bool
	Multipart      bool
	DataFormat     uint8 // low 3 bits of byte_c
	SerialType     uint8 // high nibble of byte_c
}

const (
	serialStopBitMask  = 0x03
	serialStartBitFlag = 0x04
	serialParityFlag   = 0x08
	serialMultipartFlag = 0x80
)

// SerialFormat decodes the serial-specific fields out of a header.
func (h *Header) SerialFormat() SerialFormat {
	return SerialFormat{
		BaudIndex:      h.SRIndex(),
		Channel:        h.FormatNbc,
		StopBit:        SerialStopBit(h.FormatNbs & serialStopBitMask),
		StartBit:       h.FormatNbs&serialStartBitFlag != 0,
		ParityChecking: h.FormatNbs&serialParityFlag != 0,
		Multipart:      h.FormatNbs&serialMultipartFlag != 0,
		DataFormat:     h.FormatBit & bitResolutionMask,
		SerialType:     h.FormatBit & codecMask,
	}
}

// SetSerialFormat packs a SerialFormat into the header's format bytes and
// sets the sub-protocol to Serial.
func (h *Header) SetSerialFormat(f SerialFormat) {
	h.SetSubProtocol(ProtocolSerial)
	h.SetSRIndex(f.BaudIndex)
	h.FormatNbc = f.Channel
	nbs := uint8(f.StopBit) & serialStopBitMask
	if f.StartBit {
		nbs |= serialStartBitFlag
	}
	if f.ParityChecking {
		nbs |= serialParityFlag
	}
	if f.Multipart {
		nbs |= serialMultipartFlag
	}
	h.FormatNbs = nbs
	h.FormatBit = (f.DataFormat & bitResolutionMask) | (f.SerialType & codecMask)
}
