package vban

// TextFormat is the typed view over header bytes 4-7 for the Text sub-protocol.
type TextFormat struct {
	BaudIndex  SRIndex
	Channel    uint8
	FormatBit  uint8 // low 3 bits of byte_c
	StreamType TextStreamType
}

// TextFormat decodes the text-specific fields out of a header.
func (h *Header) TextFormat() TextFormat {
	return TextFormat{
		BaudIndex:  h.SRIndex(),
		Channel:    h.FormatNbc,
		FormatBit:  h.FormatBit & bitResolutionMask,
		StreamType: TextStreamType(h.FormatBit & codecMask),
	}
}

// SetTextFormat packs a TextFormat into the header's format bytes and sets
// the sub-protocol to Text.
func (h *Header) SetTextFormat(f TextFormat) {
	h.SetSubProtocol(ProtocolText)
	h.SetSRIndex(f.BaudIndex)
	h.FormatNbc = f.Channel
	h.FormatBit = (f.FormatBit & bitResolutionMask) | uint8(f.StreamType)
}
