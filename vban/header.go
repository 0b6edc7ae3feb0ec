package vban

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Header is the fixed 28-byte VBAN header shared by every sub-protocol.
// Bytes 4-7 (FormatSR/FormatNbs/FormatNbc/FormatBit) are interpreted
// differently depending on SubProtocol(); see audio.go, text.go, serial.go
// and service.go for the typed views over those four bytes.
type Header struct {
	FormatSR   uint8
	FormatNbs  uint8
	FormatNbc  uint8
	FormatBit  uint8
	StreamName [MaxStreamNameLen]byte
	Framecount uint32
}

// NewHeader builds a header for the given sub-protocol and stream name, with
// all other format bytes and the framecount zeroed.
func NewHeader(sp SubProtocol, streamName string) Header {
	h := Header{FormatSR: uint8(sp)}
	h.SetStreamName(streamName)
	return h
}

// SubProtocol returns the sub-protocol selector from the high 3 bits of byte 4.
func (h *Header) SubProtocol() SubProtocol {
	return SubProtocol(h.FormatSR & subProtocolMask)
}

// SetSubProtocol overwrites the sub-protocol selector bits of byte 4, leaving
// the low 5 bits (the SR/baud index) untouched.
func (h *Header) SetSubProtocol(sp SubProtocol) {
	h.FormatSR = (h.FormatSR & srIndexMask) | uint8(sp)
}

// SRIndex returns the low 5 bits of byte 4 (sample-rate or baud-rate index).
func (h *Header) SRIndex() SRIndex {
	return SRIndex(h.FormatSR & srIndexMask)
}

// SetSRIndex overwrites the low 5 bits of byte 4, leaving the sub-protocol untouched.
func (h *Header) SetSRIndex(sri SRIndex) {
	h.FormatSR = (h.FormatSR & subProtocolMask) | (uint8(sri) & srIndexMask)
}

// GetStreamName returns the stream name, decoded as UTF-8 up to the first NUL
// byte (or all 16 bytes if unterminated). Invalid UTF-8 falls back to a
// latin-1 decode (§7: "Invalid UTF-8 in streamname ... fall back to
// latin-1 decoding") so the decoder never errors on a malformed streamname.
func (h *Header) GetStreamName() string {
	n := bytes.IndexByte(h.StreamName[:], 0)
	if n == -1 {
		n = MaxStreamNameLen
	}
	raw := h.StreamName[:n]
	if utf8.Valid(raw) {
		return string(raw)
	}
	return latin1Decode(raw)
}

func latin1Decode(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// SetStreamName truncates name to 16 bytes on encode (spec.md invariant 4)
// and NUL-pads the remainder of the field.
func (h *Header) SetStreamName(name string) {
	var buf [MaxStreamNameLen]byte
	copy(buf[:], name)
	h.StreamName = buf
}

// MarshalBinary encodes the header to exactly HeaderSize bytes.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, HeaderMagic[:]...)
	buf = append(buf, h.FormatSR, h.FormatNbs, h.FormatNbc, h.FormatBit)
	buf = append(buf, h.StreamName[:]...)
	var fc [4]byte
	byteOrder.PutUint32(fc[:], h.Framecount)
	buf = append(buf, fc[:]...)
	if len(buf) != HeaderSize {
		return nil, fmt.Errorf("vban: internal error: marshaled header is %d bytes, want %d", len(buf), HeaderSize)
	}
	return buf, nil
}

// UnmarshalBinary decodes the first HeaderSize bytes of data into h.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return newHeaderError(HeaderTooShort, fmt.Sprintf("vban: header too short: got %d bytes, want %d", len(data), HeaderSize))
	}
	if !bytes.Equal(data[0:4], HeaderMagic[:]) {
		return newHeaderError(HeaderBadMagic, fmt.Sprintf("vban: bad magic: got %q", data[0:4]))
	}
	h.FormatSR = data[4]
	h.FormatNbs = data[5]
	h.FormatNbc = data[6]
	h.FormatBit = data[7]
	copy(h.StreamName[:], data[8:24])
	h.Framecount = byteOrder.Uint32(data[24:28])
	return nil
}
