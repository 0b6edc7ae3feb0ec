package vban

import "encoding/binary"

// byteOrder is the wire byte order for every multi-byte VBAN field.
var byteOrder = binary.LittleEndian

// HeaderMagic is the four magic bytes 'V','B','A','N' as they appear on the wire.
var HeaderMagic = [4]byte{'V', 'B', 'A', 'N'}

// Fixed sizes from the VBAN wire format.
const (
	MaxStreamNameLen  = 16
	HeaderSize        = 28
	MaxPacketDataSize = 1436
	MaxVBANPacketSize = HeaderSize + MaxPacketDataSize
	DefaultPort       = 6980

	PingBodySize = 676
	RTBodySize   = 1384

	// ServiceStreamName is the reserved stream name used for ping request/response exchange.
	ServiceStreamName = "VBAN Service"
	// RTReplyStreamAlias is the canonical return stream name RT replies are additionally routed under.
	RTReplyStreamAlias = "Voicemeeter-RTP"
)

// SubProtocol identifies which of the four VBAN sub-protocols a packet carries.
type SubProtocol uint8

const (
	ProtocolAudio      SubProtocol = 0x00
	ProtocolSerial     SubProtocol = 0x20
	ProtocolText       SubProtocol = 0x40
	ProtocolService    SubProtocol = 0x60
	ProtocolUndefined1 SubProtocol = 0x80
	ProtocolUndefined2 SubProtocol = 0xA0
	ProtocolUndefined3 SubProtocol = 0xC0
	ProtocolUser       SubProtocol = 0xE0

	subProtocolMask uint8 = 0xE0
	srIndexMask     uint8 = 0x1F
)

func (sp SubProtocol) String() string {
	switch sp {
	case ProtocolAudio:
		return "Audio"
	case ProtocolSerial:
		return "Serial"
	case ProtocolText:
		return "Text"
	case ProtocolService:
		return "Service"
	case ProtocolUser:
		return "User"
	default:
		return "Undefined"
	}
}

// SRIndex is the 5-bit sample-rate (audio) or baud-rate (text/serial) index
// carried in the low bits of header byte 4.
type SRIndex uint8

// sampleRateTable maps SRIndex to Hz for the Audio sub-protocol (21 defined entries).
var sampleRateTable = [21]uint32{
	6000, 12000, 24000, 48000, 96000, 192000, 384000,
	8000, 16000, 32000, 64000, 128000, 256000, 512000,
	11025, 22050, 44100, 88200, 176400, 352800, 705600,
}

// baudRateTable maps SRIndex to bits-per-second for the Text/Serial sub-protocols
// (25 defined entries of a 32-entry table per spec.md §3).
var baudRateTable = [25]uint32{
	0, 110, 150, 300, 600, 1200, 2400, 4800, 9600, 14400,
	19200, 31250, 38400, 57600, 115200, 128000, 230400,
	250000, 256000, 460800, 921600, 1000000, 1500000,
	2000000, 3000000,
}

// SampleRate returns the Hz value for an audio SRIndex, and ok=false if the index is undefined.
func (sri SRIndex) SampleRate() (rate uint32, ok bool) {
	i := int(sri) & int(srIndexMask)
	if i < len(sampleRateTable) {
		return sampleRateTable[i], true
	}
	return 0, false
}

// BaudRate returns the bits-per-second value for a text/serial SRIndex, and ok=false if undefined.
func (sri SRIndex) BaudRate() (rate uint32, ok bool) {
	i := int(sri) & int(srIndexMask)
	if i < len(baudRateTable) {
		return baudRateTable[i], true
	}
	return 0, false
}

// SRIndexForRate finds the SRIndex matching an audio sample rate in Hz.
func SRIndexForRate(rate uint32) (SRIndex, bool) {
	for i, r := range sampleRateTable {
		if r == rate {
			return SRIndex(i), true
		}
	}
	return 0, false
}

// SRIndexForBaud finds the SRIndex matching a text/serial baud rate.
func SRIndexForBaud(baud uint32) (SRIndex, bool) {
	for i, r := range baudRateTable {
		if r == baud {
			return SRIndex(i), true
		}
	}
	return 0, false
}

// BitResolution is the audio sample encoding, carried in the low 3 bits of header byte 7.
type BitResolution uint8

const (
	BitResolutionByte8   BitResolution = 0x00
	BitResolutionInt16   BitResolution = 0x01
	BitResolutionInt24   BitResolution = 0x02
	BitResolutionInt32   BitResolution = 0x03
	BitResolutionFloat32 BitResolution = 0x04
	BitResolutionFloat64 BitResolution = 0x05
	BitResolutionBits12  BitResolution = 0x06
	BitResolutionBits10  BitResolution = 0x07

	bitResolutionMask uint8 = 0x07
)

// byteWidthTable gives the per-sample byte width for each of the 8 defined bit resolutions.
var byteWidthTable = [8]int{1, 2, 3, 4, 4, 8, 4, 2}

// ByteWidth returns the number of bytes one sample occupies on the wire.
func (b BitResolution) ByteWidth() int {
	return byteWidthTable[b&BitResolution(bitResolutionMask)]
}

func (b BitResolution) String() string {
	switch b {
	case BitResolutionByte8:
		return "8-bit"
	case BitResolutionInt16:
		return "int16"
	case BitResolutionInt24:
		return "int24"
	case BitResolutionInt32:
		return "int32"
	case BitResolutionFloat32:
		return "float32"
	case BitResolutionFloat64:
		return "float64"
	case BitResolutionBits12:
		return "12-bit"
	case BitResolutionBits10:
		return "10-bit"
	default:
		return "undefined"
	}
}

// Codec is the high-nibble value of header byte 7, interpreted per sub-protocol
// (audio codec, serial stream type, or text stream format).
type Codec uint8

const (
	CodecPCM  Codec = 0x00
	CodecVBCA Codec = 0x10
	CodecVBCV Codec = 0x20
	CodecUser Codec = 0xF0

	codecMask uint8 = 0xF0
)

// IsDefined reports whether c names one of the closed audio codec values.
func (c Codec) IsDefined() bool {
	switch c {
	case CodecPCM, CodecVBCA, CodecVBCV, CodecUser:
		return true
	default:
		return false
	}
}

// TextStreamType is the high-nibble value of header byte 7 for the Text sub-protocol.
type TextStreamType uint8

const (
	TextStreamASCII TextStreamType = 0x00
	TextStreamUTF8  TextStreamType = 0x10
	TextStreamWChar TextStreamType = 0x20
	TextStreamUser  TextStreamType = 0xF0
)

// ServiceType identifies the VBAN service carried by a Service sub-protocol packet.
type ServiceType uint8

const (
	ServiceIdentification   ServiceType = 0x00
	ServiceChatUTF8         ServiceType = 0x01
	ServiceRTPacketRegister ServiceType = 0x20
	ServiceRTPacket         ServiceType = 0x21
)

func (s ServiceType) String() string {
	switch s {
	case ServiceIdentification:
		return "Identification"
	case ServiceChatUTF8:
		return "Chat"
	case ServiceRTPacketRegister:
		return "RTPacketRegister"
	case ServiceRTPacket:
		return "RTPacket"
	default:
		return "Undefined"
	}
}

// ServiceFunction is byte_a of a Service header: a request/response flag.
type ServiceFunction uint8

const (
	ServiceFunctionRequest  ServiceFunction = 0x00
	ServiceFunctionResponse ServiceFunction = 0x80
)
