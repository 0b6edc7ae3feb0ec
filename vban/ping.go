package vban

import (
	"bytes"
	"fmt"
)

// DeviceType is the bitflag set describing what kind of endpoint sent a Ping.
type DeviceType uint32

const (
	DeviceTypeVirtualAudioDevice DeviceType = 1 << 0
	DeviceTypeVirtualMixingDesk  DeviceType = 1 << 1
	DeviceTypeHardware           DeviceType = 1 << 2
	DeviceTypeVban               DeviceType = 1 << 3
	DeviceTypeMidi               DeviceType = 1 << 4
	DeviceTypeTextSender         DeviceType = 1 << 5
)

// Features is the bitflag set advertising what an endpoint supports.
type Features uint32

const (
	FeatureAudio   Features = 1 << 0
	FeatureAoIP    Features = 1 << 1
	FeatureSerial  Features = 1 << 2
	FeatureTxt     Features = 1 << 3
	FeatureRT      Features = 1 << 4
	FeatureMidi    Features = 1 << 5
)

const (
	pingGPSLen           = 8
	pingUserPosLen       = 8
	pingLangLen          = 8
	pingReservedLen      = 8
	pingReservedExLen    = 64
	pingDistantIPLen     = 32
	pingDeviceNameLen    = 64
	pingManufacturerLen  = 64
	pingApplicationLen   = 64
	pingHostNameLen      = 64
	pingUserNameLen      = 128
	pingUserCommentLen   = 128
)

// Ping is the 676-byte service Identification body: a symmetric
// request/response snapshot of an endpoint's capabilities.
type Ping struct {
	DeviceType        DeviceType
	Features          Features
	FeatureExtra      uint32
	PreferredRate     uint32
	MinRate           uint32
	MaxRate           uint32
	ColorRGB          uint32
	VersionA          uint8
	VersionB          uint8
	VersionC          uint8
	VersionD          uint8
	GPS               [pingGPSLen]byte
	UserPos           [pingUserPosLen]byte
	Lang              [pingLangLen]byte
	Reserved          [pingReservedLen]byte
	ReservedEx        [pingReservedExLen]byte
	DistantIP         [pingDistantIPLen]byte
	DistantPort       uint16
	DistantReserved   uint16
	DeviceName        [pingDeviceNameLen]byte
	ManufacturerName  [pingManufacturerLen]byte
	ApplicationName   [pingApplicationLen]byte
	HostName          [pingHostNameLen]byte
	UserName          [pingUserNameLen]byte
	UserComment       [pingUserCommentLen]byte
}

// Version renders the dotted version string. Wire order is d,c,b,a (spec §9
// open question, resolved in favor of the reference Voicemeeter encoding).
func (p *Ping) Version() string {
	return fmt.Sprintf("%d.%d.%d.%d", p.VersionA, p.VersionB, p.VersionC, p.VersionD)
}

// SetVersion sets the four version bytes so that Version renders "a.b.c.d".
func (p *Ping) SetVersion(a, b, c, d uint8) {
	p.VersionA, p.VersionB, p.VersionC, p.VersionD = a, b, c, d
}

func setFixedString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, s)
}

func getFixedString(src []byte) string {
	n := bytes.IndexByte(src, 0)
	if n == -1 {
		n = len(src)
	}
	return string(src[:n])
}

// DeviceNameStr, ManufacturerNameStr, etc. expose the fixed-width NUL-padded
// string fields as Go strings truncated at the first NUL.
func (p *Ping) DeviceNameStr() string       { return getFixedString(p.DeviceName[:]) }
func (p *Ping) ManufacturerNameStr() string { return getFixedString(p.ManufacturerName[:]) }
func (p *Ping) ApplicationNameStr() string  { return getFixedString(p.ApplicationName[:]) }
func (p *Ping) HostNameStr() string         { return getFixedString(p.HostName[:]) }
func (p *Ping) UserNameStr() string         { return getFixedString(p.UserName[:]) }
func (p *Ping) UserCommentStr() string      { return getFixedString(p.UserComment[:]) }
func (p *Ping) DistantIPStr() string        { return getFixedString(p.DistantIP[:]) }

func (p *Ping) SetDeviceNameStr(s string)       { setFixedString(p.DeviceName[:], s) }
func (p *Ping) SetManufacturerNameStr(s string) { setFixedString(p.ManufacturerName[:], s) }
func (p *Ping) SetApplicationNameStr(s string)  { setFixedString(p.ApplicationName[:], s) }
func (p *Ping) SetHostNameStr(s string)         { setFixedString(p.HostName[:], s) }
func (p *Ping) SetUserNameStr(s string)         { setFixedString(p.UserName[:], s) }
func (p *Ping) SetUserCommentStr(s string)      { setFixedString(p.UserComment[:], s) }
func (p *Ping) SetDistantIPStr(s string)        { setFixedString(p.DistantIP[:], s) }

// MarshalBinary encodes the Ping to exactly PingBodySize bytes.
func (p *Ping) MarshalBinary() ([]byte, error) {
	buf := make([]byte, PingBodySize)
	off := 0
	putU32 := func(v uint32) { byteOrder.PutUint32(buf[off:off+4], v); off += 4 }
	putU16 := func(v uint16) { byteOrder.PutUint16(buf[off:off+2], v); off += 2 }
	putBytes := func(b []byte) { copy(buf[off:off+len(b)], b); off += len(b) }

	putU32(uint32(p.DeviceType))
	putU32(uint32(p.Features))
	putU32(p.FeatureExtra)
	putU32(p.PreferredRate)
	putU32(p.MinRate)
	putU32(p.MaxRate)
	putU32(p.ColorRGB)
	// wire order d,c,b,a
	buf[off] = p.VersionD
	buf[off+1] = p.VersionC
	buf[off+2] = p.VersionB
	buf[off+3] = p.VersionA
	off += 4
	putBytes(p.GPS[:])
	putBytes(p.UserPos[:])
	putBytes(p.Lang[:])
	putBytes(p.Reserved[:])
	putBytes(p.ReservedEx[:])
	putBytes(p.DistantIP[:])
	putU16(p.DistantPort)
	putU16(p.DistantReserved)
	putBytes(p.DeviceName[:])
	putBytes(p.ManufacturerName[:])
	putBytes(p.ApplicationName[:])
	putBytes(p.HostName[:])
	putBytes(p.UserName[:])
	putBytes(p.UserComment[:])

	if off != PingBodySize {
		return nil, fmt.Errorf("vban: internal error: marshaled ping is %d bytes, want %d", off, PingBodySize)
	}
	return buf, nil
}

// UnmarshalBinary decodes a Ping body. Bodies shorter than PingBodySize are
// accepted by the caller right-padding with NUL first (decode_packet §4.1);
// this method itself requires at least PingBodySize bytes and ignores any
// bytes beyond that.
func (p *Ping) UnmarshalBinary(data []byte) error {
	if len(data) < PingBodySize {
		return newBodyTooShort(PingBodySize, len(data))
	}
	off := 0
	getU32 := func() uint32 { v := byteOrder.Uint32(data[off : off+4]); off += 4; return v }
	getU16 := func() uint16 { v := byteOrder.Uint16(data[off : off+2]); off += 2; return v }
	getBytes := func(n int) []byte { b := data[off : off+n]; off += n; return b }

	p.DeviceType = DeviceType(getU32())
	p.Features = Features(getU32())
	p.FeatureExtra = getU32()
	p.PreferredRate = getU32()
	p.MinRate = getU32()
	p.MaxRate = getU32()
	p.ColorRGB = getU32()
	d, c, b, a := data[off], data[off+1], data[off+2], data[off+3]
	p.VersionD, p.VersionC, p.VersionB, p.VersionA = d, c, b, a
	off += 4
	copy(p.GPS[:], getBytes(pingGPSLen))
	copy(p.UserPos[:], getBytes(pingUserPosLen))
	copy(p.Lang[:], getBytes(pingLangLen))
	copy(p.Reserved[:], getBytes(pingReservedLen))
	copy(p.ReservedEx[:], getBytes(pingReservedExLen))
	copy(p.DistantIP[:], getBytes(pingDistantIPLen))
	p.DistantPort = getU16()
	p.DistantReserved = getU16()
	copy(p.DeviceName[:], getBytes(pingDeviceNameLen))
	copy(p.ManufacturerName[:], getBytes(pingManufacturerLen))
	copy(p.ApplicationName[:], getBytes(pingApplicationLen))
	copy(p.HostName[:], getBytes(pingHostNameLen))
	copy(p.UserName[:], getBytes(pingUserNameLen))
	copy(p.UserComment[:], getBytes(pingUserCommentLen))

	if off != PingBodySize {
		return fmt.Errorf("vban: internal error: unmarshaled ping consumed %d bytes, want %d", off, PingBodySize)
	}
	return nil
}
