package vban

import (
	"errors"
	"fmt"
)

// HeaderErrorKind enumerates the ways a 28-byte header can fail to decode.
type HeaderErrorKind int

const (
	HeaderTooShort HeaderErrorKind = iota
	HeaderBadMagic
)

// HeaderError is returned by Header.UnmarshalBinary (and so by DecodePacket)
// when the input is not a well-formed
// VBAN header. It never indicates a panic; the decoder always returns an error
// instead of crashing on malformed input.
type HeaderError struct {
	Kind HeaderErrorKind
	Msg  string
}

func (e *HeaderError) Error() string { return e.Msg }

func newHeaderError(kind HeaderErrorKind, msg string) *HeaderError {
	return &HeaderError{Kind: kind, Msg: msg}
}

// BodyError is returned when a typed sub-protocol body fails to decode.
type BodyError struct {
	Wanted int
	Got    int
	Msg    string
}

func (e *BodyError) Error() string { return e.Msg }

func newBodyTooShort(wanted, got int) *BodyError {
	return &BodyError{
		Wanted: wanted,
		Got:    got,
		Msg:    fmt.Sprintf("vban: body too short: wanted %d bytes, got %d", wanted, got),
	}
}

// ErrInvalidPacket is returned by EncodePacket when an audio body size doesn't
// match samples*channels*width, and by Header.SetAudioFormat when samples per
// frame or channels fall outside [1,256]. Stream names longer than 16 bytes
// are truncated rather than rejected, and the sub-protocol value is not checked.
var ErrInvalidPacket = errors.New("vban: invalid packet")
