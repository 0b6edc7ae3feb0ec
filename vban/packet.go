package vban

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Packet pairs a decoded Header with its body. Body holds one of:
// []byte (opaque, audio, or unrecognized-subprotocol raw bytes), string
// (text/chat), *Ping, or *RTPacket, per the dispatch rules below.
type Packet struct {
	Header Header
	Body   any
}

// EncodePacket serializes header and body into a single VBAN datagram.
// Streamname length is validated by Header.SetStreamName at construction
// time (truncation, not an error, per invariant 4); here we validate the
// subprotocol-specific body shape and return ErrInvalidPacket on mismatch.
func EncodePacket(header Header, body []byte) ([]byte, error) {
	if header.SubProtocol() == ProtocolAudio {
		af := header.AudioFormat()
		want := af.BodySize()
		if len(body) != want {
			return nil, fmt.Errorf("%w: audio body is %d bytes, want %d (samples=%d channels=%d width=%d)",
				ErrInvalidPacket, len(body), want, af.SamplesPerFrame, af.Channels, af.BitResolution.ByteWidth())
		}
	}
	hb, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(hb)+len(body))
	out = append(out, hb...)
	out = append(out, body...)
	return out, nil
}

// EncodePing builds a Service/Identification packet carrying p, addressed to streamName.
func EncodePing(streamName string, p *Ping) ([]byte, error) {
	h := NewHeader(ProtocolService, streamName)
	body, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return EncodePacket(h, body)
}

// EncodeRTPacket builds a Service/RTPacket packet carrying r, addressed to streamName.
func EncodeRTPacket(streamName string, r *RTPacket) ([]byte, error) {
	h := NewHeader(ProtocolService, streamName)
	h.SetServiceFormat(ServiceFormat{Function: ServiceFunctionRequest, Service: ServiceRTPacket})
	body, err := r.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return EncodePacket(h, body)
}

// DecodePacket parses a raw datagram into a Packet. It never panics on
// malformed input: header errors and body errors are both returned as plain
// errors, never as a panic (spec.md §4.1 error taxonomy).
//
// Dispatch:
//   - Audio: Body is the raw PCM []byte, unvalidated against AudioFormat
//     (callers needing that check use Header.AudioFormat().BodySize()).
//   - Text (any stream type) and Service/ChatUTF8: Body is a string, bytes
//     after the first NUL ignored.
//   - Service/Identification: Body is *Ping; bodies shorter than
//     PingBodySize are right-padded with NUL before decode.
//   - Service/RTPacket with function=0 (request): Body is *RTPacket;
//     requires >= RTBodySize bytes.
//   - Everything else (Serial, undefined sub-protocols, unrecognized
//     service types): Body is the raw opaque []byte.
func DecodePacket(data []byte) (*Packet, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	rawBody := data[HeaderSize:]

	switch h.SubProtocol() {
	case ProtocolAudio:
		return &Packet{Header: h, Body: rawBody}, nil

	case ProtocolText:
		return &Packet{Header: h, Body: decodeText(rawBody)}, nil

	case ProtocolService:
		sf := h.ServiceFormat()
		switch sf.Service {
		case ServiceIdentification:
			body := rawBody
			if len(body) < PingBodySize {
				body = rightPad(body, PingBodySize)
			}
			var p Ping
			if err := p.UnmarshalBinary(body); err != nil {
				return nil, err
			}
			return &Packet{Header: h, Body: &p}, nil

		case ServiceRTPacket:
			if sf.Function != ServiceFunctionRequest {
				return &Packet{Header: h, Body: rawBody}, nil
			}
			var r RTPacket
			if err := r.UnmarshalBinary(rawBody); err != nil {
				return nil, err
			}
			return &Packet{Header: h, Body: &r}, nil

		case ServiceChatUTF8:
			return &Packet{Header: h, Body: decodeText(rawBody)}, nil

		default:
			return &Packet{Header: h, Body: rawBody}, nil
		}

	default:
		return &Packet{Header: h, Body: rawBody}, nil
	}
}

// decodeText truncates at the first NUL (bytes after are ignored per §4.1)
// and decodes as UTF-8, falling back to latin-1 on invalid sequences
// (matching the streamname policy in header.go).
func decodeText(body []byte) string {
	n := bytes.IndexByte(body, 0)
	if n == -1 {
		n = len(body)
	}
	raw := body[:n]
	if utf8.Valid(raw) {
		return string(raw)
	}
	return latin1Decode(raw)
}

func rightPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
