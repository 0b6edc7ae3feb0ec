package stream

import (
	"fmt"
	"sync/atomic"

	"github.com/wmbest2/govban/vban"
)

// OutgoingStream is a named stream that sends packets to a fixed sender
// endpoint, stamping each with a strictly increasing framecount (invariant
// 3: "outgoing framecount strictly increases per stream"). Ground:
// original_source's VBANOutgoingStream.send_packet.
type OutgoingStream struct {
	stream
	sender     Sender
	framecount atomic.Uint32
}

// NewOutgoingStream creates an OutgoingStream addressed at sender.
func NewOutgoingStream(name string, sender Sender) *OutgoingStream {
	return &OutgoingStream{stream: stream{name: name}, sender: sender}
}

// Send increments the stream's framecount, stamps it into header, encodes
// header+body and hands the result to the sender. There are no retries:
// UDP is fire-and-forget (spec.md §4.4).
func (s *OutgoingStream) Send(header vban.Header, body []byte) error {
	header.SetStreamName(s.name)
	header.Framecount = s.framecount.Add(1)

	raw, err := vban.EncodePacket(header, body)
	if err != nil {
		return fmt.Errorf("stream %q: encode: %w", s.name, err)
	}
	if err := s.sender.Send(raw); err != nil {
		return fmt.Errorf("stream %q: send: %w", s.name, err)
	}
	return nil
}

// Framecount returns the most recently sent framecount (0 before any Send).
func (s *OutgoingStream) Framecount() uint32 {
	return s.framecount.Load()
}
