// Package stream implements the VBAN stream objects (C4): named endpoints
// layered over the wire codec and the back-pressure queue, mirroring
// original_source's VBANIncomingStream/VBANOutgoingStream/VBANTextStream/
// VBANRTStream but expressed with goroutines and channels instead of
// asyncio tasks.
package stream

// Sender is the narrow interface a stream needs to hand encoded bytes to
// the network. vban/transport.Endpoint implements this.
type Sender interface {
	Send(data []byte) error
}

// stream is the common name field embedded by every stream type, mirroring
// original_source's VBANStream dataclass.
type stream struct {
	name string
}

// Name returns the stream's name (<=16 chars on the wire; longer names are
// truncated by vban.Header.SetStreamName when a header is built for send).
func (s *stream) Name() string { return s.name }
