package stream

import (
	"context"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/queue"
)

// IncomingStream is a named stream backed by a bounded back-pressure queue
// of decoded packets. Ground: original_source's VBANIncomingStream
// (handle_packet/get_packet over an asyncio.Queue), re-expressed over
// vban/queue.
type IncomingStream struct {
	stream
	q *queue.Queue[*vban.Packet]
}

// NewIncomingStream creates an IncomingStream with the given queue capacity
// and back-pressure policy.
func NewIncomingStream(name string, queueSize int, policy queue.Policy) *IncomingStream {
	return &IncomingStream{
		stream: stream{name: name},
		q:      queue.New[*vban.Packet](queueSize, policy),
	}
}

// HandlePacket enqueues an incoming packet per the configured back-pressure policy.
func (s *IncomingStream) HandlePacket(ctx context.Context, pkt *vban.Packet) error {
	return s.q.Put(ctx, pkt)
}

// GetPacket suspends until a packet is available, or ctx is cancelled.
func (s *IncomingStream) GetPacket(ctx context.Context) (*vban.Packet, error) {
	return s.q.Get(ctx)
}
