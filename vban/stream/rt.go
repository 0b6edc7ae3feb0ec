package stream

import (
	"context"
	"log/slog"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/queue"
	"github.com/wmbest2/govban/vban/vbanlog"
)

// RTStream combines an outgoing stream (used to (re)register for updates)
// with an incoming stream of decoded RT-packet snapshots. Ground:
// original_source's VBANRTStream, which rejects any packet whose header
// isn't a Service/RTPacket header before enqueuing it.
type RTStream struct {
	*OutgoingStream
	*IncomingStream
	name           string
	UpdateInterval uint8
	log            *slog.Logger
}

// NewRTStream creates an RTStream. updateInterval is the renewal TTL in
// seconds (0..255) sent with each registration.
func NewRTStream(name string, sender Sender, queueSize int, policy queue.Policy, updateInterval uint8, log *slog.Logger) *RTStream {
	if log == nil {
		log = vbanlog.Default()
	}
	return &RTStream{
		OutgoingStream: NewOutgoingStream(name, sender),
		IncomingStream: NewIncomingStream(name, queueSize, policy),
		name:           name,
		UpdateInterval: updateInterval,
		log:            log,
	}
}

// Name returns the RT stream's name, resolving the ambiguous embedding of
// OutgoingStream.Name/IncomingStream.Name explicitly.
func (s *RTStream) Name() string { return s.name }

// HandlePacket accepts only Service/RTPacket bodies, matching
// original_source's isinstance(header, VBANServiceHeader) and
// header.service == ServiceType.RTPacket guard; anything else is logged at
// info and dropped.
func (s *RTStream) HandlePacket(ctx context.Context, pkt *vban.Packet) error {
	if pkt.Header.SubProtocol() != vban.ProtocolService {
		s.log.Info("dropping non-service packet on RT stream", "stream", s.name)
		return nil
	}
	if sf := pkt.Header.ServiceFormat(); sf.Service != vban.ServiceRTPacket {
		s.log.Info("dropping packet with wrong service type on RT stream", "stream", s.name, "service", sf.Service)
		return nil
	}
	return s.IncomingStream.HandlePacket(ctx, pkt)
}

// SendRegistration sends an RTPacketRegister request with the stream's
// UpdateInterval as the renewal TTL.
func (s *RTStream) SendRegistration() error {
	h := vban.NewHeader(vban.ProtocolService, s.name)
	h.SetServiceFormat(vban.ServiceFormat{
		Function:       vban.ServiceFunctionRequest,
		Service:        vban.ServiceRTPacketRegister,
		AdditionalInfo: s.UpdateInterval,
	})
	return s.OutgoingStream.Send(h, nil)
}
