package peer

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/vbanlog"
)

// PingResponder sends a populated Ping response to addr. vban/transport
// wires a concrete implementation that knows the local identity.
type PingResponder interface {
	RespondToPing(addr *net.UDPAddr) error
}

// Registry maps a resolved IP address to its Peer and implements the
// dispatch rules from spec.md §4.5. Ground: original_source's
// AsyncVBANClient.register_device/process_packet and VBANDevice.handle_packet,
// collapsed into one registry (no peer->stream->registry back-pointers,
// matching spec.md §9's "replace cyclic references with explicit message
// passing from transport->registry->stream").
type Registry struct {
	mu       sync.RWMutex
	peers    map[string]*Peer
	resolver func(host string) (string, error)
	log      *slog.Logger
}

// NewRegistry creates an empty Registry. resolver performs the "single
// A-record, first answer" host lookup policy; pass nil to use net.LookupIP.
func NewRegistry(resolver func(host string) (string, error), log *slog.Logger) *Registry {
	if resolver == nil {
		resolver = defaultResolve
	}
	if log == nil {
		log = vbanlog.Default()
	}
	return &Registry{peers: make(map[string]*Peer), resolver: resolver, log: log}
}

func defaultResolve(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return "", err
	}
	return ips[0].String(), nil
}

// Register resolves host to an IP and returns its Peer, creating one with
// defaultPort if this is the first registration. Idempotent: a second call
// for an already-registered IP returns the existing Peer unchanged (port
// not updated).
func (r *Registry) Register(host string, defaultPort int) (*Peer, error) {
	ip, err := r.resolver(host)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.peers[ip]; ok {
		return p, nil
	}
	p := NewPeer(ip, defaultPort)
	r.peers[ip] = p
	return p, nil
}

// QuickReject reports whether ip has no registered peer, for the datagram
// receive fast path (spec.md §4.5: "synchronous quick_reject(ip) -> bool").
func (r *Registry) QuickReject(ip string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.peers[ip]
	return !ok
}

func (r *Registry) lookup(ip string) (*Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[ip]
	return p, ok
}

// AsDispatcher binds responder into a 3-argument function matching
// vban/transport.Dispatcher's shape (Dispatch(ctx, srcAddr, pkt) error),
// letting a Listener drive this Registry without transport needing to know
// about PingResponder. Callers wrap the result in
// transport.DispatcherFunc(...) at the call site.
func (r *Registry) AsDispatcher(responder PingResponder) func(ctx context.Context, srcAddr *net.UDPAddr, pkt *vban.Packet) error {
	return func(ctx context.Context, srcAddr *net.UDPAddr, pkt *vban.Packet) error {
		return r.Dispatch(ctx, srcAddr, pkt, responder)
	}
}

// Dispatch applies the rules from spec.md §4.5 to a decoded packet arriving
// from srcAddr:
//
//  1. source IP not registered -> drop.
//  2. stream name matches a registered incoming stream -> hand off.
//  3. stream name == "VBAN Service" and sub-protocol is Service:
//     Identification+Request -> responder.RespondToPing(srcAddr).
//     Identification+Response -> update peer's cached identification.
//     other service packets -> follow their stream binding (RT replies
//     under their own name and under the "Voicemeeter-RTP" alias).
//  4. else -> drop, log at debug.
func (r *Registry) Dispatch(ctx context.Context, srcAddr *net.UDPAddr, pkt *vban.Packet, responder PingResponder) error {
	p, ok := r.lookup(srcAddr.IP.String())
	if !ok {
		return nil
	}

	name := pkt.Header.GetStreamName()
	if h, ok := p.Stream(name); ok {
		return h.HandlePacket(ctx, pkt)
	}

	if name == vban.ServiceStreamName && pkt.Header.SubProtocol() == vban.ProtocolService {
		sf := pkt.Header.ServiceFormat()
		switch {
		case sf.Service == vban.ServiceIdentification && sf.Function == vban.ServiceFunctionRequest:
			r.log.Info("received ping request", "peer", p.Address)
			if responder != nil {
				return responder.RespondToPing(srcAddr)
			}
			return nil
		case sf.Service == vban.ServiceIdentification && sf.Function == vban.ServiceFunctionResponse:
			if ping, ok := pkt.Body.(*vban.Ping); ok {
				p.SetIdentification(ping)
			}
			return nil
		default:
			if h, ok := p.Stream(vban.RTReplyStreamAlias); ok {
				return h.HandlePacket(ctx, pkt)
			}
		}
	}

	r.log.Debug("dropping packet for unregistered stream", "peer", p.Address, "stream", name)
	return nil
}
