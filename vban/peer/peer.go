// Package peer implements the peer registry (C5): resolved-IP-keyed peers,
// each holding a name->stream map, and the dispatch rules that route a
// decoded packet to the right stream or to the ping responder.
package peer

import (
	"context"
	"sync"

	"github.com/wmbest2/govban/vban"
)

// IncomingHandler is the subset of vban/stream.IncomingStream (and
// vban/stream.RTStream) a Peer needs to hand off a decoded packet.
type IncomingHandler interface {
	HandlePacket(ctx context.Context, pkt *vban.Packet) error
}

// Peer is one remote endpoint: its resolved address, default port, its
// named streams, and the most recent identification snapshot received from
// it. Created on explicit registration; destroyed only when the host
// process shuts down (spec.md invariant on Peer lifetime).
type Peer struct {
	Address     string
	DefaultPort int

	mu              sync.Mutex
	streams         map[string]IncomingHandler
	identification  *vban.Ping
}

// NewPeer creates a Peer for address:defaultPort with no streams registered.
func NewPeer(address string, defaultPort int) *Peer {
	return &Peer{
		Address:     address,
		DefaultPort: defaultPort,
		streams:     make(map[string]IncomingHandler),
	}
}

// BindStream registers name -> handler on this peer, replacing any prior
// binding of the same name (e.g. the RT stream is bound under both its own
// name and the "Voicemeeter-RTP" alias).
func (p *Peer) BindStream(name string, h IncomingHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams[name] = h
}

// Stream returns the handler bound to name, if any.
func (p *Peer) Stream(name string) (IncomingHandler, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.streams[name]
	return h, ok
}

// Identification returns the peer's most recently received ping snapshot, if any.
func (p *Peer) Identification() (*vban.Ping, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identification == nil {
		return nil, false
	}
	cp := *p.identification
	return &cp, true
}

// SetIdentification updates the peer's cached identification snapshot
// (dispatch rule: "Identification + Response -> update peer's cached
// identification snapshot").
func (p *Peer) SetIdentification(ping *vban.Ping) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *ping
	p.identification = &cp
}
