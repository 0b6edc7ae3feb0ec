package transport

import (
	"net"
	"sync"
)

// EndpointPool lazily creates and reuses one Endpoint per (local, remote)
// pair, matching spec.md §4.6's "created on first send and reused".
type EndpointPool struct {
	localAddr *net.UDPAddr

	mu        sync.Mutex
	endpoints map[string]*Endpoint
}

// NewEndpointPool creates a pool of endpoints sharing localAddr (nil lets
// the OS choose a local address per endpoint).
func NewEndpointPool(localAddr *net.UDPAddr) *EndpointPool {
	return &EndpointPool{localAddr: localAddr, endpoints: make(map[string]*Endpoint)}
}

// Get returns the Endpoint for remote, creating and caching it on first call.
func (p *EndpointPool) Get(remote *net.UDPAddr) (*Endpoint, error) {
	key := remote.String()

	p.mu.Lock()
	defer p.mu.Unlock()
	if ep, ok := p.endpoints[key]; ok {
		return ep, nil
	}
	ep, err := NewEndpoint(p.localAddr, remote)
	if err != nil {
		return nil, err
	}
	p.endpoints[key] = ep
	return ep, nil
}

// Close closes every endpoint in the pool.
func (p *EndpointPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, ep := range p.endpoints {
		if err := ep.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
