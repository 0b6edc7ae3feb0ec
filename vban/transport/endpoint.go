package transport

import (
	"fmt"
	"net"
	"sync"
)

// Endpoint is a sender bound to one (local, remote) UDP pair, created on
// first send and reused (spec.md §4.6: "One sender endpoint per
// (local, remote) pair ... created on first send and reused"). It
// implements vban/stream.Sender.
type Endpoint struct {
	conn *net.UDPConn

	mu      sync.Mutex
	lastErr error
	done    chan struct{}
}

// NewEndpoint dials remote from localAddr (nil lets the OS choose).
func NewEndpoint(localAddr, remote *net.UDPAddr) (*Endpoint, error) {
	conn, err := net.DialUDP("udp", localAddr, remote)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", remote, err)
	}
	return &Endpoint{conn: conn, done: make(chan struct{})}, nil
}

// Send writes data to the endpoint's remote address. There are no retries:
// UDP is fire-and-forget. A failure is recorded and surfaced through Err /
// the completion signal, per spec.md §4.6 ("sender failures surface via a
// completion signal on the endpoint").
func (e *Endpoint) Send(data []byte) error {
	n, err := e.conn.Write(data)
	if err != nil {
		e.fail(fmt.Errorf("transport: udp write: %w", err))
		return err
	}
	if n != len(data) {
		err := fmt.Errorf("transport: incomplete udp write: wrote %d of %d bytes", n, len(data))
		e.fail(err)
		return err
	}
	return nil
}

func (e *Endpoint) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastErr == nil {
		e.lastErr = err
		close(e.done)
	}
}

// Err returns the first send error observed by this endpoint, if any.
func (e *Endpoint) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Done returns a channel closed when the endpoint's first send failure
// occurs, letting a caller await endpoint shutdown to learn of failures.
func (e *Endpoint) Done() <-chan struct{} {
	return e.done
}

// Close closes the underlying UDP connection.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

// LocalAddr returns the endpoint's local UDP address.
func (e *Endpoint) LocalAddr() net.Addr {
	return e.conn.LocalAddr()
}

// RemoteAddr returns the endpoint's remote UDP address.
func (e *Endpoint) RemoteAddr() net.Addr {
	return e.conn.RemoteAddr()
}
