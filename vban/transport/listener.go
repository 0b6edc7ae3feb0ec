// Package transport implements the transport endpoint (C6): one UDP
// listener per local bind, and one sender per (local, remote) pair, reused
// across sends. Ground: hrko-go-vban's vban.Conn.Receive/Send for the raw
// UDP I/O, generalized into a listener/sender split per spec.md's
// component boundary, with per-datagram dispatch tasks tracked by UUID
// (USA-RedDragon-DMRHub's per-datagram goroutine pattern) and supervised by
// an errgroup.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/vbanlog"
)

// Dispatcher receives a decoded packet and its source address. vban/peer.Registry
// satisfies this via Registry.AsDispatcher(responder), which closes over the
// PingResponder that Registry.Dispatch additionally needs; wrap its result in
// DispatcherFunc at the call site.
type Dispatcher interface {
	Dispatch(ctx context.Context, srcAddr *net.UDPAddr, pkt *vban.Packet) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, srcAddr *net.UDPAddr, pkt *vban.Packet) error

func (f DispatcherFunc) Dispatch(ctx context.Context, srcAddr *net.UDPAddr, pkt *vban.Packet) error {
	return f(ctx, srcAddr, pkt)
}

// QuickRejecter is the registry's synchronous fast-path check
// (spec.md §4.5/§4.6: "Call quick_reject; return immediately if true").
type QuickRejecter interface {
	QuickReject(ip string) bool
}

// Listener owns one UDP socket bound to a local address and dispatches each
// received datagram to a Dispatcher on its own tracked goroutine.
type Listener struct {
	conn   *net.UDPConn
	reject QuickRejecter
	dsp    Dispatcher
	log    *slog.Logger

	group  *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	inFlight map[uuid.UUID]context.CancelFunc
}

// Listen binds addr (IPv4zero:DefaultPort if nil) and returns a Listener
// that has not yet started reading. Call Start to begin the receive loop.
func Listen(addr *net.UDPAddr, reject QuickRejecter, dsp Dispatcher, log *slog.Logger) (*Listener, error) {
	if addr == nil {
		addr = &net.UDPAddr{IP: net.IPv4zero, Port: vban.DefaultPort}
	}
	if log == nil {
		log = vbanlog.Default()
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen on %s: %w", addr, err)
	}
	return &Listener{
		conn:     conn,
		reject:   reject,
		dsp:      dsp,
		log:      log,
		inFlight: make(map[uuid.UUID]context.CancelFunc),
	}, nil
}

// Start launches the receive loop under an errgroup derived from ctx, so the
// first fatal error is surfaced to Shutdown/Wait.
func (l *Listener) Start(ctx context.Context) {
	gctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(gctx)
	l.group = group
	l.gctx = gctx
	l.cancel = cancel

	group.Go(func() error {
		return l.readLoop(gctx)
	})
}

func (l *Listener) readLoop(ctx context.Context) error {
	buf := make([]byte, vban.MaxVBANPacketSize+1)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, remote, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Info("udp read error", "error", err)
			continue
		}

		if l.reject != nil && l.reject.QuickReject(remote.IP.String()) {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		l.dispatch(ctx, data, remote)
	}
}

// dispatch decodes data and hands it to the Dispatcher on its own
// cancellable, UUID-tracked task, so Shutdown can wait for every in-flight
// dispatch without relying on goroutine identity.
func (l *Listener) dispatch(ctx context.Context, data []byte, remote *net.UDPAddr) {
	pkt, err := vban.DecodePacket(data)
	if err != nil {
		l.log.Info("dropping undecodable packet", "peer", remote, "error", err)
		return
	}

	id := uuid.New()
	taskCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.inFlight[id] = cancel
	l.mu.Unlock()

	l.group.Go(func() error {
		defer func() {
			l.mu.Lock()
			delete(l.inFlight, id)
			l.mu.Unlock()
			cancel()
		}()
		if err := l.dsp.Dispatch(taskCtx, remote, pkt); err != nil {
			l.log.Info("dispatch error", "peer", remote, "error", err)
		}
		return nil
	})
}

// Shutdown cancels every in-flight dispatch task, closes the socket, and
// waits for the receive loop and all dispatch goroutines to finish,
// returning the first fatal error observed by the errgroup.
func (l *Listener) Shutdown() error {
	l.mu.Lock()
	for _, cancel := range l.inFlight {
		cancel()
	}
	l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	closeErr := l.conn.Close()
	var groupErr error
	if l.group != nil {
		groupErr = l.group.Wait()
	}
	if groupErr != nil {
		return groupErr
	}
	return closeErr
}

// LocalAddr returns the listener's bound local address.
func (l *Listener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}
