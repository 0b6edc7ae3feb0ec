package stream

import (
	"context"
	"log/slog"

	"github.com/wmbest2/govban/vban"
	"github.com/wmbest2/govban/vban/queue"
	"github.com/wmbest2/govban/vban/vbanlog"
)

// pending pairs a header and body for the buffered sender's worker goroutine.
type pending struct {
	header vban.Header
	body   []byte
}

// BufferedOutgoingStream decouples callers from send latency: packets are
// queued and sent from a dedicated worker goroutine. Per spec.md §7's error
// table ("buffered sender drops and continues"), a send failure is logged
// and does not stop the worker or propagate to the caller.
type BufferedOutgoingStream struct {
	*OutgoingStream
	q      *queue.Queue[pending]
	log    *slog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBufferedOutgoingStream creates a BufferedOutgoingStream and starts its
// worker goroutine. Close stops the worker.
func NewBufferedOutgoingStream(name string, sender Sender, queueSize int, policy queue.Policy, log *slog.Logger) *BufferedOutgoingStream {
	if log == nil {
		log = vbanlog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &BufferedOutgoingStream{
		OutgoingStream: NewOutgoingStream(name, sender),
		q:              queue.New[pending](queueSize, policy),
		log:            log,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *BufferedOutgoingStream) run(ctx context.Context) {
	defer close(s.done)
	for {
		p, err := s.q.Get(ctx)
		if err != nil {
			return
		}
		if err := s.OutgoingStream.Send(p.header, p.body); err != nil {
			s.log.Debug("buffered send failed, dropping", "stream", s.name, "error", err)
		}
	}
}

// Enqueue queues header+body for asynchronous send, applying the stream's
// back-pressure policy if the internal queue is full.
func (s *BufferedOutgoingStream) Enqueue(ctx context.Context, header vban.Header, body []byte) error {
	return s.q.Put(ctx, pending{header: header, body: body})
}

// Close stops the worker goroutine and waits for it to exit.
func (s *BufferedOutgoingStream) Close() {
	s.cancel()
	<-s.done
}
