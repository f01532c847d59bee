package lossy

import (
	"context"
	"io"
	"time"

	"github.com/filecoin-project/go-lossy/direction"
	"github.com/filecoin-project/go-lossy/internal/clock"
	"github.com/filecoin-project/go-lossy/internal/measurements"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// Transport is a duplex datagram transport wrapped by Conn.
//
// Read must not block: reading zero bytes with a nil error signals that no
// datagram is currently available, rather than end of stream. Each successful
// Read or Write carries exactly one datagram.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Conn impairs the datagrams exchanged over a wrapped Transport.
//
// Datagrams written to Conn are held by the outgoing direction and only reach
// the transport once due, via Flush. Datagrams read from the transport are held
// by the incoming direction and are only returned by Read once due. Neither
// operation blocks: the caller is expected to poll both regularly.
//
// Conn is not safe for concurrent use.
type Conn struct {
	inner    Transport
	clock    clock.Clock
	outgoing *direction.Direction
	incoming *direction.Direction
	// scratch receives datagrams from the inner transport before they are queued.
	scratch []byte
}

// NewConn wraps inner with the impairments described by cfg. The time that
// drives release of datagrams is taken from the clock embedded in ctx, if any,
// or the realtime clock otherwise.
//
// See clock.WithClock.
func NewConn(ctx context.Context, inner Transport, cfg Config, o ...Option) (*Conn, error) {
	opts, err := newOptions(o...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	outgoing, err := direction.New(cfg.Outgoing, opts.outgoing...)
	if err != nil {
		return nil, xerrors.Errorf("creating outgoing direction: %w", err)
	}
	incoming, err := direction.New(cfg.Incoming, opts.incoming...)
	if err != nil {
		return nil, xerrors.Errorf("creating incoming direction: %w", err)
	}
	return &Conn{
		inner:    inner,
		clock:    clock.GetClock(ctx),
		outgoing: outgoing,
		incoming: incoming,
		scratch:  make([]byte, opts.maxDatagramSize),
	}, nil
}

// Write queues a copy of p on the outgoing direction. It always reports the
// whole of p as written, including when the datagram is dropped.
func (c *Conn) Write(p []byte) (int, error) {
	datagram := append([]byte(nil), p...)
	c.submit(c.outgoing, measurements.AttrDirectionOutgoing, datagram)
	return len(p), nil
}

// Flush writes every due outgoing datagram to the wrapped transport and returns
// the number written. Flushing stops at the first error returned by the
// transport, which is returned unchanged; the datagram that failed is not
// retried.
func (c *Conn) Flush() (int, error) {
	var written int
	now := c.clock.Now()
	for {
		item, found := c.outgoing.PollReady(now)
		if !found {
			return written, nil
		}
		_, err := c.inner.Write(item.Payload)
		c.recordRelease(measurements.AttrDirectionOutgoing, item.AddedAt, now, err)
		if err != nil {
			log.Warnw("failed to write datagram to transport", "size", len(item.Payload), "error", err)
			return written, err
		}
		written++
	}
}

// Read reads at most one datagram from the wrapped transport into the incoming
// direction, then copies the earliest due incoming datagram into p. Zero bytes
// with a nil error are returned when no datagram is due. Like a UDP socket,
// datagrams longer than p are truncated. Errors returned by the wrapped
// transport are returned unchanged, after any datagram read alongside them has
// been submitted to the incoming direction.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.inner.Read(c.scratch)
	if n > 0 {
		datagram := append([]byte(nil), c.scratch[:n]...)
		c.submit(c.incoming, measurements.AttrDirectionIncoming, datagram)
	}
	if err != nil {
		return 0, err
	}

	now := c.clock.Now()
	item, found := c.incoming.PollReady(now)
	if !found {
		return 0, nil
	}
	c.recordRelease(measurements.AttrDirectionIncoming, item.AddedAt, now, nil)
	if len(item.Payload) > len(p) {
		log.Debugw("truncating incoming datagram", "size", len(item.Payload), "buffer", len(p))
	}
	return copy(p, item.Payload), nil
}

// Pending returns the number of datagrams held by each direction.
func (c *Conn) Pending() (outgoing, incoming int) {
	return c.outgoing.Len(), c.incoming.Len()
}

// NextReleaseAt returns the earliest time at which a held datagram in either
// direction becomes due, if any is held.
func (c *Conn) NextReleaseAt() (time.Time, bool) {
	out, outFound := c.outgoing.NextReleaseAt()
	in, inFound := c.incoming.NextReleaseAt()
	switch {
	case outFound && inFound:
		if in.Before(out) {
			return in, true
		}
		return out, true
	case outFound:
		return out, true
	default:
		return in, inFound
	}
}

// Close closes the wrapped transport if it implements io.Closer. Held datagrams
// are discarded.
func (c *Conn) Close() error {
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Conn) submit(d *direction.Direction, attr attribute.KeyValue, datagram []byte) {
	before := d.Len()
	verdict := d.Submit(c.clock.Now(), datagram)
	log.Debugw("impairment decided", "direction", attr.Value.AsString(), "decision", verdict, "size", len(datagram))

	ctx := context.Background()
	metrics.decisions.Add(ctx, 1, metric.WithAttributes(attr, measurements.AttrDecision(verdict.String())))
	if held := d.Len() - before; held > 0 {
		metrics.queued.Add(ctx, int64(held), metric.WithAttributes(attr))
	}
}

func (c *Conn) recordRelease(attr attribute.KeyValue, addedAt, now time.Time, err error) {
	ctx := context.Background()
	metrics.queued.Add(ctx, -1, metric.WithAttributes(attr))
	metrics.released.Add(ctx, 1, metric.WithAttributes(attr, measurements.Status(err)))
	metrics.holdTime.Record(ctx, now.Sub(addedAt).Milliseconds(), metric.WithAttributes(attr))
}
