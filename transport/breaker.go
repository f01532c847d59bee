package transport

import (
	"errors"
	"io"
	"time"

	"github.com/filecoin-project/go-lossy/internal/clock"
)

const (
	Closed BreakerStatus = iota
	Open
	HalfOpen
)

// ErrBreakerOpen signals that a write was not attempted because the breaker is
// open. See Breaker.Write.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerStatus is the state of a Breaker.
type BreakerStatus int

// Datagram is a duplex datagram transport.
type Datagram interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Breaker guards writes to a transport with a circuit breaker: after
// maxFailures consecutive failed writes the circuit opens and writes fail fast
// with ErrBreakerOpen until resetTimeout has elapsed. A single write is then
// attempted; its success closes the circuit, and its failure opens it again.
// Reads pass through untouched.
//
// Breaker is not safe for concurrent use.
type Breaker struct {
	inner        Datagram
	clock        clock.Clock
	maxFailures  int
	resetTimeout time.Duration

	failures    int
	lastFailure time.Time
	status      BreakerStatus
}

// NewBreaker wraps inner with a circuit breaker that measures resetTimeout
// using clk.
func NewBreaker(inner Datagram, clk clock.Clock, maxFailures int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		inner:        inner,
		clock:        clk,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
	}
}

// Read reads from the wrapped transport.
func (b *Breaker) Read(p []byte) (int, error) { return b.inner.Read(p) }

// Write writes p to the wrapped transport unless the circuit is open.
func (b *Breaker) Write(p []byte) (int, error) {
	if b.status == Open {
		if b.clock.Since(b.lastFailure) < b.resetTimeout {
			return 0, ErrBreakerOpen
		}
		b.status = HalfOpen
	}
	n, err := b.inner.Write(p)
	if err != nil {
		b.failures++
		if b.status == HalfOpen || b.failures >= b.maxFailures {
			b.status = Open
			b.lastFailure = b.clock.Now()
		}
		return n, err
	}
	b.status = Closed
	b.failures = 0
	return n, nil
}

// Status returns the current status of the circuit.
func (b *Breaker) Status() BreakerStatus { return b.status }

// Close closes the wrapped transport if it implements io.Closer.
func (b *Breaker) Close() error {
	if closer, ok := b.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
