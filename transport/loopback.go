package transport

import "errors"

// ErrClosed signals an operation on a closed Loopback.
var ErrClosed = errors.New("transport is closed")

// Loopback is an in-memory transport that delivers every written datagram back
// to its own reader in write order.
//
// Loopback is not safe for concurrent use.
type Loopback struct {
	datagrams [][]byte
	closed    bool
}

// NewLoopback instantiates an empty Loopback.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Write queues a copy of b for reading.
func (l *Loopback) Write(b []byte) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}
	l.datagrams = append(l.datagrams, append([]byte(nil), b...))
	return len(b), nil
}

// Read copies the oldest written datagram into b, truncating it if b is too
// short. Zero bytes and a nil error are returned if nothing has been written.
func (l *Loopback) Read(b []byte) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}
	if len(l.datagrams) == 0 {
		return 0, nil
	}
	next := l.datagrams[0]
	l.datagrams[0] = nil
	l.datagrams = l.datagrams[1:]
	return copy(b, next), nil
}

// Len returns the number of datagrams yet to be read.
func (l *Loopback) Len() int { return len(l.datagrams) }

// Close discards pending datagrams; subsequent reads and writes fail.
func (l *Loopback) Close() error {
	l.closed = true
	l.datagrams = nil
	return nil
}
