package transport

import (
	"errors"
	"net"
	"os"
	"time"
)

// ErrNoPeer signals that a datagram cannot be written because the peer address
// is not known yet.
var ErrNoPeer = errors.New("peer address is not known")

const defaultReadTimeout = time.Millisecond

// PacketConn exchanges datagrams with a single peer over a net.PacketConn.
//
// When constructed without a peer, the peer is learned from the first datagram
// read. Datagrams from any other address are discarded from then on.
//
// PacketConn is not safe for concurrent use.
type PacketConn struct {
	conn        net.PacketConn
	peer        net.Addr
	readTimeout time.Duration
}

// NewPacketConn wraps conn for exchanging datagrams with peer, which may be nil.
func NewPacketConn(conn net.PacketConn, peer net.Addr) *PacketConn {
	return &PacketConn{
		conn:        conn,
		peer:        peer,
		readTimeout: defaultReadTimeout,
	}
}

// SetReadTimeout sets how long Read waits for a datagram before reporting that
// none is available. Defaults to 1ms.
func (p *PacketConn) SetReadTimeout(timeout time.Duration) {
	p.readTimeout = timeout
}

// Peer returns the address of the peer, or nil if it is not known yet.
func (p *PacketConn) Peer() net.Addr { return p.peer }

// Read reads a datagram from the peer into b. Zero bytes and a nil error are
// returned if no datagram arrives within the read timeout, or if the datagram
// came from an address other than the peer.
func (p *PacketConn) Read(b []byte) (int, error) {
	if err := p.conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
		return 0, err
	}
	n, from, err := p.conn.ReadFrom(b)
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return 0, nil
	case err != nil:
		return 0, err
	case p.peer == nil:
		p.peer = from
	case from.String() != p.peer.String():
		return 0, nil
	}
	return n, nil
}

// Write writes b as a single datagram to the peer.
func (p *PacketConn) Write(b []byte) (int, error) {
	if p.peer == nil {
		return 0, ErrNoPeer
	}
	return p.conn.WriteTo(b, p.peer)
}

// Close closes the underlying connection.
func (p *PacketConn) Close() error { return p.conn.Close() }
