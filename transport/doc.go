// Package transport provides datagram transports that satisfy the non-blocking
// read contract expected by lossy.Conn: a read that finds nothing to deliver
// returns zero bytes and a nil error.
package transport
