package lossy

import (
	"github.com/filecoin-project/go-lossy/direction"
	"golang.org/x/xerrors"
)

// defaultMaxDatagramSize is the largest UDP payload over IPv4.
const defaultMaxDatagramSize = 65507

// Option represents a configurable parameter of a Conn.
type Option func(*options) error

type options struct {
	outgoing        []direction.Option
	incoming        []direction.Option
	maxDatagramSize int
}

func newOptions(o ...Option) (*options, error) {
	opts := options{
		maxDatagramSize: defaultMaxDatagramSize,
	}
	for _, apply := range o {
		if err := apply(&opts); err != nil {
			return nil, err
		}
	}
	return &opts, nil
}

// WithOutgoingOptions sets options applied to the direction that impairs
// written datagrams.
func WithOutgoingOptions(o ...direction.Option) Option {
	return func(opts *options) error {
		opts.outgoing = append(opts.outgoing, o...)
		return nil
	}
}

// WithIncomingOptions sets options applied to the direction that impairs
// datagrams read from the wrapped transport.
func WithIncomingOptions(o ...direction.Option) Option {
	return func(opts *options) error {
		opts.incoming = append(opts.incoming, o...)
		return nil
	}
}

// WithMaxDatagramSize sets the size of the buffer used to read datagrams from
// the wrapped transport. Defaults to 65507 bytes.
func WithMaxDatagramSize(size int) Option {
	return func(opts *options) error {
		if size <= 0 {
			return xerrors.Errorf("max datagram size must be positive: %d", size)
		}
		opts.maxDatagramSize = size
		return nil
	}
}
