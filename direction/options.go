package direction

import (
	"math/rand"
	"time"

	"github.com/filecoin-project/go-lossy/latency"
	"golang.org/x/xerrors"
)

const defaultReorderWindow = 32 * time.Millisecond

// Rand is a source of uniformly distributed integers. Implementations advance
// their state in place on every call and need not be safe for concurrent use.
type Rand interface {
	// Intn returns a uniformly distributed integer in [0, n). n is always
	// greater than zero.
	Intn(n int) int
}

// Option represents a configurable parameter of a Direction.
type Option func(*options) error

type options struct {
	rng           Rand
	latencyModel  latency.Model
	tamperer      Tamperer
	reorderWindow time.Duration
}

func newOptions(cfg Config, o ...Option) (*options, error) {
	opts := options{
		reorderWindow: defaultReorderWindow,
	}
	for _, apply := range o {
		if err := apply(&opts); err != nil {
			return nil, err
		}
	}
	if opts.rng == nil {
		opts.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	if opts.latencyModel == nil {
		midpoint, err := latency.NewMidpoint(cfg.MinLatency, cfg.MaxLatency)
		if err != nil {
			return nil, err
		}
		opts.latencyModel = midpoint
	}
	if opts.tamperer == nil {
		opts.tamperer = FlipBit
	}
	return &opts, nil
}

// WithRand sets the generator used to draw decisions, reorder jitter and
// tampering. The generator is owned by the Direction from then on. Defaults to
// a math/rand generator seeded with Config.Seed.
func WithRand(rng Rand) Option {
	return func(o *options) error {
		if rng == nil {
			return xerrors.New("rand cannot be nil")
		}
		o.rng = rng
		return nil
	}
}

// WithLatencyModel overrides the fixed base latency derived from
// Config.MinLatency and Config.MaxLatency with the given model, sampled once per
// queued datagram.
func WithLatencyModel(lm latency.Model) Option {
	return func(o *options) error {
		o.latencyModel = lm
		return nil
	}
}

// WithTamperer sets the transformation applied to tampered datagrams. Defaults
// to FlipBit.
func WithTamperer(t Tamperer) Option {
	return func(o *options) error {
		o.tamperer = t
		return nil
	}
}

// WithReorderWindow sets the exclusive upper bound of the extra delay added to
// reordered datagrams. The extra delay is drawn in whole milliseconds, hence the
// window must be at least one millisecond. Defaults to 32ms.
func WithReorderWindow(window time.Duration) Option {
	return func(o *options) error {
		if window < time.Millisecond {
			return xerrors.Errorf("reorder window must be at least 1ms: %s", window)
		}
		o.reorderWindow = window
		return nil
	}
}
