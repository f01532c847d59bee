package direction

import (
	"time"

	"github.com/filecoin-project/go-lossy/decision"
	"golang.org/x/xerrors"
)

// Config describes the impairment applied to datagrams travelling in one
// direction.
type Config struct {
	// Weights determine the likelihood of each decision.
	Weights decision.Weights
	// MinLatency and MaxLatency bound the base latency of every released
	// datagram. The base latency is fixed to their midpoint.
	MinLatency time.Duration
	MaxLatency time.Duration
	// Seed of the pseudo random generator that drives decisions, unless a
	// generator is explicitly provided via WithRand.
	Seed int64
}

// Validate checks that the configuration can be used to construct a Direction.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.MinLatency < 0 {
		return xerrors.Errorf("min latency cannot be negative: %s", c.MinLatency)
	}
	if c.MaxLatency < c.MinLatency {
		return xerrors.Errorf("max latency %s is less than min latency %s", c.MaxLatency, c.MinLatency)
	}
	return nil
}
