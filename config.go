package lossy

import (
	"encoding/json"
	"io"
	"time"

	"github.com/filecoin-project/go-lossy/decision"
	"github.com/filecoin-project/go-lossy/direction"
	"golang.org/x/xerrors"
)

// Config describes the impairment applied to both directions of a Conn.
type Config struct {
	// Outgoing impairs datagrams written by the application.
	Outgoing direction.Config
	// Incoming impairs datagrams read from the wrapped transport.
	Incoming direction.Config
}

// DefaultConfig returns a configuration that mostly leaves datagrams
// unaffected, with occasional loss, duplication and reordering in both
// directions and a base latency of 150ms each way.
func DefaultConfig() Config {
	weights := decision.Weights{
		Unaffected: 90,
		Drop:       1,
		Tamper:     0,
		Duplicate:  3,
		Reorder:    6,
	}
	return Config{
		Outgoing: direction.Config{
			Weights:    weights,
			MinLatency: 100 * time.Millisecond,
			MaxLatency: 200 * time.Millisecond,
			Seed:       0x264803e715714f95,
		},
		Incoming: direction.Config{
			Weights:    weights,
			MinLatency: 100 * time.Millisecond,
			MaxLatency: 200 * time.Millisecond,
			Seed:       0x6f21c5d8a79e3b40,
		},
	}
}

// Validate checks that both directions are usable.
func (c Config) Validate() error {
	if err := c.Outgoing.Validate(); err != nil {
		return xerrors.Errorf("invalid outgoing config: %w", err)
	}
	if err := c.Incoming.Validate(); err != nil {
		return xerrors.Errorf("invalid incoming config: %w", err)
	}
	return nil
}

// Marshal encodes the config as JSON. Durations are encoded in nanoseconds.
func (c Config) Marshal() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, xerrors.Errorf("marshaling JSON: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a JSON config from r and validates it.
func (c *Config) Unmarshal(r io.Reader) error {
	if err := json.NewDecoder(r).Decode(c); err != nil {
		return xerrors.Errorf("decoding JSON: %w", err)
	}
	return c.Validate()
}
