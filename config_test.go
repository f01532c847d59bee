package lossy_test

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/filecoin-project/go-lossy"
	"github.com/filecoin-project/go-lossy/decision"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, lossy.DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*lossy.Config)
	}{
		{name: "zero outgoing weights", mutate: func(c *lossy.Config) { c.Outgoing.Weights = decision.Weights{} }},
		{name: "zero incoming weights", mutate: func(c *lossy.Config) { c.Incoming.Weights = decision.Weights{} }},
		{name: "negative latency", mutate: func(c *lossy.Config) { c.Outgoing.MinLatency = -time.Second }},
		{name: "inverted latency", mutate: func(c *lossy.Config) { c.Incoming.MaxLatency = c.Incoming.MinLatency - 1 }},
		{name: "total weight above max int", mutate: func(c *lossy.Config) { c.Outgoing.Weights = decision.Weights{Unaffected: 1 << 63} }},
		{name: "total weight wraps to zero", mutate: func(c *lossy.Config) { c.Incoming.Weights = decision.Weights{Unaffected: math.MaxUint, Drop: 1} }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := lossy.DefaultConfig()
			test.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_MarshalUnmarshal(t *testing.T) {
	want := lossy.DefaultConfig()
	want.Incoming.Weights.Tamper = 2

	b, err := want.Marshal()
	require.NoError(t, err)

	var got lossy.Config
	require.NoError(t, got.Unmarshal(bytes.NewReader(b)))
	require.Equal(t, want, got)
}

func TestConfig_UnmarshalRejects(t *testing.T) {
	var subject lossy.Config
	require.Error(t, subject.Unmarshal(strings.NewReader("fish")))
	require.ErrorIs(t, subject.Unmarshal(strings.NewReader(`{"Outgoing":{"MaxLatency":1}}`)), decision.ErrZeroTotalWeight)

	oversized := `{
		"Outgoing": {"Weights": {"unaffected": 9223372036854775808}},
		"Incoming": {"Weights": {"unaffected": 1}}
	}`
	require.ErrorIs(t, subject.Unmarshal(strings.NewReader(oversized)), decision.ErrTotalWeightTooLarge)
}
