package measurements_test

import (
	"errors"
	"testing"

	"github.com/filecoin-project/go-lossy/internal/measurements"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	require.Equal(t, measurements.AttrStatusSuccess, measurements.Status(nil))
	require.Equal(t, measurements.AttrStatusError, measurements.Status(errors.New("fish")))
}

func TestMust(t *testing.T) {
	require.Equal(t, 42, measurements.Must(42, nil))
	require.Panics(t, func() { measurements.Must(0, errors.New("lobster")) })
}

func TestAttrDecision(t *testing.T) {
	attr := measurements.AttrDecision("drop")
	require.Equal(t, "decision", string(attr.Key))
	require.Equal(t, "drop", attr.Value.AsString())
}
