package decision_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/filecoin-project/go-lossy/decision"
	"github.com/stretchr/testify/require"
)

func TestSelector_ZeroTotalIsRejected(t *testing.T) {
	subject, err := decision.New(decision.Weights{})
	require.ErrorIs(t, err, decision.ErrZeroTotalWeight)
	require.Nil(t, subject)
}

func TestSelector_TotalWeightBounds(t *testing.T) {
	tests := []struct {
		name    string
		weights decision.Weights
		wantErr error
	}{
		{name: "single weight above max int", weights: decision.Weights{Unaffected: 1 << 63}, wantErr: decision.ErrTotalWeightTooLarge},
		{name: "sum wraps to zero", weights: decision.Weights{Unaffected: math.MaxUint, Drop: 1}, wantErr: decision.ErrTotalWeightTooLarge},
		{name: "sum one above max int", weights: decision.Weights{Unaffected: math.MaxInt, Reorder: 1}, wantErr: decision.ErrTotalWeightTooLarge},
		{name: "sum of max int", weights: decision.Weights{Unaffected: math.MaxInt - 1, Reorder: 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorIs(t, test.weights.Validate(), test.wantErr)
			subject, err := decision.New(test.weights)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				require.Nil(t, subject)
				return
			}
			require.NoError(t, err)
			require.Equal(t, math.MaxInt, subject.Total())
			require.Equal(t, decision.Unaffected, subject.Select(0))
			require.Equal(t, decision.Reorder, subject.Select(math.MaxInt-1))
		})
	}
}

func TestSelector_Select(t *testing.T) {
	subject, err := decision.New(decision.Weights{
		Unaffected: 90,
		Drop:       1,
		Tamper:     0,
		Duplicate:  3,
		Reorder:    6,
	})
	require.NoError(t, err)
	require.Equal(t, 100, subject.Total())

	tests := []struct {
		draw int
		want decision.Decision
	}{
		{draw: 0, want: decision.Unaffected},
		{draw: 89, want: decision.Unaffected},
		{draw: 90, want: decision.Drop},
		{draw: 91, want: decision.Duplicate},
		{draw: 93, want: decision.Duplicate},
		{draw: 94, want: decision.Reorder},
		{draw: 99, want: decision.Reorder},
	}
	for _, test := range tests {
		require.Equal(t, test.want, subject.Select(test.draw), "draw %d", test.draw)
	}
}

func TestSelector_SingleOutcomeAlwaysWins(t *testing.T) {
	for _, want := range []decision.Decision{
		decision.Unaffected,
		decision.Drop,
		decision.Tamper,
		decision.Duplicate,
		decision.Reorder,
	} {
		t.Run(want.String(), func(t *testing.T) {
			var weights decision.Weights
			switch want {
			case decision.Unaffected:
				weights.Unaffected = 7
			case decision.Drop:
				weights.Drop = 7
			case decision.Tamper:
				weights.Tamper = 7
			case decision.Duplicate:
				weights.Duplicate = 7
			case decision.Reorder:
				weights.Reorder = 7
			}
			subject, err := decision.New(weights)
			require.NoError(t, err)
			for draw := 0; draw < subject.Total(); draw++ {
				require.Equal(t, want, subject.Select(draw))
			}
		})
	}
}

func TestSelector_OutOfRangeDrawResolvesToLastNonEmptyOutcome(t *testing.T) {
	subject, err := decision.New(decision.Weights{Unaffected: 1, Drop: 1})
	require.NoError(t, err)
	require.Equal(t, decision.Drop, subject.Select(subject.Total()+10))
	require.Equal(t, decision.Unaffected, subject.Select(-1))
}

func TestSelector_FrequenciesFollowWeights(t *testing.T) {
	const draws = 100_000
	subject, err := decision.New(decision.Weights{Unaffected: 50, Drop: 25, Reorder: 25})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1413))
	counts := make(map[decision.Decision]int)
	for i := 0; i < draws; i++ {
		counts[subject.Select(rng.Intn(subject.Total()))]++
	}
	require.Zero(t, counts[decision.Tamper])
	require.Zero(t, counts[decision.Duplicate])
	require.InDelta(t, 0.50, float64(counts[decision.Unaffected])/draws, 0.01)
	require.InDelta(t, 0.25, float64(counts[decision.Drop])/draws, 0.01)
	require.InDelta(t, 0.25, float64(counts[decision.Reorder])/draws, 0.01)
}

func TestDropOnly(t *testing.T) {
	require.Equal(t, decision.Weights{Unaffected: 97, Drop: 3}, decision.DropOnly(3))
	require.Equal(t, decision.Weights{Drop: 100}, decision.DropOnly(150))
	require.Equal(t, 100, decision.DropOnly(0).Total())
}

func TestDecision_String(t *testing.T) {
	require.Equal(t, "unaffected", decision.Unaffected.String())
	require.Equal(t, "drop", decision.Drop.String())
	require.Equal(t, "tamper", decision.Tamper.String())
	require.Equal(t, "duplicate", decision.Duplicate.String())
	require.Equal(t, "reorder", decision.Reorder.String())
	require.Equal(t, "unknown(42)", decision.Decision(42).String())
}
