package direction_test

import (
	"math/bits"
	"math/rand"
	"testing"
	"time"

	"github.com/filecoin-project/go-lossy/decision"
	"github.com/filecoin-project/go-lossy/direction"
	"github.com/filecoin-project/go-lossy/latency"
	"github.com/stretchr/testify/require"
)

var epoch = time.Time{}.Add(time.Hour)

// countingRand wraps a generator and counts the number of draws.
type countingRand struct {
	*rand.Rand
	draws int
}

func (c *countingRand) Intn(n int) int {
	c.draws++
	return c.Rand.Intn(n)
}

func newSubject(t *testing.T, weights decision.Weights, o ...direction.Option) *direction.Direction {
	t.Helper()
	subject, err := direction.New(direction.Config{
		Weights:    weights,
		MinLatency: 100 * time.Millisecond,
		MaxLatency: 200 * time.Millisecond,
		Seed:       1413,
	}, o...)
	require.NoError(t, err)
	return subject
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  direction.Config
		options []direction.Option
		wantErr error
	}{
		{
			name:    "zero weights",
			config:  direction.Config{},
			wantErr: decision.ErrZeroTotalWeight,
		},
		{
			name:    "total weight above max int",
			config:  direction.Config{Weights: decision.Weights{Unaffected: 1 << 63}},
			wantErr: decision.ErrTotalWeightTooLarge,
		},
		{
			name:   "negative latency",
			config: direction.Config{Weights: decision.DropOnly(1), MinLatency: -1, MaxLatency: 1},
		},
		{
			name:   "inverted latency",
			config: direction.Config{Weights: decision.DropOnly(1), MinLatency: time.Second},
		},
		{
			name:    "nil rand",
			config:  direction.Config{Weights: decision.DropOnly(1)},
			options: []direction.Option{direction.WithRand(nil)},
		},
		{
			name:    "sub-millisecond reorder window",
			config:  direction.Config{Weights: decision.DropOnly(1)},
			options: []direction.Option{direction.WithReorderWindow(time.Microsecond)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			subject, err := direction.New(test.config, test.options...)
			require.Error(t, err)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
			}
			require.Nil(t, subject)
		})
	}
}

func TestDirection_UnaffectedIsReleasedAfterBaseLatency(t *testing.T) {
	subject := newSubject(t, decision.Weights{Unaffected: 1})

	require.Equal(t, decision.Unaffected, subject.Submit(epoch, []byte("fish")))
	require.Equal(t, 1, subject.Len())

	next, found := subject.NextReleaseAt()
	require.True(t, found)
	require.Equal(t, epoch.Add(150*time.Millisecond), next)

	_, found = subject.PollReady(epoch.Add(149 * time.Millisecond))
	require.False(t, found)

	item, found := subject.PollReady(epoch.Add(150 * time.Millisecond))
	require.True(t, found)
	require.Equal(t, []byte("fish"), item.Payload)
	require.Equal(t, epoch, item.AddedAt)
	require.Zero(t, subject.Len())
}

func TestDirection_DropNeverQueues(t *testing.T) {
	subject := newSubject(t, decision.Weights{Drop: 1})
	for i := 0; i < 100; i++ {
		require.Equal(t, decision.Drop, subject.Submit(epoch, []byte{byte(i)}))
		require.Zero(t, subject.Len())
	}
	_, found := subject.PollReady(epoch.Add(time.Hour))
	require.False(t, found)
}

func TestDirection_DuplicateQueuesTwoIndependentCopies(t *testing.T) {
	subject := newSubject(t, decision.Weights{Duplicate: 1})

	require.Equal(t, decision.Duplicate, subject.Submit(epoch, []byte("lobster")))
	require.Equal(t, 2, subject.Len())

	now := epoch.Add(150 * time.Millisecond)
	first, found := subject.PollReady(now)
	require.True(t, found)
	second, found := subject.PollReady(now)
	require.True(t, found)
	require.Equal(t, first.ReleaseAt, second.ReleaseAt)
	require.Equal(t, first.Payload, second.Payload)

	first.Payload[0] = 'L'
	require.Equal(t, []byte("lobster"), second.Payload)
}

func TestDirection_ReorderAddsBoundedJitter(t *testing.T) {
	const submissions = 1000
	subject := newSubject(t, decision.Weights{Reorder: 1})

	base := epoch.Add(150 * time.Millisecond)
	seen := make(map[time.Duration]struct{})
	for i := 0; i < submissions; i++ {
		require.Equal(t, decision.Reorder, subject.Submit(epoch, []byte{byte(i)}))
	}
	for i := 0; i < submissions; i++ {
		item, found := subject.PollReady(epoch.Add(time.Hour))
		require.True(t, found)
		jitter := item.ReleaseAt.Sub(base)
		require.GreaterOrEqual(t, jitter, time.Duration(0))
		require.Less(t, jitter, 32*time.Millisecond)
		require.Zero(t, jitter%time.Millisecond)
		seen[jitter] = struct{}{}
	}
	require.Len(t, seen, 32)
}

func TestDirection_ReorderWindow(t *testing.T) {
	subject := newSubject(t, decision.Weights{Reorder: 1}, direction.WithReorderWindow(time.Millisecond))
	subject.Submit(epoch, []byte("barreleye"))
	next, found := subject.NextReleaseAt()
	require.True(t, found)
	require.Equal(t, epoch.Add(150*time.Millisecond), next)
}

func TestDirection_TamperFlipsExactlyOneBit(t *testing.T) {
	subject := newSubject(t, decision.Weights{Tamper: 1})

	original := []byte("fishmonger")
	payload := append([]byte(nil), original...)
	require.Equal(t, decision.Tamper, subject.Submit(epoch, payload))
	require.Equal(t, original, payload, "submitted payload must not be modified in place")

	item, found := subject.PollReady(epoch.Add(150 * time.Millisecond))
	require.True(t, found)
	require.Len(t, item.Payload, len(original))
	var flipped int
	for i := range original {
		flipped += bits.OnesCount8(original[i] ^ item.Payload[i])
	}
	require.Equal(t, 1, flipped)
}

func TestDirection_TamperEmptyPayload(t *testing.T) {
	subject := newSubject(t, decision.Weights{Tamper: 1})
	require.Equal(t, decision.Tamper, subject.Submit(epoch, []byte{}))
	item, found := subject.PollReady(epoch.Add(time.Second))
	require.True(t, found)
	require.Empty(t, item.Payload)
}

func TestDirection_CustomTamperer(t *testing.T) {
	subject := newSubject(t, decision.Weights{Tamper: 1}, direction.WithTamperer(direction.Truncate))

	original := []byte("barreleye")
	subject.Submit(epoch, original)
	item, found := subject.PollReady(epoch.Add(time.Second))
	require.True(t, found)
	require.NotEmpty(t, item.Payload)
	require.Less(t, len(item.Payload), len(original))
	require.Equal(t, original[:len(item.Payload)], item.Payload)
}

func TestDirection_LatencyModel(t *testing.T) {
	subject := newSubject(t, decision.Weights{Unaffected: 1}, direction.WithLatencyModel(latency.None))
	subject.Submit(epoch, []byte("fish"))
	item, found := subject.PollReady(epoch)
	require.True(t, found)
	require.Equal(t, epoch, item.ReleaseAt)
}

func TestDirection_DrawsOncePerDecision(t *testing.T) {
	tests := []struct {
		name      string
		weights   decision.Weights
		wantDraws int
	}{
		{name: "unaffected", weights: decision.Weights{Unaffected: 1}, wantDraws: 1},
		{name: "drop", weights: decision.Weights{Drop: 1}, wantDraws: 1},
		{name: "duplicate", weights: decision.Weights{Duplicate: 1}, wantDraws: 1},
		{name: "reorder", weights: decision.Weights{Reorder: 1}, wantDraws: 2},
		{name: "tamper", weights: decision.Weights{Tamper: 1}, wantDraws: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rng := &countingRand{Rand: rand.New(rand.NewSource(7))}
			subject := newSubject(t, test.weights, direction.WithRand(rng))
			subject.Submit(epoch, []byte("fish"))
			require.Equal(t, test.wantDraws, rng.draws)
		})
	}
}

func TestDirection_SameSeedSameOutcome(t *testing.T) {
	weights := decision.Weights{Unaffected: 90, Drop: 1, Tamper: 0, Duplicate: 3, Reorder: 6}
	one := newSubject(t, weights)
	other := newSubject(t, weights)

	counts := make(map[decision.Decision]int)
	for i := 0; i < 10_000; i++ {
		now := epoch.Add(time.Duration(i) * time.Millisecond)
		verdict := one.Submit(now, []byte{byte(i)})
		require.Equal(t, verdict, other.Submit(now, []byte{byte(i)}))
		counts[verdict]++
	}
	require.Zero(t, counts[decision.Tamper])
	require.Equal(t, one.Len(), other.Len())
	require.Equal(t, counts[decision.Unaffected]+counts[decision.Reorder]+2*counts[decision.Duplicate], one.Len())

	for {
		oneItem, oneFound := one.PollReady(epoch.Add(time.Hour))
		otherItem, otherFound := other.PollReady(epoch.Add(time.Hour))
		require.Equal(t, oneFound, otherFound)
		if !oneFound {
			break
		}
		require.Equal(t, oneItem, otherItem)
	}
}
