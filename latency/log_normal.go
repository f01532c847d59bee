package latency

import (
	"math"
	"math/rand"
	"time"

	"golang.org/x/xerrors"
)

var _ Model = (*LogNormal)(nil)

// LogNormal samples latencies from a log-normal distribution with the given
// median. Samples are never negative and have an unbounded tail.
type LogNormal struct {
	rng    *rand.Rand
	median float64
}

func NewLogNormal(seed int64, median time.Duration) (*LogNormal, error) {
	if median < 0 {
		return nil, xerrors.Errorf("median latency cannot be negative: %s", median)
	}
	return &LogNormal{
		rng:    rand.New(rand.NewSource(seed)),
		median: float64(median),
	}, nil
}

func (l *LogNormal) Sample() time.Duration {
	return time.Duration(math.Exp(l.rng.NormFloat64()) * l.median)
}
