package latency

import (
	"math/rand"
	"time"

	"golang.org/x/xerrors"
)

var _ Model = (*Zipf)(nil)

// Zipf samples whole milliseconds from a Zipf distribution bounded by max:
// most samples are close to zero with a long tail towards max.
type Zipf struct {
	dist *rand.Zipf
}

// NewZipf instantiates a Zipf latency model. The parameters s and v must
// satisfy s > 1 and v >= 1; larger s concentrates samples closer to zero.
func NewZipf(seed int64, s, v float64, max time.Duration) (*Zipf, error) {
	if max < 0 {
		return nil, xerrors.Errorf("max latency cannot be negative: %s", max)
	}
	dist := rand.NewZipf(rand.New(rand.NewSource(seed)), s, v, uint64(max/time.Millisecond))
	if dist == nil {
		return nil, xerrors.Errorf("zipf parameters are out of band: s=%f, v=%f", s, v)
	}
	return &Zipf{dist: dist}, nil
}

func (z *Zipf) Sample() time.Duration {
	return time.Duration(z.dist.Uint64()) * time.Millisecond
}
