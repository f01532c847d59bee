package latency

import (
	"time"

	"golang.org/x/xerrors"
)

var _ Model = Fixed(0)

// Fixed is a constant latency model.
type Fixed time.Duration

// NewMidpoint returns a fixed latency model that sits halfway between min and
// max.
func NewMidpoint(min, max time.Duration) (Fixed, error) {
	switch {
	case min < 0:
		return 0, xerrors.Errorf("min latency cannot be negative: %s", min)
	case max < min:
		return 0, xerrors.Errorf("max latency %s is less than min latency %s", max, min)
	}
	return Fixed(min + (max-min)/2), nil
}

// Sample always returns the same latency.
func (f Fixed) Sample() time.Duration { return time.Duration(f) }
