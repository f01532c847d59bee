package latency

import "time"

var _ Model = Offset{}

// Offset shifts every sample of Model by Base.
type Offset struct {
	Base  time.Duration
	Model Model
}

func (o Offset) Sample() time.Duration { return o.Base + o.Model.Sample() }
