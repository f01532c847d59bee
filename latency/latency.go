package latency

import "time"

// Model samples the latency applied to a datagram before it is released.
type Model interface {
	Sample() time.Duration
}
