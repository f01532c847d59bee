package direction

import (
	"time"

	"github.com/filecoin-project/go-lossy/decision"
	"github.com/filecoin-project/go-lossy/latency"
	"github.com/filecoin-project/go-lossy/queue"
)

// Direction impairs datagrams travelling one way, e.g. from the application to
// the network. Each submitted datagram is dropped, corrupted, duplicated,
// delayed beyond its base latency or left unaffected according to the
// configured weights, and held in a release queue until due.
//
// Direction never blocks and has no notion of wall-clock time: the current time
// is passed to every operation and must not decrease across calls. It is not
// safe for concurrent use.
type Direction struct {
	selector      *decision.Selector
	rng           Rand
	latency       latency.Model
	tamperer      Tamperer
	reorderWindow time.Duration
	datagrams     *queue.Queue[[]byte]
}

// New instantiates a new Direction. An error is returned if cfg is invalid or
// any of the given options fail to apply.
func New(cfg Config, o ...Option) (*Direction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := newOptions(cfg, o...)
	if err != nil {
		return nil, err
	}
	selector, err := decision.New(cfg.Weights)
	if err != nil {
		return nil, err
	}
	return &Direction{
		selector:      selector,
		rng:           opts.rng,
		latency:       opts.latencyModel,
		tamperer:      opts.tamperer,
		reorderWindow: opts.reorderWindow,
		datagrams:     queue.New[[]byte](),
	}, nil
}

// Submit decides the fate of payload and queues it accordingly. The payload is
// retained by the Direction and must not be modified by the caller afterwards.
// The decision is returned for diagnostics only; it has already taken effect.
//
// Exactly one draw is made from the generator to decide. Reorder draws once
// more for the extra delay and Tamper may draw to corrupt the payload.
func (d *Direction) Submit(now time.Time, payload []byte) decision.Decision {
	verdict := d.selector.Select(d.rng.Intn(d.selector.Total()))
	if verdict == decision.Drop {
		return verdict
	}

	releaseAt := now.Add(d.baseLatency())
	switch verdict {
	case decision.Duplicate:
		d.datagrams.Push(now, releaseAt, payload)
		payload = append([]byte(nil), payload...)
	case decision.Reorder:
		releaseAt = releaseAt.Add(d.jitter())
	case decision.Tamper:
		payload = d.tamperer.Tamper(payload, d.rng)
	}
	d.datagrams.Push(now, releaseAt, payload)
	return verdict
}

// PollReady returns the earliest queued datagram if it is due at now.
func (d *Direction) PollReady(now time.Time) (queue.Item[[]byte], bool) {
	return d.datagrams.PopReady(now)
}

// NextReleaseAt returns the time at which the earliest queued datagram becomes
// due, if there is any.
func (d *Direction) NextReleaseAt() (time.Time, bool) {
	return d.datagrams.NextReleaseAt()
}

// Len returns the number of queued datagrams.
func (d *Direction) Len() int { return d.datagrams.Len() }

func (d *Direction) baseLatency() time.Duration {
	if sample := d.latency.Sample(); sample > 0 {
		return sample
	}
	return 0
}

func (d *Direction) jitter() time.Duration {
	return time.Duration(d.rng.Intn(int(d.reorderWindow/time.Millisecond))) * time.Millisecond
}
