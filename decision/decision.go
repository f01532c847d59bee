package decision

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroTotalWeight signals that a selector was configured with weights
	// that sum to zero, i.e. no outcome could ever be selected.
	ErrZeroTotalWeight = errors.New("total decision weight must be greater than zero")
	// ErrTotalWeightTooLarge signals that the weights sum to more than the
	// largest int, the bound of a single draw.
	ErrTotalWeightTooLarge = errors.New("total decision weight exceeds maximum int")
)

const (
	Unaffected Decision = iota
	Drop
	Tamper
	Duplicate
	Reorder
)

// Decision is the impairment outcome chosen for a single datagram.
type Decision int

func (d Decision) String() string {
	switch d {
	case Unaffected:
		return "unaffected"
	case Drop:
		return "drop"
	case Tamper:
		return "tamper"
	case Duplicate:
		return "duplicate"
	case Reorder:
		return "reorder"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// Weights holds the relative likelihood of each Decision. A zero weight means
// the corresponding outcome is never selected.
type Weights struct {
	Unaffected uint `json:"unaffected"`
	Drop       uint `json:"drop"`
	Tamper     uint `json:"tamper"`
	Duplicate  uint `json:"duplicate"`
	Reorder    uint `json:"reorder"`
}

// DropOnly returns weights that drop the given percentage of datagrams and
// leave the rest unaffected. Percentages above 100 are capped.
func DropOnly(percent uint) Weights {
	if percent > 100 {
		percent = 100
	}
	return Weights{Unaffected: 100 - percent, Drop: percent}
}

// Validate checks that the weights sum to a total in [1, math.MaxInt].
func (w Weights) Validate() error {
	var total uint
	for _, weight := range w.inOrder() {
		if weight > math.MaxInt-total {
			return ErrTotalWeightTooLarge
		}
		total += weight
	}
	if total == 0 {
		return ErrZeroTotalWeight
	}
	return nil
}

// Total returns the sum of all weights. The result is only meaningful for
// weights that pass Validate.
func (w Weights) Total() int {
	return int(w.Unaffected + w.Drop + w.Tamper + w.Duplicate + w.Reorder)
}

// inOrder lists weights in declaration order of Decision.
func (w Weights) inOrder() [5]uint {
	return [5]uint{w.Unaffected, w.Drop, w.Tamper, w.Duplicate, w.Reorder}
}
