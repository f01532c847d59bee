package decision

// Selector maps a uniformly drawn integer in [0, Total()) onto a Decision.
//
// The draw range is partitioned into contiguous sub-ranges, one per Decision in
// declaration order, each as wide as the corresponding weight. Outcomes with zero
// weight occupy an empty sub-range and are therefore never selected.
type Selector struct {
	// bounds holds the exclusive upper bound of each decision's sub-range.
	bounds [5]int
	total  int
}

// New instantiates a selector for the given weights. ErrZeroTotalWeight is
// returned if all weights are zero, and ErrTotalWeightTooLarge if their sum
// does not fit in an int.
func New(w Weights) (*Selector, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	var s Selector
	for i, weight := range w.inOrder() {
		s.total += int(weight)
		s.bounds[i] = s.total
	}
	return &s, nil
}

// Total returns the exclusive upper bound of draws accepted by Select.
func (s *Selector) Total() int { return s.total }

// Select returns the decision whose sub-range contains draw. Callers must bound
// draws to [0, Total()); a draw beyond the range resolves to the last outcome
// with a non-zero weight.
func (s *Selector) Select(draw int) Decision {
	last := Unaffected
	for i, bound := range s.bounds {
		width := bound
		if i > 0 {
			width -= s.bounds[i-1]
		}
		if width == 0 {
			continue
		}
		if draw < bound {
			return Decision(i)
		}
		last = Decision(i)
	}
	return last
}
