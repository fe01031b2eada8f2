package anim

import "math"

// Series animates one cell per index of an array-valued target.
//
// A NaN entry in the target means "no update this tick" for that index.
type Series struct {
	K     float64
	cells []float64
}

func NewSeries(k float64) *Series {
	if k <= 0 || k > 1 {
		k = DefaultK
	}
	return &Series{K: k}
}

// Step advances every cell one tick and returns the displayed values. The
// returned slice is owned by the series and valid until the next call.
func (s *Series) Step(targets []float64) []float64 {
	n := len(targets)
	if n < len(s.cells) {
		s.cells = s.cells[:n]
	}
	for i, t := range targets {
		if i >= len(s.cells) {
			// New cells start at their own target.
			if math.IsNaN(t) {
				t = 0
			}
			s.cells = append(s.cells, t)
			continue
		}
		if math.IsNaN(t) {
			continue
		}
		s.cells[i] += (t - s.cells[i]) * s.K
	}
	return s.cells
}

func (s *Series) Values() []float64 { return s.cells }
func (s *Series) Len() int          { return len(s.cells) }

// At returns the displayed value at i, or 0 when out of range.
func (s *Series) At(i int) float64 {
	if i < 0 || i >= len(s.cells) {
		return 0
	}
	return s.cells[i]
}

// Snap jumps cell i straight to v.
func (s *Series) Snap(i int, v float64) {
	if i >= 0 && i < len(s.cells) {
		s.cells[i] = v
	}
}

func (s *Series) Reset() { s.cells = s.cells[:0] }
