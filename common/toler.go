package common

import "math"

// Toler is a type for checking the convergence of a scalar quantity (a
// residual, a step length) against an absolute tolerance. Only the
// magnitude of the added values is compared.
type Toler struct {
	absTol float64

	recent float64
	added  bool
}

// Init initializes the Toler. A NaN tolerance disables the check.
func (t *Toler) Init(absTol float64) {
	t.absTol = absTol
	t.recent = math.Inf(1)
	t.added = false
}

// Add adds a new value to the toler (after an evaluation)
func (t *Toler) Add(v float64) {
	t.recent = math.Abs(v)
	t.added = true
}

// Recent returns the magnitude of the most recently added value
func (t *Toler) Recent() float64 {
	return t.recent
}

// AbsConverged returns true if the most recent value is strictly below the
// absolute tolerance
func (t *Toler) AbsConverged() bool {
	if !t.added || math.IsNaN(t.absTol) {
		return false
	}
	return t.recent < t.absTol
}
