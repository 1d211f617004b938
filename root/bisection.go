package root

import (
	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/write"
)

// Bisect finds a root of f in [lower, upper] by bisection. f(lower) and
// f(upper) must not have the same sign. The search stops when the bracket
// is no wider than tol, and the midpoint of the final bracket is returned.
// An endpoint or midpoint where f is exactly zero is returned immediately.
//
// Bisection always terminates for a valid bracket, so
// settings.MaximumIterations is not applied.
func Bisect(f Function, lower, upper, tol float64, settings *Settings) (*Result, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.validate(tol); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &ConfigError{Param: "function", Reason: "function is nil"}
	}
	if err := checkFinite("lower bound", lower); err != nil {
		return nil, err
	}
	if err := checkFinite("upper bound", upper); err != nil {
		return nil, err
	}

	cs := *settings.CommonSettings
	cs.MaximumIterations = -1

	b := &Bisection{Tol: tol}
	h := NewHelper()
	h.AddDataAdder(b)
	h.Init(&cs, f, "bisection")

	pts, err := b.Init(f, lower, upper)
	h.Record(pts...)
	if err != nil {
		return nil, h.abort(err)
	}
	return Solve(h, b, settings, "bisection")
}

// Bisection halves a sign-changing bracket until it is narrower than Tol
type Bisection struct {
	Tol float64

	f Function

	lower Point
	upper Point

	status   common.Status
	root     float64
	brackets []Bracket
}

// Init evaluates the bracket endpoints, returning the evaluated points.
// The bounds are swapped if lower > upper.
func (b *Bisection) Init(f Function, lower, upper float64) ([]Point, error) {
	if !(b.Tol > 0) {
		return nil, &ConfigError{Param: "tolerance", Reason: "must be positive"}
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	b.f = f
	b.status = common.Continue
	b.brackets = b.brackets[:0]

	b.lower = Point{X: lower, F: f.Value(lower)}
	b.upper = Point{X: upper, F: f.Value(upper)}
	pts := []Point{b.lower, b.upper}

	// An exact zero is returned whatever the other endpoint evaluates to
	switch {
	case b.lower.F == 0:
		b.converge(common.ExactRoot, lower)
	case b.upper.F == 0:
		b.converge(common.ExactRoot, upper)
	case !finite(b.lower.F):
		return pts, &NumericalError{Quantity: "f(x)", X: lower, Value: b.lower.F}
	case !finite(b.upper.F):
		return pts, &NumericalError{Quantity: "f(x)", X: upper, Value: b.upper.F}
	case !oppositeSigns(b.lower.F, b.upper.F):
		return pts, &DomainError{Lower: lower, Upper: upper, FLower: b.lower.F, FUpper: b.upper.F}
	default:
		b.checkWidth()
	}
	b.brackets = append(b.brackets, Bracket{Lower: b.lower, Upper: b.upper})
	return pts, nil
}

func (b *Bisection) Iterate() (loc, val float64, nFunEvals int, err error) {
	mid := midpoint(b.lower.X, b.upper.X)
	fmid := b.f.Value(mid)
	if !finite(fmid) {
		return mid, fmid, 1, &NumericalError{Quantity: "f(x)", X: mid, Value: fmid, Iteration: len(b.brackets)}
	}
	p := Point{X: mid, F: fmid}
	if fmid == 0 {
		b.converge(common.ExactRoot, mid)
		return mid, fmid, 1, nil
	}

	if oppositeSigns(b.lower.F, fmid) {
		b.upper = p
	} else {
		b.lower = p
	}
	b.brackets = append(b.brackets, Bracket{Lower: b.lower, Upper: b.upper})
	b.checkWidth()
	return mid, fmid, 1, nil
}

// checkWidth converges when the bracket is no wider than the tolerance, or
// when its endpoints are adjacent floats and it cannot shrink any further
func (b *Bisection) checkWidth() {
	mid := midpoint(b.lower.X, b.upper.X)
	if b.upper.X-b.lower.X <= b.Tol || mid <= b.lower.X || mid >= b.upper.X {
		b.converge(common.BracketTol, mid)
	}
}

func (b *Bisection) converge(status common.Status, root float64) {
	b.status = status
	b.root = root
}

func (b *Bisection) Status() common.Status { return b.status }

// Root returns the converged root, or the midpoint of the current bracket
// if the method has not converged
func (b *Bisection) Root() float64 {
	if b.status != common.Continue {
		return b.root
	}
	return midpoint(b.lower.X, b.upper.X)
}

// Brackets returns the bracket after every step, starting with the initial one
func (b *Bisection) Brackets() []Bracket {
	out := make([]Bracket, len(b.brackets))
	copy(out, b.brackets)
	return out
}

func (b *Bisection) AppendWriteData(v []*write.Value) []*write.Value {
	v = append(v, &write.Value{Heading: "Lower", Value: b.lower.X})
	v = append(v, &write.Value{Heading: "Upper", Value: b.upper.X})
	return v
}

// midpoint does not overflow for bounds near the largest float64
func midpoint(a, b float64) float64 {
	return a/2 + b/2
}

func oppositeSigns(a, b float64) bool {
	return (a < 0 && b > 0) || (a > 0 && b < 0)
}
