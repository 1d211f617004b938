package root

import (
	"math"

	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/write"
)

// Secant finds a root of f with the secant method started from guess0 and
// guess1. The slope of the line through the two most recent iterates stands
// in for the derivative, so f is only ever evaluated.
//
// Each iteration stops with the current iterate if |f(x)| < tol, and with the
// next iterate if the step is shorter than tol. At most
// settings.MaximumIterations iterations are taken.
func Secant(f Function, guess0, guess1, tol float64, settings *Settings) (*Result, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.validate(tol); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &ConfigError{Param: "function", Reason: "function is nil"}
	}
	if err := checkFinite("first guess", guess0); err != nil {
		return nil, err
	}
	if err := checkFinite("second guess", guess1); err != nil {
		return nil, err
	}

	s := &SecantMethod{Tol: tol, SingularTol: settings.SingularTol}
	h := NewHelper()
	h.AddDataAdder(s)
	h.Init(settings.CommonSettings, f, "secant")

	p, err := s.Init(f, guess0, guess1)
	h.Record(p)
	if err != nil {
		return nil, h.abort(err)
	}
	return Solve(h, s, settings, "secant")
}

// SecantMethod is the secant method,
// x2 = x1 - f(x1) (x1 - x0) / (f(x1) - f(x0))
type SecantMethod struct {
	Tol         float64 // Tolerance on both |f(x)| and the step length
	SingularTol float64 // Differences f(x1) - f(x0) with a smaller magnitude stop the method

	f Function

	prev Point
	curr float64
	iter int

	residual common.Toler
	step     common.Toler

	status common.Status
	root   float64
}

// Init evaluates the first guess, returning the evaluated point
func (s *SecantMethod) Init(f Function, guess0, guess1 float64) (Point, error) {
	if !(s.Tol > 0) {
		return Point{}, &ConfigError{Param: "tolerance", Reason: "must be positive"}
	}
	s.f = f
	s.iter = 0
	s.residual.Init(s.Tol)
	s.step.Init(s.Tol)
	s.status = common.Continue

	s.prev = Point{X: guess0, F: f.Value(guess0)}
	s.curr = guess1
	if !finite(s.prev.F) {
		return s.prev, &NumericalError{Quantity: "f(x)", X: guess0, Value: s.prev.F}
	}
	return s.prev, nil
}

func (s *SecantMethod) Iterate() (loc, val float64, nFunEvals int, err error) {
	s.iter++
	x := s.curr
	fx := s.f.Value(x)

	if !finite(fx) {
		return x, fx, 1, &NumericalError{Quantity: "f(x)", X: x, Value: fx, Iteration: s.iter}
	}
	s.residual.Add(fx)
	if s.residual.AbsConverged() {
		s.converge(common.ResidualTol, x)
		return x, fx, 1, nil
	}

	df := fx - s.prev.F
	if math.Abs(df) < s.SingularTol {
		return x, fx, 1, &SingularDerivativeError{X: x, Slope: df / (x - s.prev.X), Iteration: s.iter}
	}

	next := x - fx*(x-s.prev.X)/df
	s.step.Add(next - x)
	s.prev = Point{X: x, F: fx}
	s.curr = next
	if s.step.AbsConverged() {
		s.converge(common.StepTol, next)
	}
	return x, fx, 1, nil
}

func (s *SecantMethod) converge(status common.Status, root float64) {
	s.status = status
	s.root = root
}

func (s *SecantMethod) Status() common.Status { return s.status }

// Root returns the converged root, or the next iterate if the method has
// not converged
func (s *SecantMethod) Root() float64 {
	if s.status != common.Continue {
		return s.root
	}
	return s.curr
}

func (s *SecantMethod) AppendWriteData(v []*write.Value) []*write.Value {
	v = append(v, &write.Value{Heading: "Prev", Value: s.prev.X})
	v = append(v, &write.Value{Heading: "Step", Value: s.step.Recent()})
	return v
}
