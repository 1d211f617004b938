package root

import (
	"math"

	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/write"
)

// NewtonRaphson finds a root of f starting from guess with Newton's method.
// f is converted with NewEvaluable, so it may be a symbolic expression (exact
// derivative) or an opaque function (central difference derivative).
//
// Each iteration stops with the current iterate if |f(x)| < tol, and with the
// next iterate if the step is shorter than tol. At most
// settings.MaximumIterations iterations are taken.
func NewtonRaphson(f interface{}, guess, tol float64, settings *Settings) (*Result, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.validate(tol); err != nil {
		return nil, err
	}
	if err := checkFinite("guess", guess); err != nil {
		return nil, err
	}
	vd, err := NewEvaluable(f, settings)
	if err != nil {
		return nil, err
	}

	n := &Newton{Tol: tol, SingularTol: settings.SingularTol}
	h := NewHelper()
	h.AddDataAdder(n)
	h.Init(settings.CommonSettings, f, "Newton-Raphson")

	if err := n.Init(vd, guess); err != nil {
		return nil, h.abort(err)
	}
	return Solve(h, n, settings, "newton-raphson")
}

// Newton is Newton's method, x1 = x0 - f(x0) / f'(x0)
type Newton struct {
	Tol         float64 // Tolerance on both |f(x)| and the step length
	SingularTol float64 // Derivatives with a smaller magnitude stop the method

	f ValueDeriver

	x     float64
	deriv float64
	iter  int

	residual common.Toler
	step     common.Toler

	status common.Status
	root   float64
}

func (n *Newton) Init(f ValueDeriver, guess float64) error {
	if !(n.Tol > 0) {
		return &ConfigError{Param: "tolerance", Reason: "must be positive"}
	}
	n.f = f
	n.x = guess
	n.deriv = math.NaN()
	n.iter = 0
	n.residual.Init(n.Tol)
	n.step.Init(n.Tol)
	n.status = common.Continue
	return nil
}

func (n *Newton) Iterate() (loc, val float64, nFunEvals int, err error) {
	n.iter++
	x0 := n.x
	fx, dfx := n.f.ValueDeriv(x0)
	n.deriv = dfx

	if !finite(fx) {
		return x0, fx, 1, &NumericalError{Quantity: "f(x)", X: x0, Value: fx, Iteration: n.iter}
	}
	n.residual.Add(fx)
	if n.residual.AbsConverged() {
		n.converge(common.ResidualTol, x0)
		return x0, fx, 1, nil
	}

	if !finite(dfx) {
		return x0, fx, 1, &NumericalError{Quantity: "f'(x)", X: x0, Value: dfx, Iteration: n.iter}
	}
	if math.Abs(dfx) < n.SingularTol {
		return x0, fx, 1, &SingularDerivativeError{X: x0, Slope: dfx, Iteration: n.iter}
	}

	x1 := x0 - fx/dfx
	n.x = x1
	n.step.Add(x1 - x0)
	if n.step.AbsConverged() {
		n.converge(common.StepTol, x1)
	}
	return x0, fx, 1, nil
}

func (n *Newton) converge(status common.Status, root float64) {
	n.status = status
	n.root = root
}

func (n *Newton) Status() common.Status { return n.status }

// Root returns the converged root, or the next iterate if the method has
// not converged
func (n *Newton) Root() float64 {
	if n.status != common.Continue {
		return n.root
	}
	return n.x
}

func (n *Newton) AppendWriteData(v []*write.Value) []*write.Value {
	v = append(v, &write.Value{Heading: "Deriv", Value: n.deriv})
	v = append(v, &write.Value{Heading: "Step", Value: n.step.Recent()})
	return v
}
