package root

import (
	"fmt"
	"strings"

	"github.com/btracey/rootfind/symbolic"
	"gonum.org/v1/gonum/diff/fd"
)

// NewEvaluable returns the value-and-derivative form of f used by
// Newton-Raphson. f may be
//   - a symbolic.Expr with at most one free variable, differentiated exactly
//   - a ValueDeriver, used as is
//   - a Function that is also a Deriver, combined
//   - a Function or func(float64) float64, differentiated by central
//     difference with step settings.DerivativeStep
//
// Anything else is a ConfigError.
func NewEvaluable(f interface{}, settings *Settings) (ValueDeriver, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	switch fn := f.(type) {
	case nil:
		return nil, &ConfigError{Param: "function", Reason: "function is nil"}
	case symbolic.Expr:
		s, err := Symbolic(fn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case ValueDeriver:
		return fn, nil
	case Function:
		if d, ok := fn.(Deriver); ok {
			return valueDeriver{Function: fn, Deriver: d}, nil
		}
		return Numeric(fn, settings.DerivativeStep), nil
	case func(float64) float64:
		if fn == nil {
			return nil, &ConfigError{Param: "function", Reason: "function is nil"}
		}
		return Numeric(Func(fn), settings.DerivativeStep), nil
	}
	return nil, &ConfigError{
		Param:  "function",
		Reason: fmt.Sprintf("%T is neither a symbolic expression nor a function of one variable", f),
	}
}

type valueDeriver struct {
	Function
	Deriver
}

func (v valueDeriver) ValueDeriv(x float64) (f, df float64) {
	return v.Value(x), v.Deriv(x)
}

// Symbolic returns e as a function of its only free variable together with
// its exact derivative. An expression without free variables is a constant
// with zero derivative.
func Symbolic(e symbolic.Expr) (*SymbolicFunction, error) {
	vars := symbolic.FreeSymbols(e)
	switch len(vars) {
	case 0:
		return &SymbolicFunction{expr: e, deriv: symbolic.N(0)}, nil
	case 1:
		return &SymbolicFunction{expr: e, deriv: symbolic.Diff(e, vars[0]), variable: vars[0]}, nil
	}
	return nil, &ConfigError{
		Param:  "function",
		Reason: fmt.Sprintf("expression must have exactly one variable, found %d: %s", len(vars), strings.Join(vars, ", ")),
	}
}

// SymbolicFunction is a symbolic expression of at most one variable along
// with its derivative
type SymbolicFunction struct {
	expr     symbolic.Expr
	deriv    symbolic.Expr
	variable string
}

func (s *SymbolicFunction) env(x float64) symbolic.Env {
	if s.variable == "" {
		return nil
	}
	return symbolic.Env{s.variable: x}
}

func (s *SymbolicFunction) Value(x float64) float64 { return s.expr.Eval(s.env(x)) }
func (s *SymbolicFunction) Deriv(x float64) float64 { return s.deriv.Eval(s.env(x)) }

func (s *SymbolicFunction) ValueDeriv(x float64) (f, df float64) {
	env := s.env(x)
	return s.expr.Eval(env), s.deriv.Eval(env)
}

// Derivative returns the symbolic derivative
func (s *SymbolicFunction) Derivative() symbolic.Expr { return s.deriv }

// Variable returns the name of the free variable, or "" for a constant
func (s *SymbolicFunction) Variable() string { return s.variable }

func (s *SymbolicFunction) String() string { return s.expr.String() }

// Numeric returns f along with a central difference approximation of its
// derivative, (f(x+h) - f(x-h)) / 2h.
func Numeric(f Function, h float64) *NumericFunction {
	return &NumericFunction{f: f, step: h}
}

// NumericFunction is an opaque function with a finite difference derivative
type NumericFunction struct {
	f    Function
	step float64
}

func (n *NumericFunction) Value(x float64) float64 { return n.f.Value(x) }

func (n *NumericFunction) Deriv(x float64) float64 {
	return fd.Derivative(n.f.Value, x, &fd.Settings{
		Formula: fd.Central,
		Step:    n.step,
	})
}

func (n *NumericFunction) ValueDeriv(x float64) (f, df float64) {
	return n.Value(x), n.Deriv(x)
}
