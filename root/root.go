// Package root finds roots of real functions of one variable with bisection,
// Newton-Raphson and the secant method.
package root

import (
	"fmt"
	"math"

	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/write"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	DefaultDerivativeStep = 1e-8
	DefaultSingularTol    = 1e-16
	DefaultDigits         = 4
)

// Function is a real function of one variable
type Function interface {
	Value(x float64) float64
}

type Deriver interface {
	Deriv(x float64) float64
}

// ValueDeriver returns the function value and its first derivative
type ValueDeriver interface {
	ValueDeriv(x float64) (f, df float64)
}

// Func adapts an ordinary function to the Function interface
type Func func(float64) float64

func (f Func) Value(x float64) float64 { return f(x) }

// Point is an evaluated location
type Point struct {
	X float64
	F float64
}

// Bracket is an interval whose endpoints have function values of opposite sign
type Bracket struct {
	Lower Point
	Upper Point
}

// Visualizer receives the outcome of every successful solve. It is only
// called after the result is final.
type Visualizer interface {
	Visualize(method string, r *Result)
}

// VisualizerFunc adapts an ordinary function to the Visualizer interface
type VisualizerFunc func(method string, r *Result)

func (f VisualizerFunc) Visualize(method string, r *Result) { f(method, r) }

// Settings is a structure containing settings for the root finders. Some
// settings may not apply to certain methods
type Settings struct {
	*common.CommonSettings
	DerivativeStep float64    // Step of the central difference used when no exact derivative is available
	SingularTol    float64    // Slopes with a magnitude below this cannot be used to take a step
	Digits         int        // Decimal places kept in Result.Root. Negative disables rounding
	Visualizer     Visualizer // Receives the result of every successful solve. May be nil
}

// DefaultSettings returns the default settings for the root finders.
// Newton-Raphson and the secant method stop after common.DefaultMaximumIterations
// iterations; bisection is bounded by its bracket and ignores the cap.
func DefaultSettings() *Settings {
	return &Settings{
		CommonSettings: common.DefaultCommonSettings(),
		DerivativeStep: DefaultDerivativeStep,
		SingularTol:    DefaultSingularTol,
		Digits:         DefaultDigits,
	}
}

func (s *Settings) validate(tol float64) error {
	if !(tol > 0) || math.IsInf(tol, 1) {
		return &ConfigError{Param: "tolerance", Reason: fmt.Sprintf("must be positive and finite, got %v", tol)}
	}
	if s.CommonSettings == nil {
		return &ConfigError{Param: "settings", Reason: "missing common settings"}
	}
	if !(s.DerivativeStep > 0) {
		return &ConfigError{Param: "derivative step", Reason: fmt.Sprintf("must be positive, got %v", s.DerivativeStep)}
	}
	if !(s.SingularTol >= 0) {
		return &ConfigError{Param: "singular tolerance", Reason: fmt.Sprintf("must not be negative, got %v", s.SingularTol)}
	}
	return nil
}

func checkFinite(param string, x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return &ConfigError{Param: param, Reason: fmt.Sprintf("must be finite, got %v", x)}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Helper is a helper struct for root finders. Not intended for use by
// callers of the solve functions, but exported to aid others who are building
// root finding methods
//
// Implementers should call Init() at the beginning of a solve, Record() for
// every point evaluated outside of an iteration, and Iterate() at the end of
// every iteration
type Helper struct {
	*common.Common

	locCurr float64
	valCurr float64
	record  []Point
}

// NewHelper creates a new Helper and adds itself to the data adders
func NewHelper() *Helper {
	h := &Helper{
		Common: common.NewCommon(),
	}
	h.AddDataAdder(h)
	return h
}

func (h *Helper) AppendWriteData(v []*write.Value) []*write.Value {
	v = append(v, &write.Value{Heading: "X", Value: h.locCurr})
	v = append(v, &write.Value{Heading: "F(X)", Value: h.valCurr})
	return v
}

func (h *Helper) Init(s *common.CommonSettings, function interface{}, title string) {
	h.locCurr = math.NaN()
	h.valCurr = math.NaN()
	h.record = h.record[:0]
	h.Common.Init(s, function, title)
}

// Record stores points evaluated outside of an iteration
func (h *Helper) Record(pts ...Point) {
	for _, p := range pts {
		h.record = append(h.record, p)
		h.locCurr = p.X
		h.valCurr = p.F
	}
	h.AddFunEvals(len(pts))
}

func (h *Helper) Iterate(loc, val float64, nFunEvals int) {
	h.locCurr = loc
	h.valCurr = val
	h.record = append(h.record, Point{X: loc, F: val})
	h.Common.Iterate(nFunEvals)
}

func (h *Helper) Status() common.Status {
	return h.Common.Status()
}

// Result assembles the result of a successful solve
func (h *Helper) Result(status common.Status, loc float64, digits int) *Result {
	record := make([]Point, len(h.record))
	copy(record, h.record)
	return &Result{
		CommonResult: h.Common.Result(status),
		Root:         round(loc, digits),
		Loc:          loc,
		Residual:     h.valCurr,
		Record:       record,
	}
}

// abort ends a solve that stopped on err. The end of solve hooks still run
// and the display writes any pending values.
func (h *Helper) abort(err error) error {
	h.Common.Result(common.MethodError)
	return err
}

// nonConvergence assembles the error of a solve that ran out of budget
func (h *Helper) nonConvergence(status common.Status) error {
	h.Common.Result(status)
	return &NonConvergenceError{
		Status:     status,
		Iterations: h.Iterations(),
		X:          h.locCurr,
		Residual:   h.valCurr,
	}
}

type Result struct {
	*common.CommonResult
	Root     float64   // Loc rounded to Settings.Digits decimal places
	Loc      float64   // Unrounded root approximation
	Residual float64   // Function value at the last evaluated point (not necessarily at Loc)
	Record   []Point   // Every evaluated point in evaluation order
	Brackets []Bracket // Bracket after every bisection step. Nil for the other methods
}

func round(x float64, digits int) float64 {
	if digits < 0 {
		return x
	}
	return scalar.Round(x, digits)
}
