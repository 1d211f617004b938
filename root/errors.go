package root

import (
	"errors"
	"fmt"

	"github.com/btracey/rootfind/common"
)

// Sentinel errors for use with errors.Is. Every error returned by a solver
// matches exactly one of them.
var (
	ErrConfig             = errors.New("root: invalid configuration")
	ErrDomain             = errors.New("root: no sign change")
	ErrNumerical          = errors.New("root: non-finite value")
	ErrSingularDerivative = errors.New("root: singular derivative")
	ErrNonConvergence     = errors.New("root: did not converge")
)

// ConfigError reports an invalid static argument: a non-positive tolerance,
// a function with the wrong number of free variables, or an argument of the
// wrong type.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("root: invalid %s: %s", e.Param, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// DomainError reports that the function has the same sign at both ends of
// a bracket.
type DomainError struct {
	Lower, Upper   float64
	FLower, FUpper float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("root: no sign change over [%v, %v]: f(lower) = %v, f(upper) = %v",
		e.Lower, e.Upper, e.FLower, e.FUpper)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// NumericalError reports a NaN or infinite function or derivative value.
type NumericalError struct {
	Quantity  string // "f(x)" or "f'(x)"
	X         float64
	Value     float64
	Iteration int // zero when evaluating the starting points
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("root: %s = %v at x = %v (iteration %d)", e.Quantity, e.Value, e.X, e.Iteration)
}

func (e *NumericalError) Is(target error) bool { return target == ErrNumerical }

// SingularDerivativeError reports that the derivative, or the secant slope
// standing in for it, is too close to zero to take a step.
type SingularDerivativeError struct {
	X         float64
	Slope     float64
	Iteration int
}

func (e *SingularDerivativeError) Error() string {
	return fmt.Sprintf("root: slope %v too close to zero at x = %v (iteration %d)", e.Slope, e.X, e.Iteration)
}

func (e *SingularDerivativeError) Is(target error) bool { return target == ErrSingularDerivative }

// NonConvergenceError reports that a budget ran out before any stopping
// criterion was met. X and Residual are the last evaluated iterate and the
// function value there.
type NonConvergenceError struct {
	Status     common.Status
	Iterations int
	X          float64
	Residual   float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("root: no convergence after %d iterations (%v): last x = %v, f(x) = %v",
		e.Iterations, e.Status, e.X, e.Residual)
}

func (e *NonConvergenceError) Is(target error) bool { return target == ErrNonConvergence }
