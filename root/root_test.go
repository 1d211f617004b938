package root

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/symbolic"
	"github.com/btracey/rootfind/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type solver struct {
	name  string
	solve func(settings *Settings) (*Result, error)
}

func solvers() []solver {
	sqrt2 := Func(func(x float64) float64 { return x*x - 2 })
	return []solver{
		{name: "bisection", solve: func(s *Settings) (*Result, error) { return Bisect(sqrt2, 0, 2, 1e-10, s) }},
		{name: "newton-raphson", solve: func(s *Settings) (*Result, error) {
			return NewtonRaphson(symbolic.MustParse("x^2 - 2"), 1, 1e-10, s)
		}},
		{name: "secant", solve: func(s *Settings) (*Result, error) { return Secant(sqrt2, 1, 2, 1e-10, s) }},
	}
}

// Results hold a runtime, which is the only thing allowed to change between
// identical solves
func sameResult(t *testing.T, want, got *Result) {
	t.Helper()
	assert.Equal(t, want.Root, got.Root)
	assert.Equal(t, want.Loc, got.Loc)
	assert.Equal(t, want.Residual, got.Residual)
	assert.Equal(t, want.Record, got.Record)
	assert.Equal(t, want.Brackets, got.Brackets)
	assert.Equal(t, want.Iterations, got.Iterations)
	assert.Equal(t, want.FunctionEvaluations, got.FunctionEvaluations)
	assert.Equal(t, want.Status, got.Status)
}

func TestIdempotent(t *testing.T) {
	for _, s := range solvers() {
		t.Run(s.name, func(t *testing.T) {
			settings := DefaultSettings()
			first, err := s.solve(settings)
			require.NoError(t, err)
			second, err := s.solve(settings)
			require.NoError(t, err)
			sameResult(t, first, second)
			assert.Equal(t, 1.4142, first.Root)
		})
	}
}

func TestConcurrentSolves(t *testing.T) {
	for _, s := range solvers() {
		t.Run(s.name, func(t *testing.T) {
			want, err := s.solve(nil)
			require.NoError(t, err)

			const n = 16
			results := make([]*Result, n)
			errs := make([]error, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = s.solve(nil)
				}(i)
			}
			wg.Wait()
			for i := range results {
				require.NoError(t, errs[i])
				sameResult(t, want, results[i])
			}
		})
	}
}

func TestVisualizer(t *testing.T) {
	for _, s := range solvers() {
		t.Run(s.name, func(t *testing.T) {
			var calls []string
			var seen *Result
			settings := DefaultSettings()
			settings.Visualizer = VisualizerFunc(func(method string, r *Result) {
				calls = append(calls, method)
				seen = r
			})
			r, err := s.solve(settings)
			require.NoError(t, err)
			assert.Equal(t, []string{s.name}, calls)
			assert.Same(t, r, seen)
			assert.NotEmpty(t, seen.Record)
		})
	}

	called := false
	settings := DefaultSettings()
	settings.Visualizer = VisualizerFunc(func(string, *Result) { called = true })
	_, err := Bisect(Func(func(x float64) float64 { return x * x }), -1, 1, 1e-6, settings)
	require.Error(t, err)
	_, err = NewtonRaphson(symbolic.MustParse("cos(x)"), 0, 1e-6, settings)
	require.Error(t, err)
	assert.False(t, called, "visualizer called after a failed solve")
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	settings := DefaultSettings()
	settings.DisplayWriters = []write.Writer{{Writer: &buf, T: write.Logger}}

	r, err := Bisect(Func(math.Sin), 1, 6, 1e-3, settings)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3+r.Iterations)
	assert.Equal(t, "Beginning bisection", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Iter,FnEval,X,F(X),Lower,Upper", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "1,3,"), "first row %q", lines[3])

	buf.Reset()
	settings.DisplayWriters = []write.Writer{{Writer: &buf, T: write.Displayer}}
	_, err = Secant(Func(math.Sin), 3, 3.5, 1e-10, settings)
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Beginning secant\n"), "got %q", out)
	assert.Contains(t, out, "Prev")
	assert.Contains(t, out, "Step")
}

var (
	tiredStatus = common.NewStatus("Tired", false)
	happyStatus = common.NewStatus("Happy", true)
)

// limited stops the solve after a fixed number of evaluations. It also
// counts the calls made to its hooks.
type limited struct {
	calls  int
	limit  int
	status common.Status
	inits  int
	ended  int
}

func (l *limited) Value(x float64) float64 {
	l.calls++
	return x*x - 2
}

func (l *limited) Init()   { l.inits++ }
func (l *limited) Result() { l.ended++ }

func (l *limited) Status() common.Status {
	if l.calls >= l.limit {
		return l.status
	}
	return common.Continue
}

func TestFunctionStatus(t *testing.T) {
	f := &limited{limit: 4, status: tiredStatus}
	_, err := Secant(f, 1, 2, 1e-12, nil)
	require.True(t, errors.Is(err, ErrNonConvergence), "got %v", err)
	var nc *NonConvergenceError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, tiredStatus, nc.Status)
	assert.Equal(t, "Tired", nc.Status.String())
	assert.Equal(t, 3, nc.Iterations)
	assert.Equal(t, 1, f.inits)
	assert.Equal(t, 1, f.ended)

	f = &limited{limit: 4, status: happyStatus}
	r, err := Secant(f, 1, 2, 1e-12, nil)
	require.NoError(t, err)
	assert.Equal(t, happyStatus, r.Status)
	assert.True(t, r.Status.Converged())
	assert.Equal(t, 3, r.Iterations)
	assert.Equal(t, 1, f.ended)
}

// breaking returns NaN once it has been called limit times
type breaking struct {
	calls int
	limit int
	ended int
}

func (b *breaking) Value(x float64) float64 {
	b.calls++
	if b.calls > b.limit {
		return math.NaN()
	}
	return x*x - 2
}

func (b *breaking) Result() { b.ended++ }

func TestFailedSolveFinishes(t *testing.T) {
	var buf bytes.Buffer
	settings := DefaultSettings()
	settings.DisplayWriters = []write.Writer{{Writer: &buf, T: write.Displayer}}
	settings.Interval = time.Hour

	// The first guess and four iterations succeed, the fifth evaluation fails
	f := &breaking{limit: 5}
	_, err := Secant(f, 1, 2, 1e-12, settings)
	require.True(t, errors.Is(err, ErrNumerical), "got %v", err)
	assert.Equal(t, 1, f.ended)

	// The throttle lets the first row through, and the last successful
	// iteration is written when the solve ends
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "1", strings.Fields(lines[4])[0])
	assert.Equal(t, "4", strings.Fields(lines[5])[0])

	// Failures while evaluating the starting points end the solve too
	f = &breaking{limit: 0}
	_, err = Secant(f, 1, 2, 1e-12, nil)
	require.True(t, errors.Is(err, ErrNumerical), "got %v", err)
	assert.Equal(t, 1, f.ended)

	f = &breaking{limit: 1}
	_, err = Bisect(f, 0, 2, 1e-6, nil)
	require.True(t, errors.Is(err, ErrNumerical), "got %v", err)
	assert.Equal(t, 1, f.ended)

	f = &breaking{limit: 3}
	_, err = NewtonRaphson(f, 1, 1e-12, nil)
	require.True(t, errors.Is(err, ErrNumerical), "got %v", err)
	assert.Equal(t, 1, f.ended)
}

func TestMaximumFunctionEvaluations(t *testing.T) {
	settings := DefaultSettings()
	settings.MaximumFunctionEvaluations = 5
	_, err := NewtonRaphson(symbolic.MustParse("x^3 - 2*x + 2"), 0, 1e-6, settings)
	var nc *NonConvergenceError
	require.True(t, errors.As(err, &nc), "got %v", err)
	assert.Equal(t, common.MaximumFunctionEvaluations, nc.Status)
	assert.Equal(t, 5, nc.Iterations)

	// Bisection honours the evaluation budget even though it ignores the
	// iteration cap
	_, err = Bisect(Func(math.Sin), 1, 6, 1e-12, settings)
	require.True(t, errors.As(err, &nc), "got %v", err)
	assert.Equal(t, common.MaximumFunctionEvaluations, nc.Status)
	assert.Equal(t, 3, nc.Iterations)
}

func TestStatus(t *testing.T) {
	for _, s := range []common.Status{common.ResidualTol, common.StepTol, common.BracketTol, common.ExactRoot, happyStatus} {
		assert.True(t, s.Converged(), "%v", s)
		assert.False(t, s.Failed(), "%v", s)
	}
	for _, s := range []common.Status{common.UserFunctionStop, common.MaximumIterations,
		common.MaximumFunctionEvaluations, common.MaximumRuntime, common.MethodError, tiredStatus} {
		assert.True(t, s.Failed(), "%v", s)
	}
	assert.False(t, common.Continue.Converged() || common.Continue.Failed())
}

func TestErrorsMatchOneSentinel(t *testing.T) {
	sentinels := []error{ErrConfig, ErrDomain, ErrNumerical, ErrSingularDerivative, ErrNonConvergence}
	for _, err := range []error{
		&ConfigError{Param: "tolerance", Reason: "must be positive"},
		&DomainError{Lower: -1, Upper: 1, FLower: 1, FUpper: 1},
		&NumericalError{Quantity: "f(x)", X: 0, Value: math.NaN()},
		&SingularDerivativeError{X: 0, Slope: 0},
		&NonConvergenceError{Status: common.MaximumIterations, Iterations: 1000},
	} {
		n := 0
		for _, s := range sentinels {
			if errors.Is(err, s) {
				n++
			}
		}
		assert.Equal(t, 1, n, "%v", err)
		assert.True(t, strings.HasPrefix(err.Error(), "root: "), "%v", err)
	}
}
