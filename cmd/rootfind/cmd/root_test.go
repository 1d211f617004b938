package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btracey/rootfind/root"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSolveCommands(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		root string
	}{
		{"bisect", []string{"bisect", "--f", "sin(x)", "--lower", "1", "--upper", "6", "--tol", "1e-7"}, "3.1416"},
		{"bisect exp", []string{"bisect", "--f", "exp(x) - 2", "--lower", "0", "--upper", "1"}, "0.6931"},
		{"newton", []string{"newton", "--f", "x^4 - 4*x^2 + 4", "--guess", "1.5", "--tol", "1e-12"}, "1.4142"},
		{"newton numeric", []string{"newton", "--f", "x**2 - 2", "--guess", "1", "--numeric"}, "1.4142"},
		{"secant", []string{"secant", "--f", "x^2 - 2", "--guess0", "1", "--guess1", "2", "--tol", "1e-6"}, "1.4142"},
		{"digits", []string{"secant", "--f", "x^2 - 2", "--guess0", "1", "--guess1", "2", "--digits", "2"}, "1.41"},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, _, err := run(t, test.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "root  "+test.root)
			assert.Contains(t, out, test.args[0])
		})
	}
}

// reportedRoot returns the value printed after "root" in the summary
func reportedRoot(t *testing.T, out string) string {
	t.Helper()
	i := strings.Index(out, "root  ")
	require.True(t, i >= 0, "no root in %q", out)
	fields := strings.Fields(out[i+len("root  "):])
	require.NotEmpty(t, fields)
	return fields[0]
}

func TestExpressionGrammar(t *testing.T) {
	for _, test := range []struct {
		f      string
		guess  string
		lower  string
		upper  string
		guess1 string
		root   string
	}{
		{f: "-x^2 + 4", guess: "1", lower: "0", upper: "3", guess1: "3", root: "2"},
		{f: "x^2^3 - 64", guess: "1.5", lower: "1", upper: "2", guess1: "2", root: "1.6818"},
		{f: "2^-x - 0.25", guess: "1", lower: "0", upper: "3", guess1: "3", root: "2"},
		{f: "-x**2 + 9", guess: "2", lower: "0", upper: "4", guess1: "4", root: "3"},
	} {
		t.Run(test.f, func(t *testing.T) {
			for _, args := range [][]string{
				{"newton", "--f", test.f, "--guess", test.guess},
				{"newton", "--f", test.f, "--guess", test.guess, "--numeric"},
				{"bisect", "--f", test.f, "--lower", test.lower, "--upper", test.upper},
				{"secant", "--f", test.f, "--guess0", test.guess, "--guess1", test.guess1},
			} {
				out, _, err := run(t, args...)
				require.NoError(t, err, "%v", args)
				assert.Equal(t, test.root, reportedRoot(t, out), "%v", args)
			}
		})
	}
}

func TestSolveErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		want error
	}{
		{"no sign change", []string{"bisect", "--f", "x^2", "--lower", "-2", "--upper", "2"}, root.ErrDomain},
		{"bad tolerance", []string{"bisect", "--f", "x", "--lower", "-2", "--upper", "2", "--tol", "0"}, root.ErrConfig},
		{"singular", []string{"newton", "--f", "cos(x)", "--guess", "0"}, root.ErrSingularDerivative},
		{"cycle", []string{"newton", "--f", "x^3 - 2*x + 2", "--guess", "0", "--max-iter", "20"}, root.ErrNonConvergence},
		{"two variables", []string{"newton", "--f", "x*y", "--guess", "0"}, root.ErrConfig},
		{"constant", []string{"secant", "--f", "3", "--guess0", "0", "--guess1", "1"}, root.ErrSingularDerivative},
		{"pole", []string{"secant", "--f", "1/(x-1)", "--guess0", "0", "--guess1", "2"}, root.ErrNumerical},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, _, err := run(t, test.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, test.want), "got %v", err)
			assert.True(t, strings.HasPrefix(err.Error(), test.args[0]+": "), "got %v", err)
			assert.NotContains(t, out, "root  ")
		})
	}
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"bisect", "--f", "sin(x)", "--lower", "1"},
		{"newton", "--f", "sin(", "--guess", "3"},
		{"secant", "--f", "x + y", "--guess0", "0", "--guess1", "1"},
		{"newton", "--f", "x", "--guess", "1", "--trace", "json"},
		{"secant", "--f", "x", "--guess0", "1", "--guess1", "2", "extra"},
	} {
		_, _, err := run(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestTraceFlag(t *testing.T) {
	out, _, err := run(t, "bisect", "--f", "sin(x)", "--lower", "1", "--upper", "6", "--tol", "1e-3", "--trace", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Beginning bisection")
	assert.Contains(t, out, "Iter,FnEval,X,F(X),Lower,Upper")

	out, _, err = run(t, "secant", "--f", "x^2 - 2", "--guess0", "1", "--guess1", "2", "--trace", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Beginning secant")
	assert.Contains(t, out, "Prev")
}

func TestReportTable(t *testing.T) {
	out, _, err := run(t, "bisect", "--f", "x - 0.3", "--lower", "0", "--upper", "1", "--tol", "1e-12")
	require.NoError(t, err)
	assert.Contains(t, out, "lower")
	assert.Contains(t, out, "width")
	assert.Contains(t, out, "more)")

	out, _, err = run(t, "newton", "--f", "x - 3", "--guess", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "f(x)")
	assert.NotContains(t, out, "more)")
}

func TestVerbose(t *testing.T) {
	_, stderr, err := run(t, "newton", "--f", "x^2 - 2", "--guess", "1", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "solve finished")
	assert.Contains(t, stderr, "2*x")

	_, stderr, err = run(t, "newton", "--f", "x^2 - 2", "--guess", "1")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solver.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_iterations = 5\ndigits = 1\n"), 0o644))

	_, _, err := run(t, "--config", path, "newton", "--f", "x^3 - 2*x + 2", "--guess", "0")
	var nc *root.NonConvergenceError
	require.True(t, errors.As(err, &nc), "got %v", err)
	assert.Equal(t, 5, nc.Iterations)

	out, _, err := run(t, "--config", path, "bisect", "--f", "x^2 - 2", "--lower", "1", "--upper", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "root  1.4")
	assert.NotContains(t, out, "root  1.41")

	// Flags override the file
	_, _, err = run(t, "--config", path, "--max-iter", "8", "newton", "--f", "x^3 - 2*x + 2", "--guess", "0")
	require.True(t, errors.As(err, &nc), "got %v", err)
	assert.Equal(t, 8, nc.Iterations)

	_, _, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "version")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rootfind v"+Version)
}
