// Package callable compiles a textual formula into an opaque scalar
// function. Formulas are read with the grammar of the symbolic package, so
// a string denotes the same function in both, and are then evaluated by
// govaluate. No expression tree is kept, so no exact derivative is
// available.
package callable

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/btracey/rootfind/symbolic"
)

var ErrVariables = errors.New("callable: formula must have at most one variable")

func unary(f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return f(toFloat(args[0])), nil
	}
}

// functions holds every elementary function the symbolic grammar accepts
var functions = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"abs":  unary(math.Abs),
	"sinh": unary(math.Sinh),
	"cosh": unary(math.Cosh),
	"tanh": unary(math.Tanh),
	"atan": unary(math.Atan),
	"sign": unary(sign),
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// Expression is a compiled formula of at most one variable. It is safe for
// concurrent use.
type Expression struct {
	src      string
	variable string
	expr     *govaluate.EvaluableExpression
}

// Compile parses src. Both '^' and '**' denote exponentiation, which binds
// tighter than unary minus and groups right to left, so "-x^2" is -(x^2)
// and "2^3^2" is 2^9. The formula may reference pi, e and at most one other
// variable.
func Compile(src string) (*Expression, error) {
	tree, err := symbolic.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("callable: %w", err)
	}
	vars := symbolic.FreeSymbols(tree)
	if len(vars) > 1 {
		return nil, fmt.Errorf("%w: %q has %d: %s", ErrVariables, src, len(vars), strings.Join(vars, ", "))
	}

	// Every operation is parenthesized so govaluate's own precedence and
	// associativity never apply
	var b strings.Builder
	render(&b, tree)
	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(b.String(), functions)
	if err != nil {
		return nil, fmt.Errorf("callable: compile %q: %w", src, err)
	}

	e := &Expression{src: src, expr: parsed}
	if len(vars) == 1 {
		e.variable = vars[0]
	}
	return e, nil
}

// render writes e in govaluate syntax
func render(b *strings.Builder, e symbolic.Expr) {
	switch v := e.(type) {
	case *symbolic.Num:
		b.WriteString(number(v.V))
	case *symbolic.Sym:
		// Brackets keep names such as "in" from reading as operators
		b.WriteString("[" + v.Name + "]")
	case *symbolic.Add:
		join(b, v.Terms, " + ")
	case *symbolic.Mul:
		join(b, v.Factors, " * ")
	case *symbolic.Pow:
		join(b, []symbolic.Expr{v.Base, v.Exp}, " ** ")
	case *symbolic.Call:
		b.WriteString(v.Name + "(")
		render(b, v.Arg)
		b.WriteString(")")
	default:
		panic(fmt.Sprintf("callable: unexpected expression %T", e))
	}
}

func join(b *strings.Builder, operands []symbolic.Expr, op string) {
	b.WriteString("(")
	for i, o := range operands {
		if i > 0 {
			b.WriteString(op)
		}
		render(b, o)
	}
	b.WriteString(")")
}

// number formats v without an exponent, which govaluate cannot read
func number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "(0 / 0)"
	case math.IsInf(v, 1):
		return "(1 / 0)"
	case math.IsInf(v, -1):
		return "(-1 / 0)"
	case v < 0:
		return "(-" + strconv.FormatFloat(-v, 'f', -1, 64) + ")"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MustCompile is like Compile but panics on error
func MustCompile(src string) *Expression {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Variable returns the name of the free variable, or "" for a constant formula
func (e *Expression) Variable() string { return e.variable }

func (e *Expression) String() string { return e.src }

// Value evaluates the formula at x. Evaluation errors yield NaN.
func (e *Expression) Value(x float64) float64 {
	var params map[string]interface{}
	if e.variable != "" {
		params = map[string]interface{}{e.variable: x}
	}
	v, err := e.expr.Evaluate(params)
	if err != nil {
		return math.NaN()
	}
	return toFloat(v)
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}
