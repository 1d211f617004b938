// Package symbolic provides closed-form real expressions that can be
// evaluated, inspected for their free variables, and differentiated exactly.
package symbolic

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Env binds variable names to values during evaluation
type Env map[string]float64

// Expr is a closed-form real expression
type Expr interface {
	// Eval evaluates the expression. Unbound variables evaluate to NaN
	Eval(env Env) float64
	// Diff returns the derivative of the expression with respect to name
	Diff(name string) Expr
	String() string
}

// Num is a numeric constant
type Num struct{ V float64 }

// Sym is a variable
type Sym struct{ Name string }

// Add is a sum of terms
type Add struct{ Terms []Expr }

// Mul is a product of factors
type Mul struct{ Factors []Expr }

// Pow is Base raised to Exp
type Pow struct{ Base, Exp Expr }

// Call is the application of a named elementary function to a single argument
type Call struct {
	Name string
	Arg  Expr
}

func N(v float64) *Num     { return &Num{V: v} }
func S(name string) *Sym   { return &Sym{Name: name} }
func X() *Sym              { return S("x") }
func Neg(e Expr) Expr      { return MulOf(N(-1), e) }
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }
func SqrtOf(e Expr) Expr   { return PowOf(e, N(0.5)) }
func SinOf(e Expr) Expr    { return CallOf("sin", e) }
func CosOf(e Expr) Expr    { return CallOf("cos", e) }
func TanOf(e Expr) Expr    { return CallOf("tan", e) }
func ExpOf(e Expr) Expr    { return CallOf("exp", e) }
func LogOf(e Expr) Expr    { return CallOf("log", e) }
func AbsOf(e Expr) Expr    { return CallOf("abs", e) }
func SinhOf(e Expr) Expr   { return CallOf("sinh", e) }
func CoshOf(e Expr) Expr   { return CallOf("cosh", e) }
func TanhOf(e Expr) Expr   { return CallOf("tanh", e) }
func AtanOf(e Expr) Expr   { return CallOf("atan", e) }
func SignOf(e Expr) Expr   { return CallOf("sign", e) }

func (n *Num) Eval(Env) float64 { return n.V }
func (n *Num) Diff(string) Expr { return N(0) }
func (n *Num) String() string   { return formatNum(n.V) }

func (s *Sym) Eval(env Env) float64 {
	v, ok := env[s.Name]
	if !ok {
		return math.NaN()
	}
	return v
}

func (s *Sym) Diff(name string) Expr {
	if s.Name == name {
		return N(1)
	}
	return N(0)
}

func (s *Sym) String() string { return s.Name }

// AddOf returns the simplified sum of the terms. Nested sums are flattened,
// constants are folded and zeros dropped.
func AddOf(terms ...Expr) Expr {
	var flat []Expr
	c := 0.0
	for _, t := range terms {
		switch v := t.(type) {
		case *Num:
			c += v.V
		case *Add:
			for _, in := range v.Terms {
				if n, ok := in.(*Num); ok {
					c += n.V
					continue
				}
				flat = append(flat, in)
			}
		default:
			flat = append(flat, t)
		}
	}
	if c != 0 {
		flat = append(flat, N(c))
	}
	switch len(flat) {
	case 0:
		return N(0)
	case 1:
		return flat[0]
	}
	return &Add{Terms: flat}
}

func (a *Add) Eval(env Env) float64 {
	var s float64
	for _, t := range a.Terms {
		s += t.Eval(env)
	}
	return s
}

func (a *Add) Diff(name string) Expr {
	d := make([]Expr, len(a.Terms))
	for i, t := range a.Terms {
		d[i] = t.Diff(name)
	}
	return AddOf(d...)
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.Terms {
		s := t.String()
		if i > 0 {
			if strings.HasPrefix(s, "-") {
				b.WriteString(" - ")
				s = s[1:]
			} else {
				b.WriteString(" + ")
			}
		}
		b.WriteString(s)
	}
	return b.String()
}

// MulOf returns the simplified product of the factors. Nested products are
// flattened and constants folded to a single leading coefficient. A zero
// coefficient collapses the product to zero.
func MulOf(factors ...Expr) Expr {
	var flat []Expr
	c := 1.0
	for _, f := range factors {
		switch v := f.(type) {
		case *Num:
			c *= v.V
		case *Mul:
			for _, in := range v.Factors {
				if n, ok := in.(*Num); ok {
					c *= n.V
					continue
				}
				flat = append(flat, in)
			}
		default:
			flat = append(flat, f)
		}
	}
	if c == 0 {
		return N(0)
	}
	if len(flat) == 0 {
		return N(c)
	}
	if c != 1 {
		flat = append([]Expr{N(c)}, flat...)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &Mul{Factors: flat}
}

func (m *Mul) Eval(env Env) float64 {
	p := 1.0
	for _, f := range m.Factors {
		p *= f.Eval(env)
	}
	return p
}

// Diff applies the product rule
func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, 0, len(m.Factors))
	for i := range m.Factors {
		d := m.Factors[i].Diff(name)
		if isNum(d, 0) {
			continue
		}
		fs := make([]Expr, 0, len(m.Factors))
		for j, f := range m.Factors {
			if j == i {
				fs = append(fs, d)
			} else {
				fs = append(fs, f)
			}
		}
		terms = append(terms, MulOf(fs...))
	}
	return AddOf(terms...)
}

func (m *Mul) String() string {
	var b strings.Builder
	start := 0
	if n, ok := m.Factors[0].(*Num); ok && n.V == -1 {
		b.WriteString("-")
		start = 1
	}
	for i := start; i < len(m.Factors); i++ {
		if i > start {
			b.WriteString("*")
		}
		b.WriteString(wrap(m.Factors[i], precMul))
	}
	return b.String()
}

// PowOf returns the simplified power. Constant powers are folded, x^0 is 1
// and x^1 is x.
func PowOf(base, exp Expr) Expr {
	if e, ok := exp.(*Num); ok {
		switch e.V {
		case 0:
			return N(1)
		case 1:
			return base
		}
		if b, ok := base.(*Num); ok {
			return N(math.Pow(b.V, e.V))
		}
		// (b^p)^q = b^(p*q) only for integer q to stay on the real line
		if p, ok := base.(*Pow); ok && e.V == math.Trunc(e.V) {
			if pe, ok := p.Exp.(*Num); ok {
				return PowOf(p.Base, N(pe.V*e.V))
			}
		}
	}
	return &Pow{Base: base, Exp: exp}
}

func (p *Pow) Eval(env Env) float64 {
	return math.Pow(p.Base.Eval(env), p.Exp.Eval(env))
}

func (p *Pow) Diff(name string) Expr {
	db := p.Base.Diff(name)
	if !dependsOn(p.Exp, name) {
		// d(b^n) = n * b^(n-1) * b'
		return MulOf(p.Exp, PowOf(p.Base, AddOf(p.Exp, N(-1))), db)
	}
	// d(b^e) = b^e * (e' ln b + e b' / b)
	de := p.Exp.Diff(name)
	return MulOf(p, AddOf(
		MulOf(de, LogOf(p.Base)),
		MulOf(p.Exp, db, PowOf(p.Base, N(-1))),
	))
}

func (p *Pow) String() string {
	if e, ok := p.Exp.(*Num); ok {
		switch e.V {
		case 0.5:
			return "sqrt(" + p.Base.String() + ")"
		case -1:
			return "1/" + wrap(p.Base, precPow)
		}
	}
	return wrap(p.Base, precPow) + "^" + wrap(p.Exp, precPow)
}

type elementary struct {
	eval  func(float64) float64
	deriv func(arg Expr) Expr // derivative of the outer function at arg
}

var elementaries map[string]elementary

func init() {
	elementaries = map[string]elementary{
		"sin":  {math.Sin, func(a Expr) Expr { return CosOf(a) }},
		"cos":  {math.Cos, func(a Expr) Expr { return Neg(SinOf(a)) }},
		"tan":  {math.Tan, func(a Expr) Expr { return PowOf(CosOf(a), N(-2)) }},
		"exp":  {math.Exp, func(a Expr) Expr { return ExpOf(a) }},
		"log":  {math.Log, func(a Expr) Expr { return PowOf(a, N(-1)) }},
		"abs":  {math.Abs, func(a Expr) Expr { return SignOf(a) }},
		"sinh": {math.Sinh, func(a Expr) Expr { return CoshOf(a) }},
		"cosh": {math.Cosh, func(a Expr) Expr { return SinhOf(a) }},
		"tanh": {math.Tanh, func(a Expr) Expr { return PowOf(CoshOf(a), N(-2)) }},
		"atan": {math.Atan, func(a Expr) Expr { return PowOf(AddOf(N(1), PowOf(a, N(2))), N(-1)) }},
		"sign": {sign, func(Expr) Expr { return N(0) }},
	}
}

// IsFunction reports whether name is a known elementary function
func IsFunction(name string) bool {
	_, ok := elementaries[name]
	return ok
}

// CallOf applies the named elementary function. A constant argument is
// folded. CallOf panics if the function is unknown; use IsFunction to check.
func CallOf(name string, arg Expr) Expr {
	el, ok := elementaries[name]
	if !ok {
		panic("symbolic: unknown function " + name)
	}
	if n, ok := arg.(*Num); ok {
		return N(el.eval(n.V))
	}
	return &Call{Name: name, Arg: arg}
}

func (c *Call) Eval(env Env) float64 {
	return elementaries[c.Name].eval(c.Arg.Eval(env))
}

// Diff applies the chain rule
func (c *Call) Diff(name string) Expr {
	da := c.Arg.Diff(name)
	if isNum(da, 0) {
		return N(0)
	}
	return MulOf(elementaries[c.Name].deriv(c.Arg), da)
}

func (c *Call) String() string { return c.Name + "(" + c.Arg.String() + ")" }

// Diff returns the derivative of e with respect to name
func Diff(e Expr, name string) Expr {
	return e.Diff(name)
}

// FreeSymbols returns the sorted names of the variables that appear in e
func FreeSymbols(e Expr) []string {
	set := make(map[string]struct{})
	collectSymbols(e, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.Name] = struct{}{}
	case *Add:
		for _, t := range v.Terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.Factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.Base, out)
		collectSymbols(v.Exp, out)
	case *Call:
		collectSymbols(v.Arg, out)
	}
}

// Func returns e as a function of the single variable name
func Func(e Expr, name string) func(float64) float64 {
	return func(x float64) float64 {
		return e.Eval(Env{name: x})
	}
}

func dependsOn(e Expr, name string) bool {
	for _, s := range FreeSymbols(e) {
		if s == name {
			return true
		}
	}
	return false
}

func isNum(e Expr, v float64) bool {
	n, ok := e.(*Num)
	return ok && n.V == v
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

const (
	precAdd = iota + 1
	precMul
	precPow
)

func precedence(e Expr) int {
	switch v := e.(type) {
	case *Add:
		return precAdd
	case *Mul:
		return precMul
	case *Num:
		if v.V < 0 {
			return precAdd
		}
	case *Pow:
		return precPow
	}
	return precPow + 1
}

// wrap parenthesizes e when it binds no tighter than the context
func wrap(e Expr, ctx int) string {
	if precedence(e) <= ctx {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
