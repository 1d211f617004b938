package symbolic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/scanner"
)

// constants are identifiers that parse to numbers instead of variables
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Parse parses a real expression in infix notation. Supported syntax:
// numbers, identifiers (variables), the constants pi and e, the binary
// operators + - * / and ^ (or **, right associative), unary minus,
// parentheses and calls of the elementary functions sin, cos, tan, exp,
// log (alias ln), sqrt, abs, sinh, cosh, tanh, atan and sign.
func Parse(src string) (Expr, error) {
	p := &parser{src: src}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = p.errorf("%s", msg)
		}
	}
	p.next()

	e := p.expr()
	if p.err == nil && p.tok != scanner.EOF {
		p.err = p.errorf("unexpected %q", p.s.TokenText())
	}
	if p.err != nil {
		return nil, p.err
	}
	return e, nil
}

// MustParse is like Parse but panics on error
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	src string
	s   scanner.Scanner
	tok rune
	pos scanner.Position
	err error
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.pos = p.s.Position
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("symbolic: parse %q at column %d: %s", p.src, p.pos.Column, fmt.Sprintf(format, args...))
}

func (p *parser) fail(format string, args ...interface{}) Expr {
	if p.err == nil {
		p.err = p.errorf(format, args...)
	}
	return N(math.NaN())
}

// expr := term {('+' | '-') term}
func (p *parser) expr() Expr {
	terms := []Expr{p.term()}
	for p.err == nil && (p.tok == '+' || p.tok == '-') {
		op := p.tok
		p.next()
		t := p.term()
		if op == '-' {
			t = Neg(t)
		}
		terms = append(terms, t)
	}
	return AddOf(terms...)
}

// term := unary {('*' | '/') unary}
func (p *parser) term() Expr {
	e := p.unary()
	for p.err == nil && (p.tok == '*' || p.tok == '/') {
		op := p.tok
		p.next()
		rhs := p.unary()
		if op == '*' {
			e = MulOf(e, rhs)
		} else {
			e = DivOf(e, rhs)
		}
	}
	return e
}

// unary := ('-' | '+') unary | power
func (p *parser) unary() Expr {
	switch p.tok {
	case '-':
		p.next()
		return Neg(p.unary())
	case '+':
		p.next()
		return p.unary()
	}
	return p.power()
}

// power := primary [('^' | '**') unary]
func (p *parser) power() Expr {
	base := p.primary()
	if p.err != nil {
		return base
	}
	switch {
	case p.tok == '^':
		p.next()
	case p.tok == '*' && p.s.Peek() == '*':
		p.next()
		p.next()
	default:
		return base
	}
	return PowOf(base, p.unary())
}

// primary := number | ident ['(' expr ')'] | '(' expr ')'
func (p *parser) primary() Expr {
	switch p.tok {
	case scanner.Int, scanner.Float:
		text := p.s.TokenText()
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return p.fail("invalid number %q", text)
		}
		p.next()
		return N(v)
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()
		if p.tok != '(' {
			if v, ok := constants[name]; ok {
				return N(v)
			}
			return S(name)
		}
		p.next()
		arg := p.expr()
		if p.err != nil {
			return arg
		}
		if p.tok != ')' {
			return p.fail("expected ')' after argument of %s", name)
		}
		p.next()
		return p.call(name, arg)
	case '(':
		p.next()
		e := p.expr()
		if p.err != nil {
			return e
		}
		if p.tok != ')' {
			return p.fail("expected ')'")
		}
		p.next()
		return e
	case scanner.EOF:
		return p.fail("unexpected end of expression")
	}
	return p.fail("unexpected %q", p.s.TokenText())
}

func (p *parser) call(name string, arg Expr) Expr {
	switch name {
	case "sqrt":
		return SqrtOf(arg)
	case "ln":
		return LogOf(arg)
	}
	if !IsFunction(name) {
		return p.fail("unknown function %q", name)
	}
	return CallOf(name, arg)
}
