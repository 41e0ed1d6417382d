// Package formula parses and evaluates the small arithmetic language used by
// resource definitions: integer literals, named variables such as level,
// + - * /, unary minus and parentheses. Nothing else is accepted.
package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Vars binds identifiers to values at evaluation time
type Vars map[string]float64

// Expr is a parsed formula
type Expr interface {
	eval(vars Vars) float64
	String() string
}

type number float64

func (n number) eval(Vars) float64 { return float64(n) }
func (n number) String() string    { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

type variable string

// Unbound identifiers evaluate to zero.
func (v variable) eval(vars Vars) float64 { return vars[string(v)] }
func (v variable) String() string         { return string(v) }

type negate struct{ x Expr }

func (n negate) eval(vars Vars) float64 { return -n.x.eval(vars) }
func (n negate) String() string         { return "-" + n.x.String() }

type binary struct {
	op   byte
	l, r Expr
}

func (b binary) eval(vars Vars) float64 {
	l, r := b.l.eval(vars), b.r.eval(vars)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		if r == 0 {
			return 0
		}
		return l / r
	}
	return 0
}

func (b binary) String() string {
	return "(" + b.l.String() + " " + string(b.op) + " " + b.r.String() + ")"
}

// Eval evaluates e and floors the result to an integer.
func Eval(e Expr, vars Vars) int {
	if e == nil {
		return 0
	}
	v := e.eval(vars)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}

// Parse builds an expression tree from text.
func Parse(text string) (Expr, error) {
	p := &parser{src: text}
	p.next()
	if p.tok.kind == tokEOF {
		return nil, fmt.Errorf("empty formula")
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.tok.text, p.tok.pos)
	}
	return e, nil
}

// MustParse panics on malformed input; for package-level tables.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// EvalString parses and evaluates in one step. Malformed text yields zero
// alongside the parse error.
func EvalString(text string, vars Vars) (int, error) {
	e, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return Eval(e, vars), nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokBad
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src string
	off int
	tok token
}

func (p *parser) next() {
	for p.off < len(p.src) && unicode.IsSpace(rune(p.src[p.off])) {
		p.off++
	}
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: p.off}
		return
	}

	start := p.off
	c := p.src[p.off]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		for p.off < len(p.src) && (p.src[p.off] >= '0' && p.src[p.off] <= '9' || p.src[p.off] == '.') {
			p.off++
		}
		p.tok = token{kind: tokNum, text: p.src[start:p.off], pos: start}
	case c == '_' || unicode.IsLetter(rune(c)):
		for p.off < len(p.src) && (p.src[p.off] == '_' || unicode.IsLetter(rune(p.src[p.off])) || unicode.IsDigit(rune(p.src[p.off]))) {
			p.off++
		}
		p.tok = token{kind: tokIdent, text: strings.ToLower(p.src[start:p.off]), pos: start}
	case strings.IndexByte("+-*/", c) >= 0:
		p.off++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	case c == '(':
		p.off++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.off++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	default:
		p.off++
		p.tok = token{kind: tokBad, text: string(c), pos: start}
	}
}

// expr = term { ("+" | "-") term }
func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, l: left, r: right}
	}
	return left, nil
}

// term = factor { ("*" | "/") factor }
func (p *parser) term() (Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		p.next()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, l: left, r: right}
	}
	return left, nil
}

// factor = number | ident | "-" factor | "(" expr ")"
func (p *parser) factor() (Expr, error) {
	switch p.tok.kind {
	case tokNum:
		v, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at offset %d", p.tok.text, p.tok.pos)
		}
		p.next()
		return number(v), nil
	case tokIdent:
		name := p.tok.text
		p.next()
		return variable(name), nil
	case tokOp:
		if p.tok.text == "-" {
			p.next()
			x, err := p.factor()
			if err != nil {
				return nil, err
			}
			return negate{x: x}, nil
		}
	case tokLParen:
		p.next()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("missing ) at offset %d", p.tok.pos)
		}
		p.next()
		return e, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of formula")
	}
	return nil, fmt.Errorf("unexpected %q at offset %d", p.tok.text, p.tok.pos)
}
