package cas

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"unicode"
)

// #region errors
// ParseError reports unrecognized syntax or an identifier outside the
// whitelist and the declared variables.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s at offset %d", e.Input, e.Msg, e.Pos)
}

// #endregion errors

// #region symbol-table
// SymbolTable is the set of variable names an expression may reference.
type SymbolTable map[string]bool

// NewSymbolTable declares names as variables.
func NewSymbolTable(names ...string) SymbolTable {
	t := make(SymbolTable, len(names))
	for _, n := range names {
		t[n] = true
	}
	return t
}

// Names returns the declared variables in sorted order.
func (t SymbolTable) Names() []string {
	out := make([]string, 0, len(t))
	for n := range t {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// #endregion symbol-table

// #region lexer
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// exponentLen returns the length of a decimal exponent such as e5 or E-3 at
// the start of rs, or 0. A bare e stays Euler's number.
func exponentLen(rs []rune) int {
	if len(rs) < 2 || (rs[0] != 'e' && rs[0] != 'E') {
		return 0
	}
	n := 1
	if rs[n] == '+' || rs[n] == '-' {
		n++
	}
	digits := n
	for n < len(rs) && rs[n] < unicode.MaxASCII && unicode.IsDigit(rs[n]) {
		n++
	}
	if n == digits {
		return 0
	}
	return n
}

func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			dot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || (runes[i] == '.' && !dot)) {
				if runes[i] == '.' {
					dot = true
				}
				i++
			}
			i += exponentLen(runes[i:])
			toks = append(toks, token{kind: tokNum, text: string(runes[start:i]), pos: start})
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			start := i
			for i < len(runes) && runes[i] < unicode.MaxASCII && unicode.IsLetter(runes[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i += 2
		case r == '^':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i++
		case strings.ContainsRune("+-*/", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(' || r == '[':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')' || r == ']':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &ParseError{Input: input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

// #endregion lexer

// #region parser
type parser struct {
	input string
	toks  []token
	pos   int
	vars  SymbolTable
}

// Parse builds an expression from text. Juxtaposition is multiplication
// ("2x", "(x+1)(x-1)"), a function name followed by an operand without
// parentheses applies to it ("sin x"), and run-on letters split into
// whitelisted names and single-letter variables ("xy" is x*y).
func Parse(text string, vars SymbolTable) (Expr, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{input: text, toks: toks, vars: vars}
	if p.peek().kind == tokEOF {
		return nil, p.errorf("empty expression")
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.peek().text)
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.input, Pos: p.peek().pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isOp(s string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == s
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = Neg(right)
		}
		left = NewAdd(left, right)
	}
	return left, nil
}

func (p *parser) startsOperand() bool {
	switch p.peek().kind {
	case tokNum, tokIdent, tokLParen:
		return true
	}
	return false
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = NewMul(left, right)
		case p.isOp("/"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = Div(left, right)
		case p.startsOperand():
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = NewMul(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	if p.isOp("+") {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp("**") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewPow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNum:
		p.next()
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, &ParseError{Input: p.input, Pos: t.pos, Msg: fmt.Sprintf("bad number %q", t.text)}
		}
		return Num{r: r}, nil
	case tokLParen:
		p.next()
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.next()
		return e, nil
	case tokIdent:
		p.next()
		return p.parseIdent(t)
	case tokEOF:
		return nil, p.errorf("unexpected end of input")
	}
	return nil, p.errorf("unexpected %q", t.text)
}

// #endregion parser

// #region identifiers
func (p *parser) parseIdent(t token) (Expr, error) {
	parts, ok := p.splitIdent(t.text)
	if !ok {
		return nil, &ParseError{Input: p.input, Pos: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.text)}
	}

	// every part but the last is a standalone factor; a trailing function
	// name takes the following operand as its argument
	factors := make([]Expr, 0, len(parts))
	for i, part := range parts {
		b, isBuiltin := LookupBuiltin(part)
		switch {
		case p.vars[part] && !(isBuiltin && b.IsConstant()):
			factors = append(factors, NewSym(part))
		case isBuiltin && b == ConstPi:
			factors = append(factors, Pi)
		case isBuiltin && b == ConstE:
			factors = append(factors, E)
		case isBuiltin:
			if i != len(parts)-1 {
				return nil, &ParseError{Input: p.input, Pos: t.pos, Msg: fmt.Sprintf("function %s requires an argument", part)}
			}
			arg, err := p.parseArgument(part)
			if err != nil {
				return nil, err
			}
			factors = append(factors, NewFunc(b, arg))
		default:
			factors = append(factors, NewSym(part))
		}
	}
	return NewMul(factors...), nil
}

func (p *parser) parseArgument(name string) (Expr, error) {
	if p.peek().kind == tokLParen {
		p.next()
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf("%s takes one argument", name)
		}
		p.next()
		return arg, nil
	}
	if !p.startsOperand() {
		return nil, p.errorf("function %s requires an argument", name)
	}
	return p.parsePower()
}

// splitIdent resolves an identifier into whitelisted names and declared
// single-letter variables. A whole-word variable or builtin wins over
// splitting.
func (p *parser) splitIdent(word string) ([]string, bool) {
	if _, ok := LookupBuiltin(word); ok {
		return []string{word}, true
	}
	if p.vars[word] {
		return []string{word}, true
	}
	var parts []string
	for i := 0; i < len(word); {
		matched := false
		for _, name := range prefixOrder {
			if strings.HasPrefix(word[i:], name) {
				parts = append(parts, name)
				i += len(name)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		letter := word[i : i+1]
		if _, ok := LookupBuiltin(letter); !ok && !p.vars[letter] {
			return nil, false
		}
		parts = append(parts, letter)
		i++
	}
	return parts, true
}

// #endregion identifiers
