// Package cas is a small computer algebra system: an exact expression tree
// over rationals with a whitelisted parser, canonical simplification,
// differentiation, integration, limits and equation solving.
//
// Every constructor returns canonical form, so two mathematically identical
// expressions built from the same parts print identically.
package cas

import (
	"math/big"
	"sort"
	"strings"
)

// #region expr
// Expr is an immutable expression node.
type Expr interface {
	String() string
	isExpr()
}

// Num is an exact rational constant.
type Num struct{ r *big.Rat }

// Sym is a named variable.
type Sym struct{ Name string }

// Const is a named mathematical constant (pi, E).
type Const struct{ Kind Builtin }

// Infinity is a signed infinity: Sign 1 is oo, -1 is -oo, 0 is complex infinity.
type Infinity struct{ Sign int }

// Undefined is the result of an indeterminate operation such as oo - oo.
type Undefined struct{}

// Add is a sum of at least two canonical terms.
type Add struct{ terms []Expr }

// Mul is a product of at least two canonical factors; a rational coefficient,
// when present, is always first.
type Mul struct{ factors []Expr }

// Pow is base**exp.
type Pow struct{ base, exp Expr }

// Func is a unary function application.
type Func struct {
	fn  Builtin
	arg Expr
}

func (Num) isExpr()       {}
func (Sym) isExpr()       {}
func (Const) isExpr()     {}
func (Infinity) isExpr()  {}
func (Undefined) isExpr() {}
func (Add) isExpr()       {}
func (Mul) isExpr()       {}
func (Pow) isExpr()       {}
func (Func) isExpr()      {}

// #endregion expr

// #region accessors
func (a Add) Terms() []Expr    { return append([]Expr(nil), a.terms...) }
func (m Mul) Factors() []Expr  { return append([]Expr(nil), m.factors...) }
func (p Pow) Base() Expr       { return p.base }
func (p Pow) Exponent() Expr   { return p.exp }
func (f Func) Fn() Builtin     { return f.fn }
func (f Func) Arg() Expr       { return f.arg }
func (n Num) Rat() *big.Rat    { return new(big.Rat).Set(n.r) }
func (n Num) Sign() int        { return n.r.Sign() }
func (n Num) IsZero() bool     { return n.r.Sign() == 0 }
func (n Num) IsOne() bool      { return n.r.Cmp(ratOne) == 0 }
func (n Num) IsInt() bool      { return n.r.IsInt() }
func (n Num) Float64() float64 { f, _ := n.r.Float64(); return f }

// #endregion accessors

// #region constants
var (
	ratOne = big.NewRat(1, 1)

	Zero   = NewInt(0)
	One    = NewInt(1)
	NegOne = NewInt(-1)
	Half   = NewRat(1, 2)

	Pi = Const{Kind: ConstPi}
	E  = Const{Kind: ConstE}

	PosInf     = Infinity{Sign: 1}
	NegInf     = Infinity{Sign: -1}
	ComplexInf = Infinity{Sign: 0}
	NaN        = Undefined{}
)

// NewInt returns the integer n.
func NewInt(n int64) Num { return Num{r: new(big.Rat).SetInt64(n)} }

// NewRat returns the reduced fraction a/b. b must be nonzero.
func NewRat(a, b int64) Num { return Num{r: big.NewRat(a, b)} }

// NumFromRat copies r into a Num.
func NumFromRat(r *big.Rat) Num { return Num{r: new(big.Rat).Set(r)} }

// NewSym returns the variable name.
func NewSym(name string) Sym { return Sym{Name: name} }

// #endregion constants

// #region arithmetic
// Neg returns -e.
func Neg(e Expr) Expr { return NewMul(NegOne, e) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return NewAdd(a, Neg(b)) }

// Div returns a / b.
func Div(a, b Expr) Expr { return NewMul(a, NewPow(b, NegOne)) }

// #endregion arithmetic

// #region add
type likeTerm struct {
	coef *big.Rat
	rest Expr
}

// NewAdd sums terms, flattening nested sums and collecting like terms.
func NewAdd(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if a, ok := t.(Add); ok {
			flat = append(flat, a.terms...)
			continue
		}
		flat = append(flat, t)
	}

	constant := new(big.Rat)
	var infSigns []int
	like := make(map[string]*likeTerm)
	var order []string

	for _, t := range flat {
		switch v := t.(type) {
		case Undefined:
			return NaN
		case Num:
			constant.Add(constant, v.r)
		case Infinity:
			infSigns = append(infSigns, v.Sign)
		default:
			c, rest := splitCoeff(t)
			k := rest.String()
			if lt, ok := like[k]; ok {
				lt.coef.Add(lt.coef, c)
				continue
			}
			like[k] = &likeTerm{coef: new(big.Rat).Set(c), rest: rest}
			order = append(order, k)
		}
	}

	if len(infSigns) > 0 {
		return sumInfinities(infSigns)
	}

	out := make([]Expr, 0, len(order)+1)
	for _, k := range order {
		lt := like[k]
		if lt.coef.Sign() == 0 {
			continue
		}
		out = append(out, scale(lt.coef, lt.rest))
	}
	if constant.Sign() != 0 {
		out = append(out, Num{r: constant})
	}

	switch len(out) {
	case 0:
		return Zero
	case 1:
		return out[0]
	}
	if needsRefold(out) {
		return NewAdd(out...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return Add{terms: out}
}

func sumInfinities(signs []int) Expr {
	pos, neg := false, false
	for _, s := range signs {
		switch s {
		case 0:
			return ComplexInf
		case 1:
			pos = true
		case -1:
			neg = true
		}
	}
	if pos && neg {
		return NaN
	}
	if pos {
		return PosInf
	}
	return NegInf
}

// needsRefold reports whether scaling produced a nested sum, which happens
// when a coefficient distributes over an Add.
func needsRefold(terms []Expr) bool {
	for _, t := range terms {
		if _, ok := t.(Add); ok {
			return true
		}
	}
	return false
}

// splitCoeff separates the rational coefficient of a term from the rest.
func splitCoeff(e Expr) (*big.Rat, Expr) {
	m, ok := e.(Mul)
	if !ok {
		return ratOne, e
	}
	n, ok := m.factors[0].(Num)
	if !ok {
		return ratOne, e
	}
	if len(m.factors) == 2 {
		return n.r, m.factors[1]
	}
	return n.r, Mul{factors: m.factors[1:]}
}

// scale multiplies an already canonical coefficient-free term by c.
func scale(c *big.Rat, rest Expr) Expr {
	if c.Cmp(ratOne) == 0 {
		return rest
	}
	return NewMul(Num{r: new(big.Rat).Set(c)}, rest)
}

// #endregion add

// #region mul
// NewMul multiplies factors, collecting powers of equal bases.
func NewMul(factors ...Expr) Expr {
	return newMul(factors, 0)
}

func newMul(factors []Expr, depth int) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if m, ok := f.(Mul); ok {
			flat = append(flat, m.factors...)
			continue
		}
		flat = append(flat, f)
	}

	coef := big.NewRat(1, 1)
	zero := false
	var infSigns []int
	exps := make(map[string][]Expr)
	bases := make(map[string]Expr)
	var order []string
	var expArgs []Expr

	for _, f := range flat {
		switch v := f.(type) {
		case Undefined:
			return NaN
		case Num:
			if v.IsZero() {
				zero = true
				continue
			}
			coef.Mul(coef, v.r)
		case Infinity:
			infSigns = append(infSigns, v.Sign)
		case Func:
			if v.fn == FnExp {
				expArgs = append(expArgs, v.arg)
				continue
			}
			addPower(bases, exps, &order, f, One)
		case Pow:
			addPower(bases, exps, &order, v.base, v.exp)
		default:
			addPower(bases, exps, &order, f, One)
		}
	}

	if len(infSigns) > 0 {
		if zero {
			return NaN
		}
		sign := coef.Sign()
		for _, s := range infSigns {
			if s == 0 {
				return ComplexInf
			}
			sign *= s
		}
		if len(order) > 0 || len(expArgs) > 0 {
			// symbolic factors of unknown sign
			return ComplexInf
		}
		return Infinity{Sign: sign}
	}
	if zero {
		return Zero
	}

	produced := make([]Expr, 0, len(order)+1)
	refold := false
	for _, k := range order {
		p := NewPow(bases[k], NewAdd(exps[k]...))
		switch pv := p.(type) {
		case Num:
			if pv.IsOne() {
				continue
			}
			refold = true
		case Mul, Infinity, Undefined:
			refold = true
		case Func:
			if pv.fn == FnExp {
				refold = true
			}
		}
		produced = append(produced, p)
	}
	if len(expArgs) > 0 {
		e := NewFunc(FnExp, NewAdd(expArgs...))
		if n, ok := e.(Num); !ok || !n.IsOne() {
			produced = append(produced, e)
			if _, ok := e.(Func); !ok {
				refold = true
			}
		}
	}

	if refold && depth < 8 {
		return newMul(append([]Expr{Num{r: coef}}, produced...), depth+1)
	}

	sort.SliceStable(produced, func(i, j int) bool { return mulLess(produced[i], produced[j]) })

	if len(produced) == 0 {
		return Num{r: coef}
	}
	if coef.Cmp(ratOne) == 0 {
		if len(produced) == 1 {
			return produced[0]
		}
		return Mul{factors: produced}
	}
	if len(produced) == 1 {
		if a, ok := produced[0].(Add); ok {
			return distribute(coef, a)
		}
	}
	return Mul{factors: append([]Expr{Num{r: coef}}, produced...)}
}

func addPower(bases map[string]Expr, exps map[string][]Expr, order *[]string, base, exp Expr) {
	k := base.String()
	if _, ok := bases[k]; !ok {
		bases[k] = base
		*order = append(*order, k)
	}
	exps[k] = append(exps[k], exp)
}

// distribute applies a rational coefficient across a sum, as 2*(x + 1) -> 2*x + 2.
func distribute(c *big.Rat, a Add) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = NewMul(Num{r: new(big.Rat).Set(c)}, t)
	}
	return NewAdd(terms...)
}

// mulLess orders factors: numeric radicals, constants, symbols, then the rest.
func mulLess(a, b Expr) bool {
	ra, rb := mulRank(a), mulRank(b)
	if ra != rb {
		return ra < rb
	}
	return baseKey(a) < baseKey(b)
}

func mulRank(e Expr) int {
	base := e
	if p, ok := e.(Pow); ok {
		base = p.base
	}
	switch base.(type) {
	case Num:
		return 0
	case Const:
		return 1
	case Sym:
		return 2
	case Func:
		return 3
	}
	return 4
}

func baseKey(e Expr) string {
	if p, ok := e.(Pow); ok {
		return p.base.String()
	}
	return e.String()
}

// #endregion mul

// #region pow
// NewPow returns base**exp.
func NewPow(base, exp Expr) Expr {
	if _, ok := base.(Undefined); ok {
		return NaN
	}
	if _, ok := exp.(Undefined); ok {
		return NaN
	}
	if n, ok := exp.(Num); ok {
		if n.IsZero() {
			return One
		}
		if n.IsOne() {
			return base
		}
	}
	if n, ok := base.(Num); ok && n.IsOne() {
		return One
	}

	switch b := base.(type) {
	case Num:
		if e, ok := exp.(Num); ok {
			return numPow(b.r, e.r)
		}
		if b.IsZero() {
			return Zero
		}
	case Infinity:
		if e, ok := exp.(Num); ok {
			return infPow(b, e)
		}
	case Const:
		if b.Kind == ConstE {
			return NewFunc(FnExp, exp)
		}
	case Pow:
		if e, ok := exp.(Num); ok && e.IsInt() {
			return NewPow(b.base, NewMul(b.exp, e))
		}
	case Func:
		if e, ok := exp.(Num); ok && e.IsInt() && b.fn == FnExp {
			return NewFunc(FnExp, NewMul(b.arg, e))
		}
	case Mul:
		if e, ok := exp.(Num); ok && e.IsInt() {
			parts := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				parts[i] = NewPow(f, e)
			}
			return NewMul(parts...)
		}
		if c, ok := b.factors[0].(Num); ok && c.Sign() > 0 {
			rest := Mul{factors: b.factors[1:]}
			var restExpr Expr = rest
			if len(rest.factors) == 1 {
				restExpr = rest.factors[0]
			}
			return NewMul(NewPow(c, exp), Pow{base: restExpr, exp: exp})
		}
	}
	return Pow{base: base, exp: exp}
}

func infPow(b Infinity, e Num) Expr {
	switch {
	case e.Sign() < 0:
		return Zero
	case b.Sign == 0:
		return ComplexInf
	case b.Sign > 0:
		return PosInf
	case e.IsInt() && new(big.Int).Rem(e.r.Num(), big.NewInt(2)).Sign() == 0:
		return PosInf
	case e.IsInt():
		return NegInf
	}
	return ComplexInf
}

const maxIntExponent = 512

// numPow evaluates a rational power of a rational exactly, extracting
// perfect roots so sqrt(8) becomes 2*sqrt(2).
func numPow(b, e *big.Rat) Expr {
	if e.IsInt() {
		n := e.Num()
		if n.CmpAbs(big.NewInt(maxIntExponent)) > 0 {
			return Pow{base: Num{r: b}, exp: Num{r: e}}
		}
		if b.Sign() == 0 {
			if n.Sign() < 0 {
				return ComplexInf
			}
			return Zero
		}
		return Num{r: ratPowInt(b, n.Int64())}
	}
	if b.Sign() == 0 {
		if e.Sign() < 0 {
			return ComplexInf
		}
		return Zero
	}
	q := e.Denom().Int64()
	if b.Sign() < 0 || !e.Denom().IsInt64() || q > 16 {
		return Pow{base: Num{r: b}, exp: Num{r: e}}
	}
	p := e.Num().Int64()
	// split p/q into m + r0/q with 0 < r0 < q
	m := floorDiv(p, q)
	r0 := p - m*q

	outer := ratPowInt(b, m)
	num := new(big.Int).Exp(b.Num(), big.NewInt(r0), nil)
	den := new(big.Int).Exp(b.Denom(), big.NewInt(r0), nil)
	radicand := new(big.Int).Mul(num, new(big.Int).Exp(den, big.NewInt(q-1), nil))
	k, rest := extractRoot(radicand, q)

	coef := new(big.Rat).Mul(outer, new(big.Rat).SetFrac(k, den))
	if rest.Cmp(big.NewInt(1)) == 0 {
		return Num{r: coef}
	}
	radical := Pow{base: Num{r: new(big.Rat).SetInt(rest)}, exp: Num{r: big.NewRat(1, q)}}
	if coef.Cmp(ratOne) == 0 {
		return radical
	}
	return Mul{factors: []Expr{Num{r: coef}, radical}}
}

func floorDiv(a, b int64) int64 {
	d := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		d--
	}
	return d
}

func ratPowInt(b *big.Rat, n int64) *big.Rat {
	neg := n < 0
	if neg {
		n = -n
	}
	num := new(big.Int).Exp(b.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(b.Denom(), big.NewInt(n), nil)
	if neg {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den)
}

// extractRoot writes n = k**q * rest with rest free of q-th powers, using
// trial division for radicands that fit in 63 bits.
func extractRoot(n *big.Int, q int64) (*big.Int, *big.Int) {
	k := big.NewInt(1)
	if !n.IsInt64() {
		return k, new(big.Int).Set(n)
	}
	rest := n.Int64()
	out := int64(1)
	for f := int64(2); f <= 1<<20; f++ {
		fq := int64(1)
		overflow := false
		for i := int64(0); i < q; i++ {
			if fq > rest/f {
				overflow = true
				break
			}
			fq *= f
		}
		if overflow || fq > rest {
			break
		}
		for rest%fq == 0 {
			rest /= fq
			out *= f
		}
	}
	return k.SetInt64(out), big.NewInt(rest)
}

// #endregion pow

// #region free-symbols
// FreeSymbols returns the sorted distinct variable names in e.
func FreeSymbols(e Expr) []string {
	seen := make(map[string]bool)
	collectSymbols(e, seen)
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, seen map[string]bool) {
	switch v := e.(type) {
	case Sym:
		seen[v.Name] = true
	case Add:
		for _, t := range v.terms {
			collectSymbols(t, seen)
		}
	case Mul:
		for _, f := range v.factors {
			collectSymbols(f, seen)
		}
	case Pow:
		collectSymbols(v.base, seen)
		collectSymbols(v.exp, seen)
	case Func:
		collectSymbols(v.arg, seen)
	}
}

// Has reports whether variable name occurs in e.
func Has(e Expr, name string) bool {
	switch v := e.(type) {
	case Sym:
		return v.Name == name
	case Add:
		for _, t := range v.terms {
			if Has(t, name) {
				return true
			}
		}
	case Mul:
		for _, f := range v.factors {
			if Has(f, name) {
				return true
			}
		}
	case Pow:
		return Has(v.base, name) || Has(v.exp, name)
	case Func:
		return Has(v.arg, name)
	}
	return false
}

// IsNumber reports whether e has no free variables.
func IsNumber(e Expr) bool {
	return len(FreeSymbols(e)) == 0
}

// #endregion free-symbols

// #region substitute
// Substitute replaces every occurrence of variable name with value.
func Substitute(e Expr, name string, value Expr) Expr {
	switch v := e.(type) {
	case Sym:
		if v.Name == name {
			return value
		}
		return v
	case Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Substitute(t, name, value)
		}
		return NewAdd(terms...)
	case Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = Substitute(f, name, value)
		}
		return NewMul(factors...)
	case Pow:
		return NewPow(Substitute(v.base, name, value), Substitute(v.exp, name, value))
	case Func:
		return NewFunc(v.fn, Substitute(v.arg, name, value))
	}
	return e
}

// #endregion substitute

// #region equal
// Equal compares canonical forms.
func Equal(a, b Expr) bool {
	return a.String() == b.String()
}

func isNum(e Expr, n int64) bool {
	v, ok := e.(Num)
	return ok && v.r.Cmp(new(big.Rat).SetInt64(n)) == 0
}

func negative(e Expr) bool {
	switch v := e.(type) {
	case Num:
		return v.Sign() < 0
	case Mul:
		if n, ok := v.factors[0].(Num); ok {
			return n.Sign() < 0
		}
	}
	return strings.HasPrefix(e.String(), "-")
}

// #endregion equal
