package cas

import (
	"math/big"
	"sort"
	"strings"
)

// #region precedence
const (
	precAdd  = 10
	precMul  = 20
	precPow  = 30
	precAtom = 40
)

func precedence(e Expr) int {
	switch v := e.(type) {
	case Add:
		return precAdd
	case Mul:
		return precMul
	case Pow:
		if isSqrt(v) {
			return precAtom
		}
		if n, ok := v.exp.(Num); ok && n.Sign() < 0 {
			return precMul
		}
		return precPow
	case Num:
		if v.Sign() < 0 {
			return precAdd
		}
		if !v.IsInt() {
			return precMul
		}
	case Infinity:
		if v.Sign < 0 {
			return precAdd
		}
	}
	return precAtom
}

func paren(e Expr, minPrec int) string {
	s := e.String()
	if precedence(e) < minPrec {
		return "(" + s + ")"
	}
	return s
}

func isSqrt(p Pow) bool {
	n, ok := p.exp.(Num)
	return ok && n.r.Cmp(big.NewRat(1, 2)) == 0
}

// #endregion precedence

// #region atoms
func (n Num) String() string {
	if n.r.IsInt() {
		return n.r.Num().String()
	}
	return n.r.RatString()
}

func (s Sym) String() string { return s.Name }

func (c Const) String() string { return c.Kind.String() }

func (i Infinity) String() string {
	switch i.Sign {
	case 1:
		return "oo"
	case -1:
		return "-oo"
	}
	return "zoo"
}

func (Undefined) String() string { return "nan" }

func (f Func) String() string {
	return f.fn.String() + "(" + f.arg.String() + ")"
}

// #endregion atoms

// #region pow
func (p Pow) String() string {
	if n, ok := p.exp.(Num); ok {
		switch {
		case n.r.Cmp(big.NewRat(1, 2)) == 0:
			return "sqrt(" + p.base.String() + ")"
		case n.r.Cmp(big.NewRat(-1, 2)) == 0:
			return "1/sqrt(" + p.base.String() + ")"
		case n.r.Cmp(big.NewRat(-1, 1)) == 0:
			return "1/" + paren(p.base, precAtom)
		}
	}
	base := paren(p.base, precAtom)
	exp := p.exp.String()
	if precedence(p.exp) < precAtom {
		exp = "(" + exp + ")"
	} else if n, ok := p.exp.(Num); ok && !n.IsInt() {
		exp = "(" + exp + ")"
	}
	return base + "**" + exp
}

// #endregion pow

// #region mul
func (m Mul) String() string {
	coef := big.NewRat(1, 1)
	factors := m.factors
	if n, ok := factors[0].(Num); ok {
		coef.Set(n.r)
		factors = factors[1:]
	}

	var num, den []string
	if p := new(big.Int).Abs(coef.Num()); p.Cmp(big.NewInt(1)) != 0 {
		num = append(num, p.String())
	}
	if q := coef.Denom(); q.Cmp(big.NewInt(1)) != 0 {
		den = append(den, q.String())
	}
	for _, f := range factors {
		if p, ok := f.(Pow); ok {
			if n, ok := p.exp.(Num); ok && n.Sign() < 0 {
				inv := NewPow(p.base, Num{r: new(big.Rat).Neg(n.r)})
				den = append(den, paren(inv, precPow))
				continue
			}
		}
		num = append(num, paren(f, precMul))
	}

	sign := ""
	if coef.Sign() < 0 {
		sign = "-"
	}
	if len(num) == 0 {
		num = append(num, "1")
	}
	out := sign + strings.Join(num, "*")
	switch len(den) {
	case 0:
		return out
	case 1:
		return out + "/" + den[0]
	}
	return out + "/(" + strings.Join(den, "*") + ")"
}

// #endregion mul

// #region add
func (a Add) String() string {
	terms := displayOrder(a.terms)
	var b strings.Builder
	for i, t := range terms {
		s := t.String()
		if i == 0 {
			b.WriteString(s)
			continue
		}
		if strings.HasPrefix(s, "-") {
			b.WriteString(" - ")
			b.WriteString(s[1:])
			continue
		}
		b.WriteString(" + ")
		b.WriteString(s)
	}
	return b.String()
}

// displayOrder sorts terms the way polynomials are usually written: terms
// with variables by descending degree, then the rational constant, then other
// constants. A negative leading term swaps with a positive rational constant,
// so 1 - x prints instead of -x + 1.
func displayOrder(terms []Expr) []Expr {
	type ranked struct {
		e      Expr
		vars   bool
		degree float64
		mono   map[string]float64
		isNum  bool
		key    string
	}
	rs := make([]ranked, len(terms))
	var names []string
	seen := map[string]bool{}
	for i, t := range terms {
		mono := monomial(t)
		deg := 0.0
		for n, d := range mono {
			deg += d
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
		_, isNum := t.(Num)
		rs[i] = ranked{e: t, vars: len(FreeSymbols(t)) > 0, degree: deg, mono: mono, isNum: isNum, key: t.String()}
	}
	sort.Strings(names)
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.vars != b.vars {
			return a.vars
		}
		if a.vars {
			if a.degree != b.degree {
				return a.degree > b.degree
			}
			for _, n := range names {
				if a.mono[n] != b.mono[n] {
					return a.mono[n] > b.mono[n]
				}
			}
			return a.key < b.key
		}
		if a.isNum != b.isNum {
			return a.isNum
		}
		return a.key < b.key
	})

	out := make([]Expr, len(rs))
	for i, r := range rs {
		out[i] = r.e
	}
	if len(out) > 1 && negative(out[0]) {
		for i, t := range out {
			if n, ok := t.(Num); ok && n.Sign() > 0 {
				copy(out[1:i+1], out[0:i])
				out[0] = t
				break
			}
		}
	}
	return out
}

// monomial maps each variable to its numeric exponent within a single term.
func monomial(e Expr) map[string]float64 {
	out := map[string]float64{}
	var visit func(f Expr)
	visit = func(f Expr) {
		switch v := f.(type) {
		case Sym:
			out[v.Name]++
		case Pow:
			if s, ok := v.base.(Sym); ok {
				if n, ok := v.exp.(Num); ok {
					out[s.Name] += n.Float64()
				}
			}
		}
	}
	if m, ok := e.(Mul); ok {
		for _, f := range m.factors {
			visit(f)
		}
		return out
	}
	visit(e)
	return out
}

// #endregion add

// #region helpers
// FormatList renders expressions as [a, b, c].
func FormatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// FormatEq renders an equation the way the solver narrates it.
func FormatEq(lhs, rhs Expr) string {
	return "Eq(" + lhs.String() + ", " + rhs.String() + ")"
}

// #endregion helpers
