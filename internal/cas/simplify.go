package cas

import "math"

// #region expand
const maxExpandPower = 16

// Expand distributes products over sums and multiplies out small integer
// powers of sums.
func Expand(e Expr) Expr {
	switch v := e.(type) {
	case Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Expand(t)
		}
		return NewAdd(terms...)
	case Mul:
		products := []Expr{One}
		for _, f := range v.factors {
			f = Expand(f)
			a, ok := f.(Add)
			if !ok {
				for i := range products {
					products[i] = NewMul(products[i], f)
				}
				continue
			}
			next := make([]Expr, 0, len(products)*len(a.terms))
			for _, p := range products {
				for _, t := range a.terms {
					next = append(next, Expand(NewMul(p, t)))
				}
			}
			products = next
		}
		return NewAdd(products...)
	case Pow:
		base := Expand(v.base)
		n, ok := v.exp.(Num)
		a, isAdd := base.(Add)
		if !ok || !n.IsInt() || !isAdd {
			return NewPow(base, Expand(v.exp))
		}
		k := n.r.Num().Int64()
		neg := k < 0
		if neg {
			k = -k
		}
		if k > maxExpandPower {
			return NewPow(base, v.exp)
		}
		out := Expr(One)
		for i := int64(0); i < k; i++ {
			out = mulTerms(out, a)
		}
		if neg {
			return NewPow(out, NegOne)
		}
		return out
	case Func:
		return NewFunc(v.fn, Expand(v.arg))
	}
	return e
}

// mulTerms multiplies two expanded expressions term by term. Multiplying
// the sums directly would fold them back into a power.
func mulTerms(a, b Expr) Expr {
	as, bs := []Expr{a}, []Expr{b}
	if s, ok := a.(Add); ok {
		as = s.terms
	}
	if s, ok := b.(Add); ok {
		bs = s.terms
	}
	out := make([]Expr, 0, len(as)*len(bs))
	for _, x := range as {
		for _, y := range bs {
			out = append(out, Expand(NewMul(x, y)))
		}
	}
	return NewAdd(out...)
}

// #endregion expand

// #region cancel
// Cancel reduces a single-variable rational function to lowest terms. Other
// expressions are returned unchanged.
func Cancel(e Expr) Expr {
	vars := FreeSymbols(e)
	if len(vars) != 1 {
		return e
	}
	x := vars[0]
	num, den, ok := rationalFunc(e, x)
	if !ok || den.isZero() {
		return e
	}
	num, den = reduceRational(num, den)
	if num.isZero() {
		return Zero
	}
	if den.degree() == 0 {
		return num.scale(den[0]).expr(x)
	}
	return NewMul(num.expr(x), NewPow(den.expr(x), NegOne))
}

// #endregion cancel

// #region simplify
// Simplify returns the least complex of the canonical, expanded and
// cancelled forms of e. Ties keep the earlier candidate.
func Simplify(e Expr) Expr {
	best := e
	bestCost := complexity(e)
	ex := Expand(e)
	for _, c := range []Expr{ex, Cancel(e), Cancel(ex), pythagorean(ex)} {
		if cost := complexity(c); cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best
}

// pythagorean folds pairs c*sin(u)**2 + c*cos(u)**2 of a sum into c.
func pythagorean(e Expr) Expr {
	a, ok := e.(Add)
	if !ok {
		return e
	}
	used := make([]bool, len(a.terms))
	var out []Expr
	for i, t := range a.terms {
		fn, arg, coef, ok := trigSquare(t)
		if !ok || used[i] {
			continue
		}
		for j := i + 1; j < len(a.terms); j++ {
			fn2, arg2, coef2, ok := trigSquare(a.terms[j])
			if !ok || used[j] || fn2 == fn || arg2.String() != arg.String() || coef2.String() != coef.String() {
				continue
			}
			used[i], used[j] = true, true
			out = append(out, coef)
			break
		}
	}
	if len(out) == 0 {
		return e
	}
	for i, t := range a.terms {
		if !used[i] {
			out = append(out, t)
		}
	}
	return NewAdd(out...)
}

// trigSquare splits t into coef*f(arg)**2 with f sin or cos.
func trigSquare(t Expr) (fn Builtin, arg, coef Expr, ok bool) {
	factors := []Expr{t}
	if m, isMul := t.(Mul); isMul {
		factors = m.factors
	}
	for i, f := range factors {
		p, isPow := f.(Pow)
		if !isPow || !isNum(p.exp, 2) {
			continue
		}
		g, isFunc := p.base.(Func)
		if !isFunc || (g.fn != FnSin && g.fn != FnCos) {
			continue
		}
		rest := make([]Expr, 0, len(factors)-1)
		rest = append(rest, factors[:i]...)
		rest = append(rest, factors[i+1:]...)
		return g.fn, g.arg, NewMul(rest...), true
	}
	return BuiltinNone, nil, nil, false
}

// complexity counts nodes, weighted so fewer operations win.
func complexity(e Expr) int {
	switch v := e.(type) {
	case Add:
		n := 1
		for _, t := range v.terms {
			n += complexity(t)
		}
		return n
	case Mul:
		n := 1
		for _, f := range v.factors {
			n += complexity(f)
		}
		return n
	case Pow:
		return 1 + complexity(v.base) + complexity(v.exp)
	case Func:
		return 1 + complexity(v.arg)
	}
	return 1
}

// zeroTolerance bounds the numeric fallback used by IsZero for closed-form
// constants the exact rules cannot fold.
const zeroTolerance = 1e-9

// IsZero reports whether e simplifies to zero.
func IsZero(e Expr) bool {
	if isNum(e, 0) {
		return true
	}
	ex := Expand(e)
	if isNum(ex, 0) || isNum(Cancel(ex), 0) {
		return true
	}
	if !IsNumber(ex) {
		return false
	}
	v, err := Evalf(ex, nil)
	return err == nil && math.Abs(v) < zeroTolerance
}

// #endregion simplify
