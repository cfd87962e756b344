package cas

// #region diff
// Diff differentiates e with respect to variable x.
func Diff(e Expr, x string) Expr {
	switch v := e.(type) {
	case Sym:
		if v.Name == x {
			return One
		}
		return Zero
	case Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Diff(t, x)
		}
		return NewAdd(terms...)
	case Mul:
		// product rule
		terms := make([]Expr, 0, len(v.factors))
		for i := range v.factors {
			d := Diff(v.factors[i], x)
			if isNum(d, 0) {
				continue
			}
			parts := make([]Expr, 0, len(v.factors))
			for j, f := range v.factors {
				if j == i {
					parts = append(parts, d)
				} else {
					parts = append(parts, f)
				}
			}
			terms = append(terms, NewMul(parts...))
		}
		return NewAdd(terms...)
	case Pow:
		return diffPow(v, x)
	case Func:
		return diffFunc(v, x)
	}
	return Zero
}

func diffPow(p Pow, x string) Expr {
	baseHas, expHas := Has(p.base, x), Has(p.exp, x)
	switch {
	case !baseHas && !expHas:
		return Zero
	case !expHas:
		// n*u**(n-1)*u'
		return NewMul(p.exp, NewPow(p.base, Sub(p.exp, One)), Diff(p.base, x))
	case !baseHas:
		// a**u * log(a) * u'
		return NewMul(p, NewFunc(FnLog, p.base), Diff(p.exp, x))
	}
	// u**v * (v'*log(u) + v*u'/u)
	return NewMul(p, NewAdd(
		NewMul(Diff(p.exp, x), NewFunc(FnLog, p.base)),
		NewMul(p.exp, Diff(p.base, x), NewPow(p.base, NegOne)),
	))
}

func diffFunc(f Func, x string) Expr {
	inner := Diff(f.arg, x)
	if isNum(inner, 0) {
		return Zero
	}
	var outer Expr
	switch f.fn {
	case FnSin:
		outer = NewFunc(FnCos, f.arg)
	case FnCos:
		outer = Neg(NewFunc(FnSin, f.arg))
	case FnTan:
		outer = NewAdd(NewPow(NewFunc(FnTan, f.arg), NewInt(2)), One)
	case FnAtan:
		outer = NewPow(NewAdd(One, NewPow(f.arg, NewInt(2))), NegOne)
	case FnLog:
		outer = NewPow(f.arg, NegOne)
	case FnExp:
		outer = f
	case FnAbs:
		outer = NewFunc(FnSign, f.arg)
	default:
		return Zero
	}
	return NewMul(outer, inner)
}

// #endregion diff
