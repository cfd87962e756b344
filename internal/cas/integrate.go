package cas

import (
	"fmt"
	"math/big"
)

// #region integrate
// ErrNoAntiderivative is wrapped by Integrate when no rule applies.
var ErrNoAntiderivative = fmt.Errorf("no closed-form antiderivative found")

const maxPartsDepth = 8

// Integrate returns an antiderivative of e with respect to x, without the
// constant of integration.
func Integrate(e Expr, x string) (Expr, error) {
	return integrate(e, x, 0)
}

func integrate(e Expr, x string, depth int) (Expr, error) {
	if depth > maxPartsDepth {
		return nil, fmt.Errorf("integrate %s: %w", e, ErrNoAntiderivative)
	}
	if !Has(e, x) {
		return NewMul(e, NewSym(x)), nil
	}
	switch v := e.(type) {
	case Sym:
		return NewMul(Half, NewPow(v, NewInt(2))), nil
	case Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, err := integrate(t, x, depth)
			if err != nil {
				return nil, err
			}
			terms[i] = r
		}
		return NewAdd(terms...), nil
	case Pow:
		if r, ok := integratePow(v, x); ok {
			return r, nil
		}
	case Func:
		if r, ok := integrateFunc(v, x); ok {
			return r, nil
		}
	case Mul:
		if r, ok, err := integrateMul(v, x, depth); ok || err != nil {
			return r, err
		}
	}
	if ex := Expand(e); !Equal(ex, e) {
		return integrate(ex, x, depth+1)
	}
	if r, ok := integrateRational(e, x); ok {
		return r, nil
	}
	if r, ok := substitution(e, x); ok {
		return r, nil
	}
	return nil, fmt.Errorf("integrate %s: %w", e, ErrNoAntiderivative)
}

// linear reports a and b when e == a*x + b with a, b free of x.
func linear(e Expr, x string) (Expr, Expr, bool) {
	cs, ok := coefficients(e, x, 1)
	if !ok || len(cs) != 2 || isNum(cs[1], 0) {
		return nil, nil, false
	}
	return cs[1], cs[0], true
}

func integratePow(p Pow, x string) (Expr, bool) {
	// (a*x + b)**n with constant n
	if !Has(p.exp, x) {
		a, _, ok := linear(p.base, x)
		if !ok {
			return nil, false
		}
		if n, okNum := p.exp.(Num); okNum && n.IsInt() && n.Sign() > 0 && n.r.Num().Int64() <= maxExpandPower {
			if _, isSym := p.base.(Sym); !isSym {
				r, err := Integrate(Expand(p), x)
				return r, err == nil
			}
		}
		if isNum(p.exp, -1) {
			return Div(NewFunc(FnLog, p.base), a), true
		}
		np1 := NewAdd(p.exp, One)
		return Div(NewPow(p.base, np1), NewMul(np1, a)), true
	}
	// c**(a*x + b) with constant c
	if !Has(p.base, x) {
		a, _, ok := linear(p.exp, x)
		if !ok {
			return nil, false
		}
		return Div(p, NewMul(a, NewFunc(FnLog, p.base))), true
	}
	return nil, false
}

func integrateFunc(f Func, x string) (Expr, bool) {
	a, _, ok := linear(f.arg, x)
	if !ok {
		return nil, false
	}
	u := f.arg
	switch f.fn {
	case FnSin:
		return Div(Neg(NewFunc(FnCos, u)), a), true
	case FnCos:
		return Div(NewFunc(FnSin, u), a), true
	case FnExp:
		return Div(f, a), true
	case FnTan:
		return Div(Neg(NewFunc(FnLog, NewFunc(FnCos, u))), a), true
	case FnLog:
		return Div(Sub(NewMul(u, NewFunc(FnLog, u)), u), a), true
	case FnAtan:
		// u*atan(u) - log(1 + u**2)/2
		logTerm := NewMul(Half, NewFunc(FnLog, NewAdd(One, NewPow(u, NewInt(2)))))
		return Div(Sub(NewMul(u, f), logTerm), a), true
	}
	return nil, false
}

// integrateMul pulls out constant factors and integrates polynomial times
// exp/sin/cos of a linear argument by parts.
func integrateMul(m Mul, x string, depth int) (Expr, bool, error) {
	var constant, varying []Expr
	for _, f := range m.factors {
		if Has(f, x) {
			varying = append(varying, f)
		} else {
			constant = append(constant, f)
		}
	}
	if len(constant) > 0 {
		r, err := integrate(NewMul(varying...), x, depth)
		if err != nil {
			return nil, true, err
		}
		return NewMul(append(constant, r)...), true, nil
	}

	var poly, trans []Expr
	for _, f := range varying {
		if isPolynomial(f, x) {
			poly = append(poly, f)
			continue
		}
		trans = append(trans, f)
	}
	if len(trans) != 1 || len(poly) == 0 {
		return nil, false, nil
	}
	t, ok := trans[0].(Func)
	if !ok || (t.fn != FnExp && t.fn != FnSin && t.fn != FnCos) {
		return nil, false, nil
	}
	if _, _, ok := linear(t.arg, x); !ok {
		return nil, false, nil
	}
	// integral(P*T) = P*integral(T) - integral(P'*integral(T))
	p := NewMul(poly...)
	tInt, ok := integrateFunc(t, x)
	if !ok {
		return nil, false, nil
	}
	rest, err := integrate(Expand(NewMul(Diff(p, x), tInt)), x, depth+1)
	if err != nil {
		return nil, true, err
	}
	return Expand(Sub(NewMul(p, tInt), rest)), true, nil
}

func isPolynomial(e Expr, x string) bool {
	_, ok := coefficients(e, x, maxExpandPower)
	return ok
}

// substitution tries integral(g'(x) * f(g(x))) = F(g(x)) for the inner
// argument g of a function or power factor.
func substitution(e Expr, x string) (Expr, bool) {
	factors := []Expr{e}
	if m, ok := e.(Mul); ok {
		factors = m.factors
	}
	u := NewSym("_u")
	for i, f := range factors {
		var inner Expr
		switch v := f.(type) {
		case Func:
			inner = v.arg
		case Pow:
			if Has(v.exp, x) {
				continue
			}
			inner = v.base
		default:
			continue
		}
		if _, _, ok := linear(inner, x); ok {
			continue
		}
		d := Diff(inner, x)
		if isNum(d, 0) {
			continue
		}
		rest := make([]Expr, 0, len(factors))
		for j, g := range factors {
			if j != i {
				rest = append(rest, g)
			}
		}
		ratio := Simplify(Div(NewMul(rest...), d))
		if Has(ratio, x) {
			continue
		}
		outer := replaceExpr(f, inner, u)
		F, err := Integrate(NewMul(ratio, outer), u.Name)
		if err != nil {
			continue
		}
		return Substitute(F, u.Name, inner), true
	}
	return nil, false
}

// replaceExpr swaps the inner argument of a function or power node.
func replaceExpr(f, inner, with Expr) Expr {
	switch v := f.(type) {
	case Func:
		if Equal(v.arg, inner) {
			return NewFunc(v.fn, with)
		}
	case Pow:
		if Equal(v.base, inner) {
			return NewPow(with, v.exp)
		}
	}
	return f
}

// integrateRational handles num/den with a linear or irreducible quadratic
// denominator by polynomial division: quotient + c/(a*x + b), or a log and
// atan pair for the quadratic.
func integrateRational(e Expr, x string) (Expr, bool) {
	num, den, ok := rationalFunc(e, x)
	if !ok {
		return nil, false
	}
	num, den = reduceRational(num, den)
	if den.degree() == 2 {
		return integrateQuadratic(num, den, x)
	}
	if den.degree() != 1 {
		return nil, false
	}
	quo, rem := num.divmod(den)
	q, err := Integrate(quo.expr(x), x)
	if err != nil {
		return nil, false
	}
	if rem.isZero() {
		return q, true
	}
	// rem is constant; den is monic x + b
	logTerm := NewMul(NumFromRat(rem[0]), NewFunc(FnLog, den.expr(x)))
	return NewAdd(q, logTerm), true
}

// integrateQuadratic integrates num/(x**2 + b*x + c) when the denominator
// has no real roots:
//
//	(r1*x + r0)/(x**2 + b*x + c) -> r1/2*log(den) + (r0 - r1*b/2)/k*atan((x + b/2)/k)
//
// with k**2 = c - b**2/4.
func integrateQuadratic(num, den poly, x string) (Expr, bool) {
	// make den monic
	lead := new(big.Rat).Set(den.lead())
	inv := new(big.Rat).Inv(lead)
	num, den = num.scale(inv), den.scale(inv)
	half := big.NewRat(1, 2)
	h := new(big.Rat).Mul(den[1], half)
	k2 := new(big.Rat).Sub(den[0], new(big.Rat).Mul(h, h))
	if k2.Sign() <= 0 {
		return nil, false
	}
	quo, rem := num.divmod(den)
	q, err := Integrate(quo.expr(x), x)
	if err != nil {
		return nil, false
	}
	r0, r1 := new(big.Rat), new(big.Rat)
	if len(rem) > 0 {
		r0.Set(rem[0])
	}
	if len(rem) > 1 {
		r1.Set(rem[1])
	}
	logTerm := NewMul(NumFromRat(new(big.Rat).Mul(r1, half)), NewFunc(FnLog, den.expr(x)))

	c := new(big.Rat).Sub(r0, new(big.Rat).Mul(r1, h))
	k := NewPow(NumFromRat(k2), Half)
	arg := Div(NewAdd(NewSym(x), NumFromRat(h)), k)
	atanTerm := Div(NewMul(NumFromRat(c), NewFunc(FnAtan, arg)), k)
	return NewAdd(q, logTerm, atanTerm), true
}

// #endregion integrate

// #region coefficients
// coefficients expands e as a polynomial in x of degree at most maxDeg and
// returns its coefficients, lowest first. Coefficients may contain other
// variables but never x.
func coefficients(e Expr, x string, maxDeg int) ([]Expr, bool) {
	ex := Expand(e)
	terms := []Expr{ex}
	if a, ok := ex.(Add); ok {
		terms = a.terms
	}
	byDeg := map[int][]Expr{}
	top := 0
	for _, t := range terms {
		deg, rest, ok := splitPower(t, x)
		if !ok || deg > maxDeg {
			return nil, false
		}
		byDeg[deg] = append(byDeg[deg], rest)
		if deg > top {
			top = deg
		}
	}
	out := make([]Expr, top+1)
	for i := range out {
		out[i] = NewAdd(byDeg[i]...)
	}
	return out, true
}

// splitPower writes a term as rest * x**deg with rest free of x.
func splitPower(t Expr, x string) (int, Expr, bool) {
	factors := []Expr{t}
	if m, ok := t.(Mul); ok {
		factors = m.factors
	}
	deg := 0
	var rest []Expr
	for _, f := range factors {
		switch v := f.(type) {
		case Sym:
			if v.Name == x {
				deg++
				continue
			}
		case Pow:
			if s, ok := v.base.(Sym); ok && s.Name == x {
				n, ok := v.exp.(Num)
				if !ok || !n.IsInt() || n.Sign() < 0 {
					return 0, nil, false
				}
				deg += int(n.r.Num().Int64())
				continue
			}
		}
		if Has(f, x) {
			return 0, nil, false
		}
		rest = append(rest, f)
	}
	return deg, NewMul(rest...), true
}

// #endregion coefficients
