package cas

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// #region errors
var (
	// ErrLimitUndefined is wrapped when the limit does not exist.
	ErrLimitUndefined = errors.New("limit does not exist")
	// ErrIndeterminate is wrapped when no rule resolves an indeterminate form.
	ErrIndeterminate = errors.New("indeterminate form")
)

// #endregion errors

// #region limit
const (
	maxLHopital = 8
	// maxLHopitalSteps bounds the differentiations spent on one limit.
	maxLHopitalSteps = 24
	// maxGrowth bounds how much one differentiation may grow a quotient.
	maxGrowth = 2
)

// sampleSteps are right-sided offsets used to decide the sign of a quantity
// that tends to zero.
var sampleSteps = []float64{1e-4, 1e-6, 1e-8}

// Limit computes the limit of e as x approaches point from the right. point
// may be PosInf or NegInf.
func Limit(e Expr, x string, point Expr) (Expr, error) {
	l := &limiter{x: x, point: point}
	r, err := l.limit(e, 0)
	if err != nil {
		return nil, fmt.Errorf("limit of %s as %s -> %s: %w", e, x, point, err)
	}
	if _, ok := r.(Undefined); ok {
		return nil, fmt.Errorf("limit of %s as %s -> %s: %w", e, x, point, ErrIndeterminate)
	}
	if IsNumber(r) {
		return Simplify(r), nil
	}
	return r, nil
}

type limiter struct {
	x     string
	point Expr
	steps int
}

func (l *limiter) infinitePoint() (int, bool) {
	if inf, ok := l.point.(Infinity); ok && inf.Sign != 0 {
		return inf.Sign, true
	}
	return 0, false
}

func (l *limiter) limit(e Expr, depth int) (Expr, error) {
	if !Has(e, l.x) {
		return e, nil
	}
	if r, ok := l.rational(e); ok {
		return r, nil
	}
	switch v := e.(type) {
	case Sym:
		return l.point, nil
	case Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, err := l.limit(t, depth)
			if err != nil {
				return nil, err
			}
			terms[i] = r
		}
		sum := NewAdd(terms...)
		if _, ok := sum.(Undefined); ok {
			return nil, fmt.Errorf("oo - oo: %w", ErrIndeterminate)
		}
		return sum, nil
	case Mul:
		return l.quotient(v, depth)
	case Pow:
		return l.power(v, depth)
	case Func:
		return l.function(v, depth)
	}
	return nil, fmt.Errorf("unsupported expression %s: %w", e, ErrIndeterminate)
}

// rational resolves rational functions with rational coefficients exactly.
func (l *limiter) rational(e Expr) (Expr, bool) {
	num, den, ok := rationalFunc(e, l.x)
	if !ok || den.isZero() {
		return nil, false
	}
	num, den = reduceRational(num, den)
	if num.isZero() {
		return Zero, true
	}
	if sign, inf := l.infinitePoint(); inf {
		dn, dd := num.degree(), den.degree()
		ratio := new(big.Rat).Quo(num.lead(), den.lead())
		switch {
		case dn < dd:
			return Zero, true
		case dn == dd:
			return NumFromRat(ratio), true
		}
		s := ratio.Sign()
		if sign < 0 && (dn-dd)%2 == 1 {
			s = -s
		}
		return Infinity{Sign: s}, true
	}
	p, ok := l.point.(Num)
	if !ok {
		return nil, false
	}
	dv := den.eval(p.r)
	if dv.Sign() != 0 {
		return NumFromRat(new(big.Rat).Quo(num.eval(p.r), dv)), true
	}
	s, err := l.sampleSign(NewMul(num.expr(l.x), NewPow(den.expr(l.x), NegOne)))
	if err != nil {
		return nil, false
	}
	return Infinity{Sign: s}, true
}

// quotient splits a product into numerator and denominator and applies
// L'Hopital's rule to 0/0 and oo/oo.
func (l *limiter) quotient(m Mul, depth int) (Expr, error) {
	var numF, denF []Expr
	for _, f := range m.factors {
		if p, ok := f.(Pow); ok {
			if n, ok := p.exp.(Num); ok && n.Sign() < 0 {
				denF = append(denF, NewPow(p.base, Num{r: new(big.Rat).Neg(n.r)}))
				continue
			}
		}
		if fn, ok := f.(Func); ok && fn.fn == FnExp && negative(fn.arg) && Has(fn.arg, l.x) {
			denF = append(denF, NewFunc(FnExp, Neg(fn.arg)))
			continue
		}
		numF = append(numF, f)
	}

	if len(denF) == 0 {
		return l.product(numF, depth)
	}
	num, den := NewMul(numF...), NewMul(denF...)
	ln, err := l.limit(num, depth)
	if err != nil {
		return nil, err
	}
	ld, err := l.limit(den, depth)
	if err != nil {
		return nil, err
	}
	return l.divide(num, den, ln, ld, depth)
}

func (l *limiter) divide(num, den, ln, ld Expr, depth int) (Expr, error) {
	_, nInf := ln.(Infinity)
	_, dInf := ld.(Infinity)
	nZero, dZero := IsZero(ln), IsZero(ld)
	switch {
	case (nZero && dZero) || (nInf && dInf):
		return l.lhopital(num, den, depth)
	case dInf:
		return Zero, nil
	case dZero:
		s, err := l.sampleSign(Div(num, den))
		if err != nil {
			return nil, err
		}
		return Infinity{Sign: s}, nil
	case nInf:
		s := ln.(Infinity).Sign
		v, err := Evalf(ld, nil)
		if err != nil || s == 0 {
			return ComplexInf, nil
		}
		if v < 0 {
			s = -s
		}
		return Infinity{Sign: s}, nil
	}
	return Div(ln, ld), nil
}

// lhopital recurses on the simplified quotient of the derivatives of num
// and den. It gives up once the quotient grows faster than maxGrowth or the
// step budget runs out.
func (l *limiter) lhopital(num, den Expr, depth int) (Expr, error) {
	l.steps++
	if depth >= maxLHopital || l.steps > maxLHopitalSteps {
		return nil, fmt.Errorf("L'Hopital did not converge: %w", ErrIndeterminate)
	}
	q := Simplify(Div(Simplify(Diff(num, l.x)), Simplify(Diff(den, l.x))))
	if complexity(q) > maxGrowth*(complexity(num)+complexity(den)) {
		return nil, fmt.Errorf("L'Hopital quotient %s keeps growing: %w", q, ErrIndeterminate)
	}
	return l.limit(q, depth+1)
}

// product handles 0*oo by moving one side into a denominator. A factor that
// has no limit but stays bounded, like sin(1/x), is squeezed by a vanishing
// cofactor.
func (l *limiter) product(factors []Expr, depth int) (Expr, error) {
	limits := make([]Expr, 0, len(factors))
	zeroAt, infAt := -1, -1
	var unbounded error
	for i, f := range factors {
		r, err := l.limit(f, depth)
		if err != nil {
			if !bounded(f) {
				return nil, err
			}
			unbounded = err
			continue
		}
		limits = append(limits, r)
		if IsZero(r) {
			zeroAt = i
		}
		if _, ok := r.(Infinity); ok {
			infAt = i
		}
	}
	if unbounded != nil {
		if zeroAt < 0 || infAt >= 0 {
			return nil, unbounded
		}
		return Zero, nil
	}
	if zeroAt < 0 || infAt < 0 {
		return NewMul(limits...), nil
	}

	// logs and trig factors stay upstairs so differentiation removes them
	moved := zeroAt
	if keepsNumerator(factors[zeroAt]) && !keepsNumerator(factors[infAt]) {
		moved = infAt
	}
	rest := make([]Expr, 0, len(factors))
	for i, f := range factors {
		if i != moved {
			rest = append(rest, f)
		}
	}
	return l.lhopital(NewMul(rest...), NewPow(factors[moved], NegOne), depth)
}

// bounded reports whether e stays within a fixed interval for every real
// argument.
func bounded(e Expr) bool {
	switch v := e.(type) {
	case Num:
		return true
	case Func:
		return v.fn == FnSin || v.fn == FnCos || v.fn == FnSign || v.fn == FnAtan
	case Pow:
		n, ok := v.exp.(Num)
		return ok && n.Sign() > 0 && bounded(v.base)
	case Mul:
		for _, f := range v.factors {
			if !bounded(f) {
				return false
			}
		}
		return true
	}
	return false
}

// keepsNumerator reports whether e contains a function other than exp.
// exp moves to a denominator as exp(-u) without growing.
func keepsNumerator(e Expr) bool {
	switch v := e.(type) {
	case Func:
		return v.fn != FnExp || keepsNumerator(v.arg)
	case Add:
		for _, t := range v.terms {
			if keepsNumerator(t) {
				return true
			}
		}
	case Mul:
		for _, f := range v.factors {
			if keepsNumerator(f) {
				return true
			}
		}
	case Pow:
		return keepsNumerator(v.base) || keepsNumerator(v.exp)
	}
	return false
}

func (l *limiter) power(p Pow, depth int) (Expr, error) {
	if Has(p.exp, l.x) {
		// u**v = exp(v*log(u))
		return l.limit(NewFunc(FnExp, NewMul(p.exp, NewFunc(FnLog, p.base))), depth)
	}
	lb, err := l.limit(p.base, depth)
	if err != nil {
		return nil, err
	}
	n, isNum := p.exp.(Num)
	if IsZero(lb) && (!isNum || n.Sign() < 0) {
		s, err := l.sampleSign(p)
		if err != nil {
			return nil, err
		}
		return Infinity{Sign: s}, nil
	}
	return NewPow(lb, p.exp), nil
}

func (l *limiter) function(f Func, depth int) (Expr, error) {
	la, err := l.limit(f.arg, depth)
	if err != nil {
		return nil, err
	}
	if inf, ok := la.(Infinity); ok {
		switch f.fn {
		case FnExp:
			if inf.Sign > 0 {
				return PosInf, nil
			}
			if inf.Sign < 0 {
				return Zero, nil
			}
		case FnLog, FnAbs:
			if inf.Sign != 0 {
				return PosInf, nil
			}
		case FnSign:
			return NewInt(int64(inf.Sign)), nil
		case FnAtan:
			if inf.Sign != 0 {
				return NewFunc(FnAtan, inf), nil
			}
		}
		return nil, fmt.Errorf("%s(%s): %w", f.fn, la, ErrLimitUndefined)
	}
	if f.fn == FnLog && IsZero(la) {
		return NegInf, nil
	}
	r := NewFunc(f.fn, la)
	if inf, ok := r.(Infinity); ok && inf.Sign == 0 {
		return nil, fmt.Errorf("%s(%s): %w", f.fn, la, ErrLimitUndefined)
	}
	return r, nil
}

// sampleSign evaluates e just to the right of the point, or far out toward
// an infinite point, and reports the consistent sign.
func (l *limiter) sampleSign(e Expr) (int, error) {
	var xs []float64
	if sign, inf := l.infinitePoint(); inf {
		for _, h := range sampleSteps {
			xs = append(xs, float64(sign)/h)
		}
	} else {
		p, err := Evalf(l.point, nil)
		if err != nil {
			return 0, fmt.Errorf("point %s: %w", l.point, err)
		}
		for _, h := range sampleSteps {
			xs = append(xs, p+h)
		}
	}
	sign := 0
	for _, xv := range xs {
		v, err := evalf(e, map[string]float64{l.x: xv})
		if err != nil || math.IsNaN(v) || v == 0 {
			return 0, fmt.Errorf("sign of %s: %w", e, ErrLimitUndefined)
		}
		s := 1
		if v < 0 {
			s = -1
		}
		if sign != 0 && s != sign {
			return 0, fmt.Errorf("sign of %s oscillates: %w", e, ErrLimitUndefined)
		}
		sign = s
	}
	return sign, nil
}

// #endregion limit
