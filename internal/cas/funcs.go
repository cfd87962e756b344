package cas

import "math/big"

// #region new-func
// NewFunc applies fn to arg, evaluating exactly where a closed form is known.
func NewFunc(fn Builtin, arg Expr) Expr {
	if _, ok := arg.(Undefined); ok {
		return NaN
	}
	switch fn {
	case FnSqrt:
		return NewPow(arg, Half)
	case FnSin:
		return sinOf(arg)
	case FnCos:
		return cosOf(arg)
	case FnTan:
		return tanOf(arg)
	case FnAtan:
		return atanOf(arg)
	case FnLog:
		return logOf(arg)
	case FnExp:
		return expOf(arg)
	case FnAbs:
		return absOf(arg)
	case FnSign:
		return signOf(arg)
	}
	return Func{fn: fn, arg: arg}
}

// #endregion new-func

// #region trig
// piMultiple reports r when e == r*pi for rational r.
func piMultiple(e Expr) (*big.Rat, bool) {
	switch v := e.(type) {
	case Num:
		if v.IsZero() {
			return new(big.Rat), true
		}
	case Const:
		if v.Kind == ConstPi {
			return big.NewRat(1, 1), true
		}
	case Mul:
		if len(v.factors) == 2 {
			c, ok1 := v.factors[0].(Num)
			p, ok2 := v.factors[1].(Const)
			if ok1 && ok2 && p.Kind == ConstPi {
				return new(big.Rat).Set(c.r), true
			}
		}
	}
	return nil, false
}

// sinPi evaluates sin(r*pi) for r a multiple of 1/6 or 1/4.
func sinPi(r *big.Rat) (Expr, bool) {
	// reduce r into [0, 2)
	two := big.NewRat(2, 1)
	red := new(big.Rat).Set(r)
	q := new(big.Rat).Quo(red, two)
	fl := new(big.Int).Quo(q.Num(), q.Denom())
	if q.Sign() < 0 && !q.IsInt() {
		fl.Sub(fl, big.NewInt(1))
	}
	red.Sub(red, new(big.Rat).Mul(two, new(big.Rat).SetInt(fl)))

	sign := int64(1)
	if red.Cmp(ratOne) >= 0 {
		red.Sub(red, ratOne)
		sign = -1
	}
	// sin(pi - t) = sin(t)
	if red.Cmp(big.NewRat(1, 2)) > 0 {
		red.Sub(ratOne, red)
	}
	var v Expr
	switch {
	case red.Sign() == 0:
		return Zero, true
	case red.Cmp(big.NewRat(1, 6)) == 0:
		v = Half
	case red.Cmp(big.NewRat(1, 4)) == 0:
		v = NewMul(Half, NewPow(NewInt(2), Half))
	case red.Cmp(big.NewRat(1, 3)) == 0:
		v = NewMul(Half, NewPow(NewInt(3), Half))
	case red.Cmp(big.NewRat(1, 2)) == 0:
		v = One
	default:
		return nil, false
	}
	return NewMul(NewInt(sign), v), true
}

func sinOf(arg Expr) Expr {
	if r, ok := piMultiple(arg); ok {
		if v, ok := sinPi(r); ok {
			return v
		}
	}
	if negative(arg) {
		return Neg(sinOf(Neg(arg)))
	}
	return Func{fn: FnSin, arg: arg}
}

func cosOf(arg Expr) Expr {
	if r, ok := piMultiple(arg); ok {
		if v, ok := sinPi(new(big.Rat).Add(r, big.NewRat(1, 2))); ok {
			return v
		}
	}
	if negative(arg) {
		return cosOf(Neg(arg))
	}
	return Func{fn: FnCos, arg: arg}
}

func tanOf(arg Expr) Expr {
	if r, ok := piMultiple(arg); ok {
		s, ok1 := sinPi(r)
		c, ok2 := sinPi(new(big.Rat).Add(r, big.NewRat(1, 2)))
		if ok1 && ok2 {
			if isNum(c, 0) {
				return ComplexInf
			}
			return Div(s, c)
		}
	}
	if negative(arg) {
		return Neg(tanOf(Neg(arg)))
	}
	return Func{fn: FnTan, arg: arg}
}

func atanOf(arg Expr) Expr {
	switch v := arg.(type) {
	case Num:
		switch {
		case v.IsZero():
			return Zero
		case v.IsOne():
			return NewMul(NewRat(1, 4), Pi)
		}
	case Infinity:
		if v.Sign != 0 {
			return NewMul(NewRat(int64(v.Sign), 2), Pi)
		}
	}
	if negative(arg) {
		return Neg(atanOf(Neg(arg)))
	}
	return Func{fn: FnAtan, arg: arg}
}

// #endregion trig

// #region log-exp
func logOf(arg Expr) Expr {
	switch v := arg.(type) {
	case Num:
		if v.IsOne() {
			return Zero
		}
		if v.IsZero() {
			return ComplexInf
		}
		// log(1/q) = -log(q)
		if v.Sign() > 0 && v.r.Num().Cmp(big.NewInt(1)) == 0 {
			return Neg(Func{fn: FnLog, arg: Num{r: new(big.Rat).SetInt(v.r.Denom())}})
		}
	case Const:
		if v.Kind == ConstE {
			return One
		}
	case Func:
		if v.fn == FnExp {
			return v.arg
		}
	case Infinity:
		if v.Sign == 1 {
			return PosInf
		}
		return ComplexInf
	}
	return Func{fn: FnLog, arg: arg}
}

func expOf(arg Expr) Expr {
	switch v := arg.(type) {
	case Num:
		if v.IsZero() {
			return One
		}
		if v.IsOne() {
			return E
		}
	case Func:
		if v.fn == FnLog {
			return v.arg
		}
	case Infinity:
		switch v.Sign {
		case 1:
			return PosInf
		case -1:
			return Zero
		}
		return NaN
	}
	return Func{fn: FnExp, arg: arg}
}

// #endregion log-exp

// #region abs-sign
func absOf(arg Expr) Expr {
	switch v := arg.(type) {
	case Num:
		return Num{r: new(big.Rat).Abs(v.r)}
	case Const:
		return v
	case Infinity:
		return PosInf
	case Func:
		if v.fn == FnAbs {
			return v
		}
		if v.fn == FnExp && IsNumber(v.arg) {
			return v
		}
	case Mul:
		if c, ok := v.factors[0].(Num); ok {
			rest := Expr(Mul{factors: v.factors[1:]})
			if len(v.factors) == 2 {
				rest = v.factors[1]
			}
			return NewMul(Num{r: new(big.Rat).Abs(c.r)}, absOf(rest))
		}
	case Pow:
		if b, ok := v.base.(Num); ok && b.Sign() > 0 {
			return v
		}
	}
	return Func{fn: FnAbs, arg: arg}
}

func signOf(arg Expr) Expr {
	switch v := arg.(type) {
	case Num:
		return NewInt(int64(v.Sign()))
	case Const:
		return One
	case Infinity:
		if v.Sign != 0 {
			return NewInt(int64(v.Sign))
		}
	}
	return Func{fn: FnSign, arg: arg}
}

// #endregion abs-sign
