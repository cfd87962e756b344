package cas

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotReal is returned by Evalf when an expression has no real value.
var ErrNotReal = errors.New("value is not a finite real number")

// #region evalf
// Evalf evaluates e numerically with the variables bound in env.
func Evalf(e Expr, env map[string]float64) (float64, error) {
	v, err := evalf(e, env)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, ErrNotReal
	}
	return v, nil
}

func evalf(e Expr, env map[string]float64) (float64, error) {
	switch v := e.(type) {
	case Num:
		return v.Float64(), nil
	case Const:
		if v.Kind == ConstPi {
			return math.Pi, nil
		}
		return math.E, nil
	case Sym:
		x, ok := env[v.Name]
		if !ok {
			return 0, fmt.Errorf("unbound variable %s", v.Name)
		}
		return x, nil
	case Infinity:
		if v.Sign == 0 {
			return math.NaN(), nil
		}
		return math.Inf(v.Sign), nil
	case Undefined:
		return math.NaN(), nil
	case Add:
		sum := 0.0
		for _, t := range v.terms {
			x, err := evalf(t, env)
			if err != nil {
				return 0, err
			}
			sum += x
		}
		return sum, nil
	case Mul:
		prod := 1.0
		for _, f := range v.factors {
			x, err := evalf(f, env)
			if err != nil {
				return 0, err
			}
			prod *= x
		}
		return prod, nil
	case Pow:
		b, err := evalf(v.base, env)
		if err != nil {
			return 0, err
		}
		x, err := evalf(v.exp, env)
		if err != nil {
			return 0, err
		}
		return math.Pow(b, x), nil
	case Func:
		x, err := evalf(v.arg, env)
		if err != nil {
			return 0, err
		}
		switch v.fn {
		case FnSin:
			return math.Sin(x), nil
		case FnCos:
			return math.Cos(x), nil
		case FnTan:
			return math.Tan(x), nil
		case FnAtan:
			return math.Atan(x), nil
		case FnLog:
			return math.Log(x), nil
		case FnExp:
			return math.Exp(x), nil
		case FnAbs:
			return math.Abs(x), nil
		case FnSign:
			switch {
			case x > 0:
				return 1, nil
			case x < 0:
				return -1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("cannot evaluate %s", e)
}

// #endregion evalf
