package cas

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ErrUnsolvable is wrapped when no solving method applies to an equation.
var ErrUnsolvable = errors.New("no solving method applies")

// #region solve
// Solve returns the distinct real solutions of lhs = rhs in x, ascending.
// An equation without real solutions yields an empty slice and no error.
func Solve(lhs, rhs Expr, x string) ([]Expr, error) {
	f := Expand(Sub(lhs, rhs))
	if !Has(f, x) {
		return nil, nil
	}
	if roots, ok, err := solveRational(f, x); ok {
		return roots, err
	}
	if roots, ok := solvePolynomial(f, x); ok {
		return roots, nil
	}
	cands, ok := isolate(f, Zero, x, 0)
	if !ok {
		return nil, fmt.Errorf("solve %s = 0 for %s: %w", f, x, ErrUnsolvable)
	}
	var roots []Expr
	for _, c := range cands {
		if !isReal(c) {
			continue
		}
		if IsZero(Substitute(f, x, c)) {
			roots = append(roots, Simplify(c))
		}
	}
	return dedupe(roots), nil
}

// solveRational handles rational functions with rational coefficients
// exactly: rational roots first, then the remainder. Roots already found are
// kept when the remainder has no closed form.
func solveRational(f Expr, x string) ([]Expr, bool, error) {
	num, den, ok := rationalFunc(f, x)
	if !ok || den.isZero() {
		return nil, false, nil
	}
	num, den = reduceRational(num, den)
	if num.degree() < 1 {
		return nil, true, nil
	}
	rats, rem := rationalRoots(num)
	var roots []Expr
	for _, r := range rats {
		if den.eval(r).Sign() == 0 {
			continue
		}
		roots = append(roots, NumFromRat(r))
	}
	switch rem.degree() {
	case 0, -1:
	case 2:
		roots = append(roots, quadraticRoots(NumFromRat(rem[2]), NumFromRat(rem[1]), NumFromRat(rem[0]))...)
	default:
		extra, complete := higherRoots(rem, x)
		roots = append(roots, extra...)
		if !complete && len(roots) == 0 {
			// let the caller fall back to inverting f directly
			return nil, false, nil
		}
	}
	return dedupe(roots), true, nil
}

// higherRoots finds the real roots of a remainder of degree three or more
// that has no rational roots. complete reports whether every real root,
// as counted by Sturm's theorem, was found in closed form.
func higherRoots(rem poly, x string) (roots []Expr, complete bool) {
	want := rem.realRootCount()
	if want == 0 {
		return nil, true
	}
	e := rem.expr(x)
	if cands, ok := isolate(e, Zero, x, 0); ok {
		for _, c := range cands {
			c = Simplify(c)
			if isReal(c) && IsZero(Substitute(e, x, c)) {
				roots = append(roots, c)
			}
		}
	} else {
		roots = substitutedRoots(rem)
	}
	roots = dedupe(roots)
	return roots, len(roots) == want
}

// substitutedRoots solves p(x) = q(x**k) when q is at most quadratic, as in
// x**4 - 4*x**2 + 2.
func substitutedRoots(p poly) []Expr {
	k := 0
	for i, c := range p {
		if i > 0 && c.Sign() != 0 {
			k = gcdInt(k, i)
		}
	}
	if k < 2 || p.degree()/k > 2 {
		return nil
	}
	q := make(poly, p.degree()/k+1)
	for i := range q {
		q[i] = p[i*k]
	}
	var ys []Expr
	if q.degree() == 1 {
		ys = []Expr{NumFromRat(new(big.Rat).Quo(new(big.Rat).Neg(q[0]), q[1]))}
	} else {
		ys = quadraticRoots(NumFromRat(q[2]), NumFromRat(q[1]), NumFromRat(q[0]))
	}

	inv := NewRat(1, int64(k))
	var out []Expr
	for _, y := range ys {
		v, err := Evalf(y, nil)
		switch {
		case err != nil:
		case v > 0:
			r := Simplify(NewPow(y, inv))
			out = append(out, r)
			if k%2 == 0 {
				out = append(out, Neg(r))
			}
		case v == 0:
			out = append(out, Zero)
		case k%2 == 1:
			out = append(out, Neg(Simplify(NewPow(Neg(y), inv))))
		}
	}
	return out
}

func gcdInt(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// solvePolynomial handles linear and quadratic equations whose coefficients
// contain constants or other symbols.
func solvePolynomial(f Expr, x string) ([]Expr, bool) {
	cs, ok := coefficients(f, x, 2)
	if !ok {
		return nil, false
	}
	for len(cs) > 1 && IsZero(cs[len(cs)-1]) {
		cs = cs[:len(cs)-1]
	}
	switch len(cs) {
	case 2:
		return []Expr{Expand(Div(Neg(cs[0]), cs[1]))}, true
	case 3:
		var roots []Expr
		for _, r := range quadraticRoots(cs[2], cs[1], cs[0]) {
			if isReal(r) {
				roots = append(roots, r)
			}
		}
		return dedupe(roots), true
	}
	return nil, false
}

const maxIsolateDepth = 16

// isolate inverts the outermost operation of e = target until x stands
// alone. Candidates must be checked against the original equation.
func isolate(e, target Expr, x string, depth int) ([]Expr, bool) {
	if depth > maxIsolateDepth {
		return nil, false
	}
	switch v := e.(type) {
	case Sym:
		if v.Name == x {
			return []Expr{target}, true
		}
	case Add:
		var with Expr
		var rest []Expr
		for _, t := range v.terms {
			if !Has(t, x) {
				rest = append(rest, t)
				continue
			}
			if with != nil {
				return nil, false
			}
			with = t
		}
		return isolate(with, Sub(target, NewAdd(rest...)), x, depth+1)
	case Mul:
		var varying, constant []Expr
		for _, f := range v.factors {
			if Has(f, x) {
				varying = append(varying, f)
			} else {
				constant = append(constant, f)
			}
		}
		if len(constant) > 0 {
			return isolate(NewMul(varying...), Div(target, NewMul(constant...)), x, depth+1)
		}
		if !IsZero(target) {
			return nil, false
		}
		// zero product
		var out []Expr
		for _, f := range varying {
			c, ok := isolate(f, Zero, x, depth+1)
			if !ok {
				return nil, false
			}
			out = append(out, c...)
		}
		return out, true
	case Pow:
		return isolatePow(v, target, x, depth)
	case Func:
		return isolateFunc(v, target, x, depth)
	}
	return nil, false
}

func isolatePow(p Pow, target Expr, x string, depth int) ([]Expr, bool) {
	if !Has(p.exp, x) {
		n, ok := p.exp.(Num)
		if ok && n.Sign() < 0 && IsZero(target) {
			return nil, true
		}
		inv := NewPow(p.exp, NegOne)
		if ok && n.IsInt() && n.r.Num().Bit(0) == 0 {
			root := NewPow(target, inv)
			a, okA := isolate(p.base, root, x, depth+1)
			b, okB := isolate(p.base, Neg(root), x, depth+1)
			return append(a, b...), okA && okB
		}
		return isolate(p.base, NewPow(target, inv), x, depth+1)
	}
	if !Has(p.base, x) {
		// c**u = t  =>  u = log(t)/log(c)
		return isolate(p.exp, Div(NewFunc(FnLog, target), NewFunc(FnLog, p.base)), x, depth+1)
	}
	return nil, false
}

func isolateFunc(f Func, target Expr, x string, depth int) ([]Expr, bool) {
	switch f.fn {
	case FnExp:
		return isolate(f.arg, NewFunc(FnLog, target), x, depth+1)
	case FnLog:
		return isolate(f.arg, NewFunc(FnExp, target), x, depth+1)
	case FnAbs:
		a, okA := isolate(f.arg, target, x, depth+1)
		b, okB := isolate(f.arg, Neg(target), x, depth+1)
		return append(a, b...), okA && okB
	}
	return nil, false
}

// isReal reports whether a numeric candidate has a real value. Symbolic
// candidates are kept.
func isReal(e Expr) bool {
	if _, ok := e.(Infinity); ok {
		return false
	}
	if !IsNumber(e) {
		return true
	}
	_, err := Evalf(e, nil)
	return err == nil
}

func dedupe(roots []Expr) []Expr {
	seen := make(map[string]bool, len(roots))
	out := make([]Expr, 0, len(roots))
	for _, r := range roots {
		k := r.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	sortRoots(out)
	return out
}

// #endregion solve

// #region solve-system
// Assignment is one variable bound to an expression in the others.
type Assignment struct {
	Var   string
	Value Expr
}

func (a Assignment) String() string {
	return "{" + a.Var + ": " + a.Value.String() + "}"
}

// FormatAssignments renders assignments as a bracketed list.
func FormatAssignments(as []Assignment) string {
	items := make([]string, len(as))
	for i, a := range as {
		items[i] = a.String()
	}
	return FormatList(items)
}

// SolveSystem solves a single equation in several unknowns for the first
// variable, in name order, that appears linearly; failing that, the first
// that appears quadratically. No such variable yields an empty result.
func SolveSystem(lhs, rhs Expr, vars []string) ([]Assignment, error) {
	f := Expand(Sub(lhs, rhs))
	names := append([]string(nil), vars...)
	sort.Strings(names)
	for _, degree := range []int{1, 2} {
		for _, v := range names {
			if !Has(f, v) {
				continue
			}
			cs, ok := coefficients(f, v, degree)
			if !ok || len(cs) != degree+1 || IsZero(cs[degree]) {
				continue
			}
			roots, ok := solvePolynomial(f, v)
			if !ok {
				continue
			}
			out := make([]Assignment, len(roots))
			for i, r := range roots {
				out[i] = Assignment{Var: v, Value: r}
			}
			return out, nil
		}
	}
	return nil, nil
}

// #endregion solve-system

