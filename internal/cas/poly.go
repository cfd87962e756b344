package cas

import (
	"math/big"
	"sort"
)

// #region poly
// poly is a dense univariate polynomial with rational coefficients, lowest
// degree first.
type poly []*big.Rat

func newPoly(coeffs ...*big.Rat) poly {
	return poly(coeffs).trim()
}

func constPoly(r *big.Rat) poly { return newPoly(new(big.Rat).Set(r)) }

func (p poly) trim() poly {
	n := len(p)
	for n > 0 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

func (p poly) degree() int { return len(p) - 1 }

func (p poly) isZero() bool { return len(p) == 0 }

func (p poly) lead() *big.Rat {
	if p.isZero() {
		return new(big.Rat)
	}
	return p[len(p)-1]
}

func (p poly) add(q poly) poly {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(poly, n)
	for i := range out {
		out[i] = new(big.Rat)
		if i < len(p) {
			out[i].Add(out[i], p[i])
		}
		if i < len(q) {
			out[i].Add(out[i], q[i])
		}
	}
	return out.trim()
}

func (p poly) scale(c *big.Rat) poly {
	out := make(poly, len(p))
	for i, a := range p {
		out[i] = new(big.Rat).Mul(a, c)
	}
	return out.trim()
}

func (p poly) mul(q poly) poly {
	if p.isZero() || q.isZero() {
		return nil
	}
	out := make(poly, len(p)+len(q)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for i, a := range p {
		for j, b := range q {
			out[i+j].Add(out[i+j], new(big.Rat).Mul(a, b))
		}
	}
	return out.trim()
}

func (p poly) pow(n int) poly {
	out := constPoly(ratOne)
	for i := 0; i < n; i++ {
		out = out.mul(p)
	}
	return out
}

// divmod returns quotient and remainder of p / q. q must be nonzero.
func (p poly) divmod(q poly) (poly, poly) {
	rem := append(poly(nil), p...)
	for i := range rem {
		rem[i] = new(big.Rat).Set(rem[i])
	}
	if len(p) < len(q) {
		return nil, rem.trim()
	}
	quo := make(poly, len(p)-len(q)+1)
	for i := range quo {
		quo[i] = new(big.Rat)
	}
	lead := q.lead()
	for rem = rem.trim(); len(rem) >= len(q) && !rem.isZero(); rem = rem.trim() {
		shift := len(rem) - len(q)
		c := new(big.Rat).Quo(rem.lead(), lead)
		quo[shift] = c
		for i, b := range q {
			rem[i+shift] = new(big.Rat).Sub(rem[i+shift], new(big.Rat).Mul(c, b))
		}
	}
	return quo.trim(), rem
}

// gcd returns the monic greatest common divisor.
func (p poly) gcd(q poly) poly {
	a, b := p, q
	for !b.isZero() {
		_, r := a.divmod(b)
		a, b = b, r
	}
	if a.isZero() {
		return a
	}
	return a.scale(new(big.Rat).Inv(a.lead()))
}

func (p poly) eval(x *big.Rat) *big.Rat {
	out := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		out.Mul(out, x)
		out.Add(out, p[i])
	}
	return out
}

func (p poly) derivative() poly {
	if len(p) < 2 {
		return nil
	}
	out := make(poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = new(big.Rat).Mul(p[i], big.NewRat(int64(i), 1))
	}
	return out.trim()
}

// realRootCount returns the number of distinct real roots of p using a
// Sturm sequence.
func (p poly) realRootCount() int {
	if p.degree() < 1 {
		return 0
	}
	seq := []poly{p, p.derivative()}
	for {
		_, r := seq[len(seq)-2].divmod(seq[len(seq)-1])
		if r.isZero() {
			break
		}
		seq = append(seq, r.scale(big.NewRat(-1, 1)))
	}
	return signChanges(seq, -1) - signChanges(seq, 1)
}

// signChanges counts sign changes of the sequence at -oo (side < 0) or +oo.
func signChanges(seq []poly, side int) int {
	changes, last := 0, 0
	for _, q := range seq {
		s := q.lead().Sign()
		if side < 0 && q.degree()%2 == 1 {
			s = -s
		}
		if s == 0 {
			continue
		}
		if last != 0 && s != last {
			changes++
		}
		last = s
	}
	return changes
}

// expr rebuilds the polynomial as an expression in variable x.
func (p poly) expr(x string) Expr {
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, NewMul(Num{r: new(big.Rat).Set(c)}, NewPow(NewSym(x), NewInt(int64(i)))))
	}
	return NewAdd(terms...)
}

// #endregion poly

// #region rational-function
// rationalFunc converts e into num/den polynomials in x with rational
// coefficients. It fails on any other variable, constant or function.
func rationalFunc(e Expr, x string) (poly, poly, bool) {
	switch v := e.(type) {
	case Num:
		return constPoly(v.r), constPoly(ratOne), true
	case Sym:
		if v.Name != x {
			return nil, nil, false
		}
		return newPoly(new(big.Rat), big.NewRat(1, 1)), constPoly(ratOne), true
	case Add:
		num, den := poly(nil), constPoly(ratOne)
		for _, t := range v.terms {
			n, d, ok := rationalFunc(t, x)
			if !ok {
				return nil, nil, false
			}
			num = num.mul(d).add(n.mul(den))
			den = den.mul(d)
		}
		return num, den, true
	case Mul:
		num, den := constPoly(ratOne), constPoly(ratOne)
		for _, f := range v.factors {
			n, d, ok := rationalFunc(f, x)
			if !ok {
				return nil, nil, false
			}
			num = num.mul(n)
			den = den.mul(d)
		}
		return num, den, true
	case Pow:
		k, ok := v.exp.(Num)
		if !ok || !k.IsInt() || !k.r.Num().IsInt64() {
			return nil, nil, false
		}
		n, d, ok := rationalFunc(v.base, x)
		if !ok {
			return nil, nil, false
		}
		exp := k.r.Num().Int64()
		if exp > 64 || exp < -64 {
			return nil, nil, false
		}
		if exp < 0 {
			n, d = d, n
			exp = -exp
		}
		return n.pow(int(exp)), d.pow(int(exp)), true
	}
	return nil, nil, false
}

// reduceRational cancels common factors and makes the denominator monic.
func reduceRational(num, den poly) (poly, poly) {
	if num.isZero() {
		return nil, constPoly(ratOne)
	}
	g := num.gcd(den)
	if g.degree() > 0 {
		num, _ = num.divmod(g)
		den, _ = den.divmod(g)
	}
	l := new(big.Rat).Inv(den.lead())
	return num.scale(l), den.scale(l)
}

// #endregion rational-function

// #region roots
// rationalRoots finds the distinct rational roots of p by the rational root
// theorem and returns them with the deflated remainder.
func rationalRoots(p poly) ([]*big.Rat, poly) {
	var roots []*big.Rat
	for len(p) > 1 && p[0].Sign() == 0 {
		if len(roots) == 0 {
			roots = append(roots, new(big.Rat))
		}
		p = p[1:]
	}
	if p.degree() < 1 {
		return roots, p
	}

	// clear denominators
	lcm := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	ints := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		ints[i] = new(big.Int).Set(v.Num())
	}
	a0, an := ints[0], ints[len(ints)-1]
	if !a0.IsInt64() || !an.IsInt64() {
		return roots, p
	}
	ps := divisors(abs64(a0.Int64()))
	qs := divisors(abs64(an.Int64()))

	seen := map[string]bool{}
	for _, q := range qs {
		for _, pp := range ps {
			for _, s := range []int64{1, -1} {
				cand := big.NewRat(s*pp, q)
				if seen[cand.String()] {
					continue
				}
				seen[cand.String()] = true
				for p.degree() >= 1 && p.eval(cand).Sign() == 0 {
					p, _ = p.divmod(newPoly(new(big.Rat).Neg(cand), big.NewRat(1, 1)))
					if !containsRat(roots, cand) {
						roots = append(roots, cand)
					}
				}
			}
		}
	}
	return roots, p
}

func containsRat(rs []*big.Rat, r *big.Rat) bool {
	for _, v := range rs {
		if v.Cmp(r) == 0 {
			return true
		}
	}
	return false
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

const maxDivisorSearch = 1_000_000

func divisors(n int64) []int64 {
	if n == 0 {
		return []int64{1}
	}
	var small, large []int64
	for i := int64(1); i*i <= n && i <= maxDivisorSearch; i++ {
		if n%i == 0 {
			small = append(small, i)
			if i != n/i {
				large = append(large, n/i)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

// quadraticRoots returns the real roots of a*x**2 + b*x + c, ascending.
func quadraticRoots(a, b, c Expr) []Expr {
	disc := Expand(Sub(NewMul(b, b), NewMul(NewInt(4), a, c)))
	if n, ok := disc.(Num); ok && n.Sign() < 0 {
		return nil
	}
	twoA := NewMul(NewInt(2), a)
	if isNum(disc, 0) {
		return []Expr{Expand(Div(Neg(b), twoA))}
	}
	sq := NewPow(disc, Half)
	r1 := Expand(Div(Sub(Neg(b), sq), twoA))
	r2 := Expand(Div(NewAdd(Neg(b), sq), twoA))
	roots := []Expr{r1, r2}
	sortRoots(roots)
	return roots
}

// sortRoots orders numeric roots ascending, then symbolic roots by text.
func sortRoots(roots []Expr) {
	sort.SliceStable(roots, func(i, j int) bool {
		fi, erri := Evalf(roots[i], nil)
		fj, errj := Evalf(roots[j], nil)
		switch {
		case erri == nil && errj == nil:
			return fi < fj
		case erri == nil:
			return true
		case errj == nil:
			return false
		}
		return roots[i].String() < roots[j].String()
	})
}

// #endregion roots
