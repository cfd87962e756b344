package cas

import "fmt"

// Engine exposes the CAS operations with panics from arithmetic edge cases
// (division by an exact zero, runaway recursion guards) turned into errors.
// The zero value is ready to use.
type Engine struct{}

// ParseExpression parses text with the given variables in scope.
func (Engine) ParseExpression(text string, vars SymbolTable) (e Expr, err error) {
	defer recoverInto(&err, "parse")
	return Parse(text, vars)
}

// Differentiate returns d/dv of e.
func (Engine) Differentiate(e Expr, v string) (r Expr, err error) {
	defer recoverInto(&err, "differentiate")
	return Simplify(Diff(e, v)), nil
}

// Integrate returns an antiderivative of e in v.
func (Engine) Integrate(e Expr, v string) (r Expr, err error) {
	defer recoverInto(&err, "integrate")
	r, err = Integrate(e, v)
	if err != nil {
		return nil, err
	}
	return Simplify(r), nil
}

// Limit returns the right-hand limit of e as v approaches point.
func (Engine) Limit(e Expr, v string, point Expr) (r Expr, err error) {
	defer recoverInto(&err, "limit")
	return Limit(e, v, point)
}

// Simplify returns the simplest canonical form of e.
func (Engine) Simplify(e Expr) (r Expr, err error) {
	defer recoverInto(&err, "simplify")
	return Simplify(e), nil
}

// Solve returns the real roots of lhs = rhs in v.
func (Engine) Solve(lhs, rhs Expr, v string) (roots []Expr, err error) {
	defer recoverInto(&err, "solve")
	return Solve(lhs, rhs, v)
}

// SolveSystem solves lhs = rhs for one of vars in terms of the others.
func (Engine) SolveSystem(lhs, rhs Expr, vars []string) (as []Assignment, err error) {
	defer recoverInto(&err, "solve")
	return SolveSystem(lhs, rhs, vars)
}

func recoverInto(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: %v", op, r)
	}
}
