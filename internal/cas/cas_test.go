package cas

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string, vars ...string) Expr {
	t.Helper()
	e, err := Parse(text, NewSymbolTable(vars...))
	require.NoError(t, err, "parse %q", text)
	return e
}

func TestParsePrint(t *testing.T) {
	tests := []struct {
		in   string
		vars []string
		want string
	}{
		{"x**2", []string{"x"}, "x**2"},
		{"x^2", []string{"x"}, "x**2"},
		{"2x", []string{"x"}, "2*x"},
		{"xy", []string{"x", "y"}, "x*y"},
		{"x + 1", []string{"x"}, "x + 1"},
		{"1 - x", []string{"x"}, "1 - x"},
		{"2*(x+1)", []string{"x"}, "2*x + 2"},
		{"sqrt(8)", nil, "2*sqrt(2)"},
		{"1/x", []string{"x"}, "1/x"},
		{"x**3/3", []string{"x"}, "x**3/3"},
		{"sin(0)", nil, "0"},
		{"cos(pi)", nil, "-1"},
		{"ln(e)", nil, "1"},
		{"0.5", nil, "1/2"},
		{"1e5", nil, "100000"},
		{"2.5e3 + 1", nil, "2501"},
		{"1.5E-2", nil, "3/200"},
		{"2e", nil, "2*E"},
		{"arctan(1)", nil, "pi/4"},
		{"atan(-x)", []string{"x"}, "-atan(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.in, tt.vars...).String())
		})
	}
}

func TestParseRejectsUnknownIdentifier(t *testing.T) {
	_, err := Parse("x + y", NewSymbolTable("x"))
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Msg, "unknown identifier")
}

func TestParseRejectsBadSyntax(t *testing.T) {
	for _, in := range []string{"", "(x + 1", "x $ 2", "sin"} {
		_, err := Parse(in, NewSymbolTable("x"))
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "input %q", in)
	}
}

func TestConstantsWinOverVariables(t *testing.T) {
	e := mustParse(t, "e", "e")
	assert.Equal(t, "E", e.String())
	assert.Empty(t, FreeSymbols(e))
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(x**2 - 1)/(x - 1)", "x + 1"},
		{"x + x", "2*x"},
		{"x*x", "x**2"},
		{"(x + 1)**2 - x**2", "2*x + 1"},
		{"sin(x)**2 + cos(x)**2", "1"},
		{"3*sin(2*x)**2 + 3*cos(2*x)**2", "3"},
		{"2*(sin(x)**2 + cos(x)**2)", "2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(mustParse(t, tt.in, "x")).String())
		})
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x**2", "2*x"},
		{"x**3", "3*x**2"},
		{"sin(x)", "cos(x)"},
		{"atan(x)", "1/(x**2 + 1)"},
		{"5", "0"},
		{"3x", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(mustParse(t, tt.in, "x"), "x").String())
		})
	}
}

func TestIntegrate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x**2", "x**3/3"},
		{"x", "x**2/2"},
		{"sin(x)", "-cos(x)"},
		{"cos(x)", "sin(x)"},
		{"1/x", "log(x)"},
		{"exp(x)", "exp(x)"},
		{"1/(1 + x**2)", "atan(x)"},
		{"1/(x**2 + 4)", "atan(x/2)/2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Integrate(mustParse(t, tt.in, "x"), "x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIntegrateDerivativeRoundTrip(t *testing.T) {
	for _, in := range []string{"x**2 + 3x", "x*exp(x)", "(2x + 1)**3", "1/(x**2 + 2*x + 5)", "(2*x + 3)/(x**2 + 1)", "atan(x)"} {
		e := mustParse(t, in, "x")
		F, err := Integrate(e, "x")
		require.NoError(t, err, in)
		assert.True(t, IsZero(Sub(Diff(F, "x"), e)), "d/dx %s != %s", F, e)
	}
}

func TestLimit(t *testing.T) {
	tests := []struct {
		in    string
		point Expr
		want  string
	}{
		{"1/x", Zero, "oo"},
		{"-1/x", Zero, "-oo"},
		{"sin(x)/x", Zero, "1"},
		{"(x**2 - 1)/(x - 1)", One, "2"},
		{"1/x", PosInf, "0"},
		{"(2x + 1)/x", PosInf, "2"},
		{"x**2", NewInt(3), "9"},
		{"x*sin(1/x)", Zero, "0"},
		{"x**2*cos(1/x)", Zero, "0"},
		{"x*sin(1/x)", PosInf, "1"},
		{"x*log(x)", Zero, "0"},
		{"x*exp(x)", NegInf, "0"},
		{"atan(x)", PosInf, "pi/2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Limit(mustParse(t, tt.in, "x"), "x", tt.point)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLimitExponentialForm(t *testing.T) {
	start := time.Now()
	got, err := Limit(mustParse(t, "(1 + 1/x)**x", "x"), "x", PosInf)
	require.NoError(t, err)
	assert.Equal(t, "E", got.String())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLimitGivesUpQuickly(t *testing.T) {
	start := time.Now()
	_, err := Limit(mustParse(t, "sin(1/x)", "x"), "x", Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLimitUndefined)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSolve(t *testing.T) {
	tests := []struct {
		lhs, rhs string
		want     []string
	}{
		{"x + 1", "5", []string{"4"}},
		{"x**2", "4", []string{"-2", "2"}},
		{"x**2", "2", []string{"-sqrt(2)", "sqrt(2)"}},
		{"2x - 3", "0", []string{"3/2"}},
		{"x**2", "-1", nil},
		{"sqrt(x)", "3", []string{"9"}},
		{"x**10 - 1", "0", []string{"-1", "1"}},
		{"x**4", "2", []string{"-2**(1/4)", "2**(1/4)"}},
		{"x**5 - x**4 - 2*x + 2", "0", []string{"-2**(1/4)", "1", "2**(1/4)"}},
	}
	for _, tt := range tests {
		t.Run(tt.lhs+"="+tt.rhs, func(t *testing.T) {
			roots, err := Solve(mustParse(t, tt.lhs, "x"), mustParse(t, tt.rhs, "x"), "x")
			require.NoError(t, err)
			var got []string
			for _, r := range roots {
				got = append(got, r.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSolveBiquadratic(t *testing.T) {
	f := mustParse(t, "x**4 - 4*x**2 + 2", "x")
	roots, err := Solve(f, Zero, "x")
	require.NoError(t, err)
	require.Len(t, roots, 4)
	prev := -10.0
	for _, r := range roots {
		v, err := Evalf(r, nil)
		require.NoError(t, err)
		assert.Greater(t, v, prev)
		assert.InDelta(t, 0, v*v*v*v-4*v*v+2, 1e-9, "root %s", r)
		prev = v
	}
}

func TestRealRootCount(t *testing.T) {
	tests := []struct {
		coeffs []int64
		want   int
	}{
		{[]int64{-1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, 2},
		{[]int64{1, 0, 1, 0, 1, 0, 1, 0, 1}, 0},
		{[]int64{-2, 0, 0, 0, 1}, 2},
		{[]int64{-6, 11, -6, 1}, 3},
		{[]int64{5}, 0},
	}
	for _, tt := range tests {
		var p poly
		for _, c := range tt.coeffs {
			p = append(p, big.NewRat(c, 1))
		}
		assert.Equal(t, tt.want, p.realRootCount(), "%v", tt.coeffs)
	}
}

func TestSolveSystem(t *testing.T) {
	as, err := SolveSystem(mustParse(t, "x + y", "x", "y"), NewInt(3), []string{"y", "x"})
	require.NoError(t, err)
	assert.Equal(t, "[{x: 3 - y}]", FormatAssignments(as))
}

func TestEngineRecoversPanics(t *testing.T) {
	var eng Engine
	_, err := eng.Differentiate(Pow{base: NewSym("x"), exp: NewInt(2)}, "x")
	require.NoError(t, err)

	// a malformed product panics inside the canonicalizer
	_, err = eng.Solve(Mul{}, Zero, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solve")
}

func TestEvalf(t *testing.T) {
	v, err := Evalf(mustParse(t, "sqrt(2)*sqrt(2)"), nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-12)

	_, err = Evalf(mustParse(t, "x", "x"), nil)
	assert.Error(t, err)
}
