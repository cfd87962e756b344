package solver

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/math-mentor/internal/cas"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
)

func solve(t *testing.T, text string) Solution {
	t.Helper()
	return New(nil, nil).Solve(parser.Parse(text), nil)
}

// #region calculus
func TestSolveDerivative(t *testing.T) {
	sol := solve(t, "derivative of x**2")
	assert.Equal(t, "2*x", sol.Answer)
	assert.Equal(t, parser.TaskDerivative, sol.Task)
	assert.Equal(t, 0.9, sol.Confidence)
	require.GreaterOrEqual(t, len(sol.Steps), 3)
	assert.Equal(t, "With respect to: x", sol.Steps[1])
	require.NotNil(t, sol.RawResult)
	assert.Equal(t, "2*x", *sol.RawResult)
	assert.Nil(t, sol.Failure)
}

func TestSolveDerivativeOperatorPrefix(t *testing.T) {
	sol := solve(t, "derivative of d/dt t**3")
	assert.Equal(t, "3*t**2", sol.Answer)
	assert.Equal(t, "With respect to: t", sol.Steps[1])
}

func TestSolveDerivativeLeibnizNotation(t *testing.T) {
	tests := []struct {
		text, want, variable string
	}{
		{"dy/dx of x^2", "2*x", "x"},
		{"dy/dx x**3", "3*x**2", "x"},
		{"d/dt of t**2", "2*t", "t"},
		{"df/dx of sin(x)", "cos(x)", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sol := solve(t, tt.text)
			require.Nil(t, sol.Failure, sol.Explanation)
			assert.Equal(t, parser.TaskDerivative, sol.Task)
			assert.Equal(t, tt.want, sol.Answer)
			assert.Equal(t, "With respect to: "+tt.variable, sol.Steps[1])
		})
	}
}

func TestSolveIntegral(t *testing.T) {
	sol := solve(t, "integral of 2*x dx")
	assert.Equal(t, "x**2", sol.Answer)
	assert.Equal(t, 0.88, sol.Confidence)
	assert.Equal(t, "Result: x**2 + C", sol.Steps[len(sol.Steps)-1])
}

func TestSolveLimit(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"limit of 1/x as x->0", "oo"},
		{"limit of 1/x as x -> infinity", "0"},
		{"limit of (x**2 - 1)/(x - 1) as x->1", "2"},
		{"limit of (1+1/x)^x as x -> infinity", "E"},
		{"limit of x*sin(1/x) as x->0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sol := solve(t, tt.text)
			require.Nil(t, sol.Failure, sol.Explanation)
			assert.Equal(t, tt.want, sol.Answer)
			assert.Equal(t, 0.85, sol.Confidence)
		})
	}
}

func TestSolvePartialPolynomialRoots(t *testing.T) {
	sol := solve(t, "x^10 - 1 = 0")
	require.Nil(t, sol.Failure, sol.Explanation)
	assert.Equal(t, []string{"-1", "1"}, sol.Solutions)
	assert.Equal(t, 0.9, sol.Confidence)
}

func TestSolveLimitPatternMismatch(t *testing.T) {
	sol := solve(t, "limit of x")
	assert.Equal(t, AnswerError, sol.Answer)
	assert.Equal(t, 0.2, sol.Confidence)
	require.NotNil(t, sol.Failure)
	assert.Equal(t, FailurePatternMismatch, sol.Failure.Kind)
	assert.Equal(t, []string{"Solver error: Limit format not recognized. Use 'limit of f(x) as x->a'."}, sol.Steps)
}

// #endregion calculus

// #region equation
func TestSolveLinearEquation(t *testing.T) {
	sol := solve(t, "x + 1 = 5")
	assert.Equal(t, []string{"4"}, sol.Solutions)
	assert.Equal(t, 0.9, sol.Confidence)
	assert.Equal(t, "[4]", sol.Answer)
	require.NotNil(t, sol.SolutionVar)
	assert.Equal(t, "x", *sol.SolutionVar)
	assert.Equal(t, []string{"Solve equation: Eq(x + 1, 5)", "Solutions for x: [4]"}, sol.Steps)
}

func TestSolveInstructionPrefix(t *testing.T) {
	sol := solve(t, "Solve: x**2 = 4")
	assert.Equal(t, []string{"-2", "2"}, sol.Solutions)
}

func TestSolveNoRealRoots(t *testing.T) {
	sol := solve(t, "x**2 + 1 = 0")
	assert.Empty(t, sol.Solutions)
	assert.NotNil(t, sol.Solutions)
	assert.Equal(t, 0.5, sol.Confidence)
}

func TestSolveTruthCheck(t *testing.T) {
	sol := solve(t, "2 + 2 = 4")
	assert.Equal(t, "True", sol.Answer)
	assert.Equal(t, 0.75, sol.Confidence)

	sol = solve(t, "2 + 2 = 5")
	assert.Equal(t, "False", sol.Answer)
}

func TestSolveSystem(t *testing.T) {
	sol := solve(t, "x + y = 3")
	assert.Equal(t, "[{x: 3 - y}]", sol.Answer)
	assert.Equal(t, 0.75, sol.Confidence)
	assert.Nil(t, sol.SolutionVar)
}

func TestSolveEquationTooManySigns(t *testing.T) {
	sol := solve(t, "x = 1 = 2")
	assert.Equal(t, AnswerError, sol.Answer)
	require.NotNil(t, sol.Failure)
	assert.Equal(t, FailurePatternMismatch, sol.Failure.Kind)
}

// #endregion equation

// #region expression
func TestSolveExpression(t *testing.T) {
	sol := solve(t, "2x + 3x")
	assert.Equal(t, "5*x", sol.Answer)
	assert.Equal(t, 0.85, sol.Confidence)
	assert.Equal(t, "Simplify expression: 5*x\nResult: 5*x", sol.Explanation)
}

func TestSolveParseError(t *testing.T) {
	sol := solve(t, "2 + * 3")
	assert.Equal(t, AnswerError, sol.Answer)
	assert.Equal(t, 0.2, sol.Confidence)
	require.NotNil(t, sol.Failure)
	assert.Equal(t, FailureParse, sol.Failure.Kind)
	assert.True(t, strings.HasPrefix(sol.Steps[len(sol.Steps)-1], "Solver error: "))
}

// #endregion expression

// #region oracle-failure
type failingOracle struct {
	cas.Engine
}

func (failingOracle) Differentiate(cas.Expr, string) (cas.Expr, error) {
	return nil, errors.New("boom")
}

func TestSolveOracleFailure(t *testing.T) {
	s := New(failingOracle{}, nil)
	out := s.Attempt(parser.Parse("derivative of x**2"), nil)
	require.False(t, out.OK())
	assert.Equal(t, FailureOracle, out.Failure().Kind)
	assert.Equal(t, "differentiate failed: boom", out.Failure().Message)

	sol := s.Solve(parser.Parse("derivative of x**2"), []string{"ctx"})
	assert.Equal(t, AnswerError, sol.Answer)
	assert.Equal(t, []string{"ctx"}, sol.UsedContext)
}

// #endregion oracle-failure

func TestIsSentinel(t *testing.T) {
	for _, a := range []string{AnswerError, AnswerNA, AnswerNotSupported} {
		assert.True(t, IsSentinel(a), a)
	}
	assert.False(t, IsSentinel("4"))
}
