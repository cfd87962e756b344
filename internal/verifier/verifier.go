// Package verifier re-checks solver output: equation roots are substituted
// back and the residual simplified, and weak or failed answers are flagged
// for human review.
package verifier

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/cas"
	"github.com/danielpatrickdp/math-mentor/internal/metrics"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
)

// #region verifier
// Verifier runs the post-solve checks. It holds no mutable state.
type Verifier struct {
	config VerifierConfig
	oracle solver.Oracle
	logger *zap.Logger
}

// New creates a verifier. A nil oracle uses cas.Engine; a nil logger is a
// no-op.
func New(config VerifierConfig, oracle solver.Oracle, logger *zap.Logger) *Verifier {
	if oracle == nil {
		oracle = cas.Engine{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{config: config, oracle: oracle, logger: logger}
}

// Verify applies every rule independently. Any failed rule sets
// NeedsHumanReview.
func (v *Verifier) Verify(p parser.ParsedProblem, sol solver.Solution) Verification {
	var checks []Check
	issues := []string{}

	// 1. Sentinel answers
	answerPass := !solver.IsSentinel(sol.Answer)
	checks = append(checks, Check{Name: "valid_answer", Pass: answerPass})
	if !answerPass {
		issues = append(issues, "Solver could not produce a valid answer")
	}

	// 2. Equation roots satisfy the equation
	if p.Task == parser.TaskEquation && strings.Contains(p.ProblemText, "=") {
		issue := v.checkRoots(p, sol)
		checks = append(checks, Check{Name: "equation_roots", Pass: issue == ""})
		if issue != "" {
			issues = append(issues, issue)
		}
	}

	// 3. Confidence floor
	confPass := sol.Confidence >= v.config.MinConfidence
	checks = append(checks, Check{Name: "confidence", Pass: confPass})
	if !confPass {
		issues = append(issues, "Low confidence in solution")
	}

	review := len(issues) > 0
	metrics.ObserveVerification(!review)
	if review {
		v.logger.Info("verification flagged",
			zap.String("task", string(p.Task)),
			zap.Strings("issues", issues))
	}
	return Verification{
		Verified:         !review,
		Issues:           issues,
		NeedsHumanReview: review,
		Confidence:       sol.Confidence,
		Checks:           checks,
	}
}

// #endregion verifier

// #region roots
// checkRoots returns the issue for the equation rule, or "" when every
// reported root leaves a zero residual. Checking stops at the first bad root.
func (v *Verifier) checkRoots(p parser.ParsedProblem, sol solver.Solution) string {
	if sol.SolutionVar == nil || len(sol.Solutions) == 0 {
		return "Could not verify equation solution"
	}
	bad, err := v.firstBadRoot(p.ProblemText, *sol.SolutionVar, sol.Solutions)
	if err != nil {
		return fmt.Sprintf("Verification error: %v", err)
	}
	if bad != "" {
		return fmt.Sprintf("Solution %s does not satisfy the equation", bad)
	}
	return ""
}

func (v *Verifier) firstBadRoot(problem, variable string, roots []string) (string, error) {
	text := solver.PrepareText(problem)
	vars := solver.SymbolTable(text)
	vars[variable] = true

	lhsText, rhsText, err := solver.EquationSides(text)
	if err != nil {
		return "", &VerificationError{Stage: "split", Err: err}
	}
	lhs, err := v.oracle.ParseExpression(lhsText, vars)
	if err != nil {
		return "", &VerificationError{Stage: "parse", Err: err}
	}
	rhs, err := v.oracle.ParseExpression(rhsText, vars)
	if err != nil {
		return "", &VerificationError{Stage: "parse", Err: err}
	}

	for _, root := range roots {
		value, err := v.oracle.ParseExpression(root, vars)
		if err != nil {
			return "", &VerificationError{Stage: "parse root", Err: err}
		}
		residual, err := v.residual(lhs, rhs, variable, value)
		if err != nil {
			return "", &VerificationError{Stage: "substitute", Err: err}
		}
		if !cas.IsZero(residual) {
			v.logger.Debug("root failed substitution",
				zap.String("root", root),
				zap.String("residual", residual.String()))
			return root, nil
		}
	}
	return "", nil
}

func (v *Verifier) residual(lhs, rhs cas.Expr, variable string, value cas.Expr) (r cas.Expr, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(fmt.Sprint(rec))
		}
	}()
	diff := cas.Sub(cas.Substitute(lhs, variable, value), cas.Substitute(rhs, variable, value))
	return v.oracle.Simplify(diff)
}

// #endregion roots
