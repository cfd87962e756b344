// Package solver turns a parsed problem into a narrated Solution by
// extracting the task's sub-expressions and calling the math engine.
package solver

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/cas"
	"github.com/danielpatrickdp/math-mentor/internal/metrics"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
)

// #region oracle
// Oracle is the math engine the solver delegates to. cas.Engine satisfies it.
type Oracle interface {
	ParseExpression(text string, vars cas.SymbolTable) (cas.Expr, error)
	Differentiate(e cas.Expr, v string) (cas.Expr, error)
	Integrate(e cas.Expr, v string) (cas.Expr, error)
	Limit(e cas.Expr, v string, point cas.Expr) (cas.Expr, error)
	Simplify(e cas.Expr) (cas.Expr, error)
	Solve(lhs, rhs cas.Expr, v string) ([]cas.Expr, error)
	SolveSystem(lhs, rhs cas.Expr, vars []string) ([]cas.Assignment, error)
}

// #endregion oracle

// #region solver
// Solver narrates and solves problems with an Oracle.
type Solver struct {
	oracle Oracle
	logger *zap.Logger
}

// New creates a Solver. A nil oracle uses cas.Engine; a nil logger is a no-op.
func New(oracle Oracle, logger *zap.Logger) *Solver {
	if oracle == nil {
		oracle = cas.Engine{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{oracle: oracle, logger: logger}
}

// Solve never fails: a failed Outcome is folded into a Solution with the
// Error answer, a "Solver error" step and low confidence.
func (s *Solver) Solve(p parser.ParsedProblem, context []string) Solution {
	start := time.Now()
	out := s.Attempt(p, context)
	metrics.ObserveSolve(string(out.task), !out.OK(), time.Since(start))

	if out.OK() {
		sol := out.Solution()
		s.logger.Debug("solved",
			zap.String("task", string(sol.Task)),
			zap.String("answer", sol.Answer),
			zap.Float64("confidence", sol.Confidence))
		return sol
	}

	f := out.Failure()
	s.logger.Info("solve failed",
		zap.String("task", string(out.task)),
		zap.String("kind", string(f.Kind)),
		zap.String("message", f.Message))
	steps := append(append([]string(nil), out.steps...), "Solver error: "+f.Message)
	return Solution{
		Answer:      AnswerError,
		Explanation: explanation(steps),
		Confidence:  confidenceError,
		UsedContext: context,
		Steps:       steps,
		Task:        out.task,
		Failure:     f,
	}
}

// Attempt runs the task branch and reports success or a tagged failure.
func (s *Solver) Attempt(p parser.ParsedProblem, context []string) Outcome {
	task := p.Task
	if task == "" {
		task = parser.TaskExpression
	}
	r := &run{
		oracle: s.oracle,
		text:   PrepareText(p.ProblemText),
		sol: Solution{
			Answer:      AnswerNA,
			Confidence:  confidenceDefault,
			UsedContext: context,
			Task:        task,
		},
	}
	r.vars = SymbolTable(r.text)

	var err error
	switch task {
	case parser.TaskDerivative:
		err = r.derivative()
	case parser.TaskIntegral:
		err = r.integral()
	case parser.TaskLimit:
		err = r.limit()
	case parser.TaskEquation:
		err = r.equation()
	default:
		err = r.expression()
	}
	if err != nil {
		return Outcome{failure: classify(err), steps: r.sol.Steps, task: task}
	}
	r.sol.Explanation = explanation(r.sol.Steps)
	return Outcome{solution: r.sol, steps: r.sol.Steps, task: task}
}

func explanation(steps []string) string {
	if len(steps) == 0 {
		return "No steps available."
	}
	return strings.Join(steps, "\n")
}

// #endregion solver

// #region branches
type run struct {
	oracle Oracle
	text   string
	vars   cas.SymbolTable
	sol    Solution
}

func (r *run) step(format string, args ...any) {
	r.sol.Steps = append(r.sol.Steps, fmt.Sprintf(format, args...))
}

func (r *run) parse(text string) (cas.Expr, error) {
	return r.oracle.ParseExpression(text, r.vars)
}

func (r *run) succeed(answer, raw string, confidence float64) {
	r.sol.Answer = answer
	r.sol.RawResult = &raw
	r.sol.Confidence = confidence
}

func (r *run) derivative() error {
	exprText, preferred := calculusOperand(r.text, derivativePattern)
	if preferred != "" {
		r.vars[preferred] = true
	}
	e, err := r.parse(exprText)
	if err != nil {
		return err
	}
	v := chooseVariable(e, preferred)
	d, err := r.oracle.Differentiate(e, v)
	if err != nil {
		return &OracleFailure{Op: "differentiate", Err: err}
	}
	r.step("Differentiate: %s", e)
	r.step("With respect to: %s", v)
	r.step("Result: %s", d)
	r.succeed(d.String(), d.String(), confidenceDerivative)
	return nil
}

func (r *run) integral() error {
	exprText, preferred := calculusOperand(r.text, integralPattern)
	if preferred != "" {
		r.vars[preferred] = true
	}
	e, err := r.parse(exprText)
	if err != nil {
		return err
	}
	v := chooseVariable(e, preferred)
	F, err := r.oracle.Integrate(e, v)
	if err != nil {
		return &OracleFailure{Op: "integrate", Err: err}
	}
	r.step("Integrate: %s", e)
	r.step("With respect to: %s", v)
	r.step("Result: %s + C", F)
	r.succeed(F.String(), F.String(), confidenceIntegral)
	return nil
}

func (r *run) limit() error {
	parts, ok := extractLimit(r.text)
	if !ok {
		return &PatternMismatchError{
			Task: string(parser.TaskLimit),
			Msg:  "Limit format not recognized. Use 'limit of f(x) as x->a'.",
		}
	}
	r.vars[parts.variable] = true
	e, err := r.parse(parts.expr)
	if err != nil {
		return err
	}
	point, ok := pointInfinity(parts.point)
	if !ok {
		pe, err := r.parse(parts.point)
		if err != nil {
			return err
		}
		if point, err = r.oracle.Simplify(pe); err != nil {
			return &OracleFailure{Op: "simplify", Err: err}
		}
	}
	l, err := r.oracle.Limit(e, parts.variable, point)
	if err != nil {
		return &OracleFailure{Op: "limit", Err: err}
	}
	r.step("Compute limit of: %s", e)
	r.step("As %s approaches %s", parts.variable, point)
	r.step("Result: %s", l)
	r.succeed(l.String(), l.String(), confidenceLimit)
	return nil
}

func (r *run) equation() error {
	_, preferred := parser.StripInstruction(r.text)
	lhsText, rhsText, err := EquationSides(r.text)
	if err != nil {
		return err
	}
	lhs, err := r.parse(lhsText)
	if err != nil {
		return err
	}
	rhs, err := r.parse(rhsText)
	if err != nil {
		return err
	}
	r.step("Solve equation: %s", cas.FormatEq(lhs, rhs))

	unknowns := Unknowns(lhs, rhs, r.vars)
	if preferred != "" && len(unknowns) > 1 && containsName(unknowns, preferred) {
		unknowns = []string{preferred}
	}

	switch len(unknowns) {
	case 0:
		residual, err := r.oracle.Simplify(cas.Sub(lhs, rhs))
		if err != nil {
			return &OracleFailure{Op: "simplify", Err: err}
		}
		answer := "False"
		if cas.IsZero(residual) {
			answer = "True"
		}
		r.step("Simplify both sides: %s", residual)
		r.succeed(answer, residual.String(), confidenceTruth)
	case 1:
		v := unknowns[0]
		roots, err := r.oracle.Solve(lhs, rhs, v)
		if err != nil {
			return &OracleFailure{Op: "solve", Err: err}
		}
		sols := make([]string, len(roots))
		for i, root := range roots {
			sols[i] = root.String()
		}
		list := cas.FormatList(sols)
		r.step("Solutions for %s: %s", v, list)
		conf := confidenceNoRoots
		if len(sols) > 0 {
			conf = confidenceRoots
		}
		r.succeed(list, list, conf)
		r.sol.Solutions = sols
		r.sol.SolutionVar = &v
	default:
		as, err := r.oracle.SolveSystem(lhs, rhs, unknowns)
		if err != nil {
			return &OracleFailure{Op: "solve", Err: err}
		}
		sols := make([]string, len(as))
		for i, a := range as {
			sols[i] = a.String()
		}
		list := cas.FormatList(sols)
		r.step("Solutions: %s", list)
		conf := confidenceNoSystem
		if len(sols) > 0 {
			conf = confidenceSystem
		}
		r.succeed(list, list, conf)
		r.sol.Solutions = sols
	}
	return nil
}

func (r *run) expression() error {
	text, _ := parser.StripInstruction(r.text)
	e, err := r.parse(text)
	if err != nil {
		return err
	}
	simplified, err := r.oracle.Simplify(e)
	if err != nil {
		return &OracleFailure{Op: "simplify", Err: err}
	}
	r.step("Simplify expression: %s", e)
	r.step("Result: %s", simplified)
	r.succeed(simplified.String(), simplified.String(), confidenceExpression)
	return nil
}

// Unknowns returns the declared variables that occur free in lhs or rhs,
// in name order. Letters swallowed by function names do not count.
func Unknowns(lhs, rhs cas.Expr, vars cas.SymbolTable) []string {
	var out []string
	for _, v := range vars.Names() {
		if cas.Has(lhs, v) || cas.Has(rhs, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// #endregion branches
