package solver

import "github.com/danielpatrickdp/math-mentor/internal/parser"

// #region sentinels
// Sentinel answers that mark a solve that produced nothing usable.
const (
	AnswerError        = "Error"
	AnswerNA           = "N/A"
	AnswerNotSupported = "Not supported"
)

// IsSentinel reports whether answer is one of the failure sentinels.
func IsSentinel(answer string) bool {
	switch answer {
	case AnswerError, AnswerNA, AnswerNotSupported:
		return true
	}
	return false
}

// #endregion sentinels

// #region confidence
const (
	confidenceDefault    = 0.6
	confidenceDerivative = 0.9
	confidenceIntegral   = 0.88
	confidenceLimit      = 0.85
	confidenceTruth      = 0.75
	confidenceRoots      = 0.9
	confidenceNoRoots    = 0.5
	confidenceSystem     = 0.75
	confidenceNoSystem   = 0.4
	confidenceExpression = 0.85
	confidenceError      = 0.2
)

// #endregion confidence

// #region solution
// Solution is the result of one solve call. It is not modified after Solve
// returns it.
type Solution struct {
	Answer      string      `json:"answer"`
	Explanation string      `json:"explanation"`
	Confidence  float64     `json:"confidence"`
	UsedContext []string    `json:"used_context"`
	Steps       []string    `json:"steps"`
	Task        parser.Task `json:"task"`
	RawResult   *string     `json:"raw_result"`
	Solutions   []string    `json:"solutions"`
	SolutionVar *string     `json:"solution_var"`
	Failure     *Failure    `json:"failure,omitempty"`
}

// #endregion solution

// #region outcome
// FailureKind tags why a solve failed.
type FailureKind string

const (
	FailureParse           FailureKind = "parse"
	FailurePatternMismatch FailureKind = "pattern_mismatch"
	FailureOracle          FailureKind = "oracle"
)

// Failure is the tagged reason carried by a failed Outcome.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Outcome is either a Solution or a Failure. Steps narrated before a
// failure are kept so the folded Solution can show them.
type Outcome struct {
	solution Solution
	failure  *Failure
	steps    []string
	task     parser.Task
}

// OK reports whether the attempt produced a Solution.
func (o Outcome) OK() bool { return o.failure == nil }

// Solution returns the successful result. It is the zero Solution when OK
// is false.
func (o Outcome) Solution() Solution { return o.solution }

// Failure returns the failure reason, or nil on success.
func (o Outcome) Failure() *Failure { return o.failure }

// #endregion outcome
