package pipeline

import (
	"github.com/danielpatrickdp/math-mentor/internal/hitl"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/router"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

// #region status
// Status is how far a session has progressed.
type Status string

const (
	StatusParsed       Status = "parsed"
	StatusNeedsClarify Status = "needs_clarification"
	StatusSolved       Status = "solved"
	StatusNeedsReview  Status = "needs_review"
	StatusApproved     Status = "approved"
)

// #endregion status

// #region session
// Session is the record of one problem moving through the pipeline. The
// controller that owns it passes it back for each later step.
type Session struct {
	ID           string                 `json:"id"`
	RawText      string                 `json:"raw_text"`
	ProblemText  string                 `json:"problem_text"`
	Status       Status                 `json:"status"`
	Parsed       parser.ParsedProblem   `json:"parsed"`
	Route        router.RouteDecision   `json:"route"`
	Context      []string               `json:"context"`
	Solution     *solver.Solution       `json:"solution,omitempty"`
	Verification *verifier.Verification `json:"verification,omitempty"`
	Explanation  string                 `json:"explanation,omitempty"`
	Gate         hitl.Decision          `json:"gate"`
	SimilarCount int                    `json:"similar_count"`
	RecordID     string                 `json:"record_id,omitempty"`
	Feedback     string                 `json:"feedback,omitempty"`
}

// NeedsHuman reports whether the last gate decision stopped for a human.
func (s *Session) NeedsHuman() bool { return s.Gate.Intervene }

// #endregion session
