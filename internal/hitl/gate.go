// Package hitl decides when automated processing must pause for a human.
package hitl

import (
	"github.com/danielpatrickdp/math-mentor/internal/metrics"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

// #region gate
// NeedsIntervention reports whether a human must step in, and why. Parser
// ambiguity wins over verifier flags. v may be nil when the gate runs
// right after parsing.
func NeedsIntervention(p parser.ParsedProblem, v *verifier.Verification) (bool, string) {
	if p.NeedsClarification {
		return true, ReasonAmbiguous
	}
	if v != nil && v.NeedsHumanReview {
		return true, ReasonFlagged
	}
	return false, ""
}

// Evaluate wraps NeedsIntervention in a Decision for the given stage and
// counts interventions.
func Evaluate(stage Stage, p parser.ParsedProblem, v *verifier.Verification) Decision {
	intervene, reason := NeedsIntervention(p, v)
	d := Decision{Stage: stage, Intervene: intervene, Reason: reason}
	if reason == ReasonFlagged {
		d.Issues = v.Issues
	}
	if intervene {
		metrics.HITLInterventionsTotal.WithLabelValues(string(stage)).Inc()
	}
	return d
}

// #endregion gate
