package hitl

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielpatrickdp/math-mentor/internal/metrics"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

func TestGatePassesCleanInput(t *testing.T) {
	ok, reason := NeedsIntervention(parser.Parse("x = 5"), nil)
	if ok {
		t.Fatalf("expected no intervention, got %q", reason)
	}
	if reason != "" {
		t.Fatalf("expected empty reason, got %q", reason)
	}
}

func TestGateAmbiguityWins(t *testing.T) {
	v := &verifier.Verification{NeedsHumanReview: true, Issues: []string{"Low confidence in solution"}}

	ok, reason := NeedsIntervention(parser.Parse("a"), v)

	if !ok || reason != ReasonAmbiguous {
		t.Fatalf("expected ambiguity, got %v %q", ok, reason)
	}
}

func TestGateVerifierFlag(t *testing.T) {
	v := &verifier.Verification{NeedsHumanReview: true, Issues: []string{"Low confidence in solution"}}

	ok, reason := NeedsIntervention(parser.Parse("x + 1 = 5"), v)

	if !ok || reason != ReasonFlagged {
		t.Fatalf("expected verifier flag, got %v %q", ok, reason)
	}
}

func TestGateVerifiedSolution(t *testing.T) {
	v := &verifier.Verification{Verified: true}

	if ok, _ := NeedsIntervention(parser.Parse("x + 1 = 5"), v); ok {
		t.Fatal("verified solution should pass")
	}
}

func TestEvaluateCountsInterventions(t *testing.T) {
	counter := metrics.HITLInterventionsTotal.WithLabelValues(string(StageVerify))
	before := testutil.ToFloat64(counter)
	v := &verifier.Verification{NeedsHumanReview: true, Issues: []string{"Could not verify equation solution"}}

	d := Evaluate(StageVerify, parser.Parse("x + y = 3"), v)

	if !d.Intervene || d.Reason != ReasonFlagged {
		t.Fatalf("unexpected decision %+v", d)
	}
	if len(d.Issues) != 1 {
		t.Fatalf("expected issues carried, got %v", d.Issues)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected one intervention counted, got %v", got)
	}

	d = Evaluate(StageParse, parser.Parse("x + y = 3"), nil)
	if d.Intervene {
		t.Fatal("parse stage should pass clear input")
	}
}
