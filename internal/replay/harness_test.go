package replay

import (
	"context"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestRun_ReportsMismatch(t *testing.T) {
	f := &Fixture{Problems: []FixtureProblem{
		{ID: "wrong", Problem: "x + 1 = 5", ExpectAnswer: "[5]", ExpectSolutions: []string{"5"}, ExpectVerified: boolPtr(false)},
	}}

	results, sum, err := Run(context.Background(), f, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Mismatched != 1 || sum.Matched != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if got := len(results[0].Mismatches); got != 3 {
		t.Fatalf("expected answer, solutions and verified mismatches, got %v", results[0].Mismatches)
	}
}

func TestRun_Clarification(t *testing.T) {
	f := &Fixture{Problems: []FixtureProblem{{ID: "short", Problem: "a", ExpectVerified: boolPtr(false)}}}

	results, _, err := Run(context.Background(), f, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r := results[0]
	if !r.Match() {
		t.Fatalf("unexpected mismatches %v", r.Mismatches)
	}
	if r.Answer != "" || r.Status != "needs_clarification" {
		t.Errorf("expected unsolved clarification result, got %+v", r)
	}
}

func TestRun_EmptyFixture(t *testing.T) {
	results, sum, err := Run(context.Background(), &Fixture{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 || sum.Total != 0 {
		t.Fatalf("expected empty run, got %v %+v", results, sum)
	}
}
