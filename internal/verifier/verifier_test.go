package verifier

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
)

func solved(text string) (parser.ParsedProblem, solver.Solution) {
	p := parser.Parse(text)
	return p, solver.New(nil, nil).Solve(p, nil)
}

func TestVerifyPassesCorrectRoot(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	p, sol := solved("x + 1 = 5")

	result := v.Verify(p, sol)

	if !result.Verified {
		t.Fatalf("expected verified, got issues %v", result.Issues)
	}
	if result.NeedsHumanReview {
		t.Fatal("should not need review")
	}
	if result.Confidence != sol.Confidence {
		t.Fatalf("confidence changed: %v -> %v", sol.Confidence, result.Confidence)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", result.Issues)
	}
}

func TestVerifyPassesIrrationalRoots(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	p, sol := solved("x**2 = 2")

	result := v.Verify(p, sol)

	if !result.Verified {
		t.Fatalf("expected verified, got issues %v", result.Issues)
	}
}

func TestVerifyFlagsForgedRoot(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	p, sol := solved("x + 1 = 5")
	sol.Solutions = []string{"7", "9"}

	result := v.Verify(p, sol)

	if result.Verified {
		t.Fatal("expected forged root to fail verification")
	}
	if len(result.Issues) != 1 || result.Issues[0] != "Solution 7 does not satisfy the equation" {
		t.Fatalf("expected single issue naming 7, got %v", result.Issues)
	}
}

func TestVerifyFlagsSentinelAnswer(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	p, sol := solved("limit of x")

	result := v.Verify(p, sol)

	if result.Verified {
		t.Fatal("expected error answer to fail")
	}
	want := []string{"Solver could not produce a valid answer", "Low confidence in solution"}
	if strings.Join(result.Issues, "|") != strings.Join(want, "|") {
		t.Fatalf("issues = %v, want %v", result.Issues, want)
	}
}

func TestVerifyFlagsUnverifiableSystem(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	p, sol := solved("x + y = 3")

	result := v.Verify(p, sol)

	if result.Verified {
		t.Fatal("expected system solution to need review")
	}
	if result.Issues[0] != "Could not verify equation solution" {
		t.Fatalf("unexpected issue %q", result.Issues[0])
	}
}

func TestVerifyCatchesReparseError(t *testing.T) {
	v := New(DefaultConfig(), nil, nil)
	p, sol := solved("x + 1 = 5")
	sol.Solutions = []string{"4 +"}

	result := v.Verify(p, sol)

	if result.Verified {
		t.Fatal("expected verification error to flag review")
	}
	if !strings.HasPrefix(result.Issues[0], "Verification error: parse root") {
		t.Fatalf("unexpected issue %q", result.Issues[0])
	}
}

func TestVerifyLowConfidenceOnly(t *testing.T) {
	config := DefaultConfig()
	config.MinConfidence = 0.95
	v := New(config, nil, nil)
	p, sol := solved("derivative of x**2")

	result := v.Verify(p, sol)

	if result.Verified {
		t.Fatal("expected low confidence to flag")
	}
	if len(result.Issues) != 1 || result.Issues[0] != "Low confidence in solution" {
		t.Fatalf("unexpected issues %v", result.Issues)
	}
	for _, c := range result.Checks {
		if c.Name == "equation_roots" {
			t.Fatal("equation rule should not run for derivatives")
		}
	}
}
