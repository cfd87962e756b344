package replay

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/math-mentor/internal/memory"
)

// #region fixture-tests

// TestFixture_Problems loads the baseline fixture, runs it, and checks every
// problem against its expectations. Drift in parsing, solving or verifying
// shows up here first.
func TestFixture_Problems(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "problems.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, sum, err := Run(context.Background(), f, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(f.Problems) {
		t.Fatalf("expected %d results, got %d", len(f.Problems), len(results))
	}
	for _, r := range results {
		if !r.Match() {
			t.Errorf("%s (%s): %v", r.ID, r.Problem, r.Mismatches)
		}
	}
	if sum.Mismatched != 0 {
		t.Errorf("expected no mismatches, got %d", sum.Mismatched)
	}
	if sum.Verified != len(f.Problems)-1 {
		t.Errorf("expected %d verified, got %d", len(f.Problems)-1, sum.Verified)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	verified := true
	f := &Fixture{
		Description: "one",
		Problems:    []FixtureProblem{{ID: "p1", Problem: "x = 2", ExpectSolutions: []string{"2"}, ExpectVerified: &verified}},
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if got.Problems[0].ExpectVerified == nil || !*got.Problems[0].ExpectVerified {
		t.Fatal("expect_verified lost in round trip")
	}
}

// #endregion fixture-tests

// #region export-tests

func TestFromRecords_SkipsCorrected(t *testing.T) {
	approved := memory.FeedbackApproved
	corrected := memory.Corrected("x = 3")
	records := []memory.Record{
		{ID: "a", Problem: "x + 1 = 5", Answer: "[4]", CreatedAt: time.Now()},
		{ID: "b", Problem: "x = 2", Answer: "[2]", Feedback: &approved},
		{ID: "c", Problem: "x = 9", Answer: "[1]", Feedback: &corrected},
	}

	f := FromRecords("export", records)

	if len(f.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(f.Problems))
	}
	if f.Problems[0].ExpectAnswer != "[4]" || f.Problems[1].ID != "b" {
		t.Errorf("unexpected problems %+v", f.Problems)
	}
}

// #endregion export-tests
