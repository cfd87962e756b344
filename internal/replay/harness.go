// Package replay runs recorded problems through a fresh in-memory pipeline
// and compares the outcomes against their expectations.
package replay

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

// #region types
// Result captures the outcome of replaying one problem.
type Result struct {
	ID         string
	Problem    string
	Task       string
	Answer     string
	Solutions  []string
	Verified   bool
	Status     pipeline.Status
	Mismatches []string // empty when every expectation held
}

// Match reports whether the problem met all its expectations.
func (r Result) Match() bool { return len(r.Mismatches) == 0 }

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total      int
	Matched    int
	Mismatched int
	Verified   int
}

// #endregion types

// #region replay
// Run replays every problem of f in order through one pipeline backed by
// an in-memory store, so later problems see earlier ones as similar.
func Run(ctx context.Context, f *Fixture, logger *zap.Logger) ([]Result, Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, store, err := build(f, logger)
	if err != nil {
		return nil, Summary{}, err
	}
	defer store.Close()

	results := make([]Result, 0, len(f.Problems))
	var sum Summary
	for _, fp := range f.Problems {
		s, err := p.Run(ctx, fp.Problem)
		if err != nil {
			return results, sum, fmt.Errorf("replay %s: %w", fp.ID, err)
		}
		res := compare(fp, s)
		results = append(results, res)

		sum.Total++
		if res.Match() {
			sum.Matched++
		} else {
			sum.Mismatched++
			logger.Info("replay mismatch", zap.String("id", fp.ID), zap.Strings("mismatches", res.Mismatches))
		}
		if res.Verified {
			sum.Verified++
		}
	}
	return results, sum, nil
}

func build(f *Fixture, logger *zap.Logger) (*pipeline.Pipeline, *memory.Store, error) {
	rc := retrieval.DefaultConfig()
	if f.Config.TopK > 0 {
		rc.TopK = f.Config.TopK
	}
	vc := verifier.DefaultConfig()
	if f.Config.MinConfidence > 0 {
		vc.MinConfidence = f.Config.MinConfidence
	}

	r, err := retrieval.NewRetriever(f.ToDocuments(), rc, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := memory.Open(":memory:")
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(pipeline.Options{
		Retriever: r,
		Solver:    solver.New(nil, logger),
		Verifier:  verifier.New(vc, nil, logger),
		Memory:    store,
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return p, store, nil
}

// #endregion replay

// #region compare
func compare(fp FixtureProblem, s *pipeline.Session) Result {
	res := Result{ID: fp.ID, Problem: fp.Problem, Task: string(s.Parsed.Task), Status: s.Status}
	if s.Solution != nil {
		res.Answer = s.Solution.Answer
		res.Solutions = s.Solution.Solutions
	}
	if s.Verification != nil {
		res.Verified = s.Verification.Verified
	}

	if fp.ExpectTask != "" && fp.ExpectTask != res.Task {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("task %q, want %q", res.Task, fp.ExpectTask))
	}
	if fp.ExpectAnswer != "" && fp.ExpectAnswer != res.Answer {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("answer %q, want %q", res.Answer, fp.ExpectAnswer))
	}
	if fp.ExpectSolutions != nil && !slices.Equal(fp.ExpectSolutions, res.Solutions) {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("solutions [%s], want [%s]",
			strings.Join(res.Solutions, ", "), strings.Join(fp.ExpectSolutions, ", ")))
	}
	if fp.ExpectVerified != nil && *fp.ExpectVerified != res.Verified {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("verified %v, want %v", res.Verified, *fp.ExpectVerified))
	}
	return res
}

// #endregion compare
