package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/math-mentor/internal/hitl"
	"github.com/danielpatrickdp/math-mentor/internal/logging"
	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
	"github.com/danielpatrickdp/math-mentor/internal/router"
)

func newPipeline(t *testing.T) (*Pipeline, *memory.Store) {
	t.Helper()
	store, err := memory.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	docs := []retrieval.Document{
		{Name: "algebra.txt", Text: "Linear equations are solved by isolating the variable."},
		{Name: "calculus.txt", Text: "The derivative measures the rate of change."},
	}
	r, err := retrieval.NewRetriever(docs, retrieval.DefaultConfig(), nil)
	require.NoError(t, err)

	p, err := New(Options{Retriever: r, Memory: store})
	require.NoError(t, err)
	return p, store
}

func TestParseRoutesAndRetrieves(t *testing.T) {
	p, _ := newPipeline(t)

	s, err := p.Parse(context.Background(), "derivative of x^2")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "derivative of x**2", s.ProblemText)
	assert.Equal(t, parser.TaskDerivative, s.Parsed.Task)
	assert.Equal(t, router.RouteCalculus, s.Route.Route)
	require.NotEmpty(t, s.Context)
	assert.Equal(t, "The derivative measures the rate of change.", s.Context[0])
	assert.Equal(t, StatusParsed, s.Status)
	assert.Nil(t, s.Solution)
}

func TestRunSolvesAndRemembers(t *testing.T) {
	p, store := newPipeline(t)
	ctx := context.Background()

	s, err := p.Run(ctx, "x + 1 = 5")
	require.NoError(t, err)
	require.NotNil(t, s.Solution)
	assert.Equal(t, []string{"4"}, s.Solution.Solutions)
	assert.True(t, s.Verification.Verified)
	assert.Equal(t, StatusSolved, s.Status)
	assert.Equal(t, "Step 1: Solve equation: Eq(x + 1, 5)\nStep 2: Solutions for x: [4]", s.Explanation)
	require.NotEmpty(t, s.RecordID)

	rec, err := store.Get(s.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "algebra", rec.Topic)
	assert.Equal(t, "[4]", rec.Answer)
	assert.Equal(t, 0.9, rec.Confidence)

	next, err := p.Parse(ctx, "2x = 8")
	require.NoError(t, err)
	assert.Equal(t, 1, next.SimilarCount)

	entries, err := logging.ListDecisions(store.DB(), s.ID, 10)
	require.NoError(t, err)
	var stages []string
	for _, e := range entries {
		stages = append(stages, e.Stage)
	}
	assert.ElementsMatch(t, []string{"parse", "verify", "memory"}, stages)
}

func TestRunStopsForClarification(t *testing.T) {
	p, store := newPipeline(t)

	s, err := p.Run(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsClarify, s.Status)
	assert.Equal(t, hitl.ReasonAmbiguous, s.Gate.Reason)
	assert.Nil(t, s.Solution)

	all, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestApproveWithCorrection(t *testing.T) {
	p, store := newPipeline(t)
	ctx := context.Background()

	s, err := p.Run(ctx, "x + y = 3")
	require.NoError(t, err)
	require.Equal(t, StatusNeedsReview, s.Status)
	assert.Equal(t, hitl.ReasonFlagged, s.Gate.Reason)
	firstRecord := s.RecordID

	require.NoError(t, p.Approve(ctx, s, "x + 3 = 5"))
	assert.Equal(t, "x + 3 = 5", s.Parsed.ProblemText)
	assert.Equal(t, []string{"2"}, s.Solution.Solutions)
	assert.Equal(t, StatusSolved, s.Status)

	rec, err := store.Get(firstRecord)
	require.NoError(t, err)
	require.NotNil(t, rec.Feedback)
	assert.Equal(t, "corrected: x + 3 = 5", *rec.Feedback)
}

func TestApproveWithoutCorrection(t *testing.T) {
	p, store := newPipeline(t)
	ctx := context.Background()

	s, err := p.Run(ctx, "x + 1 = 5")
	require.NoError(t, err)
	require.NoError(t, p.Approve(ctx, s, ""))
	assert.Equal(t, StatusApproved, s.Status)

	rec, err := store.Get(s.RecordID)
	require.NoError(t, err)
	require.NotNil(t, rec.Feedback)
	assert.Equal(t, memory.FeedbackApproved, *rec.Feedback)
}

func TestPipelineWithoutMemory(t *testing.T) {
	p, err := New(Options{})
	require.NoError(t, err)

	s, err := p.Run(context.Background(), "2x + 3x")
	require.NoError(t, err)
	assert.Equal(t, "5*x", s.Solution.Answer)
	assert.Empty(t, s.Context)
	assert.NotNil(t, s.Context)
	assert.Empty(t, s.RecordID)
}

func TestParseCanceled(t *testing.T) {
	p, _ := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Parse(ctx, "x + 1 = 5")
	assert.ErrorIs(t, err, context.Canceled)
}
