// Package pipeline runs a problem through normalize, parse, route and
// retrieve, then solve, verify and explain, stopping at the human gate.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/math-mentor/internal/explainer"
	"github.com/danielpatrickdp/math-mentor/internal/hitl"
	"github.com/danielpatrickdp/math-mentor/internal/logging"
	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/normalize"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
	"github.com/danielpatrickdp/math-mentor/internal/router"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
	"github.com/danielpatrickdp/math-mentor/internal/verifier"
)

// #region pipeline-struct
// Options wires a Pipeline. Nil fields get working defaults; a nil Memory
// disables persistence and provenance.
type Options struct {
	Retriever *retrieval.Retriever
	Solver    *solver.Solver
	Verifier  *verifier.Verifier
	Memory    *memory.Store
	Logger    *zap.Logger
}

// Pipeline holds the stage components. Its methods are safe for concurrent
// use on distinct sessions.
type Pipeline struct {
	retriever *retrieval.Retriever
	solver    *solver.Solver
	verifier  *verifier.Verifier
	memory    *memory.Store
	logger    *zap.Logger
}

// New creates a Pipeline from opts.
func New(opts Options) (*Pipeline, error) {
	p := &Pipeline{
		retriever: opts.Retriever,
		solver:    opts.Solver,
		verifier:  opts.Verifier,
		memory:    opts.Memory,
		logger:    opts.Logger,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.retriever == nil {
		r, err := retrieval.NewRetriever(nil, retrieval.DefaultConfig(), p.logger)
		if err != nil {
			return nil, err
		}
		p.retriever = r
	}
	if p.solver == nil {
		p.solver = solver.New(nil, p.logger)
	}
	if p.verifier == nil {
		p.verifier = verifier.New(verifier.DefaultConfig(), nil, p.logger)
	}
	return p, nil
}

// Retriever exposes the context retriever for direct queries.
func (p *Pipeline) Retriever() *retrieval.Retriever { return p.retriever }

// #endregion pipeline-struct

// #region parse
// Parse starts a session: the text is normalized and classified, then
// routed while context is retrieved.
func (p *Pipeline) Parse(ctx context.Context, raw string) (*Session, error) {
	s := &Session{ID: uuid.New().String(), RawText: raw}
	if err := p.parseInto(ctx, s, raw); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Pipeline) parseInto(ctx context.Context, s *Session, raw string) error {
	start := time.Now()
	s.ProblemText = normalize.Normalize(raw)
	s.Parsed = parser.Parse(s.ProblemText)
	s.Solution, s.Verification, s.Explanation = nil, nil, ""

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Route = router.Route(s.Parsed)
		return nil
	})
	g.Go(func() error {
		texts, err := p.retriever.Query(gctx, s.ProblemText, 0)
		if err != nil {
			return fmt.Errorf("retrieve context: %w", err)
		}
		s.Context = texts
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if s.Context == nil {
		s.Context = []string{}
	}

	s.SimilarCount = p.similar(s.Parsed.Topic)
	s.Gate = hitl.Evaluate(hitl.StageParse, s.Parsed, nil)
	s.Status = StatusParsed
	if s.Gate.Intervene {
		s.Status = StatusNeedsClarify
	}
	p.provenance(s, hitl.StageParse)

	p.logger.Info("parsed",
		zap.String("session", s.ID),
		zap.String("stage", string(hitl.StageParse)),
		zap.String("task", string(s.Parsed.Task)),
		zap.String("topic", string(s.Parsed.Topic)),
		zap.String("route", string(s.Route.Route)),
		zap.Float64("confidence", s.Route.Confidence),
		zap.Int("context", len(s.Context)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// #endregion parse

// #region solve
// Solve continues a parsed session through solve, verify and explain, and
// records the result in memory.
func (p *Pipeline) Solve(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	sol := p.solver.Solve(s.Parsed, s.Context)
	ver := p.verifier.Verify(s.Parsed, sol)
	s.Solution = &sol
	s.Verification = &ver
	s.Explanation = explainer.Explain(s.Parsed, sol)

	s.Gate = hitl.Evaluate(hitl.StageVerify, s.Parsed, &ver)
	s.Status = StatusSolved
	if s.Gate.Intervene {
		s.Status = StatusNeedsReview
	}
	p.provenance(s, hitl.StageVerify)
	p.remember(s)

	p.logger.Info("solved",
		zap.String("session", s.ID),
		zap.String("stage", string(hitl.StageVerify)),
		zap.String("task", string(sol.Task)),
		zap.String("answer", sol.Answer),
		zap.Float64("confidence", sol.Confidence),
		zap.Bool("verified", ver.Verified),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Run parses raw and solves it unless the parse gate asks for
// clarification.
func (p *Pipeline) Run(ctx context.Context, raw string) (*Session, error) {
	s, err := p.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	if s.NeedsHuman() {
		return s, nil
	}
	if err := p.Solve(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// #endregion solve

// #region approve
// Approve records the human decision on a session. An empty correction
// approves the current solution. A correction is stored as feedback and
// replaces the problem text, which is parsed and solved again.
func (p *Pipeline) Approve(ctx context.Context, s *Session, correction string) error {
	feedback := memory.FeedbackApproved
	if correction != "" {
		feedback = memory.Corrected(correction)
	}
	s.Feedback = feedback
	if p.memory != nil && s.RecordID != "" {
		if err := p.memory.SetFeedback(s.RecordID, feedback); err != nil {
			p.logger.Warn("store feedback", zap.String("session", s.ID), zap.Error(err))
		}
	}
	p.logDecision(logging.ProvenanceEntry{
		SessionID: s.ID,
		Stage:     "approve",
		Decision:  decisionFor(correction),
		Reason:    feedback,
	})

	if correction == "" {
		s.Status = StatusApproved
		return nil
	}
	s.RawText = correction
	if err := p.parseInto(ctx, s, correction); err != nil {
		return err
	}
	if s.NeedsHuman() {
		return nil
	}
	return p.Solve(ctx, s)
}

func decisionFor(correction string) string {
	if correction == "" {
		return "approved"
	}
	return "corrected"
}

// #endregion approve

// #region persistence
// similar counts stored records with the same topic. Failures are logged
// and count as zero.
func (p *Pipeline) similar(topic parser.Topic) int {
	if p.memory == nil {
		return 0
	}
	n, err := p.memory.CountByTopic(string(topic))
	if err != nil {
		p.logger.Warn("count similar", zap.Error(err))
		return 0
	}
	return n
}

func (p *Pipeline) remember(s *Session) {
	if p.memory == nil {
		return
	}
	rec, err := p.memory.Append(memory.Record{
		Problem:    s.Parsed.ProblemText,
		Topic:      string(s.Parsed.Topic),
		Answer:     s.Solution.Answer,
		Confidence: s.Verification.Confidence,
	})
	if err != nil {
		p.logger.Warn("append memory", zap.String("session", s.ID), zap.Error(err))
		return
	}
	s.RecordID = rec.ID
	p.logDecision(logging.ProvenanceEntry{
		SessionID:   s.ID,
		Stage:       "memory",
		Decision:    "append",
		PayloadJSON: logging.Payload(logging.DecisionRecord{Problem: rec.Problem, Topic: rec.Topic, Answer: rec.Answer, RecordID: rec.ID}),
	})
}

func (p *Pipeline) provenance(s *Session, stage hitl.Stage) {
	decision := "continue"
	if s.Gate.Intervene {
		decision = "intervene"
	}
	rec := logging.DecisionRecord{
		Problem: s.ProblemText,
		Task:    string(s.Parsed.Task),
		Topic:   string(s.Parsed.Topic),
		Route:   string(s.Route.Route),
		Issues:  s.Gate.Issues,
	}
	if s.Solution != nil {
		rec.Answer = s.Solution.Answer
		rec.Confidence = s.Solution.Confidence
	}
	p.logDecision(logging.ProvenanceEntry{
		SessionID:   s.ID,
		Stage:       string(stage),
		Decision:    decision,
		Reason:      s.Gate.Reason,
		PayloadJSON: logging.Payload(rec),
	})
}

func (p *Pipeline) logDecision(entry logging.ProvenanceEntry) {
	if p.memory == nil {
		return
	}
	if err := logging.LogDecision(p.memory.DB(), entry); err != nil {
		p.logger.Warn("provenance", zap.String("stage", entry.Stage), zap.Error(err))
	}
}

// #endregion persistence
