package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
)

const turnTimeout = 30 * time.Second

// #region repl
// runInteractive reads one problem per line. A session that stops for a
// human stays pending until the next "approve" line, which may carry a
// corrected problem.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(out, "Math Mentor ready.")
	fmt.Fprintf(out, "  DB: %s | Docs: %s\n", cfg.DBPath, cfg.DocsDir)
	fmt.Fprintln(out, "Type a problem, 'approve [correction]' for a pending review, or 'quit' to exit:")

	scanner := bufio.NewScanner(in)
	var pending *pipeline.Session

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
		if cmd, rest, _ := strings.Cut(line, " "); cmd == "approve" {
			if pending == nil {
				fmt.Fprintln(out, "nothing is waiting for review")
				cancel()
				continue
			}
			if err := mentor.Approve(turnCtx, pending, strings.TrimSpace(rest)); err != nil {
				logger.Error("approve failed", zap.String("session", pending.ID), zap.Error(err))
				cancel()
				continue
			}
			printSession(out, pending)
			if pending.Status == pipeline.StatusApproved || !pending.NeedsHuman() {
				pending = nil
			}
			cancel()
			continue
		}

		s, err := mentor.Run(turnCtx, line)
		cancel()
		if err != nil {
			logger.Error("run failed", zap.Error(err))
			continue
		}
		printSession(out, s)
		pending = nil
		if s.NeedsHuman() {
			pending = s
		}
	}
	return scanner.Err()
}

// #endregion repl

// #region render
func printSession(w io.Writer, s *pipeline.Session) {
	fmt.Fprintf(w, "\n[%s] %s | task=%s topic=%s route=%s\n",
		shortID(s.ID), s.Status, s.Parsed.Task, s.Parsed.Topic, s.Route.Route)
	if s.Solution != nil {
		fmt.Fprintln(w, s.Explanation)
		fmt.Fprintf(w, "Answer: %s (confidence %.2f)\n", s.Solution.Answer, s.Solution.Confidence)
	}
	if s.Verification != nil {
		fmt.Fprintf(w, "Verified: %v\n", s.Verification.Verified)
		for _, issue := range s.Verification.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
	if s.SimilarCount > 0 {
		fmt.Fprintf(w, "Similar problems solved before: %d\n", s.SimilarCount)
	}
	if s.NeedsHuman() {
		fmt.Fprintf(w, "Needs review: %s\n", s.Gate.Reason)
	}
	fmt.Fprintln(w)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion render
