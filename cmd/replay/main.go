package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/logging"
	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to math_mentor.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	verbose := flag.Bool("v", false, "log pipeline stages to stderr")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/math_mentor.db")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := logging.NewLogger(logging.LogConfig{Level: "debug", Development: true})
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(2)
		}
		logger = l
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, logger)
	} else {
		exitCode = runDBMode(*dbPath, logger)
	}
	logger.Sync()
	os.Exit(exitCode)
}

// #endregion main

// #region modes

// runDBMode re-solves every stored problem that was not corrected and
// expects the stored answer again.
func runDBMode(dbPath string, logger *zap.Logger) int {
	store, err := memory.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	records, err := store.LoadAll()
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load records: %v\n", err)
		return 2
	}

	f := replay.FromRecords("replay of "+dbPath, records)
	if len(f.Problems) == 0 {
		fmt.Fprintln(os.Stderr, "no replayable records found")
		return 2
	}
	return replayFixture(f, logger)
}

func runFixtureMode(path string, logger *zap.Logger) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	return replayFixture(f, logger)
}

func replayFixture(f *replay.Fixture, logger *zap.Logger) int {
	results, sum, err := replay.Run(context.Background(), f, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printComparison(results, sum)
}

// #endregion modes

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.Result, sum replay.Summary) int {
	fmt.Printf("%-12s| %-12s| %-24s| %-8s| %s\n", "Problem", "Task", "Answer", "Verified", "Match")
	fmt.Printf("%-12s+%-13s+%-25s+%-9s+%s\n",
		"------------", "-------------", "-------------------------", "---------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Match() {
			match = "DIFF " + strings.Join(r.Mismatches, "; ")
		}
		fmt.Printf("%-12s| %-12s| %-24s| %-8v| %s\n", shortID(r.ID), r.Task, r.Answer, r.Verified, match)
	}

	fmt.Printf("\nSummary: %d total, %d match, %d diverge, %d verified\n",
		sum.Total, sum.Matched, sum.Mismatched, sum.Verified)

	if sum.Mismatched > 0 {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion output
