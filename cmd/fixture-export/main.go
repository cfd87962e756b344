package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/replay"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to math_mentor.db")
	last := flag.Int("last", 20, "number of most recent records to export")
	docsDir := flag.String("docs", "", "embed the reference documents from this directory")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--docs dir]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *docsDir, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath string, last int, docsDir, outPath string) error {
	store, err := memory.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	// List is newest first; the fixture replays oldest first.
	records, err := store.List(last)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	slices.Reverse(records)

	f := replay.FromRecords(fmt.Sprintf("exported from %s (last %d records)", dbPath, last), records)
	if len(f.Problems) == 0 {
		return fmt.Errorf("no exportable records in last %d entries", last)
	}

	if docsDir != "" {
		docs, err := retrieval.LoadDocuments(docsDir)
		if err != nil {
			return err
		}
		for _, d := range docs {
			f.Documents = append(f.Documents, replay.FixtureDocument{Name: d.Name, Text: d.Text})
		}
	}

	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}
	fmt.Printf("wrote %d problems, %d documents to %s\n", len(f.Problems), len(f.Documents), outPath)
	return nil
}

// #endregion export
