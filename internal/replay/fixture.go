package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	Config      FixtureConfig     `json:"config"`
	Documents   []FixtureDocument `json:"documents,omitempty"`
	Problems    []FixtureProblem  `json:"problems"`
}

// FixtureConfig holds the thresholds a replay runs with. Zero values use
// the production defaults.
type FixtureConfig struct {
	MinConfidence float64 `json:"min_confidence,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
}

// FixtureDocument is one reference document for the replay corpus.
type FixtureDocument struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// FixtureProblem is one problem with its expected outcome. Empty or nil
// expectations are not checked.
type FixtureProblem struct {
	ID              string   `json:"id"`
	Problem         string   `json:"problem"`
	ExpectTask      string   `json:"expect_task,omitempty"`
	ExpectAnswer    string   `json:"expect_answer,omitempty"`
	ExpectSolutions []string `json:"expect_solutions,omitempty"`
	ExpectVerified  *bool    `json:"expect_verified,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f to path as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToDocuments converts fixture documents to the retrieval corpus.
func (f *Fixture) ToDocuments() []retrieval.Document {
	docs := make([]retrieval.Document, len(f.Documents))
	for i, d := range f.Documents {
		docs[i] = retrieval.Document{Name: d.Name, Text: d.Text}
	}
	return docs
}

// #endregion fixture-loader

// #region fixture-export

// FromRecords builds a fixture that expects each stored answer again.
// Records marked with a correction are skipped since their answer was
// rejected by a human.
func FromRecords(description string, records []memory.Record) *Fixture {
	f := &Fixture{Description: description, Problems: []FixtureProblem{}}
	for _, rec := range records {
		if rec.Feedback != nil && *rec.Feedback != memory.FeedbackApproved {
			continue
		}
		f.Problems = append(f.Problems, FixtureProblem{
			ID:           rec.ID,
			Problem:      rec.Problem,
			ExpectAnswer: rec.Answer,
		})
	}
	return f
}

// #endregion fixture-export
