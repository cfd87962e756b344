package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/math-mentor/internal/logging"
	"github.com/danielpatrickdp/math-mentor/internal/memory"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to math_mentor.db")
	last := flag.Int("last", 20, "show N most recent records")
	record := flag.String("record", "", "show single record detail")
	session := flag.String("session", "", "show the provenance trail of one session")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/math_mentor.db [--last N] [--record id] [--session id] [--json]")
		os.Exit(2)
	}

	store, err := memory.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *record != "":
		err = runDetailMode(store, *record, *jsonOut)
	case *session != "":
		err = runSessionMode(store, *session, *last, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ID         string  `json:"id"`
	Topic      string  `json:"topic"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Feedback   string  `json:"feedback,omitempty"`
	Problem    string  `json:"problem"`
	CreatedAt  string  `json:"created_at"`
}

func runListMode(store *memory.Store, last int, jsonOut bool) error {
	records, err := store.List(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no records found")
		return nil
	}

	// Store returns newest first, reverse for chronological
	rows := make([]listRow, len(records))
	for i, rec := range records {
		rows[len(records)-1-i] = toRow(rec)
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-12s  %-20s  %6s  %-10s  %-20s  %s\n",
		"Record", "Topic", "Answer", "Conf", "Feedback", "Time", "Problem")
	fmt.Printf("%-12s+-%-12s+-%-20s+-%6s+-%-10s+-%-20s+-%s\n",
		"------------", "------------", "--------------------", "------", "----------", "--------------------", "----------")
	for _, r := range rows {
		feedback := "—"
		if r.Feedback != "" {
			feedback = r.Feedback
		}
		fmt.Printf("%-12s  %-12s  %-20s  %6.2f  %-10s  %-20s  %s\n",
			shortID(r.ID), r.Topic, truncate(r.Answer, 20), r.Confidence, truncate(feedback, 10), r.CreatedAt, r.Problem)
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Topic]++
	}
	fmt.Printf("\nRecords by topic (shown):\n")
	for _, topic := range []parser.Topic{parser.TopicAlgebra, parser.TopicCalculus, parser.TopicProbability, parser.TopicUnknown} {
		if n := counts[string(topic)]; n > 0 {
			fmt.Printf("  %-12s %d\n", topic, n)
		}
	}
	return nil
}

func toRow(rec memory.Record) listRow {
	r := listRow{
		ID:         rec.ID,
		Topic:      rec.Topic,
		Answer:     rec.Answer,
		Confidence: rec.Confidence,
		Problem:    rec.Problem,
		CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if rec.Feedback != nil {
		r.Feedback = *rec.Feedback
	}
	return r
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *memory.Store, id string, jsonOut bool) error {
	rec, err := store.Get(id)
	if errors.Is(err, memory.ErrNotFound) {
		return fmt.Errorf("record %s not found", id)
	}
	if err != nil {
		return err
	}
	row := toRow(rec)
	sameTopic, err := store.CountByTopic(rec.Topic)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(struct {
			listRow
			SameTopic int `json:"same_topic"`
		}{row, sameTopic})
	}

	fmt.Printf("Record:     %s\n", row.ID)
	fmt.Printf("Created:    %s\n", row.CreatedAt)
	fmt.Printf("Problem:    %s\n", row.Problem)
	fmt.Printf("Topic:      %s (%d stored)\n", row.Topic, sameTopic)
	fmt.Printf("Answer:     %s\n", row.Answer)
	fmt.Printf("Confidence: %.2f\n", row.Confidence)
	fmt.Printf("Feedback:   %s\n", row.Feedback)
	return nil
}

// #endregion detail-mode

// #region session-mode

type decisionRow struct {
	Stage     string                  `json:"stage"`
	Decision  string                  `json:"decision"`
	Reason    string                  `json:"reason,omitempty"`
	CreatedAt string                  `json:"created_at"`
	Record    *logging.DecisionRecord `json:"record,omitempty"`
}

func runSessionMode(store *memory.Store, sessionID string, last int, jsonOut bool) error {
	entries, err := logging.ListDecisions(store.DB(), sessionID, last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no decisions found for session %s\n", sessionID)
		return nil
	}

	rows := make([]decisionRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = decisionRow{
			Stage:     e.Stage,
			Decision:  e.Decision,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
			Record:    parseDecisionRecord(e.PayloadJSON),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-8s  %-12s  %-20s  %-20s  %s\n", "Stage", "Decision", "Answer", "Time", "Reason")
	fmt.Printf("%-8s+-%-12s+-%-20s+-%-20s+-%s\n",
		"--------", "------------", "--------------------", "--------------------", "----------")
	for _, r := range rows {
		answer := "—"
		if r.Record != nil && r.Record.Answer != "" {
			answer = r.Record.Answer
		}
		fmt.Printf("%-8s  %-12s  %-20s  %-20s  %s\n", r.Stage, r.Decision, truncate(answer, 20), r.CreatedAt, r.Reason)
	}
	return nil
}

// #endregion session-mode

// #region output

func parseDecisionRecord(payload string) *logging.DecisionRecord {
	if payload == "" {
		return nil
	}
	var rec logging.DecisionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err == nil && rec.Problem != "" {
		return &rec
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// #endregion output
