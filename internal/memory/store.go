// Package memory persists solved-problem records in SQLite.
package memory

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("memory record not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS memory_records (
	id          TEXT PRIMARY KEY,
	problem     TEXT NOT NULL,
	topic       TEXT NOT NULL,
	answer      TEXT NOT NULL,
	confidence  REAL NOT NULL,
	feedback    TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memory_records_topic ON memory_records(topic);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	stage         TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	payload_json  TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store manages memory records in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// Open opens a SQLite database at dbPath and runs migrations. ":memory:"
// gives a private in-memory store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore runs migrations on an already open database.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the provenance log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region append
// Append stores rec under a fresh ID and returns the stored record.
func (s *Store) Append(rec Record) (Record, error) {
	rec.ID = uuid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO memory_records (id, problem, topic, answer, confidence, feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Problem, rec.Topic, rec.Answer, rec.Confidence, rec.Feedback,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}

// SetFeedback records human feedback on a stored record.
func (s *Store) SetFeedback(id, feedback string) error {
	res, err := s.db.Exec(`UPDATE memory_records SET feedback = ? WHERE id = ?`, feedback, id)
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set feedback %s: %w", id, ErrNotFound)
	}
	return nil
}

// #endregion append

// #region queries
const selectColumns = `SELECT id, problem, topic, answer, confidence, feedback, created_at FROM memory_records`

// Get reads one record by ID.
func (s *Store) Get(id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// LoadAll returns every record, oldest first.
func (s *Store) LoadAll() ([]Record, error) {
	return s.query(selectColumns + ` ORDER BY created_at ASC, rowid ASC`)
}

// List returns up to limit records, newest first.
func (s *Store) List(limit int) ([]Record, error) {
	return s.query(selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
}

// CountByTopic counts the records whose topic matches exactly.
func (s *Store) CountByTopic(topic string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM memory_records WHERE topic = ?`, topic).Scan(&n); err != nil {
		return 0, fmt.Errorf("count topic %s: %w", topic, err)
	}
	return n, nil
}

func (s *Store) query(q string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var feedback sql.NullString
	var createdStr string
	if err := row.Scan(&rec.ID, &rec.Problem, &rec.Topic, &rec.Answer, &rec.Confidence, &feedback, &createdStr); err != nil {
		return Record{}, err
	}
	if feedback.Valid {
		fb := feedback.String
		rec.Feedback = &fb
	}
	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = created
	return rec, nil
}

// #endregion queries
