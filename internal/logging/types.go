package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	ID          int64
	SessionID   string
	Stage       string // "parse" | "verify" | "memory" | "approve"
	Decision    string // "continue" | "intervene" | "append" | "approved" | "corrected"
	Reason      string
	PayloadJSON string
	CreatedAt   time.Time
}

// #endregion provenance-entry

// #region decision-record
// DecisionRecord captures what the gate saw when it decided. Serialized as
// JSON into provenance_log.payload_json.
type DecisionRecord struct {
	Problem    string   `json:"problem"`
	Task       string   `json:"task"`
	Topic      string   `json:"topic"`
	Route      string   `json:"route,omitempty"`
	Answer     string   `json:"answer,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Issues     []string `json:"issues,omitempty"`
	RecordID   string   `json:"record_id,omitempty"`
}

// #endregion decision-record

// #region log-config
// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level       string `yaml:"level"` // debug | info | warn | error
	Development bool   `yaml:"development"`
}

// #endregion log-config
