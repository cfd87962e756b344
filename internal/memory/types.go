package memory

import "time"

// #region record
// Record is one solved problem kept for later similarity lookups.
// Feedback is nil until a human approves or corrects the solve.
type Record struct {
	ID         string    `json:"id"`
	Problem    string    `json:"problem"`
	Topic      string    `json:"topic"`
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	Feedback   *string   `json:"feedback"`
	CreatedAt  time.Time `json:"created_at"`
}

// #endregion record

// #region feedback
// Feedback values written by the approval step.
const FeedbackApproved = "approved"

// Corrected formats the feedback for a human correction.
func Corrected(text string) string { return "corrected: " + text }

// #endregion feedback
