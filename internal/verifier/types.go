package verifier

import "fmt"

// #region verifier-config
// VerifierConfig holds thresholds for the post-solve checks.
type VerifierConfig struct {
	MinConfidence float64 // flag solutions below this confidence
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() VerifierConfig {
	return VerifierConfig{MinConfidence: 0.7}
}

// #endregion verifier-config

// #region check
// Check captures a single verification rule result.
type Check struct {
	Name string `json:"name"`
	Pass bool   `json:"pass"`
}

// #endregion check

// #region verification
// Verification is the output of one verifier pass. Confidence is the
// solution's confidence, unchanged.
type Verification struct {
	Verified         bool     `json:"verified"`
	Issues           []string `json:"issues"`
	NeedsHumanReview bool     `json:"needs_human_review"`
	Confidence       float64  `json:"confidence"`
	Checks           []Check  `json:"checks,omitempty"`
}

// #endregion verification

// #region errors
// VerificationError reports a re-parse or substitution failure while
// re-checking an equation. It is surfaced as an issue, never returned.
type VerificationError struct {
	Stage string
	Err   error
}

func (e *VerificationError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *VerificationError) Unwrap() error { return e.Err }

// #endregion errors
