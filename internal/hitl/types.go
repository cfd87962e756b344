package hitl

// #region stage
// Stage names the pipeline checkpoint at which the gate was consulted.
type Stage string

const (
	StageParse  Stage = "parse"
	StageVerify Stage = "verify"
)

// #endregion stage

// #region reasons
// Reasons reported when the gate stops for a human.
const (
	ReasonAmbiguous = "Parser detected ambiguity"
	ReasonFlagged   = "Verifier flagged a potential issue"
)

// #endregion reasons

// #region decision
// Decision is the structured output of a gate evaluation.
type Decision struct {
	Stage     Stage    `json:"stage"`
	Intervene bool     `json:"intervene"`
	Reason    string   `json:"reason,omitempty"`
	Issues    []string `json:"issues,omitempty"` // verifier issues behind a flag
}

// #endregion decision
