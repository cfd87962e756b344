package parser

// #region task
// Task is the kind of computation a problem asks for.
type Task string

const (
	TaskDerivative Task = "derivative"
	TaskIntegral   Task = "integral"
	TaskLimit      Task = "limit"
	TaskEquation   Task = "equation"
	TaskExpression Task = "expression"
)

// #endregion task

// #region topic
// Topic is the subject area a problem belongs to.
type Topic string

const (
	TopicAlgebra     Topic = "algebra"
	TopicCalculus    Topic = "calculus"
	TopicProbability Topic = "probability"
	TopicUnknown     Topic = "unknown"
)

// #endregion topic

// #region parsed-problem
// ParsedProblem is the classified form of a problem statement.
type ParsedProblem struct {
	ProblemText        string   `json:"problem_text"`
	Topic              Topic    `json:"topic"`
	Task               Task     `json:"task"`
	Variables          []string `json:"variables"`
	Constraints        []string `json:"constraints"`
	NeedsClarification bool     `json:"needs_clarification"`
}

// HasVariable reports whether name was extracted from the text.
func (p ParsedProblem) HasVariable(name string) bool {
	for _, v := range p.Variables {
		if v == name {
			return true
		}
	}
	return false
}

// #endregion parsed-problem
