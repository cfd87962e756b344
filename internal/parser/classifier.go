// Package parser classifies free-text math problems into a task and topic
// and extracts their candidate variables. Classification is keyword
// matching; no model is consulted.
package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// #region keywords

var derivativeKeywords = []string{"derivative", "differentiate", "d/dx", "dy/dx"}

// leibnizPattern matches operator notation such as d/dt or df/dx.
var leibnizPattern = regexp.MustCompile(`(?:^|[^a-z])d[a-z]?/d[a-z](?:[^a-z]|$)`)

var integralKeywords = []string{"integral", "integrate"}

var limitKeywords = []string{"limit", "lim"}

var probabilityKeywords = []string{"probability", "chance"}

// #endregion

// #region parse

var (
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`\d`)
)

// minProblemLen is the shortest trimmed input that is not ambiguous.
const minProblemLen = 3

// Parse classifies text. It never fails; doubtful input is flagged through
// NeedsClarification.
func Parse(text string) ParsedProblem {
	lower := strings.ToLower(text)
	task := classifyTask(lower, text)
	vars := ExtractVariables(text)
	return ParsedProblem{
		ProblemText:        text,
		Topic:              classifyTopic(task, lower),
		Task:               task,
		Variables:          vars,
		Constraints:        []string{},
		NeedsClarification: utf8.RuneCountInString(strings.TrimSpace(text)) < minProblemLen || (len(vars) == 0 && !digitPattern.MatchString(text)),
	}
}

// ExtractVariables returns the distinct ASCII letters of text in byte order.
// Letters inside words and function names count; the solver tolerates them.
func ExtractVariables(text string) []string {
	seen := make(map[string]bool)
	vars := []string{}
	for _, l := range letterPattern.FindAllString(text, -1) {
		if !seen[l] {
			seen[l] = true
			vars = append(vars, l)
		}
	}
	sort.Strings(vars)
	return vars
}

// #endregion

// #region classify-task

func classifyTask(lower, original string) Task {
	switch {
	case containsAny(lower, derivativeKeywords), leibnizPattern.MatchString(lower):
		return TaskDerivative
	case containsAny(lower, integralKeywords):
		return TaskIntegral
	case containsAny(lower, limitKeywords):
		return TaskLimit
	case strings.Contains(original, "="):
		return TaskEquation
	}
	return TaskExpression
}

// #endregion

// #region classify-topic

func classifyTopic(task Task, lower string) Topic {
	switch task {
	case TaskDerivative, TaskIntegral, TaskLimit:
		return TopicCalculus
	}
	if containsAny(lower, probabilityKeywords) {
		return TopicProbability
	}
	switch task {
	case TaskEquation, TaskExpression:
		return TopicAlgebra
	}
	return TopicUnknown
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// #endregion

// #region instruction

var instructionPattern = regexp.MustCompile(`(?i)^\s*(?:solve|simplify|evaluate|compute|calculate|find)\b(?:\s+for\s+([a-zA-Z])\b)?\s*[:,]?\s*`)

// StripInstruction removes a leading instruction word such as "Solve" or
// "Simplify:" and returns the remaining text with the variable named by a
// "for <v>" clause, if any.
func StripInstruction(text string) (string, string) {
	m := instructionPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text, ""
	}
	rest := text[m[1]:]
	if strings.TrimSpace(rest) == "" {
		return text, ""
	}
	v := ""
	if m[2] >= 0 {
		v = text[m[2]:m[3]]
	}
	return rest, v
}

// #endregion
