// Package explainer renders a solution's narration for display.
package explainer

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/math-mentor/internal/parser"
	"github.com/danielpatrickdp/math-mentor/internal/solver"
)

// NoExplanation is shown when a solution carries neither steps nor an
// explanation.
const NoExplanation = "No explanation available."

// Explain numbers the solution's steps from 1. Without steps it falls back
// to the solution's explanation.
func Explain(_ parser.ParsedProblem, sol solver.Solution) string {
	if len(sol.Steps) > 0 {
		lines := make([]string, len(sol.Steps))
		for i, s := range sol.Steps {
			lines[i] = fmt.Sprintf("Step %d: %s", i+1, s)
		}
		return strings.Join(lines, "\n")
	}
	if sol.Explanation != "" {
		return sol.Explanation
	}
	return NoExplanation
}
