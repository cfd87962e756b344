package solver

import (
	"regexp"
	"strings"

	"github.com/danielpatrickdp/math-mentor/internal/cas"
	"github.com/danielpatrickdp/math-mentor/internal/parser"
)

// #region patterns
var (
	squareRootPattern = regexp.MustCompile(`(?i)square root of\s+([0-9]+(\.[0-9]+)?)`)
	derivativePattern = regexp.MustCompile(`(?i)(?:derivative|differentiate)\s+(?:of\s+)?(.+)`)
	integralPattern   = regexp.MustCompile(`(?i)(?:integral|integrate)\s+(?:of\s+)?(.+)`)
	limitPattern      = regexp.MustCompile(`(?i)limit\s+of\s+(.+?)\s+as\s+([a-zA-Z])\s*(?:->|→)\s*(.+)`)
	operatorPrefix    = regexp.MustCompile(`(?i)^d[a-z]?/d([a-z])\s*(?:of\s+)?`)
	respectSuffix     = regexp.MustCompile(`(?i)\s+(?:with\s+respect\s+to|wrt)\s+([a-zA-Z])\s*[.?]?\s*$`)
	differentialEnd   = regexp.MustCompile(`\s+d([a-zA-Z])\s*[.?]?\s*$`)
)

// #endregion patterns

// #region prepare
// PrepareText trims text and spells "square root of N" as sqrt(N).
func PrepareText(text string) string {
	text = strings.TrimSpace(text)
	return squareRootPattern.ReplaceAllString(text, "sqrt($1)")
}

// SymbolTable declares every letter of text as a variable.
func SymbolTable(text string) cas.SymbolTable {
	return cas.NewSymbolTable(parser.ExtractVariables(text)...)
}

// #endregion prepare

// #region calculus-extract
// calculusOperand isolates the expression of a derivative or integral
// phrase. The variable named by "d/dv" or "dy/dv" (optionally followed by
// "of"), "with respect to v" or a trailing "dv" is returned as the preferred
// variable.
func calculusOperand(text string, pattern *regexp.Regexp) (string, string) {
	expr := text
	if m := pattern.FindStringSubmatch(text); m != nil {
		expr = strings.TrimSpace(m[1])
	}
	var preferred string
	if m := operatorPrefix.FindStringSubmatch(expr); m != nil {
		preferred = m[1]
		expr = expr[len(m[0]):]
	}
	if m := respectSuffix.FindStringSubmatchIndex(expr); m != nil {
		preferred = expr[m[2]:m[3]]
		expr = expr[:m[0]]
	} else if m := differentialEnd.FindStringSubmatchIndex(expr); m != nil {
		preferred = expr[m[2]:m[3]]
		expr = expr[:m[0]]
	}
	return strings.TrimSpace(expr), preferred
}

// chooseVariable picks the variable of differentiation or integration:
// the preferred one, else x when the expression uses it, else the first
// free symbol, else x.
func chooseVariable(e cas.Expr, preferred string) string {
	if preferred != "" {
		return preferred
	}
	free := cas.FreeSymbols(e)
	for _, v := range free {
		if v == "x" {
			return v
		}
	}
	if len(free) > 0 {
		return free[0]
	}
	return "x"
}

// #endregion calculus-extract

// #region limit-extract
type limitParts struct {
	expr, variable, point string
}

func extractLimit(text string) (limitParts, bool) {
	m := limitPattern.FindStringSubmatch(text)
	if m == nil {
		return limitParts{}, false
	}
	point := strings.TrimRight(strings.TrimSpace(m[3]), ".?")
	return limitParts{expr: strings.TrimSpace(m[1]), variable: m[2], point: strings.TrimSpace(point)}, true
}

// infinityWords maps spelled-out infinities to their signs.
var infinityWords = map[string]int{
	"infinity": 1, "+infinity": 1, "inf": 1, "+inf": 1, "oo": 1, "+oo": 1, "∞": 1, "+∞": 1,
	"-infinity": -1, "-inf": -1, "-oo": -1, "-∞": -1,
}

// pointInfinity reports a signed infinity spelled out in point.
func pointInfinity(point string) (cas.Expr, bool) {
	key := strings.ToLower(strings.ReplaceAll(point, " ", ""))
	if s, ok := infinityWords[key]; ok {
		return cas.Infinity{Sign: s}, true
	}
	return nil, false
}

// #endregion limit-extract

// #region equation-extract
// EquationSides splits an equation at its single "=" after dropping a
// leading instruction word.
func EquationSides(text string) (lhs, rhs string, err error) {
	text, _ = parser.StripInstruction(text)
	switch strings.Count(text, "=") {
	case 0:
		return "", "", &PatternMismatchError{Task: string(parser.TaskEquation), Msg: "Equation missing '=' sign."}
	case 1:
	default:
		return "", "", &PatternMismatchError{Task: string(parser.TaskEquation), Msg: "Equation must contain exactly one '=' sign."}
	}
	i := strings.Index(text, "=")
	return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), nil
}

// #endregion equation-extract
