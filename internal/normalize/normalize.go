// Package normalize rewrites raw problem text into the ASCII expression
// notation the parser and the CAS understand.
package normalize

import (
	"regexp"
	"strings"
)

// #region replacements
// replacer handles symbol variants, including the mojibake left behind when
// UTF-8 input was decoded as Latin-1 upstream.
var replacer = strings.NewReplacer(
	"Ã—", "*",
	"âˆ’", "-",
	"−", "-",
	"×", "*",
	"÷", "/",
	"√", "sqrt",
	"^", "**",
)

var superscripts = map[rune]byte{
	'⁰': '0',
	'¹': '1',
	'²': '2',
	'³': '3',
	'⁴': '4',
	'⁵': '5',
	'⁶': '6',
	'⁷': '7',
	'⁸': '8',
	'⁹': '9',
}

var (
	superscriptRun = regexp.MustCompile(`([A-Za-z0-9)])([\x{2070}\x{00b9}\x{00b2}\x{00b3}\x{2074}-\x{2079}]+)`)
	whitespaceRun  = regexp.MustCompile(`[\s\p{Z}]+`)
)

// #endregion replacements

// #region normalize
// Normalize is total and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.TrimSpace(text)
	text = replacer.Replace(text)
	text = superscriptRun.ReplaceAllStringFunc(text, expandSuperscripts)
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func expandSuperscripts(match string) string {
	var b strings.Builder
	wrote := false
	for _, r := range match {
		d, ok := superscripts[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if !wrote {
			b.WriteString("**")
			wrote = true
		}
		b.WriteByte(d)
	}
	return b.String()
}

// #endregion normalize
