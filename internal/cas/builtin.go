package cas

// #region builtin
// Builtin tags the named functions and constants the parser accepts. Any
// identifier that is neither a Builtin nor a declared variable is rejected
// before an expression tree is built.
type Builtin int

const (
	BuiltinNone Builtin = iota
	FnSqrt
	FnSin
	FnCos
	FnTan
	FnAtan
	FnLog
	FnExp
	FnAbs
	FnSign
	ConstPi
	ConstE
)

var builtinNames = map[string]Builtin{
	"sqrt":   FnSqrt,
	"sin":    FnSin,
	"cos":    FnCos,
	"tan":    FnTan,
	"atan":   FnAtan,
	"arctan": FnAtan,
	"log":    FnLog,
	"ln":     FnLog,
	"exp":    FnExp,
	"abs":    FnAbs,
	"Abs":    FnAbs,
	"pi":     ConstPi,
	"e":      ConstE,
	"E":      ConstE,
}

// prefixOrder is the longest-first lookup order used when splitting run-on
// identifiers such as "sqrtx" or "xsin".
var prefixOrder = []string{"sqrt", "atan", "sin", "cos", "tan", "log", "exp", "abs", "Abs", "ln", "pi"}

// LookupBuiltin resolves a whitelisted name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

// IsConstant reports whether b names a constant rather than a function.
func (b Builtin) IsConstant() bool {
	return b == ConstPi || b == ConstE
}

func (b Builtin) String() string {
	switch b {
	case FnSqrt:
		return "sqrt"
	case FnSin:
		return "sin"
	case FnCos:
		return "cos"
	case FnTan:
		return "tan"
	case FnAtan:
		return "atan"
	case FnLog:
		return "log"
	case FnExp:
		return "exp"
	case FnAbs:
		return "Abs"
	case FnSign:
		return "sign"
	case ConstPi:
		return "pi"
	case ConstE:
		return "E"
	}
	return "unknown"
}

// #endregion builtin
