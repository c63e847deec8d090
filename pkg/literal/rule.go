package literal

import "strings"

// SymbolKind classifies the tokens of a grammar rule.
type SymbolKind int

const (
	// SymbolTerm is a grammar symbol.
	SymbolTerm SymbolKind = iota
	// SymbolDerives is the "::=" separator between a rule's sides.
	SymbolDerives
	// SymbolRewrites is the "::==" separator of a rewrite rule.
	SymbolRewrites
	// SymbolAlternative is the "|" between alternatives.
	SymbolAlternative
)

// Symbol is one whitespace-separated token of a rule.
type Symbol struct {
	Text   string
	Kind   SymbolKind
	Markup string // from the first matching node style; empty when none matched
}

// ParseRule splits a rule such as "E ::= E + T" into symbols, attaching the
// markup of the first node style matching each term.
func ParseRule(rule string, styles []NodeStyle) []Symbol {
	fields := strings.Fields(rule)
	out := make([]Symbol, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "::=":
			out = append(out, Symbol{Text: f, Kind: SymbolDerives})
		case "::==":
			out = append(out, Symbol{Text: f, Kind: SymbolRewrites})
		case "|":
			out = append(out, Symbol{Text: f, Kind: SymbolAlternative})
		default:
			s := Symbol{Text: f, Kind: SymbolTerm}
			if st, ok := MatchStyle(styles, f); ok {
				s.Markup = st.Markup
			}
			out = append(out, s)
		}
	}
	return out
}
