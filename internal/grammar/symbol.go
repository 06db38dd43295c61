package grammar

import "strings"

// SymbolKind tells whether a Symbol is a terminal or a variable reference.
type SymbolKind int

const (
	Terminal SymbolKind = iota
	Variable
)

func (k SymbolKind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// Symbol is a single element of a production. A terminal carries the
// character it matches in Char; a variable carries the name of the variable it
// refers to in Name. Symbols are comparable and can be used as map keys.
type Symbol struct {
	Kind SymbolKind
	Char rune
	Name string
}

// Term returns the terminal symbol that matches r.
func Term(r rune) Symbol {
	return Symbol{Kind: Terminal, Char: r}
}

// Var returns a reference to the variable called name.
func Var(name string) Symbol {
	return Symbol{Kind: Variable, Name: name}
}

// IsTerminal returns whether the symbol is a terminal.
func (s Symbol) IsTerminal() bool {
	return s.Kind == Terminal
}

// IsVariable returns whether the symbol is a variable reference.
func (s Symbol) IsVariable() bool {
	return s.Kind == Variable
}

// Compare orders symbols. Terminals come before variables, terminals are
// ordered by character and variables by name. It returns -1, 0 or 1.
func (s Symbol) Compare(o Symbol) int {
	if s.Kind != o.Kind {
		if s.Kind == Terminal {
			return -1
		}
		return 1
	}

	if s.Kind == Terminal {
		switch {
		case s.Char < o.Char:
			return -1
		case s.Char > o.Char:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(s.Name, o.Name)
}

// String renders the symbol the way it appears in a rendered grammar: the
// character itself for a terminal and the bare name for a variable.
func (s Symbol) String() string {
	if s.Kind == Terminal {
		return string(s.Char)
	}
	return s.Name
}
