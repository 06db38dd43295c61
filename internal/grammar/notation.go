package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
	"golang.org/x/text/unicode/norm"

	"github.com/dekarrin/cfgnorm/internal/cfgerrors"
)

// Operator messages for malformed rule notation.
const (
	msgBadFormat = "The input file isn't formatted according to the requirements; " +
		"double-check it for typos or take a look at the README file"
	msgBracketsInVariable    = "Brackets can't be used in variables"
	msgBarsInVariable        = "Vertical bars can't be used in variables"
	msgBackslashesInVariable = "Backslashes can't be used in variables"
	msgQuotesInVariable      = "Double quotes can't be used in variables"
	msgDanglingBackslash     = "A backslash has to either escape a terminal symbol or be escaped itself"
	msgBadBrackets           = "Invalid bracket structure"
	msgReadFailed            = "Things went wrong while reading from the input file"
)

// ruleSeparator splits the quoted variable from its quoted alternatives.
const ruleSeparator = `" -> "`

// Token types of the alternatives lexer.
const (
	tokBackslash = iota
	tokLParen
	tokRParen
	tokBar
	tokText
)

var (
	altLexer     *lexmachine.Lexer
	altLexerErr  error
	altLexerOnce sync.Once
)

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// alternativesLexer returns the shared lexer for the right-hand side of a rule,
// compiling it on first use.
func alternativesLexer() (*lexmachine.Lexer, error) {
	altLexerOnce.Do(func() {
		lex := lexmachine.NewLexer()
		lex.Add([]byte(`\\`), makeToken(tokBackslash))
		lex.Add([]byte(`\(`), makeToken(tokLParen))
		lex.Add([]byte(`\)`), makeToken(tokRParen))
		lex.Add([]byte(`\|`), makeToken(tokBar))
		lex.Add([]byte(`[^\\()|]+`), makeToken(tokText))

		if err := lex.Compile(); err != nil {
			tracer().Errorf("compiling alternatives lexer: %v", err)
			altLexerErr = err
			return
		}
		altLexer = lex
	})
	return altLexer, altLexerErr
}

// ParseOptions controls how rule notation is read.
type ParseOptions struct {
	// NormalizeUnicode puts the source in Unicode normalization form C before
	// it is read, so that precomposed and decomposed spellings of the same
	// character give the same terminal.
	NormalizeUnicode bool
}

// Parse reads a grammar from rule notation with unicode normalization turned
// on. See ParseWith.
func Parse(r io.Reader) (Grammar, error) {
	return ParseWith(r, ParseOptions{NormalizeUnicode: true})
}

// ParseFile reads a grammar in rule notation from the file at path.
func ParseFile(path string, opts ParseOptions) (Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return Grammar{}, cfgerrors.WrapMalformed(err, fmt.Sprintf("%s: %v", msgReadFailed, err), "")
	}
	defer f.Close()

	return ParseWith(f, opts)
}

// ParseWith reads a grammar from rule notation. Every non-blank line is one
// rule of the form
//
//	"Variable" -> "alt1|alt2|..."
//
// Within an alternative, "(Name)" refers to the variable Name, "\x" is the
// terminal x even when x is one of the special characters, and every other
// character is a terminal for itself. An empty alternative is epsilon. A
// variable declared on several lines gets the union of all of its
// productions. The first variable declared is the start variable.
//
// Any error returned matches cfgerrors.ErrMalformedInput, and no partial
// grammar is returned with it.
func ParseWith(r io.Reader, opts ParseOptions) (Grammar, error) {
	g := New()

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if opts.NormalizeUnicode {
			line = norm.NFC.String(line)
		}

		name, prods, err := parseRule(line)
		if err != nil {
			return Grammar{}, cfgerrors.AtLine(err, lineNo)
		}
		g.AddRule(name, prods...)
	}
	if err := sc.Err(); err != nil {
		return Grammar{}, cfgerrors.WrapMalformed(err, fmt.Sprintf("%s: %v", msgReadFailed, err), "")
	}

	tracer().Debugf("read grammar with %d variables", g.Len())
	return g, nil
}

// MustParse is like Parse but reads from a string and panics on error.
func MustParse(src string) Grammar {
	g, err := Parse(strings.NewReader(src))
	if err != nil {
		panic(err.Error())
	}
	return g
}

func parseRule(line string) (string, []Production, error) {
	if len(line) < 2 || !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
		return "", nil, cfgerrors.Malformed(msgBadFormat, "rule is not enclosed in double quotes")
	}

	parts := strings.Split(line[1:len(line)-1], ruleSeparator)
	if len(parts) != 2 {
		return "", nil, cfgerrors.Malformed(msgBadFormat, fmt.Sprintf("rule has %d quoted parts instead of 2", len(parts)))
	}

	name := parts[0]
	if err := validateVariableName(name); err != nil {
		return "", nil, err
	}

	prods, err := parseAlternatives(parts[1])
	if err != nil {
		return "", nil, err
	}
	return name, prods, nil
}

// validateVariableName checks that name has none of the characters reserved by
// the notation.
func validateVariableName(name string) error {
	for _, ch := range name {
		switch ch {
		case '(', ')':
			return cfgerrors.Malformed(msgBracketsInVariable, "")
		case '|':
			return cfgerrors.Malformed(msgBarsInVariable, "")
		case '\\':
			return cfgerrors.Malformed(msgBackslashesInVariable, "")
		case '"':
			return cfgerrors.Malformed(msgQuotesInVariable, "")
		}
	}
	return nil
}

// parseAlternatives reads the right-hand side of a rule into its productions.
func parseAlternatives(src string) ([]Production, error) {
	lex, err := alternativesLexer()
	if err != nil {
		return nil, fmt.Errorf("alternatives lexer: %w", err)
	}

	toks, err := scanAll(lex, src)
	if err != nil {
		return nil, err
	}

	var prods []Production
	cur := Epsilon()
	escaped := false

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		if escaped {
			escaped = false
			text := []rune(string(tok.Lexeme))
			cur = append(cur, Term(text[0]))
			for _, ch := range text[1:] {
				cur = append(cur, Term(ch))
			}
			continue
		}

		switch tok.Type {
		case tokBackslash:
			escaped = true
		case tokBar:
			prods = append(prods, cur)
			cur = Epsilon()
		case tokRParen:
			return nil, cfgerrors.Malformed(msgBadBrackets, fmt.Sprintf("unopened ')' at column %d", tok.StartColumn))
		case tokLParen:
			if i+2 >= len(toks) || toks[i+1].Type != tokText || toks[i+2].Type != tokRParen {
				return nil, badReference(toks[i+1:])
			}
			name := string(toks[i+1].Lexeme)
			if strings.ContainsRune(name, '"') {
				return nil, cfgerrors.Malformed(msgQuotesInVariable, "")
			}
			cur = append(cur, Var(name))
			i += 2
		case tokText:
			for _, ch := range string(tok.Lexeme) {
				cur = append(cur, Term(ch))
			}
		}
	}

	if escaped {
		return nil, cfgerrors.Malformed(msgDanglingBackslash, "")
	}

	return append(prods, cur), nil
}

// badReference gives the error for a "(" that does not start a well-formed
// variable reference. rest is every token after the "(".
func badReference(rest []*lexmachine.Token) error {
	if len(rest) >= 2 && rest[0].Type == tokText {
		// a reserved character interrupted the name before the closing bracket
		switch rest[1].Type {
		case tokBar:
			return cfgerrors.Malformed(msgBarsInVariable, "")
		case tokBackslash:
			return cfgerrors.Malformed(msgBackslashesInVariable, "")
		case tokLParen:
			return cfgerrors.Malformed(msgBracketsInVariable, "")
		}
	}
	return cfgerrors.Malformed(msgBadBrackets, "variable reference is empty or not closed")
}

func scanAll(lex *lexmachine.Lexer, src string) ([]*lexmachine.Token, error) {
	s, err := lex.Scanner([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("create scanner: %w", err)
	}

	var toks []*lexmachine.Token
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if err != nil {
			// every byte belongs to some token class, so this is unreachable
			// with well-formed UTF-8
			if ui, is := err.(*machines.UnconsumedInput); is {
				return nil, cfgerrors.Malformed(msgBadFormat, fmt.Sprintf("unreadable text at column %d", ui.FailTC))
			}
			return nil, cfgerrors.WrapMalformed(err, msgBadFormat, "")
		}
		toks = append(toks, tok.(*lexmachine.Token))
	}
	return toks, nil
}
