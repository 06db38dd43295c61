package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/cfgnorm/internal/cfgerrors"
)

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect func() Grammar
	}{
		{
			name:   "blank source",
			input:  "\n   \n\t\n",
			expect: New,
		},
		{
			name:  "terminals and variables",
			input: `"S" -> "a(A)b"`,
			expect: func() Grammar {
				g := New()
				g.AddRule("S", Production{Term('a'), Var("A"), Term('b')})
				return g
			},
		},
		{
			name:  "empty alternatives are epsilon",
			input: `"S" -> "|a||"`,
			expect: func() Grammar {
				g := New()
				g.AddRule("S", Epsilon(), Production{Term('a')})
				return g
			},
		},
		{
			name:  "escapes",
			input: `"S" -> "\(\)\|\\|\ab"`,
			expect: func() Grammar {
				g := New()
				g.AddRule("S",
					Production{Term('('), Term(')'), Term('|'), Term('\\')},
					Production{Term('a'), Term('b')},
				)
				return g
			},
		},
		{
			name:  "escaped backslash before a bar still splits",
			input: `"S" -> "x\\|y"`,
			expect: func() Grammar {
				g := New()
				g.AddRule("S", Production{Term('x'), Term('\\')}, Production{Term('y')})
				return g
			},
		},
		{
			name:  "surrounding whitespace and repeated declarations",
			input: "  \"S\" -> \"a\"  \n\n\"A\" -> \"b\"\n\"S\" -> \"c|a\"\n",
			expect: func() Grammar {
				g := New()
				g.AddRule("S", Production{Term('a')}, Production{Term('c')})
				g.AddRule("A", Production{Term('b')})
				return g
			},
		},
		{
			name:  "multi-character names and spaces",
			input: `"Long Name" -> "x (Long Name) y"`,
			expect: func() Grammar {
				g := New()
				g.AddRule("Long Name", Production{Term('x'), Term(' '), Var("Long Name"), Term(' '), Term('y')})
				return g
			},
		},
		{
			name:  "unicode is normalized",
			input: "\"S\" -> \"a\u0308\"",
			expect: func() Grammar {
				g := New()
				g.AddRule("S", Production{Term('ä')})
				return g
			},
		},
		{
			name:  "empty variable name",
			input: `"" -> "a\(\)b"`,
			expect: func() Grammar {
				g := New()
				g.AddRule("", Production{Term('a'), Term('('), Term(')'), Term('b')})
				return g
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Parse(strings.NewReader(tc.input))
			if !assert.NoError(t, err) {
				return
			}

			assertEqualGrammars(t, tc.expect(), actual)
		})
	}
}

func Test_Parse_Malformed(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		expectUser string
	}{
		{
			name:       "unmatched bracket",
			input:      `"X" -> "(A"`,
			expectUser: "Line 1: " + msgBadBrackets,
		},
		{
			name:       "empty brackets",
			input:      `"X" -> "a()"`,
			expectUser: "Line 1: " + msgBadBrackets,
		},
		{
			name:       "bare closing bracket",
			input:      `"X" -> "a)"`,
			expectUser: "Line 1: " + msgBadBrackets,
		},
		{
			name:       "trailing backslash",
			input:      `"X" -> "ab\"`,
			expectUser: "Line 1: " + msgDanglingBackslash,
		},
		{
			name:       "missing quotes",
			input:      `X -> "a"`,
			expectUser: "Line 1: " + msgBadFormat,
		},
		{
			name:       "wrong separator",
			input:      `"X" => "a"`,
			expectUser: "Line 1: " + msgBadFormat,
		},
		{
			name:       "too many parts",
			input:      `"X" -> "a" -> "b"`,
			expectUser: "Line 1: " + msgBadFormat,
		},
		{
			name:       "brackets in variable",
			input:      `"X(" -> "a"`,
			expectUser: "Line 1: " + msgBracketsInVariable,
		},
		{
			name:       "bar in variable",
			input:      `"X|" -> "a"`,
			expectUser: "Line 1: " + msgBarsInVariable,
		},
		{
			name:       "backslash in variable",
			input:      `"X\" -> "a"`,
			expectUser: "Line 1: " + msgBackslashesInVariable,
		},
		{
			name:       "quote in variable",
			input:      `"X"Y" -> "a"`,
			expectUser: "Line 1: " + msgQuotesInVariable,
		},
		{
			name:       "bracket inside reference",
			input:      `"X" -> "(A(B)"`,
			expectUser: "Line 1: " + msgBracketsInVariable,
		},
		{
			name:       "backslash inside reference",
			input:      `"X" -> "(A\B)"`,
			expectUser: "Line 1: " + msgBackslashesInVariable,
		},
		{
			name:       "quote inside reference",
			input:      `"X" -> "(A"B)"`,
			expectUser: "Line 1: " + msgQuotesInVariable,
		},
		{
			name:       "bar inside reference",
			input:      `"X" -> "(A|B)"`,
			expectUser: "Line 1: " + msgBarsInVariable,
		},
		{
			name:       "error on a later line",
			input:      "\"S\" -> \"a\"\n\n\"X\" -> \"(A\"",
			expectUser: "Line 3: " + msgBadBrackets,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Parse(strings.NewReader(tc.input))

			assert.ErrorIs(err, cfgerrors.ErrMalformedInput)
			assert.Equal(tc.expectUser, cfgerrors.UserMessage(err))
			assert.True(actual.Empty(), "partial grammar returned")
		})
	}
}

func Test_ParseFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	err := os.WriteFile(path, []byte("\"S\" -> \"a(S)|b\"\n"), 0644)
	if !assert.NoError(err) {
		return
	}

	g, err := ParseFile(path, ParseOptions{})
	assert.NoError(err)
	assert.Equal("S -> aS|b", g.String())

	_, err = ParseFile(filepath.Join(dir, "missing.txt"), ParseOptions{})
	assert.ErrorIs(err, cfgerrors.ErrMalformedInput)
	assert.ErrorIs(err, os.ErrNotExist)
	assert.True(strings.HasPrefix(cfgerrors.UserMessage(err), msgReadFailed))
}
