package grammar

import (
	"strings"
	"testing"

	"github.com/dekarrin/rezi"
	"github.com/stretchr/testify/assert"
)

// setupGrammar builds a grammar from lines of rule notation, failing the test
// if they cannot be read.
func setupGrammar(t *testing.T, rules ...string) Grammar {
	t.Helper()

	g, err := Parse(strings.NewReader(strings.Join(rules, "\n")))
	if !assert.NoError(t, err, "setting up grammar") {
		t.FailNow()
	}
	return g
}

func assertEqualGrammars(t *testing.T, expect, actual Grammar) bool {
	t.Helper()
	return assert.Equal(t, expect.Variables(), actual.Variables(), "variable order differs") &&
		assert.True(t, expect.Equal(actual), "expected:\n%s\n\nactual:\n%s", expect, actual)
}

func Test_Grammar_AddRule(t *testing.T) {
	assert := assert.New(t)

	g := New()
	g.AddRule("S", Production{Term('a'), Var("A")})
	g.AddRule("A", Production{Term('b')})
	g.AddRule("S", Production{Term('a'), Var("A")}, Epsilon())

	assert.Equal([]string{"S", "A"}, g.Variables())
	assert.Equal("S", g.Start())
	assert.Equal(2, g.Len())
	assert.Equal(3, g.ProductionCount())
	assert.True(g.Rules("S").HasEpsilon())
	assert.False(g.Rules("A").HasEpsilon())
	assert.Equal(0, g.Rules("nope").Len())
}

func Test_Grammar_Copy(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(t, `"S" -> "a(S)|b"`)
	cp := g.Copy()
	cp.AddRule("S", Production{Term('c')})
	cp.AddRule("T", Production{Term('d')})

	assert.Equal(2, g.ProductionCount())
	assert.False(g.Has("T"))
	assert.False(g.Equal(cp))
	assert.True(g.Equal(g.Copy()))
	assert.True(g.Equal(&g))
	assert.False(g.Equal("S -> a(S)|b"))
}

func Test_Grammar_FreshName(t *testing.T) {
	testCases := []struct {
		name   string
		rules  []string
		base   string
		taken  []string
		expect string
	}{
		{
			name:   "unused",
			rules:  []string{`"S" -> "a"`},
			base:   "S",
			expect: "S'",
		},
		{
			name:   "defined collision",
			rules:  []string{`"S" -> "a(S')"`, `"S'" -> "b"`},
			base:   "S",
			expect: "S''",
		},
		{
			name:   "referenced but undefined",
			rules:  []string{`"S" -> "a(S')"`},
			base:   "S",
			expect: "S''",
		},
		{
			name:   "taken names",
			rules:  []string{`"S" -> "a"`},
			base:   "S",
			taken:  []string{"S'", "S''"},
			expect: "S'''",
		},
		{
			name:   "empty grammar",
			base:   "E",
			expect: "E'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)

			actual := g.FreshName(tc.base, tc.taken...)

			assert.Equal(t, tc.expect, actual)
		})
	}
}

func Test_Grammar_String(t *testing.T) {
	testCases := []struct {
		name   string
		rules  []string
		expect string
	}{
		{
			name:   "empty grammar",
			expect: "empty grammar",
		},
		{
			name:   "one variable",
			rules:  []string{`"S" -> "b|a"`},
			expect: "S -> a|b",
		},
		{
			name: "padding and order",
			rules: []string{
				`"E" -> "(T)(E')"`,
				`"E'" -> "+(T)(E')|"`,
				`"T" -> "a"`,
			},
			expect: "E  -> TE'\n" +
				"E' -> ε|+TE'\n" +
				"T  -> a",
		},
		{
			name:   "terminals sort before variables",
			rules:  []string{`"S" -> "(A)|z|(A)a|"`, `"A" -> "q"`},
			expect: "S -> ε|z|A|Aa\nA -> q",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)

			assert.Equal(t, tc.expect, g.String())
		})
	}
}

func Test_Production_Compare(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   Production
		expect int
	}{
		{name: "equal", a: Production{Term('a')}, b: Production{Term('a')}, expect: 0},
		{name: "epsilon first", a: Epsilon(), b: Production{Term('a')}, expect: -1},
		{name: "prefix first", a: Production{Term('a'), Var("B")}, b: Production{Term('a')}, expect: 1},
		{name: "terminal before variable", a: Production{Var("a")}, b: Production{Term('z')}, expect: 1},
		{name: "variables by name", a: Production{Var("A")}, b: Production{Var("B")}, expect: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.a.Compare(tc.b))
		})
	}
}

func Test_ProductionSet_TerminalAndVariableNotConfused(t *testing.T) {
	assert := assert.New(t)

	set := NewProductionSet(Production{Term('a')}, Production{Var("a")}, Production{Term('a')})

	assert.Equal(2, set.Len())
	assert.True(set.Has(Production{Var("a")}))
	assert.False(set.HasEpsilon())
}

func Test_Grammar_Fingerprint(t *testing.T) {
	assert := assert.New(t)

	g1 := setupGrammar(t, `"S" -> "a|b(S)"`)
	g2 := setupGrammar(t, `"S" -> "b(S)"`, `"S" -> "a"`)
	g3 := setupGrammar(t, `"S" -> "a|b"`)

	fp1, err := g1.Fingerprint()
	assert.NoError(err)
	fp2, err := g2.Fingerprint()
	assert.NoError(err)
	fp3, err := g3.Fingerprint()
	assert.NoError(err)

	assert.Equal(fp1, fp2)
	assert.NotEqual(fp1, fp3)
}

func Test_Grammar_BinaryRoundTrip(t *testing.T) {
	assert := assert.New(t)

	g := setupGrammar(t,
		`"E" -> "(T)(E')"`,
		`"E'" -> "+(T)(E')|"`,
		`"T" -> "ä|\(|\\"`,
	)

	data, err := g.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	var actual Grammar
	err = actual.UnmarshalBinary(data)
	if !assert.NoError(err) {
		return
	}

	assertEqualGrammars(t, g, actual)
}

func Test_Grammar_UnmarshalBinary_Truncated(t *testing.T) {
	g := setupGrammar(t, `"S" -> "a(S)b|"`)

	data, err := g.MarshalBinary()
	if !assert.NoError(t, err) {
		return
	}

	var actual Grammar
	err = actual.UnmarshalBinary(data[:len(data)-3])

	assert.Error(t, err)
}

// rawBinary marshals to its own bytes, for building corrupt snapshots.
type rawBinary []byte

func (rb rawBinary) MarshalBinary() ([]byte, error) {
	return rb, nil
}

func Test_Grammar_UnmarshalBinary_Corrupt(t *testing.T) {
	join := func(parts ...[]byte) []byte {
		var data []byte
		for _, p := range parts {
			data = append(data, p...)
		}
		return data
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "empty",
			data: []byte{},
		},
		{
			name: "negative variable count",
			data: rezi.EncInt(-1),
		},
		{
			name: "variable count past end of data",
			data: join(rezi.EncInt(1<<40), rezi.EncString("S")),
		},
		{
			name: "negative production count",
			data: join(rezi.EncInt(1), rezi.EncString("S"), rezi.EncInt(-1)),
		},
		{
			name: "production count past end of data",
			data: join(rezi.EncInt(1), rezi.EncString("S"), rezi.EncInt(1<<40)),
		},
		{
			name: "negative symbol count",
			data: join(rezi.EncInt(1), rezi.EncString("S"), rezi.EncInt(1), rezi.EncBinary(rawBinary(rezi.EncInt(-1)))),
		},
		{
			name: "symbol count past end of data",
			data: join(rezi.EncInt(1), rezi.EncString("S"), rezi.EncInt(1), rezi.EncBinary(rawBinary(rezi.EncInt(1<<40)))),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var actual Grammar

			assert.NotPanics(t, func() {
				err := actual.UnmarshalBinary(tc.data)
				assert.Error(t, err)
			})
		})
	}
}
