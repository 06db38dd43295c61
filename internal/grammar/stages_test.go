package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func Test_EliminateNullable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgnorm.grammar")
	defer teardown()

	testCases := []struct {
		name   string
		rules  []string
		expect []string
	}{
		{
			name:   "empty grammar",
			rules:  nil,
			expect: nil,
		},
		{
			name:   "no nullable variables",
			rules:  []string{`"S" -> "a(S)|b"`},
			expect: []string{`"S" -> "a(S)|b"`},
		},
		{
			name: "nullable variable in the middle",
			rules: []string{
				`"S" -> "(A)b"`,
				`"A" -> "a|"`,
			},
			expect: []string{
				`"S" -> "(A)b|b"`,
				`"A" -> "a"`,
			},
		},
		{
			name:  "nullable start gets a new start",
			rules: []string{`"S" -> "a(S)b|"`},
			expect: []string{
				`"S'" -> "|(S)"`,
				`"S" -> "a(S)b|ab"`,
			},
		},
		{
			name: "new start avoids taken names",
			rules: []string{
				`"S" -> "(S')|"`,
				`"S'" -> "x"`,
			},
			expect: []string{
				`"S''" -> "|(S)"`,
				`"S" -> "(S')"`,
				`"S'" -> "x"`,
			},
		},
		{
			name: "every combination of two nullable variables",
			rules: []string{
				`"S" -> "(A)(B)c"`,
				`"A" -> "a|"`,
				`"B" -> "b|"`,
			},
			expect: []string{
				`"S" -> "(A)(B)c|(A)c|(B)c|c"`,
				`"A" -> "a"`,
				`"B" -> "b"`,
			},
		},
		{
			name: "repeated occurrences of one nullable variable",
			rules: []string{
				`"S" -> "(A)x(A)"`,
				`"A" -> "a|"`,
			},
			expect: []string{
				`"S" -> "(A)x(A)|x(A)|(A)x|x"`,
				`"A" -> "a"`,
			},
		},
		{
			name: "variable with only epsilon is dropped",
			rules: []string{
				`"S" -> "a(E)"`,
				`"E" -> ""`,
			},
			expect: []string{
				`"S" -> "a(E)|a"`,
			},
		},
		{
			name: "indirectly nullable",
			rules: []string{
				`"S" -> "(A)(B)"`,
				`"A" -> "a|"`,
				`"B" -> "(A)"`,
			},
			expect: []string{
				`"S'" -> "|(S)"`,
				`"S" -> "(A)(B)|(A)|(B)"`,
				`"A" -> "a"`,
				`"B" -> "(A)"`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)
			expect := setupGrammar(t, tc.expect...)
			before := g.Copy()

			actual := EliminateNullable(g)

			assertEqualGrammars(t, expect, actual)
			assert.True(t, before.Equal(g), "input grammar was modified")
		})
	}
}

func Test_Reduce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgnorm.grammar")
	defer teardown()

	testCases := []struct {
		name   string
		rules  []string
		expect []string
	}{
		{
			name:   "empty grammar",
			rules:  nil,
			expect: nil,
		},
		{
			name: "non-generating variable",
			rules: []string{
				`"S" -> "a|(B)"`,
				`"B" -> "(B)"`,
			},
			expect: []string{`"S" -> "a"`},
		},
		{
			name: "unreachable variable",
			rules: []string{
				`"S" -> "a(A)"`,
				`"A" -> "b"`,
				`"U" -> "c"`,
			},
			expect: []string{
				`"S" -> "a(A)"`,
				`"A" -> "b"`,
			},
		},
		{
			name:   "non-generating start",
			rules:  []string{`"S" -> "(S)a"`, `"A" -> "a"`},
			expect: nil,
		},
		{
			name:   "undefined reference",
			rules:  []string{`"S" -> "a|(X)"`},
			expect: []string{`"S" -> "a"`},
		},
		{
			name: "generating only through another variable",
			rules: []string{
				`"S" -> "(A)(B)"`,
				`"A" -> "(B)a"`,
				`"B" -> "b"`,
				`"C" -> "(C)"`,
			},
			expect: []string{
				`"S" -> "(A)(B)"`,
				`"A" -> "(B)a"`,
				`"B" -> "b"`,
			},
		},
		{
			name: "reachable only through a removed production",
			rules: []string{
				`"S" -> "a|(B)(C)"`,
				`"B" -> "(B)"`,
				`"C" -> "c"`,
			},
			expect: []string{`"S" -> "a"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)
			expect := setupGrammar(t, tc.expect...)

			actual := Reduce(g)

			assertEqualGrammars(t, expect, actual)
		})
	}
}

func Test_EliminateLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgnorm.grammar")
	defer teardown()

	testCases := []struct {
		name   string
		rules  []string
		expect []string
	}{
		{
			name:   "empty grammar",
			rules:  nil,
			expect: nil,
		},
		{
			name: "immediate left recursion",
			rules: []string{
				`"E" -> "(E)+(T)|(T)"`,
				`"T" -> "a"`,
			},
			expect: []string{
				`"E" -> "(T)(E')"`,
				`"E'" -> "+(T)(E')|"`,
				`"T" -> "a"`,
			},
		},
		{
			name: "indirect left recursion",
			rules: []string{
				`"S" -> "(A)a|b"`,
				`"A" -> "(S)c|d"`,
			},
			expect: []string{
				`"S" -> "(A)a|b"`,
				`"A" -> "bc(A')|d(A')"`,
				`"A'" -> "ac(A')|"`,
			},
		},
		{
			name: "lone self reference",
			rules: []string{
				`"A" -> "(A)|a"`,
			},
			expect: []string{`"A" -> "a"`},
		},
		{
			name: "new variable avoids taken names",
			rules: []string{
				`"E" -> "(E)x|(E')"`,
				`"E'" -> "y"`,
			},
			expect: []string{
				`"E" -> "(E')(E'')"`,
				`"E''" -> "x(E'')|"`,
				`"E'" -> "y"`,
			},
		},
		{
			name: "chain through two earlier variables",
			rules: []string{
				`"A" -> "(B)x|a"`,
				`"B" -> "(C)y|b"`,
				`"C" -> "(A)z|c"`,
			},
			expect: []string{
				`"A" -> "(B)x|a"`,
				`"B" -> "(C)y|b"`,
				`"C" -> "az(C')|bxz(C')|c(C')"`,
				`"C'" -> "yxz(C')|"`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)
			expect := setupGrammar(t, tc.expect...)

			actual := EliminateLeftRecursion(g)

			assertEqualGrammars(t, expect, actual)
			assertNoLeftRecursion(t, actual)
		})
	}
}

func Test_LeftFactor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgnorm.grammar")
	defer teardown()

	testCases := []struct {
		name   string
		rules  []string
		expect []string
	}{
		{
			name:   "empty grammar",
			rules:  nil,
			expect: nil,
		},
		{
			name: "shared leading variable",
			rules: []string{
				`"S" -> "(A)a|(A)b"`,
				`"A" -> "c"`,
			},
			expect: []string{
				`"S" -> "(A)(S')"`,
				`"S'" -> "a|b"`,
				`"A" -> "c"`,
			},
		},
		{
			name:  "one production is the prefix",
			rules: []string{`"S" -> "a|ab"`},
			expect: []string{
				`"S" -> "a(S')"`,
				`"S'" -> "|b"`,
			},
		},
		{
			name:  "longest prefix first",
			rules: []string{`"S" -> "abc|abd|ae"`},
			expect: []string{
				`"S" -> "a(S'')"`,
				`"S'" -> "c|d"`,
				`"S''" -> "b(S')|e"`,
			},
		},
		{
			name:  "new variable is factored too",
			rules: []string{`"S" -> "abcdefg|axy|axz"`},
			expect: []string{
				`"S" -> "a(S')"`,
				`"S'" -> "bcdefg|x(S'')"`,
				`"S''" -> "y|z"`,
			},
		},
		{
			name: "nothing to factor",
			rules: []string{
				`"S" -> "a(S)|b|"`,
			},
			expect: []string{
				`"S" -> "a(S)|b|"`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)
			expect := setupGrammar(t, tc.expect...)

			actual := LeftFactor(g)

			assertEqualGrammars(t, expect, actual)
			assertNoCommonPrefix(t, actual)
		})
	}
}

// Test_Stages_Properties runs every stage in order over a handful of
// grammars and checks what each one guarantees about its output.
func Test_Stages_Properties(t *testing.T) {
	testCases := []struct {
		name  string
		rules []string
	}{
		{
			name: "expressions",
			rules: []string{
				`"E" -> "(E)+(T)|(T)"`,
				`"T" -> "(T)*(F)|(F)"`,
				`"F" -> "\((E)\)|a"`,
			},
		},
		{
			name: "nullable and left-recursive",
			rules: []string{
				`"S" -> "(S)(S)|a(S)b|"`,
			},
		},
		{
			name: "indirect recursion through nullable",
			rules: []string{
				`"A" -> "(B)(A)a|x"`,
				`"B" -> "(A)b|"`,
			},
		},
		{
			name: "useless and shared prefixes",
			rules: []string{
				`"S" -> "if(C)then(S)|if(C)then(S)else(S)|x|(U)"`,
				`"C" -> "c"`,
				`"U" -> "(U)u"`,
				`"Z" -> "z"`,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := setupGrammar(t, tc.rules...)

			n := EliminateNullable(g)
			assertEpsilonOnlyOnNewStart(t, g, n)

			r := Reduce(n)
			assertReduced(t, r)

			lr := EliminateLeftRecursion(r)
			assertNoLeftRecursion(t, lr)

			lf := LeftFactor(lr)
			assertNoCommonPrefix(t, lf)
		})
	}
}

func assertEpsilonOnlyOnNewStart(t *testing.T, before, after Grammar) {
	t.Helper()

	startNullable := allNullable(before, directlyNullable(before)).Has(before.Start())
	newStart := !before.Has(after.Start())

	assert.Equal(t, startNullable, newStart, "new start variable present iff old start is nullable")
	for _, name := range after.Variables() {
		if name == after.Start() && newStart {
			continue
		}
		assert.False(t, after.Rules(name).HasEpsilon(), "variable %q has epsilon", name)
	}
}

func assertReduced(t *testing.T, g Grammar) {
	t.Helper()

	generating := generatingVariables(g)
	for _, name := range g.Variables() {
		assert.True(t, generating.Has(name), "variable %q does not generate", name)
	}

	if g.Len() > 1 {
		reachable := removeUnreachable(g)
		assert.Equal(t, g.Variables(), reachable.Variables(), "unreachable variables remain")
	}
}

func assertNoLeftRecursion(t *testing.T, g Grammar) {
	t.Helper()

	// edges from each variable to the variables its productions begin with
	leads := map[string][]string{}
	for _, name := range g.Variables() {
		for _, p := range g.Productions(name) {
			if len(p) > 0 && p[0].IsVariable() {
				leads[name] = append(leads[name], p[0].Name)
			}
		}
	}

	for _, name := range g.Variables() {
		seen := map[string]bool{}
		stack := append([]string{}, leads[name]...)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cur == name {
				assert.Failf(t, "left recursion", "variable %q leads back to itself in:\n%s", name, g)
				return
			}
			if seen[cur] {
				continue
			}
			seen[cur] = true
			stack = append(stack, leads[cur]...)
		}
	}
}

func assertNoCommonPrefix(t *testing.T, g Grammar) {
	t.Helper()

	for _, name := range g.Variables() {
		first := map[Symbol]bool{}
		for _, p := range g.Productions(name) {
			if p.IsEpsilon() {
				continue
			}
			assert.False(t, first[p[0]], "variable %q has two productions starting with %q in:\n%s", name, p[0].String(), g)
			first[p[0]] = true
		}
	}
}
