package grammar

import (
	"golang.org/x/exp/slices"
)

// LeftFactor returns a grammar for the same language as g in which no two
// productions of a variable begin with the same symbol.
//
// Productions of a variable that share the longest common prefix available are
// grouped and replaced by that prefix followed by a reference to a new
// variable, which derives what is left of each production after the prefix.
// This repeats until no common prefix is left. New variables are factored the
// same way and are placed right after the variable they were made for.
func LeftFactor(g Grammar) Grammar {
	if g.Empty() {
		return New()
	}

	out := New()

	for _, name := range g.order {
		// out needs the variable before any of its helpers so order is kept
		out.putRules(name, g.rules[name])

		pending := []string{name}
		for len(pending) > 0 {
			v := pending[0]
			pending = pending[1:]

			set := out.rules[v]
			for {
				prefix, ok := longestCommonPrefix(set)
				if !ok {
					break
				}

				aux := freshNameIn(name, g, out)
				tracer().Debugf("productions of %q share prefix %q; adding variable %q", v, prefix.String(), aux)

				suffixes := NewProductionSet()
				for k, p := range set {
					if p.HasPrefix(prefix) {
						suffixes.Add(p[len(prefix):])
						delete(set, k)
					}
				}
				set.Add(prefix.Concat(Production{Var(aux)}))

				out.putRules(aux, suffixes)
				pending = append(pending, aux)
			}
		}
	}

	return out
}

// longestCommonPrefix finds a non-empty prefix shared by at least two
// productions of set. Productions are tried longest first, with ties broken by
// production order, and for each one its candidate prefixes are tried from
// all-but-the-last symbol down to just the first.
func longestCommonPrefix(set ProductionSet) (Production, bool) {
	prods := set.Sorted()
	slices.SortStableFunc(prods, func(a, b Production) bool {
		return len(a) > len(b)
	})

	for i, p := range prods {
		for n := len(p) - 1; n >= 1; n-- {
			prefix := p[:n]
			for j, other := range prods {
				if i != j && other.HasPrefix(prefix) {
					return slices.Clone(prefix), true
				}
			}
		}
	}

	return nil, false
}
