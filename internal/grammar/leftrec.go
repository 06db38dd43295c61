package grammar

// EliminateLeftRecursion returns a grammar for the same language as g in which
// no variable derives, through leading symbols alone, a production that begins
// with itself.
//
// Variables are handled in grammar order. Each production of the i-th variable
// that begins with an earlier variable j is expanded with the already rewritten
// productions of j, for every j in ascending order. Any immediate
// self-recursion left over afterwards is moved into a new variable named after
// the i-th one with "'" appended, which derives the recursive tails followed by
// itself, or epsilon.
//
// The result is only guaranteed free of left recursion when g has no epsilon
// productions other than on a start variable that nothing refers to, which is
// what EliminateNullable produces.
func EliminateLeftRecursion(g Grammar) Grammar {
	if g.Empty() {
		return New()
	}

	out := New()

	for i, name := range g.order {
		current := g.rules[name].Copy()

		for j := 0; j < i; j++ {
			earlier := g.order[j]
			if !leadsWithAny(current, earlier) {
				continue
			}

			expanded := NewProductionSet()
			for _, p := range current {
				if !p.Leads(earlier) {
					expanded.Add(p)
					continue
				}
				for _, sub := range out.rules[earlier] {
					expanded.Add(sub.Concat(p[1:]))
				}
			}
			current = expanded
		}

		alphas := NewProductionSet()
		var betas []Production
		for _, p := range current {
			if p.Leads(name) {
				// a lone self-reference derives nothing new
				if len(p) > 1 {
					betas = append(betas, p[1:])
				}
				continue
			}
			alphas.Add(p)
		}

		if len(betas) == 0 && alphas.Len() == current.Len() {
			out.putRules(name, current)
			continue
		}

		if len(betas) == 0 {
			// only the lone self-reference was there; dropping it is enough
			out.putRules(name, alphas)
			continue
		}

		aux := freshNameIn(name, g, out)
		tracer().Debugf("variable %q is left-recursive; adding variable %q", name, aux)

		tail := Production{Var(aux)}

		rewritten := NewProductionSet()
		for _, a := range alphas {
			rewritten.Add(a.Concat(tail))
		}

		auxRules := NewProductionSet(Epsilon())
		for _, b := range betas {
			auxRules.Add(b.Concat(tail))
		}

		out.putRules(name, rewritten)
		out.putRules(aux, auxRules)
	}

	return out
}

// leadsWithAny returns whether any production in set begins with a reference
// to the variable called name.
func leadsWithAny(set ProductionSet, name string) bool {
	for _, p := range set {
		if p.Leads(name) {
			return true
		}
	}
	return false
}
