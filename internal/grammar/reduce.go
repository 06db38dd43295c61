package grammar

import (
	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/dekarrin/cfgnorm/internal/util"
)

// Reduce returns a grammar for the same language as g with every useless
// variable removed. Variables that cannot derive any string of terminals are
// dropped first, along with every production that refers to one of them. If
// the start variable is among them the result is the empty grammar. After
// that, variables that cannot be reached from the start variable are dropped.
func Reduce(g Grammar) Grammar {
	if g.Empty() {
		return New()
	}

	out := removeNonGenerating(g)
	if out.Len() > 1 {
		out = removeUnreachable(out)
	}
	return out
}

func removeNonGenerating(g Grammar) Grammar {
	generating := generatingVariables(g)
	tracer().Debugf("generating variables: %s", generating.StringOrdered())

	if !generating.Has(g.Start()) {
		tracer().Debugf("start variable %q is not generating; grammar is empty", g.Start())
		return New()
	}

	out := New()
	for _, name := range g.order {
		if !generating.Has(name) {
			continue
		}

		kept := NewProductionSet()
		for _, p := range g.rules[name] {
			if generatesWith(p, generating) {
				kept.Add(p)
			}
		}
		if kept.Len() > 0 {
			out.putRules(name, kept)
		}
	}
	return out
}

// generatingVariables finds every variable of g that has a production made
// only of terminals and variables already known to be generating, repeating
// until no more are found.
func generatingVariables(g Grammar) util.StringSet {
	generating := util.NewStringSet()

	for changed := true; changed; {
		changed = false
		for _, name := range g.order {
			if generating.Has(name) {
				continue
			}
			for _, p := range g.rules[name] {
				if generatesWith(p, generating) {
					generating.Add(name)
					changed = true
					break
				}
			}
		}
	}

	return generating
}

// generatesWith returns whether every variable p refers to is in generating.
func generatesWith(p Production, generating util.StringSet) bool {
	for _, sym := range p {
		if sym.IsVariable() && !generating.Has(sym.Name) {
			return false
		}
	}
	return true
}

func removeUnreachable(g Grammar) Grammar {
	reachable := util.NewStringSet()
	reachable.Add(g.Start())

	work := arraystack.New()
	work.Push(g.Start())

	for !work.Empty() {
		top, _ := work.Pop()
		name := top.(string)

		for _, p := range g.Productions(name) {
			for _, sym := range p {
				if sym.IsVariable() && !reachable.Has(sym.Name) {
					reachable.Add(sym.Name)
					work.Push(sym.Name)
				}
			}
		}
	}
	tracer().Debugf("reachable variables: %s", reachable.StringOrdered())

	out := New()
	for _, name := range g.order {
		if reachable.Has(name) {
			out.putRules(name, g.rules[name])
		}
	}
	return out
}
