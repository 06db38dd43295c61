package grammar

import (
	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/dekarrin/cfgnorm/internal/util"
)

// EliminateNullable returns a grammar for the same language as g in which no
// variable has the empty production, with one exception: if the start
// variable of g can derive the empty string, a new start variable is put in
// front of it with exactly the productions epsilon and a reference to the old
// start variable.
//
// Every production that refers to a nullable variable is replaced by all of
// its variants with each occurrence of that variable either kept or dropped.
// A drop that would leave an empty production is never taken. A variable whose
// only production was epsilon is left out of the result.
func EliminateNullable(g Grammar) Grammar {
	if g.Empty() {
		return New()
	}

	direct := directlyNullable(g)
	nullable := allNullable(g, direct)
	tracer().Debugf("nullable variables: %s", nullable.StringOrdered())

	out := New()

	start := g.Start()
	if nullable.Has(start) {
		newStart := g.FreshName(start)
		tracer().Debugf("start variable %q is nullable; adding start variable %q", start, newStart)
		out.AddRule(newStart, Epsilon(), Production{Var(start)})
	}

	for _, name := range g.order {
		set := g.rules[name].Copy()
		if direct.Has(name) {
			set.Remove(Epsilon())
			if set.Len() == 0 {
				continue
			}
		}
		out.putRules(name, set)
	}

	for _, n := range g.order {
		if !nullable.Has(n) {
			continue
		}
		for _, name := range out.order {
			bisected := NewProductionSet()
			for _, p := range out.rules[name] {
				bisected.AddAll(bisect(p, n))
			}
			out.rules[name] = bisected
		}
	}

	return out
}

// directlyNullable returns the variables of g that have the empty production.
func directlyNullable(g Grammar) util.StringSet {
	direct := util.NewStringSet()
	for _, name := range g.order {
		if g.rules[name].HasEpsilon() {
			direct.Add(name)
		}
	}
	return direct
}

// allNullable extends the directly nullable variables of g until it includes
// every variable with a production made only of nullable variables.
func allNullable(g Grammar, direct util.StringSet) util.StringSet {
	nullable := util.NewStringSet(direct)

	for changed := true; changed; {
		changed = false
		for _, name := range g.order {
			if nullable.Has(name) {
				continue
			}
			for _, p := range g.rules[name] {
				if p.IsEpsilon() {
					continue
				}
				if allVariablesIn(p, nullable) {
					nullable.Add(name)
					changed = true
					break
				}
			}
		}
	}

	return nullable
}

// allVariablesIn returns whether every symbol of p is a reference to a
// variable in the set.
func allVariablesIn(p Production, set util.StringSet) bool {
	for _, sym := range p {
		if sym.IsTerminal() || !set.Has(sym.Name) {
			return false
		}
	}
	return true
}

// bisectItem is a production waiting to be scanned for occurrences of a
// nullable variable starting at index from.
type bisectItem struct {
	p    Production
	from int
}

// bisect returns p along with every variant of p that can be made by dropping
// any combination of the occurrences of the variable n, except for variants
// that would be empty.
func bisect(p Production, n string) ProductionSet {
	result := NewProductionSet(p)

	work := arraystack.New()
	work.Push(bisectItem{p: p, from: 0})

	for !work.Empty() {
		top, _ := work.Pop()
		item := top.(bisectItem)

		for i := item.from; i < len(item.p); i++ {
			sym := item.p[i]
			if !sym.IsVariable() || sym.Name != n {
				continue
			}

			// keep this occurrence and look further along
			work.Push(bisectItem{p: item.p, from: i + 1})

			// or drop it and look again from the same spot
			if len(item.p) > 1 {
				dropped := item.p.Without(i)
				result.Add(dropped)
				work.Push(bisectItem{p: dropped, from: i})
			}
			break
		}
	}

	return result
}
