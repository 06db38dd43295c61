package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cnf/structhash"
	"golang.org/x/exp/slices"
)

// Grammar is an ordered table of variables and their productions. The first
// variable added is the start symbol. A variable referenced by a production
// does not have to be defined in the table; undefined references simply never
// derive anything.
//
// The zero value is the empty grammar and is ready to use.
type Grammar struct {
	order []string
	rules map[string]ProductionSet
}

// New returns an empty grammar.
func New() Grammar {
	return Grammar{}
}

// AddRule adds productions to the variable called name, defining the variable
// after all existing ones if it is not yet in the grammar. Adding to an
// existing variable takes the union of the old and new productions.
func (g *Grammar) AddRule(name string, prods ...Production) {
	if g.rules == nil {
		g.rules = map[string]ProductionSet{}
	}

	set, ok := g.rules[name]
	if !ok {
		set = NewProductionSet()
		g.rules[name] = set
		g.order = append(g.order, name)
	}

	for _, p := range prods {
		set.Add(p)
	}
}

// putRules replaces the productions of name with a copy of set.
func (g *Grammar) putRules(name string, set ProductionSet) {
	if g.rules == nil {
		g.rules = map[string]ProductionSet{}
	}
	if _, ok := g.rules[name]; !ok {
		g.order = append(g.order, name)
	}
	g.rules[name] = set.Copy()
}

// Variables returns the names of all defined variables in grammar order.
func (g Grammar) Variables() []string {
	return slices.Clone(g.order)
}

// Start returns the name of the start variable. It is only meaningful when the
// grammar is not empty.
func (g Grammar) Start() string {
	if len(g.order) == 0 {
		return ""
	}
	return g.order[0]
}

// Has returns whether a variable called name is defined.
func (g Grammar) Has(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// Rules returns a copy of the production set of the variable called name. It
// is empty if the variable is not defined.
func (g Grammar) Rules(name string) ProductionSet {
	set, ok := g.rules[name]
	if !ok {
		return NewProductionSet()
	}
	return set.Copy()
}

// Productions returns the productions of the variable called name in
// production order.
func (g Grammar) Productions(name string) []Production {
	return g.rules[name].Sorted()
}

// Len returns the number of defined variables.
func (g Grammar) Len() int {
	return len(g.order)
}

// Empty returns whether the grammar has no variables at all.
func (g Grammar) Empty() bool {
	return len(g.order) == 0
}

// ProductionCount returns the total number of productions over all variables.
func (g Grammar) ProductionCount() int {
	var count int
	for _, set := range g.rules {
		count += set.Len()
	}
	return count
}

// Copy returns a deep copy of the grammar.
func (g Grammar) Copy() Grammar {
	cp := Grammar{}
	for _, name := range g.order {
		cp.putRules(name, g.rules[name])
	}
	return cp
}

// Equal returns whether o is a Grammar (or *Grammar) with the same variables
// in the same order and the same productions for each.
func (g Grammar) Equal(o any) bool {
	other, ok := o.(Grammar)
	if !ok {
		otherPtr, ok := o.(*Grammar)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if !slices.Equal(g.order, other.order) {
		return false
	}
	for _, name := range g.order {
		if !g.rules[name].Equal(other.rules[name]) {
			return false
		}
	}
	return true
}

// names returns every variable name the grammar uses, whether defined or only
// referenced from a production.
func (g Grammar) names() map[string]bool {
	used := map[string]bool{}
	for name, set := range g.rules {
		used[name] = true
		for _, p := range set {
			for _, sym := range p {
				if sym.IsVariable() {
					used[sym.Name] = true
				}
			}
		}
	}
	return used
}

// FreshName returns base with as many "'" appended as it takes to get a name
// that g does not use, either as a defined variable or as a reference, and
// that is not one of the taken names. At least one "'" is always appended.
func (g Grammar) FreshName(base string, taken ...string) string {
	used := g.names()
	for _, t := range taken {
		used[t] = true
	}

	name := base + "'"
	for used[name] {
		name += "'"
	}
	return name
}

// freshNameIn is FreshName checked against several grammars at once.
func freshNameIn(base string, gs ...Grammar) string {
	var taken []string
	for _, g := range gs[1:] {
		for name := range g.names() {
			taken = append(taken, name)
		}
	}
	return gs[0].FreshName(base, taken...)
}

// String renders the grammar one variable per line. Names are padded with
// trailing spaces to a common width and are followed by " -> " and the
// productions of the variable in production order, separated by "|".
func (g Grammar) String() string {
	if g.Empty() {
		return "empty grammar"
	}

	var width int
	for _, name := range g.order {
		if n := utf8.RuneCountInString(name); n > width {
			width = n
		}
	}

	var sb strings.Builder
	for i, name := range g.order {
		if i > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(name)
		sb.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(name)))
		sb.WriteString(" -> ")

		for j, p := range g.Productions(name) {
			if j > 0 {
				sb.WriteRune('|')
			}
			sb.WriteString(p.String())
		}
	}
	return sb.String()
}

// fingerprintRule is the hashed form of one variable of a grammar.
type fingerprintRule struct {
	Name        string
	Productions []string
}

// Fingerprint returns a hash that is equal for any two equal grammars,
// regardless of the order their productions were added in.
func (g Grammar) Fingerprint() (string, error) {
	rules := make([]fingerprintRule, 0, len(g.order))
	for _, name := range g.order {
		r := fingerprintRule{Name: name}
		for _, p := range g.Productions(name) {
			r.Productions = append(r.Productions, p.key())
		}
		rules = append(rules, r)
	}

	hash, err := structhash.Hash(struct{ Rules []fingerprintRule }{rules}, 1)
	if err != nil {
		return "", fmt.Errorf("hash grammar: %w", err)
	}
	return hash, nil
}
