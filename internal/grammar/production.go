package grammar

import (
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EpsilonGlyph is how the empty production is shown when rendered.
const EpsilonGlyph = "ε"

// Production is one alternative of a variable: an ordered sequence of symbols.
// The zero-length production is epsilon, the production that derives the empty
// string. Productions are never modified in place once they are part of a
// Grammar; every operation that changes one returns a new slice.
type Production []Symbol

// Epsilon returns the empty production.
func Epsilon() Production {
	return Production{}
}

// IsEpsilon returns whether p derives only the empty string.
func (p Production) IsEpsilon() bool {
	return len(p) == 0
}

// Equal returns whether p and o have the same symbols in the same order.
func (p Production) Equal(o Production) bool {
	return slices.Equal(p, o)
}

// Compare orders productions symbol by symbol. When one production is a prefix
// of the other, the shorter one comes first, so epsilon is the smallest
// production of all.
func (p Production) Compare(o Production) int {
	for i := 0; i < len(p) && i < len(o); i++ {
		if c := p[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p) < len(o):
		return -1
	case len(p) > len(o):
		return 1
	default:
		return 0
	}
}

// HasPrefix returns whether p begins with every symbol of prefix.
func (p Production) HasPrefix(prefix Production) bool {
	if len(prefix) > len(p) {
		return false
	}
	return slices.Equal(p[:len(prefix)], prefix)
}

// Leads returns whether the first symbol of p is a reference to the variable
// called name.
func (p Production) Leads(name string) bool {
	return len(p) > 0 && p[0].IsVariable() && p[0].Name == name
}

// References returns whether p refers to the variable called name anywhere.
func (p Production) References(name string) bool {
	for _, sym := range p {
		if sym.IsVariable() && sym.Name == name {
			return true
		}
	}
	return false
}

// Concat returns a new production made of the symbols of p followed by those
// of every production in others.
func (p Production) Concat(others ...Production) Production {
	size := len(p)
	for _, o := range others {
		size += len(o)
	}

	joined := make(Production, 0, size)
	joined = append(joined, p...)
	for _, o := range others {
		joined = append(joined, o...)
	}
	return joined
}

// Without returns a copy of p with the symbol at index i removed.
func (p Production) Without(i int) Production {
	dropped := make(Production, 0, len(p)-1)
	dropped = append(dropped, p[:i]...)
	return append(dropped, p[i+1:]...)
}

// String renders the production with each symbol written out in turn.
// Epsilon is rendered as EpsilonGlyph.
func (p Production) String() string {
	if p.IsEpsilon() {
		return EpsilonGlyph
	}

	var sb strings.Builder
	for _, sym := range p {
		sb.WriteString(sym.String())
	}
	return sb.String()
}

// key gives a string that is unique to the sequence of symbols in p. Unlike
// String, it never confuses a terminal with a single-character variable name.
func (p Production) key() string {
	var sb strings.Builder
	for _, sym := range p {
		if sym.IsTerminal() {
			sb.WriteRune('t')
			sb.WriteRune(sym.Char)
		} else {
			sb.WriteRune('v')
			sb.WriteString(strconv.Itoa(len(sym.Name)))
			sb.WriteRune(':')
			sb.WriteString(sym.Name)
		}
	}
	return sb.String()
}

// ProductionSet is a deduplicated collection of productions. The zero value is
// not usable; create one with NewProductionSet.
type ProductionSet map[string]Production

// NewProductionSet creates a set holding the given productions.
func NewProductionSet(prods ...Production) ProductionSet {
	ps := ProductionSet{}
	for _, p := range prods {
		ps.Add(p)
	}
	return ps
}

// Add puts p in the set. Nothing happens if an equal production is already in
// it.
func (ps ProductionSet) Add(p Production) {
	if p == nil {
		p = Epsilon()
	}
	ps[p.key()] = p
}

// AddAll puts every production of o in the set.
func (ps ProductionSet) AddAll(o ProductionSet) {
	for k, p := range o {
		ps[k] = p
	}
}

// Has returns whether a production equal to p is in the set.
func (ps ProductionSet) Has(p Production) bool {
	_, ok := ps[p.key()]
	return ok
}

// HasEpsilon returns whether the set holds the empty production.
func (ps ProductionSet) HasEpsilon() bool {
	return ps.Has(Epsilon())
}

// Remove takes p out of the set if it is there.
func (ps ProductionSet) Remove(p Production) {
	delete(ps, p.key())
}

// Len returns the number of productions in the set.
func (ps ProductionSet) Len() int {
	return len(ps)
}

// Copy returns a new set with the same productions in it.
func (ps ProductionSet) Copy() ProductionSet {
	cp := make(ProductionSet, len(ps))
	for k, p := range ps {
		cp[k] = p
	}
	return cp
}

// Equal returns whether both sets hold exactly the same productions.
func (ps ProductionSet) Equal(o ProductionSet) bool {
	if len(ps) != len(o) {
		return false
	}
	for k := range ps {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the productions of the set in production order.
func (ps ProductionSet) Sorted() []Production {
	prods := maps.Values(ps)
	slices.SortFunc(prods, func(a, b Production) bool {
		return a.Compare(b) < 0
	})
	return prods
}
