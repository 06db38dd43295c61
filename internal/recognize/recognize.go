/*
Package recognize decides whether strings belong to the language of a grammar
by backtracking top-down search.

The search tries the productions of each variable in production order, with
epsilon tried last, and backtracks into every earlier choice when a later part
of the input fails to match. It is exponential in the worst case, so every
Recognizer carries a step budget; see WithMaxSteps.

Tracing goes to the "cfgnorm.recognize" tracer.
*/
package recognize

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/unicode/norm"

	"github.com/dekarrin/cfgnorm/internal/grammar"
)

// tracer traces with key 'cfgnorm.recognize'.
func tracer() tracing.Trace {
	return tracing.Select("cfgnorm.recognize")
}

// DefaultMaxSteps is the step budget of a Recognizer when none is given.
const DefaultMaxSteps = 1_000_000

// ErrBudgetExhausted is returned by Match when the search tried more
// productions than its step budget allows before reaching an answer.
var ErrBudgetExhausted = errors.New("recognition step budget exhausted")

// ErrLeftRecursive is returned by Match when no match was found but part of the
// search was cut short because a variable led back to itself without reading
// input. The grammar must be put through left-recursion elimination before a
// definite answer can be given.
var ErrLeftRecursive = errors.New("grammar is left-recursive; search was cut short")

// Option configures a Recognizer.
type Option func(r *Recognizer)

// WithMaxSteps sets how many production attempts a single Match may make. A
// value below 1 means DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(r *Recognizer) {
		if n < 1 {
			n = DefaultMaxSteps
		}
		r.maxSteps = n
	}
}

// NormalizeInput sets whether input strings are put in Unicode normalization
// form C before matching. It should match how the grammar was read.
func NormalizeInput(b bool) Option {
	return func(r *Recognizer) {
		r.normalize = b
	}
}

// Recognizer matches strings against one fixed grammar. It is safe for
// concurrent use; every call to Match keeps its own search state.
type Recognizer struct {
	g         grammar.Grammar
	start     string
	alts      map[string][]grammar.Production
	maxSteps  int
	normalize bool
}

// New creates a Recognizer for g. The grammar is copied, so later changes to
// g do not affect it.
func New(g grammar.Grammar, opts ...Option) *Recognizer {
	r := &Recognizer{
		g:        g.Copy(),
		start:    g.Start(),
		alts:     map[string][]grammar.Production{},
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, name := range r.g.Variables() {
		var order []grammar.Production
		hasEpsilon := false
		for _, p := range r.g.Productions(name) {
			if p.IsEpsilon() {
				hasEpsilon = true
				continue
			}
			order = append(order, p)
		}
		if hasEpsilon {
			order = append(order, grammar.Epsilon())
		}
		r.alts[name] = order
	}

	return r
}

// Recognize returns whether w is in the language of g. It gives false when
// Match cannot give a definite answer.
func Recognize(g grammar.Grammar, w string) bool {
	ok, err := New(g).Match(w)
	if err != nil {
		tracer().Infof("no answer for %q: %v", w, err)
		return false
	}
	return ok
}

// Match returns whether w is in the language of the grammar. The empty grammar
// matches nothing. The empty string matches exactly when the start variable
// has an epsilon production. If the step budget runs out first, the returned
// error is ErrBudgetExhausted. If no match is found after a left-recursive
// branch was cut, the returned error is ErrLeftRecursive.
func (r *Recognizer) Match(w string) (bool, error) {
	if r.g.Empty() {
		return false, nil
	}
	if r.normalize {
		w = norm.NFC.String(w)
	}
	if w == "" {
		return r.g.Rules(r.start).HasEpsilon(), nil
	}

	s := &search{
		r:      r,
		input:  []rune(w),
		active: map[activation]bool{},
	}

	ok := s.matchVariable(r.start, 0, func(end int) bool {
		return end == len(s.input)
	})
	tracer().Debugf("match %q: %t after %d steps", w, ok, s.steps)

	if s.exhausted {
		return false, ErrBudgetExhausted
	}
	if !ok && s.cut {
		return false, ErrLeftRecursive
	}
	return ok, nil
}

// activation is a variable being expanded at an input position.
type activation struct {
	name string
	pos  int
}

// search is the state of one Match call.
type search struct {
	r         *Recognizer
	input     []rune
	active    map[activation]bool
	steps     int
	exhausted bool

	// cut is set once a branch fails only because of left recursion.
	cut bool
}

// matchVariable tries each production of the variable at pos and calls k with
// the position after each successful one until k accepts. A variable that is
// re-entered at the same position before any of its productions has finished
// fails and marks the search as cut, which stops left recursion from looping.
func (s *search) matchVariable(name string, pos int, k func(int) bool) bool {
	act := activation{name: name, pos: pos}
	if s.active[act] {
		s.cut = true
		return false
	}

	s.active[act] = true
	defer delete(s.active, act)

	for _, p := range s.r.alts[name] {
		if s.steps >= s.r.maxSteps {
			s.exhausted = true
			return false
		}
		s.steps++

		matched := s.matchSymbols(p, pos, func(end int) bool {
			// the production is done; the caller's remaining symbols are not
			// part of this expansion
			delete(s.active, act)
			accepted := k(end)
			s.active[act] = true
			return accepted
		})
		if matched {
			return true
		}
		if s.exhausted {
			return false
		}
	}

	return false
}

// matchSymbols matches the symbols of p in order from pos and calls k with the
// position after the last one.
func (s *search) matchSymbols(p grammar.Production, pos int, k func(int) bool) bool {
	if len(p) == 0 {
		return k(pos)
	}

	sym := p[0]
	if sym.IsTerminal() {
		if pos >= len(s.input) || s.input[pos] != sym.Char {
			return false
		}
		return s.matchSymbols(p[1:], pos+1, k)
	}

	return s.matchVariable(sym.Name, pos, func(next int) bool {
		return s.matchSymbols(p[1:], next, k)
	})
}
