/*
Package grammar holds the context-free grammar model and the rewriting stages
that normalize a grammar for top-down recognition.

A Grammar is an ordered table of variables, each with a set of productions. The
first variable added is the start symbol. Grammars are built once, either with
AddRule or by reading rule notation with Parse, and are then treated as
immutable values: every stage function (EliminateNullable, Reduce,
EliminateLeftRecursion and LeftFactor) returns a new Grammar and leaves its
argument untouched.

Tracing goes to the "cfgnorm.grammar" tracer.
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cfgnorm.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("cfgnorm.grammar")
}
