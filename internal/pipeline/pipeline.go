// Package pipeline runs the normalization stages over a grammar in order and
// keeps every intermediate grammar for display and comparison.
package pipeline

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/dekarrin/cfgnorm/internal/grammar"
)

// tracer traces with key 'cfgnorm.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("cfgnorm.pipeline")
}

// Stage names, in the order Run produces them.
const (
	StageInitial       = "initial"
	StageNullable      = "nullable"
	StageReduce        = "reduce"
	StageLeftRecursion = "left-recursion"
	StageLeftFactor    = "left-factor"
)

// step is one rewriting stage of the pipeline.
type step struct {
	name  string
	apply func(grammar.Grammar) grammar.Grammar
}

var steps = []step{
	{name: StageNullable, apply: grammar.EliminateNullable},
	{name: StageReduce, apply: grammar.Reduce},
	{name: StageLeftRecursion, apply: grammar.EliminateLeftRecursion},
	{name: StageLeftFactor, apply: grammar.LeftFactor},
}

// Stage is the grammar as it was after one stage of the pipeline.
type Stage struct {
	Name    string
	Grammar grammar.Grammar
}

// Result holds every stage of one pipeline run, starting with the initial
// grammar.
type Result struct {
	Stages []Stage
}

// Run passes g through nullable elimination, reduction, left-recursion
// elimination and left factoring, in that order.
func Run(g grammar.Grammar) Result {
	res := Result{Stages: []Stage{{Name: StageInitial, Grammar: g.Copy()}}}

	cur := res.Stages[0].Grammar
	for _, st := range steps {
		cur = st.apply(cur)
		tracer().Debugf("after %s: %d variables, %d productions", st.name, cur.Len(), cur.ProductionCount())
		res.Stages = append(res.Stages, Stage{Name: st.name, Grammar: cur})
	}

	return res
}

// Final returns the fully normalized grammar.
func (r Result) Final() grammar.Grammar {
	if len(r.Stages) == 0 {
		return grammar.New()
	}
	return r.Stages[len(r.Stages)-1].Grammar
}

// Stage returns the stage with the given name.
func (r Result) Stage(name string) (Stage, bool) {
	for _, st := range r.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return Stage{}, false
}

// StageStats is the size of the grammar after one stage.
type StageStats struct {
	Stage       string
	Variables   int
	Productions int
}

// Row gives the stats as table cells with counts in human-readable form.
func (s StageStats) Row() []string {
	return []string{s.Stage, humanize.Comma(int64(s.Variables)), humanize.Comma(int64(s.Productions))}
}

// Stats lists the size of the grammar after every stage.
func (r Result) Stats() []StageStats {
	stats := make([]StageStats, 0, len(r.Stages))
	for _, st := range r.Stages {
		stats = append(stats, StageStats{
			Stage:       st.Name,
			Variables:   st.Grammar.Len(),
			Productions: st.Grammar.ProductionCount(),
		})
	}
	return stats
}

// StatsTable gives the stats of every stage as table rows, headers first.
func (r Result) StatsTable() [][]string {
	rows := [][]string{{"Stage", "Variables", "Productions"}}
	for _, s := range r.Stats() {
		rows = append(rows, s.Row())
	}
	return rows
}

// Diff gives a unified diff from the rendering of a to the rendering of b. It
// is empty when both render the same.
func Diff(a, b Stage) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.Grammar.String() + "\n"),
		B:        difflib.SplitLines(b.Grammar.String() + "\n"),
		FromFile: a.Name,
		ToFile:   b.Name,
		Context:  1,
	}

	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diff %s to %s: %w", a.Name, b.Name, err)
	}
	return text, nil
}
