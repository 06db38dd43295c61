// Package config holds the settings of the cfgn driver and the connection
// settings shared with the server. Settings are read from an optional TOML
// file; command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/cfgnorm/internal/recognize"
)

const (
	DefaultGrammarFile = "input.txt"
	DefaultStopWord    = "s"
	DefaultWidth       = 80

	// MinWidth is the narrowest console the driver will format output for.
	MinWidth = 20
)

// Config is the configuration of an interactive normalization session.
type Config struct {
	// GrammarFile is the path to the file holding the grammar rules.
	GrammarFile string

	// StopWord is the query line that ends the query loop.
	StopWord string

	// ShowStages is whether the grammar is printed after every stage.
	ShowStages bool

	// ShowDiffs is whether a diff against the previous stage is printed after
	// every stage that changed the grammar.
	ShowDiffs bool

	// ShowStats is whether a table of variable and production counts per
	// stage is printed after the pipeline runs.
	ShowStats bool

	// MaxSteps is the recognizer step budget for a single query.
	MaxSteps int

	// NormalizeUnicode is whether grammar source and queries are put in
	// Unicode normalization form C before use.
	NormalizeUnicode bool

	// Width is the console width that messages are wrapped to.
	Width int

	// Journal is where grammars and queries are recorded. If its Type is
	// DatabaseNone, nothing is recorded.
	Journal Database

	// LoadSnapshot is the path of a binary grammar snapshot. If set, the
	// grammar in it is queried as-is instead of reading and normalizing
	// GrammarFile. It is only settable from the command line.
	LoadSnapshot string

	// SaveSnapshot is the path the final grammar of every run is written to as
	// a binary snapshot. It is only settable from the command line.
	SaveSnapshot string

	// ForceDirect makes the driver read input directly from its input stream
	// even when it is attached to a terminal. It is only settable from the
	// command line.
	ForceDirect bool
}

// fileConfig is the layout of a TOML config file. Pointers distinguish unset
// keys from false and zero values.
type fileConfig struct {
	Grammar          string `toml:"grammar"`
	StopWord         string `toml:"stop_word"`
	ShowStages       *bool  `toml:"show_stages"`
	ShowDiffs        *bool  `toml:"show_diffs"`
	ShowStats        *bool  `toml:"show_stats"`
	MaxSteps         int    `toml:"max_steps"`
	NormalizeUnicode *bool  `toml:"normalize_unicode"`
	Width            int    `toml:"width"`
	Journal          string `toml:"journal"`
}

// Default returns the Config used when no config file is given.
func Default() Config {
	return Config{
		GrammarFile:      DefaultGrammarFile,
		StopWord:         DefaultStopWord,
		ShowStages:       true,
		MaxSteps:         recognize.DefaultMaxSteps,
		NormalizeUnicode: true,
		Width:            DefaultWidth,
		Journal:          Database{Type: DatabaseNone},
	}
}

// Load reads the TOML config file at path. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return parse(string(data))
}

func parse(data string) (Config, error) {
	var fc fileConfig
	md, err := toml.Decode(data, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i := range undec {
			keys[i] = undec[i].String()
		}
		return Config{}, fmt.Errorf("decode config: unknown key(s): %s", strings.Join(keys, ", "))
	}

	cfg := Default()
	if fc.Grammar != "" {
		cfg.GrammarFile = fc.Grammar
	}
	if fc.StopWord != "" {
		cfg.StopWord = fc.StopWord
	}
	if fc.ShowStages != nil {
		cfg.ShowStages = *fc.ShowStages
	}
	if fc.ShowDiffs != nil {
		cfg.ShowDiffs = *fc.ShowDiffs
	}
	if fc.ShowStats != nil {
		cfg.ShowStats = *fc.ShowStats
	}
	if fc.MaxSteps != 0 {
		cfg.MaxSteps = fc.MaxSteps
	}
	if fc.NormalizeUnicode != nil {
		cfg.NormalizeUnicode = *fc.NormalizeUnicode
	}
	if fc.Width != 0 {
		cfg.Width = fc.Width
	}
	if fc.Journal != "" {
		cfg.Journal, err = ParseDBConnString(fc.Journal)
		if err != nil {
			return Config{}, fmt.Errorf("journal: %w", err)
		}
	}

	return cfg, nil
}

// FillDefaults returns a new Config identical to cfg but with unset values set
// to their defaults. Boolean settings have no unset state and are left alone.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg
	def := Default()

	if newCFG.GrammarFile == "" {
		newCFG.GrammarFile = def.GrammarFile
	}
	if newCFG.StopWord == "" {
		newCFG.StopWord = def.StopWord
	}
	if newCFG.MaxSteps == 0 {
		newCFG.MaxSteps = def.MaxSteps
	}
	if newCFG.Width == 0 {
		newCFG.Width = def.Width
	}
	if newCFG.Journal.Type == "" {
		newCFG.Journal.Type = DatabaseNone
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if cfg.GrammarFile == "" {
		return fmt.Errorf("grammar file: must not be empty")
	}
	if strings.TrimSpace(cfg.StopWord) == "" {
		return fmt.Errorf("stop word: must contain non-space characters")
	}
	if cfg.MaxSteps < 1 {
		return fmt.Errorf("max steps: must be at least 1, but is %d", cfg.MaxSteps)
	}
	if cfg.Width < MinWidth {
		return fmt.Errorf("width: must be at least %d, but is %d", MinWidth, cfg.Width)
	}
	if cfg.Journal.Type != DatabaseNone {
		if err := cfg.Journal.Validate(); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	return nil
}
