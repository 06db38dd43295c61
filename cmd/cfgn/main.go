/*
Cfgn starts an interactive grammar normalization session.

It reads a context-free grammar from a rules file, prints it after each
normalization stage (removal of nullable variables, removal of non-generating
and unreachable variables, elimination of left recursion, left factoring), and
then reads strings from stdin, printing for each whether it is in the language
of the grammar. Once the stop word is entered, it offers to run again so the
rules file can be edited in the meantime.

Usage:

	cfgn [flags]

The flags are:

	-v, --version
		Give the current version of cfgnorm and then exit.

	-c, --config FILE
		Read settings from the given TOML file. Flags given on the command line
		override the settings in it.

	-g, --grammar FILE
		Read the grammar rules from FILE. Defaults to "input.txt" in the current
		working directory.

	--save FILE
		Write the normalized grammar to FILE as a binary snapshot after every
		run.

	--load FILE
		Query the normalized grammar in the binary snapshot FILE instead of
		reading and normalizing a rules file.

	--stop WORD
		End the queries for a grammar when WORD is entered. Defaults to "s".

	--max-steps N
		Give up on a query after N production attempts.

	--quiet
		Only print the grammar after the last stage.

	--diffs
		Print a diff of every stage against the one before it.

	--stats
		Print the number of variables and productions after every stage.

	--journal DRIVER[:PARAMS]
		Record grammars and queries in the given DB. DRIVER must be one of
		inmem or sqlite; sqlite needs the path to the data directory, such as
		sqlite:path/to/db_dir.

	-t, --trace LEVEL
		Trace the normalization stages at the given level, one of Debug, Info,
		or Error. Defaults to Error.

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading input even if launched in a tty with stdin
		and stdout.
*/
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/pflag"

	"github.com/dekarrin/cfgnorm"
	"github.com/dekarrin/cfgnorm/internal/config"
	"github.com/dekarrin/cfgnorm/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitSessionError indicates an unsuccessful program execution due to a
	// problem during the session.
	ExitSessionError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the engine.
	ExitInitError
)

// traceKeys are the tracers set by the --trace flag.
var traceKeys = []string{"cfgnorm.grammar", "cfgnorm.recognize", "cfgnorm.pipeline"}

var (
	returnCode int = ExitSuccess

	flagVersion  = pflag.BoolP("version", "v", false, "Give the current version of cfgnorm and then exit.")
	flagConfig   = pflag.StringP("config", "c", "", "Read settings from the given TOML file.")
	flagGrammar  = pflag.StringP("grammar", "g", config.DefaultGrammarFile, "Read the grammar rules from the given file.")
	flagSave     = pflag.String("save", "", "Write the normalized grammar to the given file as a snapshot.")
	flagLoad     = pflag.String("load", "", "Query the normalized grammar in the given snapshot file.")
	flagStop     = pflag.String("stop", config.DefaultStopWord, "End the queries for a grammar with the given word.")
	flagMaxSteps = pflag.Int("max-steps", 0, "Give up on a query after the given number of production attempts.")
	flagQuiet    = pflag.Bool("quiet", false, "Only print the grammar after the last stage.")
	flagDiffs    = pflag.Bool("diffs", false, "Print a diff of every stage against the one before it.")
	flagStats    = pflag.Bool("stats", false, "Print grammar sizes after every stage.")
	flagJournal  = pflag.String("journal", "", "Record grammars and queries in the given DB.")
	flagTrace    = pflag.StringP("trace", "t", "Error", "Trace level [Debug|Info|Error].")
	flagDirect   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	level := tracing.TraceLevelFromString(*flagTrace)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	eng, initErr := cfgnorm.New(os.Stdin, os.Stdout, cfg)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	err = eng.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitSessionError
		return
	}
}

// buildConfig reads the config file if one was given and applies the flags
// that were set on top of it.
func buildConfig() (config.Config, error) {
	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			return cfg, err
		}
	}

	if pflag.Lookup("grammar").Changed {
		cfg.GrammarFile = *flagGrammar
	}
	if pflag.Lookup("stop").Changed {
		cfg.StopWord = *flagStop
	}
	if pflag.Lookup("max-steps").Changed {
		cfg.MaxSteps = *flagMaxSteps
	}
	if *flagQuiet {
		cfg.ShowStages = false
	}
	if *flagDiffs {
		cfg.ShowDiffs = true
	}
	if *flagStats {
		cfg.ShowStats = true
	}
	if pflag.Lookup("journal").Changed {
		db, err := config.ParseDBConnString(*flagJournal)
		if err != nil {
			return cfg, fmt.Errorf("--journal: %w", err)
		}
		cfg.Journal = db
	}

	cfg.LoadSnapshot = *flagLoad
	cfg.SaveSnapshot = *flagSave
	cfg.ForceDirect = *flagDirect

	if len(pflag.Args()) > 0 {
		return cfg, fmt.Errorf("too many arguments\nDo -h for help")
	}

	return cfg, nil
}
