// Package cfgnorm contains a CLI-driven engine that reads a grammar, normalizes
// it for top-down recognition, and answers membership queries against it until
// the user quits.
package cfgnorm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/dekarrin/cfgnorm/internal/cfgerrors"
	"github.com/dekarrin/cfgnorm/internal/config"
	"github.com/dekarrin/cfgnorm/internal/grammar"
	"github.com/dekarrin/cfgnorm/internal/input"
	"github.com/dekarrin/cfgnorm/internal/pipeline"
	"github.com/dekarrin/cfgnorm/internal/recognize"
	"github.com/dekarrin/cfgnorm/server/dao"
	"github.com/dekarrin/cfgnorm/server/normsvc"
)

const (
	msgAgain       = "Do you want to run the program again (y/n)? "
	msgChangeInput = "You can now change the input file and run the program again"
)

// stageHeadings is printed above the grammar of each stage.
var stageHeadings = map[string]string{
	pipeline.StageInitial:       "The following grammar has been initially formed:",
	pipeline.StageNullable:      "After removal of nullable variables:",
	pipeline.StageReduce:        "After removal of non-generating and unreachable variables:",
	pipeline.StageLeftRecursion: "After elimination of left recursion:",
	pipeline.StageLeftFactor:    "After left factoring:",
}

// answers to the restart prompt; the second of each pair is the same key on a
// Cyrillic layout.
var (
	answersYes = []rune{'y', 'Y', 'н', 'Н'}
	answersNo  = []rune{'n', 'N', 'т', 'Т'}
)

// Engine contains the things needed to run normalization sessions from an
// interactive shell attached to an input stream and an output stream.
type Engine struct {
	cfg         config.Config
	in          input.LineReader
	out         *bufio.Writer
	interactive bool
	running     bool

	// journal is nil when nothing is recorded.
	journal *normsvc.Service
}

// session is the grammar being queried in one run of the engine.
type session struct {
	final grammar.Grammar

	// id is the journal ID of the grammar, or uuid.Nil if queries on it are
	// not journaled.
	id uuid.UUID
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream. Unset values in cfg take their
// defaults.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin. If
// nil is given for the output stream, a bufio.Writer is opened on stdout.
func New(inputStream io.Reader, outputStream io.Writer, cfg config.Config) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	eng := &Engine{
		cfg:         cfg,
		out:         bufio.NewWriter(outputStream),
		interactive: !cfg.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout,
	}

	if cfg.Journal.Type != config.DatabaseNone {
		store, err := cfg.Journal.Connect()
		if err != nil {
			return nil, fmt.Errorf("connect to journal: %w", err)
		}
		svc, err := normsvc.New(store, normsvc.Options{
			MaxSteps:         cfg.MaxSteps,
			NormalizeUnicode: cfg.NormalizeUnicode,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("initializing journal: %w", err)
		}
		eng.journal = &svc
	}

	if eng.interactive {
		icr, err := input.NewInteractiveReader()
		if err != nil {
			eng.closeJournal()
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
		eng.in = icr
	} else {
		eng.in = input.NewDirectReader(inputStream, outputStream)
	}

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode and the journal.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	if err := eng.in.Close(); err != nil {
		return fmt.Errorf("close input reader: %w", err)
	}
	if err := eng.closeJournal(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	return nil
}

func (eng *Engine) closeJournal() error {
	if eng.journal == nil {
		return nil
	}
	return eng.journal.DB.Close()
}

// RunUntilQuit reads and normalizes the grammar, answers queries until the stop
// word is given, and then offers to start over. It returns once the user
// declines or input runs out. Malformed grammar input is reported to the user
// and does not end the engine.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "cfgnorm grammar normalizer\n"
	if eng.cfg.ForceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "==========================\n"
	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	ctx := context.Background()
	for eng.running {
		err := eng.runOnce(ctx)
		if err != nil {
			if isEndOfInput(err) {
				break
			}
			if !errors.Is(err, cfgerrors.ErrMalformedInput) {
				return err
			}

			consoleMessage := rosed.Edit(cfgerrors.UserMessage(err)).Wrap(eng.cfg.Width).String()
			if eng.interactive {
				consoleMessage = pterm.Error.Sprint(consoleMessage)
			}
			if err := eng.write(consoleMessage + "\n\n"); err != nil {
				return err
			}
		}

		again, err := eng.askAgain()
		if err != nil {
			if isEndOfInput(err) {
				break
			}
			return err
		}
		if !again {
			break
		}
		if err := eng.write("\n"); err != nil {
			return err
		}
	}

	return eng.write("Goodbye\n")
}

// runOnce does a single read-normalize-query cycle.
func (eng *Engine) runOnce(ctx context.Context) error {
	var sess session
	var err error

	if eng.cfg.LoadSnapshot != "" {
		sess, err = eng.loadSnapshot()
	} else {
		sess, err = eng.normalize(ctx)
	}
	if err != nil {
		return err
	}

	if err := eng.queryLoop(ctx, sess); err != nil {
		return err
	}
	return eng.write("\n")
}

// normalize reads the grammar file, runs it through the pipeline and shows the
// stages.
func (eng *Engine) normalize(ctx context.Context) (session, error) {
	data, err := os.ReadFile(eng.cfg.GrammarFile)
	if err != nil {
		return session{}, cfgerrors.WrapMalformed(err, fmt.Sprintf("could not read grammar file: %v", err), "")
	}

	var sess session
	var res pipeline.Result
	if eng.journal != nil {
		var rec dao.Grammar
		rec, res, _, err = eng.journal.CreateGrammar(ctx, string(data))
		if err != nil {
			return session{}, err
		}
		sess.id = rec.ID
	} else {
		g, err := grammar.ParseWith(bytes.NewReader(data), grammar.ParseOptions{NormalizeUnicode: eng.cfg.NormalizeUnicode})
		if err != nil {
			return session{}, err
		}
		res = pipeline.Run(g)
	}
	sess.final = res.Final()

	if err := eng.showResult(res); err != nil {
		return session{}, err
	}

	if eng.cfg.SaveSnapshot != "" {
		if err := saveSnapshot(eng.cfg.SaveSnapshot, sess.final); err != nil {
			return session{}, err
		}
	}

	return sess, nil
}

func (eng *Engine) loadSnapshot() (session, error) {
	data, err := os.ReadFile(eng.cfg.LoadSnapshot)
	if err != nil {
		return session{}, cfgerrors.WrapMalformed(err, fmt.Sprintf("could not read snapshot file: %v", err), "")
	}

	var g grammar.Grammar
	if err := g.UnmarshalBinary(data); err != nil {
		return session{}, cfgerrors.WrapMalformed(err, fmt.Sprintf("%s is not a grammar snapshot", eng.cfg.LoadSnapshot), "")
	}

	if err := eng.writeGrammar("Loaded normalized grammar from "+eng.cfg.LoadSnapshot+":", g); err != nil {
		return session{}, err
	}
	return session{final: g}, nil
}

func saveSnapshot(path string, g grammar.Grammar) error {
	data, err := g.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// showResult prints the stages of res as configured.
func (eng *Engine) showResult(res pipeline.Result) error {
	for i, st := range res.Stages {
		last := i == len(res.Stages)-1
		if !eng.cfg.ShowStages && !last {
			continue
		}

		if eng.cfg.ShowDiffs && i > 0 {
			diff, err := pipeline.Diff(res.Stages[i-1], st)
			if err != nil {
				return err
			}
			if diff == "" {
				diff = "(no change)\n"
			}
			if err := eng.write(diff); err != nil {
				return err
			}
		}

		if err := eng.writeGrammar(stageHeadings[st.Name], st.Grammar); err != nil {
			return err
		}
	}

	if eng.cfg.ShowStats {
		table := rosed.Edit("").
			InsertTableOpts(0, res.StatsTable(), eng.cfg.Width, rosed.Options{
				TableHeaders:             true,
				NoTrailingLineSeparators: true,
			}).
			String()
		if err := eng.write(table + "\n\n"); err != nil {
			return err
		}
	}

	return nil
}

func (eng *Engine) writeGrammar(heading string, g grammar.Grammar) error {
	if eng.interactive {
		heading = pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(heading)
	}
	return eng.write(heading + "\n" + g.String() + "\n\n")
}

// queryLoop answers queries against the session grammar until the stop word is
// read.
func (eng *Engine) queryLoop(ctx context.Context, sess session) error {
	rec := recognize.New(sess.final,
		recognize.WithMaxSteps(eng.cfg.MaxSteps),
		recognize.NormalizeInput(eng.cfg.NormalizeUnicode),
	)
	prompt := fmt.Sprintf("Enter a string to check if it belongs to the language ('%s' to stop): ", eng.cfg.StopWord)

	eng.in.AllowBlank(true)
	eng.in.KeepSpace(true)
	defer func() {
		eng.in.AllowBlank(false)
		eng.in.KeepSpace(false)
	}()

	for {
		line, err := eng.readLine(prompt)
		if err != nil {
			return err
		}
		if line == eng.cfg.StopWord {
			return nil
		}

		var accepted bool
		if sess.id != uuid.Nil {
			var q dao.Query
			q, err = eng.journal.Recognize(ctx, sess.id, line)
			accepted = q.Result
		} else {
			accepted, err = rec.Match(line)
		}

		var answer string
		if errors.Is(err, recognize.ErrBudgetExhausted) {
			answer = rosed.Edit("no answer: " + recognize.ErrBudgetExhausted.Error()).Wrap(eng.cfg.Width).String()
		} else if errors.Is(err, recognize.ErrLeftRecursive) {
			answer = rosed.Edit("no answer: " + recognize.ErrLeftRecursive.Error()).Wrap(eng.cfg.Width).String()
		} else if err != nil {
			return fmt.Errorf("recognize %q: %w", line, err)
		} else {
			answer = strconv.FormatBool(accepted)
		}

		if err := eng.write(answer + "\n"); err != nil {
			return err
		}
	}
}

// askAgain asks whether to run again until it gets an answer it understands.
func (eng *Engine) askAgain() (bool, error) {
	if err := eng.write(msgChangeInput + "\n"); err != nil {
		return false, err
	}

	eng.in.AllowBlank(true)
	defer eng.in.AllowBlank(false)

	for {
		line, err := eng.readLine(msgAgain)
		if err != nil {
			return false, err
		}
		if line == "" {
			continue
		}

		first := []rune(line)[0]
		if containsRune(answersYes, first) {
			return true, nil
		}
		if containsRune(answersNo, first) {
			return false, nil
		}
	}
}

// readLine flushes pending output and reads a line after showing prompt.
func (eng *Engine) readLine(prompt string) (string, error) {
	if err := eng.out.Flush(); err != nil {
		return "", fmt.Errorf("could not flush output: %w", err)
	}
	eng.in.SetPrompt(prompt)
	return eng.in.ReadLine()
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}

func containsRune(rs []rune, r rune) bool {
	return strings.ContainsRune(string(rs), r)
}
