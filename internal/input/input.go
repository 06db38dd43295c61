// Package input contains the line readers the cfgn driver uses to get queries
// and answers from the CLI or other sources of input.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line of user input at a time.
type LineReader interface {
	// ReadLine reads the next line. Trailing line terminators are never part
	// of the returned line.
	ReadLine() (string, error)

	// AllowBlank sets whether a line that is empty after trimming is returned
	// or skipped.
	AllowBlank(allow bool)

	// KeepSpace sets whether leading and trailing whitespace is kept.
	KeepSpace(keep bool)

	// SetPrompt updates the prompt shown before each line is read.
	SetPrompt(p string)

	Close() error
}

// DirectReader implements LineReader and reads lines from any generic input
// stream directly. It can be used generically with any io.Reader but does not
// sanitize the input of control and escape sequences. The prompt, if any, is
// written to the output stream given at creation.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	w             io.Writer
	prompt        string
	blanksAllowed bool
	keepSpace     bool
}

// InteractiveReader implements LineReader and reads lines from stdin using a go
// implementation of the GNU Readline library. This keeps input clear of all
// typing and editing escape sequences and enables the use of history. This
// should in general probably only be used when directly connecting to a TTY
// for input.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	keepSpace     bool
}

// NewDirectReader creates a DirectReader with a buffered reader on r. Prompts
// are written to w; if w is nil, prompts are not shown.
func NewDirectReader(r io.Reader, w io.Writer) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
		w: w,
	}
}

// NewInteractiveReader creates an InteractiveReader and initializes readline.
// The returned InteractiveReader must have Close() called on it before
// disposal to properly teardown readline resources.
func NewInteractiveReader() (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl: rl,
	}, nil
}

// Close cleans up resources associated with the DirectReader.
func (dr *DirectReader) Close() error {
	// nothing to release yet, but callers treat every LineReader as needing it
	return nil
}

// Close cleans up readline resources and other resources associated with the
// InteractiveReader.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadLine reads the next line from the input stream. Unless blank lines are
// allowed, this function is blocked on until a line containing non-space
// characters is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (dr *DirectReader) ReadLine() (string, error) {
	for {
		if dr.prompt != "" && dr.w != nil {
			if _, err := io.WriteString(dr.w, dr.prompt); err != nil {
				return "", fmt.Errorf("write prompt: %w", err)
			}
		}

		line, err := dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line, ok := cleanLine(line, dr.blanksAllowed, dr.keepSpace)
		if ok {
			return line, nil
		}
	}
}

// ReadLine reads the next line from stdin. Unless blank lines are allowed,
// this function is blocked on until a line consisting of more than empty or
// whitespace-only input is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (ir *InteractiveReader) ReadLine() (string, error) {
	for {
		line, err := ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line, ok := cleanLine(line, ir.blanksAllowed, ir.keepSpace)
		if ok {
			return line, nil
		}
	}
}

// cleanLine strips the line terminator from line and trims it unless space is
// kept. The returned bool is false if the line should be skipped.
func cleanLine(line string, blanksAllowed, keepSpace bool) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !keepSpace {
		line = strings.TrimSpace(line)
	}

	if strings.TrimSpace(line) == "" && !blanksAllowed {
		return "", false
	}
	return line, true
}

// AllowBlank sets whether blank input is returned. By default it is not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank input is returned. By default it is not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// KeepSpace sets whether surrounding whitespace is kept. By default it is
// trimmed.
func (dr *DirectReader) KeepSpace(keep bool) {
	dr.keepSpace = keep
}

// KeepSpace sets whether surrounding whitespace is kept. By default it is
// trimmed.
func (ir *InteractiveReader) KeepSpace(keep bool) {
	ir.keepSpace = keep
}

// SetPrompt updates the prompt to the given text.
func (dr *DirectReader) SetPrompt(p string) {
	dr.prompt = p
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.rl.SetPrompt(p)
}
