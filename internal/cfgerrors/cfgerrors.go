// Package cfgerrors contains the error kinds raised while building a grammar
// from its textual form.
package cfgerrors

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched by every error produced when grammar source
// text cannot be read or does not follow the rule notation. Check for it with
// errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// malformedError is an error caused by attempting to read grammar source. It
// includes a human-readable message to show to an operator as well as a more
// technical "error message" style message.
type malformedError struct {
	msg   string
	human string
	wrap  error
}

func (e *malformedError) Error() string {
	return e.msg
}

// UserMessage shows the message that should be displayed to the operator to
// describe the error.
func (e *malformedError) UserMessage() string {
	return e.human
}

// Unwrap gives the error that the malformedError wraps, if it wraps one.
func (e *malformedError) Unwrap() error {
	return e.wrap
}

// Is returns whether target is ErrMalformedInput. All malformedErrors are.
func (e *malformedError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Malformed returns a new malformed-input error that has both the message to
// show the operator and the technical description of the error.
func Malformed(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("malformed input: %s", human)
	}
	return &malformedError{
		msg:   technical,
		human: human,
	}
}

// Malformedf returns a new malformed-input error that has a message to show to
// the operator and an automatically generated Error() description.
func Malformedf(humanFormat string, a ...interface{}) error {
	return Malformed(fmt.Sprintf(humanFormat, a...), "")
}

// WrapMalformed returns a new malformed-input error that has both the message
// to show the operator and the technical description of the error, and that
// wraps the given error.
func WrapMalformed(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("malformed input: %s: %v", human, e)
	}
	return &malformedError{
		msg:   technical,
		human: human,
		wrap:  e,
	}
}

// AtLine returns a copy of err with the line number of the grammar source
// prefixed to both of its messages. If err is not a malformed-input error it is
// returned unchanged.
func AtLine(err error, line int) error {
	var me *malformedError
	if !errors.As(err, &me) {
		return err
	}
	return &malformedError{
		msg:   fmt.Sprintf("line %d: %s", line, me.msg),
		human: fmt.Sprintf("Line %d: %s", line, me.human),
		wrap:  me.wrap,
	}
}

// UserMessage gets the message to display to the console for the given error.
// If it is a malformed-input error, the operator message is returned.
// Otherwise, err.Error() is returned.
func UserMessage(err error) string {
	var me *malformedError
	if errors.As(err, &me) {
		return me.UserMessage()
	}
	return err.Error()
}
