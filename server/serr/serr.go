// Package serr holds the error values shared by the cfgnorm server layers.
//
// Its Error type can carry several causes at once, so a service error can be
// both a DB failure and the driver error behind it. errors.Is matches an Error
// against any error found in any of its cause chains.
package serr

import "errors"

var (
	ErrNotFound      = errors.New("the requested entity could not be found")
	ErrDB            = errors.New("an error occured with the DB")
	ErrBadArgument   = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal = errors.New("malformed data in request")
)

// Error is an error with a message and zero or more causes. Create one with
// New or WrapDB.
//
// The text of an Error is its message followed by the text of its first
// cause, or just one of the two if the other is missing.
type Error struct {
	msg   string
	cause []error
}

func (e Error) Error() string {
	if len(e.cause) == 0 {
		return e.msg
	}
	if e.msg == "" {
		return e.cause[0].Error()
	}
	return e.msg + ": " + e.cause[0].Error()
}

// Unwrap returns the causes of e, or nil if it has none.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether target is an Error with the same message and causes as
// e, or whether any cause chain of e contains target. Go 1.19 does not follow
// multi-error Unwrap, so the chains are walked here.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok && e.sameAs(errTarget) {
		return true
	}

	for i := range e.cause {
		if errors.Is(e.cause[i], target) {
			return true
		}
	}
	return false
}

func (e Error) sameAs(o Error) bool {
	if e.msg != o.msg || len(e.cause) != len(o.cause) {
		return false
	}
	for i := range e.cause {
		if e.cause[i] != o.cause[i] {
			return false
		}
	}
	return true
}

// WrapDB creates an Error caused by both err and ErrDB. msg may be left empty.
func WrapDB(msg string, err error) Error {
	return New(msg, err, ErrDB)
}

// New creates an Error with the given message and causes.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}
