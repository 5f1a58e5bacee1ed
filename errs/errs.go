/*
Package errs defines the four error kinds raised across the Loom
pipeline: LexError, ParseError, CompileError, and RuntimeError. Each
kind wraps a position and a message via github.com/pkg/errors so that
callers can still walk to the root cause with errors.Cause, the same
way db47h-ngaro's VM wraps panics with errors.Wrapf to preserve context
while keeping a single leaf message for display.

The CLI driver treats all four kinds uniformly: it prints one line
"Error: <message>" and exits. Nothing in the pipeline recovers from one
of these internally; there is no exception-catching construct in the
language itself.
*/
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which stage raised an error.
type Kind string

const (
	Lex     Kind = "LexError"
	Parse   Kind = "ParseError"
	Compile Kind = "CompileError"
	Runtime Kind = "RuntimeError"
)

// Positioned is the minimal coordinate interface an error can carry.
// token.Position satisfies it without errs importing token, avoiding a
// dependency cycle (token is a leaf package).
type Positioned interface {
	String() string
}

// Error is the concrete error type for all four kinds. Position is
// optional (RuntimeError cases like stack underflow have none).
type Error struct {
	Kind    Kind
	Pos     Positioned
	Message string
	cause   error
}

// New builds an Error with no wrapped cause.
func New(kind Kind, pos Positioned, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that records cause as its underlying error,
// reachable via errors.Cause.
func Wrap(cause error, kind Kind, pos Positioned, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// Error implements the error interface. Position, when present, is
// folded into the message so a bare fmt.Println(err) is already
// useful; the CLI drops the "Kind:" prefix, keeping Message and, when
// present, the position (see Display).
func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Cause implements the github.com/pkg/errors Causer interface.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports the standard library's errors.Is/As as well.
func (e *Error) Unwrap() error { return e.cause }

// Display renders the single line the CLI driver prints on any
// pipeline failure: "Error: <message>", with no kind prefix and no
// stack trace.
func Display(err error) string {
	if e, ok := err.(*Error); ok {
		if e.Pos != nil {
			return fmt.Sprintf("Error: %s (at %s)", e.Message, e.Pos.String())
		}
		return fmt.Sprintf("Error: %s", e.Message)
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
