package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

// conversion failures; all but ErrIO are properties of the document itself
var (
	ErrMissingEventsSection = errors.New("document has no [Events] section")
	ErrMissingFormat        = errors.New("dialogue line before Format line")
	ErrMissingField         = errors.New("format line missing required field")
	ErrFieldCountMismatch   = errors.New("dialogue field count mismatch")
	ErrInvalidTimecode      = errors.New("invalid timecode")
	ErrIO                   = errors.New("i/o error")
)

// Format line lacks one or more of Start, End, Text
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf(
		"format line missing required field(s): %s",
		strings.Join(e.Fields, ", "),
	)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// Dialogue line has fewer fields than its Format line declares
type FieldCountError struct {
	Want int
	Got  int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", e.Want, e.Got)
}

func (e *FieldCountError) Unwrap() error {
	return ErrFieldCountMismatch
}

type TimecodeError struct {
	Value  string
	Reason string
}

func (e *TimecodeError) Error() string {
	return fmt.Sprintf("invalid timecode %q: %s", e.Value, e.Reason)
}

func (e *TimecodeError) Unwrap() error {
	return ErrInvalidTimecode
}

// attaches the 1-based input line number to a document error
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
