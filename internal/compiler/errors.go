package compiler

import (
	"errors"
	"fmt"
)

// ErrEmptySource is returned when the source holds nothing but whitespace.
var ErrEmptySource = errors.New("empty source")

// SyntaxError describes source that could not be parsed or compiled.
type SyntaxError struct {
	// Name is the chunk name the source was compiled under.
	Name string
	// Line is the 1-based line of the error, or 0 when unknown.
	Line int
	// Column is the 1-based column of the error, or 0 when unknown.
	Column int
	// Token is the offending token, if any.
	Token string
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

func (e *SyntaxError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Name, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
