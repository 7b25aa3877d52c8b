package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch matches every *TypeError.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// Problem names what is wrong with a setting that has the right type.
type Problem uint8

const (
	// ProblemNegative marks a depth or duration below zero.
	ProblemNegative Problem = iota + 1
	// ProblemNotAllowed marks a value outside its fixed set of choices.
	ProblemNotAllowed
)

func (p Problem) String() string {
	switch p {
	case ProblemNegative:
		return "negative"
	case ProblemNotAllowed:
		return "not_allowed"
	}
	return "unknown"
}

// ValidationError reports one setting with an unusable value.
type ValidationError struct {
	Path    string
	Value   any
	Problem Problem
	// Allowed lists the accepted choices for ProblemNotAllowed.
	Allowed []string
}

func (e *ValidationError) Error() string {
	switch e.Problem {
	case ProblemNegative:
		return fmt.Sprintf("%s must not be negative, got %v", e.Path, e.Value)
	case ProblemNotAllowed:
		return fmt.Sprintf("%s must be one of %s, got %q", e.Path, strings.Join(e.Allowed, ", "), e.Value)
	}
	return fmt.Sprintf("%s is invalid: %v", e.Path, e.Value)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// TypeError reports a setting whose source value has the wrong type.
type TypeError struct {
	Path string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: want %s, got %s (%v)", e.Path, e.Want, typeName(e.Got), e.Got)
}

func (e *TypeError) Is(target error) bool { return target == ErrTypeMismatch }
