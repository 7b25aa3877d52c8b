package compiler

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// DefaultName is the chunk name used when none is given.
const DefaultName = "repl"

// Options controls compilation.
type Options struct {
	// Listing keeps the bytecode listing on the program.
	Listing bool
}

// Program is compiled source.
type Program struct {
	Name   string
	Source string
	Proto  *lua.FunctionProto

	// Listing is the bytecode listing; empty unless requested.
	Listing string
}

// Compile parses and compiles source.
func Compile(name, source string, opts Options) (*Program, error) {
	if name == "" {
		name = DefaultName
	}
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, syntaxError(name, err)
	}

	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, syntaxError(name, err)
	}

	prog := &Program{
		Name:   name,
		Source: source,
		Proto:  proto,
	}
	if opts.Listing {
		prog.Listing = proto.String()
	}
	return prog, nil
}

// syntaxError converts parser and compiler failures.
func syntaxError(name string, err error) *SyntaxError {
	se := &SyntaxError{
		Name:    name,
		Message: err.Error(),
		Err:     err,
	}

	var parseErr *parse.Error
	if errors.As(err, &parseErr) {
		se.Line = parseErr.Pos.Line
		se.Column = parseErr.Pos.Column
		se.Token = parseErr.Token
		se.Message = parseErr.Message
		return se
	}

	var compileErr *lua.CompileError
	if errors.As(err, &compileErr) {
		se.Line = compileErr.Line
		se.Message = compileErr.Message
	}
	return se
}
