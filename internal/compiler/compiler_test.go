package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/gopher-lua/parse"
)

func TestCompile(t *testing.T) {
	prog, err := Compile("sample", "local x = 1\nprint(x)\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, "sample", prog.Name)
	assert.Equal(t, "local x = 1\nprint(x)\n", prog.Source)
	require.NotNil(t, prog.Proto)
	assert.Empty(t, prog.Listing, "listing is off by default")
}

func TestCompileDefaultName(t *testing.T) {
	prog, err := Compile("", "x = 1", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultName, prog.Name)
}

func TestCompileListing(t *testing.T) {
	prog, err := Compile("sample", "local x = 1\nreturn x", Options{Listing: true})
	require.NoError(t, err)

	assert.NotEmpty(t, prog.Listing)
	assert.Contains(t, prog.Listing, "RETURN")
	assert.Equal(t, prog.Proto.String(), prog.Listing)
}

func TestCompileEmptySource(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t\n"} {
		_, err := Compile("empty", src, Options{})
		assert.ErrorIs(t, err, ErrEmptySource, "source %q", src)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile("broken", "x = 1\ny = = 2\n", Options{})
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr), "got %T", err)
	assert.Equal(t, "broken", syntaxErr.Name)
	assert.Equal(t, 2, syntaxErr.Line)
	assert.NotEmpty(t, syntaxErr.Message)

	var parseErr *parse.Error
	assert.True(t, errors.As(err, &parseErr), "cause is kept")
}

func TestCompileUnterminatedString(t *testing.T) {
	_, err := Compile("broken", `print("open`, Options{})

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr), "got %T", err)
	assert.Equal(t, 1, syntaxErr.Line)
}

func TestSyntaxErrorMessage(t *testing.T) {
	tests := []struct {
		err  *SyntaxError
		want string
	}{
		{&SyntaxError{Name: "a", Line: 2, Column: 5, Message: "bad"}, "a:2:5: bad"},
		{&SyntaxError{Name: "a", Line: 2, Message: "bad"}, "a:2: bad"},
		{&SyntaxError{Name: "a", Message: "bad"}, "a: bad"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}

	cause := errors.New("cause")
	assert.ErrorIs(t, &SyntaxError{Err: cause}, cause)
}
