package inspect

import (
	"regexp"
	"unicode/utf16"
)

type style int

const (
	styleSpecial style = iota
	styleNumber
	styleBoolean
	styleUndefined
	styleNull
	styleString
	styleSymbol
	styleDate
	styleRegExp
)

// sgr holds the open and close SGR codes of each style.
var sgr = map[style][2]string{
	styleSpecial:   {"\x1b[36m", "\x1b[39m"},
	styleNumber:    {"\x1b[33m", "\x1b[39m"},
	styleBoolean:   {"\x1b[33m", "\x1b[39m"},
	styleUndefined: {"\x1b[90m", "\x1b[39m"},
	styleNull:      {"\x1b[1m", "\x1b[22m"},
	styleString:    {"\x1b[32m", "\x1b[39m"},
	styleSymbol:    {"\x1b[32m", "\x1b[39m"},
	styleDate:      {"\x1b[35m", "\x1b[39m"},
	styleRegExp:    {"\x1b[31m", "\x1b[39m"},
}

// stylize wraps s in the SGR codes of st when colors are enabled.
func (c *context) stylize(s string, st style) string {
	if !c.colors {
		return s
	}
	codes := sgr[st]
	return codes[0] + s + codes[1]
}

var colorCode = regexp.MustCompile("\x1b\\[\\d\\d?m")

// visibleWidth returns the length of s with color codes removed, counted in
// UTF-16 code units like a JavaScript string length.
func visibleWidth(s string) int {
	n := 0
	for _, r := range colorCode.ReplaceAllString(s, "") {
		n += utf16.RuneLen(r)
	}
	return n
}
