package inspect

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatPrimitive renders v if it is a primitive. ok is false for composites.
func (c *context) formatPrimitive(v Value) (s string, ok bool) {
	switch p := v.(type) {
	case nil, undefinedValue:
		return c.stylize("undefined", styleUndefined), true
	case nullValue:
		return c.stylize("null", styleNull), true
	case Bool:
		return c.stylize(strconv.FormatBool(bool(p)), styleBoolean), true
	case Number:
		return c.stylize(FormatNumber(float64(p)), styleNumber), true
	case String:
		return c.stylize(QuoteString(string(p)), styleString), true
	case *Symbol:
		if p == nil {
			return c.stylize("null", styleNull), true
		}
		return c.stylize(p.String(), styleSymbol), true
	}
	return "", false
}

// FormatNumber renders f the way script engines convert numbers to text, except
// that negative zero keeps its sign.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		if exp == "" {
			exp = "0"
		}
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// QuoteString renders s as a single-quoted literal.
func QuoteString(s string) string {
	q := jsonQuote(s)
	q = q[1 : len(q)-1]
	q = strings.ReplaceAll(q, "'", `\'`)
	q = strings.ReplaceAll(q, `\"`, `"`)
	return "'" + q + "'"
}

// formatName renders a property name, bare when it is a plain identifier.
func formatName(name string) string {
	if isIdentifier(name) {
		return name
	}
	q := jsonQuote(name)
	q = strings.ReplaceAll(q, "'", `\'`)
	q = strings.ReplaceAll(q, `\"`, `"`)
	q = "'" + q[1:len(q)-1] + "'"
	return strings.ReplaceAll(q, `\\`, `\`)
}

// isIdentifier matches ^[A-Za-z_][A-Za-z_0-9]*$.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

const hexDigits = "0123456789abcdef"

// jsonQuote quotes s with JSON string escaping: quote, backslash and the
// control characters are escaped, everything else is kept verbatim.
func jsonQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '\b':
				b.WriteString(`\b`)
			case '\f':
				b.WriteString(`\f`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				if c < 0x20 {
					b.WriteString(`\u00`)
					b.WriteByte(hexDigits[c>>4])
					b.WriteByte(hexDigits[c&0xf])
				} else {
					b.WriteByte(c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteString("\ufffd")
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
	return b.String()
}
