package inspect

import (
	"unicode/utf8"
)

// class is the result of classifying a composite once.
type class struct {
	// base is the annotation printed after the opening brace, with a leading
	// space, or empty for plain objects and arrays.
	base string
	// bare is the whole rendering when there are no keys to show. Empty for
	// plain objects and arrays.
	bare   string
	keys   []Key
	braces [2]string
	array  *Array
}

// classify inspects a composite in fixed priority order: function, regexp,
// date, error, boxed primitive, array, plain object.
func (c *context) classify(v Composite) class {
	props := v.Props()
	cl := class{
		keys:   props.Keys(),
		braces: [2]string{"{", "}"},
	}

	switch t := v.(type) {
	case *Function:
		annotation := "[Function]"
		if t.Name != "" {
			annotation = "[Function: " + t.Name + "]"
		}
		cl.base = " " + annotation
		cl.bare = c.stylize(annotation, styleSpecial)
	case *RegExp:
		cl.base = " " + t.String()
		cl.bare = c.stylize(t.String(), styleRegExp)
	case *Date:
		cl.base = " " + t.UTCString()
		cl.bare = c.stylize(t.String(), styleDate)
	case *Error:
		annotation := "[" + t.String() + "]"
		cl.base = " " + annotation
		cl.bare = annotation
	case *Boxed:
		raw, ok := primitiveOf(t)
		if !ok {
			break
		}
		var label string
		switch p := raw.(type) {
		case String:
			label = "String"
			cl.keys = withoutCharIndices(cl.keys, utf8.RuneCountInString(string(p)))
		case Number:
			label = "Number"
		case Bool:
			label = "Boolean"
		}
		formatted, _ := c.formatPrimitive(raw)
		annotation := "[" + label + ": " + formatted + "]"
		cl.base = " " + annotation
		cl.bare = annotation
	case *Array:
		cl.array = t
		cl.braces = [2]string{"[", "]"}
	}
	return cl
}

// primitiveOf runs the convert-to-primitive hook of b. Errors, panics and
// non-primitive results all report ok == false.
func primitiveOf(b *Boxed) (v Value, ok bool) {
	if b.ValueOf == nil {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			v, ok = nil, false
		}
	}()
	raw, err := b.ValueOf()
	if err != nil {
		return nil, false
	}
	switch raw.(type) {
	case String, Number, Bool:
		return raw, true
	}
	return nil, false
}

// withoutCharIndices drops index keys in [0, n).
func withoutCharIndices(keys []Key, n int) []Key {
	out := keys[:0:0]
	for _, k := range keys {
		if i := k.index(); i >= 0 && i < n {
			continue
		}
		out = append(out, k)
	}
	return out
}

// isNilComposite reports whether v is a typed nil pointer.
func isNilComposite(v Composite) bool {
	switch t := v.(type) {
	case *Object:
		return t == nil
	case *Array:
		return t == nil
	case *Function:
		return t == nil
	case *RegExp:
		return t == nil
	case *Date:
		return t == nil
	case *Error:
		return t == nil
	case *Boxed:
		return t == nil
	}
	return false
}
