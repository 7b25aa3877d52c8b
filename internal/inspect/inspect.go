package inspect

import (
	"strings"
)

// context is the per-call traversal state.
type context struct {
	// seen holds the composites on the active render path.
	seen   map[Composite]struct{}
	colors bool
}

// Inspect renders v. Without options it descends DefaultDepth levels and
// emits no color codes.
func Inspect(v Value, opts ...Option) string {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return InspectWith(v, o)
}

// InspectWith renders v with explicit options.
func InspectWith(v Value, o Options) string {
	c := &context{
		seen:   make(map[Composite]struct{}),
		colors: o.Colors,
	}
	return c.formatValue(v, o.Depth)
}

func (c *context) formatValue(v Value, depth Depth) string {
	if s, ok := c.formatPrimitive(v); ok {
		return s
	}

	comp, ok := v.(Composite)
	if !ok || isNilComposite(comp) {
		return c.stylize("null", styleNull)
	}

	cl := c.classify(comp)
	if len(cl.keys) == 0 && cl.bare != "" {
		return cl.bare
	}
	if len(cl.keys) == 0 && (cl.array == nil || cl.array.Len() == 0) {
		return cl.braces[0] + cl.base + cl.braces[1]
	}

	if depth.exhausted() {
		if r, ok := comp.(*RegExp); ok {
			return c.stylize(r.String(), styleRegExp)
		}
		return c.stylize("[Object]", styleSpecial)
	}

	c.push(comp)
	defer c.pop(comp)

	visible := make(map[Key]bool, len(cl.keys))
	for _, k := range comp.Props().Keys() {
		visible[k] = true
	}

	var output []string
	if cl.array != nil {
		output = c.formatArray(cl.array, cl.keys, visible, depth)
	} else {
		output = make([]string, 0, len(cl.keys))
		for _, k := range cl.keys {
			output = append(output, c.formatProperty(comp.Props(), k, visible, depth, false))
		}
	}

	return reduceToSingleString(output, cl.base, cl.braces)
}

func (c *context) push(v Composite) {
	c.seen[v] = struct{}{}
}

func (c *context) pop(v Composite) {
	delete(c.seen, v)
}

// onPath reports whether v is a composite currently being rendered.
func (c *context) onPath(v Value) bool {
	comp, ok := v.(Composite)
	if !ok {
		return false
	}
	_, seen := c.seen[comp]
	return seen
}

// formatArray renders indices 0..Len()-1, holes as empty fragments, then the
// remaining non-index keys.
func (c *context) formatArray(a *Array, keys []Key, visible map[Key]bool, depth Depth) []string {
	props := a.Props()
	output := make([]string, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		k := IndexKey(i)
		if props.Has(k) {
			output = append(output, c.formatProperty(props, k, visible, depth, true))
		} else {
			output = append(output, "")
		}
	}
	for _, k := range keys {
		if k.IsSymbol() || !k.isIndex() {
			output = append(output, c.formatProperty(props, k, visible, depth, true))
		}
	}
	return output
}

func (c *context) formatProperty(props *Properties, key Key, visible map[Key]bool, depth Depth, array bool) string {
	desc, ok := props.Descriptor(key)
	if !ok {
		desc = Descriptor{Value: Undefined}
	}

	var str string
	switch {
	case desc.Get != nil && desc.Set != nil:
		str = c.stylize("[Getter/Setter]", styleSpecial)
	case desc.Get != nil:
		str = c.stylize("[Getter]", styleSpecial)
	case desc.Set != nil:
		str = c.stylize("[Setter]", styleSpecial)
	case c.onPath(desc.Value):
		str = c.stylize("[Circular]", styleSpecial)
	default:
		str = c.formatChild(desc.Value, depth.next())
		if strings.Contains(str, "\n") {
			if array {
				str = indentLines(str, "  ")[2:]
			} else {
				str = "\n" + indentLines(str, "   ")
			}
		}
	}

	if key.IsSymbol() || !visible[key] {
		return "[" + key.Name() + "]: " + str
	}
	if array && key.isIndex() {
		return str
	}
	name := formatName(key.Name())
	if !isIdentifier(key.Name()) {
		name = c.stylize(name, styleString)
	}
	return name + ": " + str
}

// formatChild renders one property value. A panic while rendering is contained
// to this property.
func (c *context) formatChild(v Value, depth Depth) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = c.stylize("[Uninspectable]", styleSpecial)
		}
	}()
	return c.formatValue(v, depth)
}

// indentLines prefixes every line of s with indent.
func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
