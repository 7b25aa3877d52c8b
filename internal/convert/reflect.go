package convert

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dshills/stormrepl/internal/inspect"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	regexpType = reflect.TypeOf((*regexp.Regexp)(nil))
	valueType  = reflect.TypeOf((*inspect.Value)(nil)).Elem()
)

// refKey identifies a reference-typed Go value. Slices include their length
// because two slices may share a backing array.
type refKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// seen maps each reference already converted to its value. A nil value marks
// a pointer whose target is still being converted.
type goConverter struct {
	seen map[refKey]inspect.Value
}

// FromGo converts a Go value to an inspect value.
func FromGo(v any) inspect.Value {
	c := &goConverter{seen: make(map[refKey]inspect.Value)}
	return c.convert(reflect.ValueOf(v))
}

func (c *goConverter) convert(rv reflect.Value) inspect.Value {
	if !rv.IsValid() {
		return inspect.Null
	}

	if special, ok := c.convertSpecial(rv); ok {
		return special
	}

	switch rv.Kind() {
	case reflect.Bool:
		return inspect.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return inspect.Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return inspect.Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return inspect.Number(rv.Float())
	case reflect.String:
		return inspect.String(rv.String())

	case reflect.Interface:
		if rv.IsNil() {
			return inspect.Null
		}
		return c.convert(rv.Elem())

	case reflect.Ptr:
		if rv.IsNil() {
			return inspect.Null
		}
		key := refKey{ptr: rv.Pointer(), typ: rv.Type()}
		if v, ok := c.seen[key]; ok {
			if v == nil {
				// A pointer reached again through pointers and interfaces
				// only; no composite exists to mark as circular.
				return typeOnly(rv)
			}
			return v
		}
		if special, ok := c.convertSpecial(rv.Elem()); ok {
			return special
		}
		if rv.Elem().Kind() == reflect.Struct {
			obj := inspect.NewObject()
			c.seen[key] = obj
			c.fillStruct(obj, rv.Elem())
			return obj
		}
		c.seen[key] = nil
		v := c.convert(rv.Elem())
		c.seen[key] = v
		return v

	case reflect.Slice:
		if rv.IsNil() {
			return inspect.Null
		}
		key := refKey{ptr: rv.Pointer(), typ: rv.Type(), n: rv.Len()}
		if v, ok := c.seen[key]; ok {
			return v
		}
		arr := inspect.NewArray()
		c.seen[key] = arr
		c.fillArray(arr, rv)
		return arr

	case reflect.Array:
		arr := inspect.NewArray()
		c.fillArray(arr, rv)
		return arr

	case reflect.Map:
		if rv.IsNil() {
			return inspect.Null
		}
		key := refKey{ptr: rv.Pointer(), typ: rv.Type()}
		if v, ok := c.seen[key]; ok {
			return v
		}
		obj := inspect.NewObject()
		c.seen[key] = obj
		c.fillMap(obj, rv)
		return obj

	case reflect.Struct:
		obj := inspect.NewObject()
		c.fillStruct(obj, rv)
		return obj

	case reflect.Func:
		if rv.IsNil() {
			return inspect.Null
		}
		return inspect.NewFunction(funcName(rv))
	}

	// Channels, complex numbers and unsafe pointers only show their type.
	return typeOnly(rv)
}

func typeOnly(rv reflect.Value) inspect.Value {
	return inspect.NewObject().Set("type", inspect.String(rv.Type().String()))
}

// convertSpecial handles types with a dedicated inspect kind.
func (c *goConverter) convertSpecial(rv reflect.Value) (inspect.Value, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	t := rv.Type()
	switch {
	case t.Implements(valueType) && t.Kind() != reflect.Interface:
		return rv.Interface().(inspect.Value), true
	case t == timeType:
		return inspect.NewDate(rv.Interface().(time.Time)), true
	case t == regexpType:
		if rv.IsNil() {
			return inspect.Null, true
		}
		return inspect.NewRegExp(rv.Interface().(*regexp.Regexp).String(), ""), true
	case t.Implements(errorType) && t.Kind() != reflect.Interface:
		if (t.Kind() == reflect.Ptr || t.Kind() == reflect.Map || t.Kind() == reflect.Slice) && rv.IsNil() {
			return inspect.Null, true
		}
		return inspect.NewError(rv.Interface().(error).Error()), true
	}
	return nil, false
}

func (c *goConverter) fillArray(arr *inspect.Array, rv reflect.Value) {
	for i := 0; i < rv.Len(); i++ {
		arr.Push(c.convert(rv.Index(i)))
	}
}

func (c *goConverter) fillMap(obj *inspect.Object, rv reflect.Value) {
	type entry struct {
		name string
		val  reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{name: fmt.Sprint(iter.Key().Interface()), val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for _, e := range entries {
		obj.Set(e.name, c.convert(e.val))
	}
}

// fillStruct copies exported fields, honouring json tag names and "-".
func (c *goConverter) fillStruct(obj *inspect.Object, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		obj.Set(name, c.convert(rv.Field(i)))
	}
}

// funcName returns the short name of a Go function, or "" for closures.
func funcName(rv reflect.Value) string {
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	name := strings.TrimSuffix(fn.Name(), "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasPrefix(name, "func") {
		return ""
	}
	return name
}
