package inspect

import (
	"time"
)

// Value is a renderable script value.
//
// The set of implementations is closed; use the primitive types and the
// composite constructors of this package.
type Value interface {
	isValue()
}

// Composite is a Value that owns a property table.
type Composite interface {
	Value
	Props() *Properties
}

type undefinedValue struct{}
type nullValue struct{}

func (undefinedValue) isValue() {}
func (nullValue) isValue()      {}

// Undefined is the absent value.
var Undefined Value = undefinedValue{}

// Null is the null value.
var Null Value = nullValue{}

// Bool is a boolean primitive.
type Bool bool

// Number is a numeric primitive. Signed zero, NaN and the infinities are
// preserved.
type Number float64

// String is a string primitive.
type String string

func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}

// Symbol is a unique tag. Two symbols with the same description are distinct.
type Symbol struct {
	Description string
}

// NewSymbol creates a new unique symbol.
func NewSymbol(description string) *Symbol {
	return &Symbol{Description: description}
}

func (*Symbol) isValue() {}

// String returns the display form, e.g. Symbol(id).
func (s *Symbol) String() string {
	return "Symbol(" + s.Description + ")"
}

// Object is a generic keyed aggregate.
type Object struct {
	Properties
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{}
}

// Set stores a plain property and returns the object for chaining.
func (o *Object) Set(name string, v Value) *Object {
	o.Properties.Set(name, v)
	return o
}

func (*Object) isValue()              {}
func (o *Object) Props() *Properties { return &o.Properties }

// Function is a callable. An empty Name renders as an anonymous function.
type Function struct {
	Properties
	Name string
}

// NewFunction creates a function value with the given name.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

func (*Function) isValue()              {}
func (f *Function) Props() *Properties { return &f.Properties }

// RegExp is a pattern matcher displayed as /Source/Flags.
type RegExp struct {
	Properties
	Source string
	Flags  string
}

// NewRegExp creates a pattern matcher value.
func NewRegExp(source, flags string) *RegExp {
	return &RegExp{Source: source, Flags: flags}
}

func (*RegExp) isValue()              {}
func (r *RegExp) Props() *Properties { return &r.Properties }

// String returns the literal form of the pattern.
func (r *RegExp) String() string {
	src := r.Source
	if src == "" {
		src = "(?:)"
	}
	return "/" + src + "/" + r.Flags
}

// Date is a point in time. A Date created with NewInvalidDate renders as
// "Invalid Date".
type Date struct {
	Properties
	Time    time.Time
	invalid bool
}

// NewDate creates a date value.
func NewDate(t time.Time) *Date {
	return &Date{Time: t}
}

// NewInvalidDate creates a date that holds no valid instant.
func NewInvalidDate() *Date {
	return &Date{invalid: true}
}

// Valid reports whether the date holds an instant.
func (d *Date) Valid() bool {
	return !d.invalid
}

func (*Date) isValue()              {}
func (d *Date) Props() *Properties { return &d.Properties }

const (
	utcLayout   = "Mon, 02 Jan 2006 15:04:05 GMT"
	localLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"
)

// UTCString returns the date in UTC, e.g. "Thu, 01 Jan 1970 00:00:00 GMT".
func (d *Date) UTCString() string {
	if d.invalid {
		return "Invalid Date"
	}
	return d.Time.UTC().Format(utcLayout)
}

// String returns the date in its own location, e.g.
// "Thu Jan 01 1970 00:00:00 GMT+0000 (UTC)".
func (d *Date) String() string {
	if d.invalid {
		return "Invalid Date"
	}
	return d.Time.Format(localLayout)
}

// Error is an error value. Name defaults to "Error" when left empty by
// NewError.
type Error struct {
	Properties
	Name    string
	Message string
}

// NewError creates an error value named "Error".
func NewError(message string) *Error {
	return &Error{Name: "Error", Message: message}
}

func (*Error) isValue()              {}
func (e *Error) Props() *Properties { return &e.Properties }

// String returns "Name: Message", dropping whichever part is empty.
func (e *Error) String() string {
	switch {
	case e.Name == "":
		return e.Message
	case e.Message == "":
		return e.Name
	default:
		return e.Name + ": " + e.Message
	}
}

// Boxed wraps a primitive inside an object. ValueOf is the convert-to-primitive
// hook; when it fails, panics or yields a non-primitive, the value renders as
// a plain object.
type Boxed struct {
	Properties
	ValueOf func() (Value, error)
}

// NewBoxed boxes a primitive. Boxed strings expose one index property per
// character, mirroring the wrapped string.
func NewBoxed(v Value) *Boxed {
	b := &Boxed{ValueOf: func() (Value, error) { return v, nil }}
	if s, ok := v.(String); ok {
		for i, r := range []rune(string(s)) {
			b.Properties.SetKey(IndexKey(i), String(string(r)))
		}
	}
	return b
}

func (*Boxed) isValue()              {}
func (b *Boxed) Props() *Properties { return &b.Properties }

// Array is an indexable sequence with an explicit length. Indices without a
// property are holes.
type Array struct {
	Properties
	length int
}

// NewArray creates an array holding vals.
func NewArray(vals ...Value) *Array {
	a := &Array{}
	for _, v := range vals {
		a.Push(v)
	}
	return a
}

func (*Array) isValue()              {}
func (a *Array) Props() *Properties { return &a.Properties }

// Len returns the array length, holes included.
func (a *Array) Len() int {
	return a.length
}

// Push appends v.
func (a *Array) Push(v Value) *Array {
	a.SetIndex(a.length, v)
	return a
}

// SetIndex stores v at i, growing the length when needed.
func (a *Array) SetIndex(i int, v Value) *Array {
	if i < 0 {
		return a
	}
	a.Properties.SetKey(IndexKey(i), v)
	if i >= a.length {
		a.length = i + 1
	}
	return a
}

// Index returns the element at i. ok is false for holes and out of range
// indices.
func (a *Array) Index(i int) (v Value, ok bool) {
	if i < 0 || i >= a.length {
		return nil, false
	}
	d, ok := a.Properties.Descriptor(IndexKey(i))
	if !ok {
		return nil, false
	}
	return d.Value, true
}

// SetLength truncates or extends the array. Extending creates holes.
func (a *Array) SetLength(n int) *Array {
	if n < 0 {
		n = 0
	}
	for i := n; i < a.length; i++ {
		a.Properties.Delete(IndexKey(i))
	}
	a.length = n
	return a
}
