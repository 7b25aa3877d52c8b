package inspect

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectEmptyComposites(t *testing.T) {
	assert.Equal(t, "[]", Inspect(NewArray()))
	assert.Equal(t, "{}", Inspect(NewObject()))
	assert.Equal(t, "null", Inspect((*Object)(nil)))
	assert.Equal(t, "null", Inspect((*Array)(nil)))
}

func TestInspectObjectSingleLine(t *testing.T) {
	obj := NewObject().Set("a", Number(1)).Set("b", Number(2))
	assert.Equal(t, "{ a: 1, b: 2 }", Inspect(obj))
}

func TestInspectInsertionOrder(t *testing.T) {
	obj := NewObject().Set("z", Number(1)).Set("a", Number(2)).Set("m", Number(3))
	assert.Equal(t, "{ z: 1, a: 2, m: 3 }", Inspect(obj))

	obj.Set("z", Number(9))
	assert.Equal(t, "{ z: 9, a: 2, m: 3 }", Inspect(obj), "redefining keeps position")

	obj.Delete(StringKey("a"))
	assert.Equal(t, "{ z: 9, m: 3 }", Inspect(obj))
}

func TestInspectLineJoinThreshold(t *testing.T) {
	// "a: '<n chars>'" is n+5 wide, "b: 1" is 4 wide, plus one per fragment.
	fits := NewObject().Set("a", String(strings.Repeat("x", 49))).Set("b", Number(1))
	assert.Equal(t, "{ a: '"+strings.Repeat("x", 49)+"', b: 1 }", Inspect(fits))

	overflows := NewObject().Set("a", String(strings.Repeat("x", 50))).Set("b", Number(1))
	assert.Equal(t, "{ a: '"+strings.Repeat("x", 50)+"',\n  b: 1 }", Inspect(overflows))
}

func longObject() (*Object, string) {
	v := strings.Repeat("v", 20)
	obj := NewObject().
		Set("alpha", String(v)).
		Set("beta", String(v)).
		Set("gamma", String(v))
	want := "{ alpha: '" + v + "',\n  beta: '" + v + "',\n  gamma: '" + v + "' }"
	return obj, want
}

func TestInspectMultiLine(t *testing.T) {
	obj, want := longObject()
	assert.Equal(t, want, Inspect(obj))
}

func TestInspectMultiLineNestedInObject(t *testing.T) {
	inner, _ := longObject()
	outer := NewObject().Set("outer", inner)

	v := strings.Repeat("v", 20)
	want := "{ outer: \n" +
		"   { alpha: '" + v + "',\n" +
		"     beta: '" + v + "',\n" +
		"     gamma: '" + v + "' } }"
	if diff := cmp.Diff(want, Inspect(outer)); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectMultiLineNestedInArray(t *testing.T) {
	inner, _ := longObject()
	arr := NewArray(inner)

	v := strings.Repeat("v", 20)
	want := "[ { alpha: '" + v + "',\n" +
		"    beta: '" + v + "',\n" +
		"    gamma: '" + v + "' } ]"
	if diff := cmp.Diff(want, Inspect(arr)); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectMultiLineWithBase(t *testing.T) {
	v := strings.Repeat("v", 20)
	fn := NewFunction("handler")
	fn.Set("alpha", String(v))
	fn.Set("beta", String(v))
	fn.Set("gamma", String(v))

	want := "{ [Function: handler]\n" +
		"  alpha: '" + v + "',\n" +
		"  beta: '" + v + "',\n" +
		"  gamma: '" + v + "' }"
	assert.Equal(t, want, Inspect(fn))
}

func TestInspectCircular(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		obj := NewObject().Set("name", String("root"))
		obj.Set("self", obj)
		assert.Equal(t, "{ name: 'root', self: [Circular] }", Inspect(obj))
	})

	t.Run("array containing itself", func(t *testing.T) {
		arr := NewArray(Number(1))
		arr.Push(arr)
		assert.Equal(t, "[ 1, [Circular] ]", Inspect(arr))
	})

	t.Run("transitive", func(t *testing.T) {
		a := NewObject()
		b := NewObject().Set("a", a)
		a.Set("b", b)
		assert.Equal(t, "{ b: { a: [Circular] } }", Inspect(a))
		assert.Equal(t, "{ a: { b: [Circular] } }", Inspect(b))
	})

	t.Run("unlimited depth terminates", func(t *testing.T) {
		a := NewObject()
		b := NewObject().Set("a", a)
		a.Set("b", b)
		assert.Equal(t, "{ b: { a: [Circular] } }", Inspect(a, WithUnlimitedDepth()))
	})

	t.Run("shared reference is not circular", func(t *testing.T) {
		shared := NewObject().Set("x", Number(1))
		obj := NewObject().Set("p", shared).Set("q", shared)
		assert.Equal(t, "{ p: { x: 1 }, q: { x: 1 } }", Inspect(obj))
	})
}

func nest(depth int) Value {
	var v Value = Number(1)
	names := []string{"e", "d", "c", "b", "a"}
	for i := 0; i < depth; i++ {
		v = NewObject().Set(names[len(names)-depth+i], v)
	}
	return v
}

func TestInspectDepth(t *testing.T) {
	tests := []struct {
		name  string
		input Value
		opts  []Option
		want  string
	}{
		{"cutoff at two", nest(4), []Option{WithDepth(2)}, "{ a: { b: { c: [Object] } } }"},
		{"default fits four levels", nest(4), nil, "{ a: { b: { c: { d: 1 } } } }"},
		{"default cuts fifth level", nest(5), nil, "{ a: { b: { c: { d: [Object] } } } }"},
		{"zero depth", nest(2), []Option{WithDepth(0)}, "{ a: [Object] }"},
		{"unlimited", nest(5), []Option{WithUnlimitedDepth()}, "{ a: { b: { c: { d: { e: 1 } } } } }"},
		{"empty child ignores budget", NewObject().Set("a", NewObject()), []Option{WithDepth(0)}, "{ a: {} }"},
		{
			"arrays are abbreviated as objects",
			NewArray(NewArray(NewArray(NewArray(NewArray(Number(1)))))),
			nil,
			"[ [ [ [ [Object] ] ] ] ]",
		},
		{
			"regexp keeps its text",
			NewObject().Set("re", func() Value {
				re := NewRegExp("x", "g")
				re.Set("extra", Bool(true))
				return re
			}()),
			[]Option{WithDepth(0)},
			"{ re: /x/g }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inspect(tt.input, tt.opts...))
		})
	}
}

func TestInspectSparseArray(t *testing.T) {
	arr := NewArray(Number(1))
	arr.SetIndex(2, Number(3))
	require.Equal(t, 3, arr.Len())

	assert.Equal(t, "[ 1, , 3 ]", Inspect(arr))

	_, ok := arr.Index(1)
	assert.False(t, ok)

	assert.Equal(t, "[ , ,  ]", Inspect(NewArray().SetLength(3)))
}

func TestInspectArrayExtraKeys(t *testing.T) {
	arr := NewArray(Number(1), Number(2))
	arr.Set("foo", String("bar"))
	tag := NewSymbol("tag")
	arr.SetKey(SymbolKey(tag), Bool(true))

	assert.Equal(t, "[ 1, 2, foo: 'bar', [Symbol(tag)]: true ]", Inspect(arr))
}

func TestInspectArrayTruncate(t *testing.T) {
	arr := NewArray(Number(1), Number(2), Number(3))
	arr.SetLength(1)
	assert.Equal(t, "[ 1 ]", Inspect(arr))
}

func TestInspectHiddenKeys(t *testing.T) {
	obj := NewObject().Set("shown", Number(1))
	obj.Define(StringKey("hidden"), Descriptor{Value: Number(2), Hidden: true})
	assert.Equal(t, "{ shown: 1 }", Inspect(obj))

	arr := NewArray(Number(1))
	arr.Define(IndexKey(0), Descriptor{Value: Number(1), Hidden: true})
	assert.Equal(t, "[ [0]: 1 ]", Inspect(arr))
}

func TestInspectAccessorsAreNotInvoked(t *testing.T) {
	var called bool
	obj := NewObject()
	obj.Define(StringKey("secret"), Descriptor{Get: func() Value {
		called = true
		panic("getter must not run")
	}})
	obj.Define(StringKey("sink"), Descriptor{Set: func(Value) {
		called = true
	}})
	obj.Define(StringKey("both"), Descriptor{
		Get: func() Value { called = true; return Null },
		Set: func(Value) { called = true },
	})

	assert.Equal(t, "{ secret: [Getter], sink: [Setter], both: [Getter/Setter] }", Inspect(obj))
	assert.False(t, called, "accessor was invoked")
}

func TestInspectPropertyNames(t *testing.T) {
	obj := NewObject().
		Set("my-key", Number(1)).
		Set("it's", Number(2)).
		Set("0", Number(3))
	obj.SetKey(SymbolKey(NewSymbol("id")), Number(4))

	assert.Equal(t, `{ 'my-key': 1, 'it\'s': 2, '0': 3, [Symbol(id)]: 4 }`, Inspect(obj))
}

func TestInspectFunctions(t *testing.T) {
	assert.Equal(t, "[Function: f]", Inspect(NewFunction("f")))
	assert.Equal(t, "[Function]", Inspect(NewFunction("")))

	fn := NewFunction("f")
	fn.Set("x", Number(1))
	assert.Equal(t, "{ [Function: f] x: 1 }", Inspect(fn))
}

func TestInspectRegExp(t *testing.T) {
	assert.Equal(t, "/ab+c/gi", Inspect(NewRegExp("ab+c", "gi")))
	assert.Equal(t, "/(?:)/", Inspect(NewRegExp("", "")))

	re := NewRegExp("x", "")
	re.Set("lastIndex", Number(0))
	assert.Equal(t, "{ /x/ lastIndex: 0 }", Inspect(re))
}

func TestInspectDate(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, "Thu Jan 01 1970 00:00:00 GMT+0000 (UTC)", Inspect(NewDate(epoch)))

	d := NewDate(epoch)
	d.Set("note", String("x"))
	assert.Equal(t, "{ Thu, 01 Jan 1970 00:00:00 GMT note: 'x' }", Inspect(d))

	assert.Equal(t, "Invalid Date", Inspect(NewInvalidDate()))
	assert.False(t, NewInvalidDate().Valid())
}

func TestInspectErrors(t *testing.T) {
	assert.Equal(t, "[Error: boom]", Inspect(NewError("boom")))
	assert.Equal(t, "[Error]", Inspect(NewError("")))
	assert.Equal(t, "[oops]", Inspect(&Error{Message: "oops"}))

	e := &Error{Name: "TypeError", Message: "bad"}
	e.Set("code", Number(1))
	assert.Equal(t, "{ [TypeError: bad] code: 1 }", Inspect(e))
}

func TestInspectBoxed(t *testing.T) {
	assert.Equal(t, "[String: 'ab']", Inspect(NewBoxed(String("ab"))))
	assert.Equal(t, "[Number: 3]", Inspect(NewBoxed(Number(3))))
	assert.Equal(t, "[Number: -0]", Inspect(NewBoxed(Number(negativeZero()))))
	assert.Equal(t, "[Boolean: true]", Inspect(NewBoxed(Bool(true))))

	s := NewBoxed(String("ab"))
	s.Set("x", Number(1))
	assert.Equal(t, "{ [String: 'ab'] x: 1 }", Inspect(s), "character indices are suppressed")
}

func TestInspectBoxedHookFailures(t *testing.T) {
	failing := &Boxed{ValueOf: func() (Value, error) { return nil, errors.New("no primitive") }}
	assert.Equal(t, "{}", Inspect(failing))

	failing.Set("x", Number(1))
	assert.Equal(t, "{ x: 1 }", Inspect(failing))

	panicking := &Boxed{ValueOf: func() (Value, error) { panic("coercion failed") }}
	panicking.Set("y", Number(2))
	assert.Equal(t, "{ y: 2 }", Inspect(panicking))

	composite := &Boxed{ValueOf: func() (Value, error) { return NewObject(), nil }}
	assert.Equal(t, "{}", Inspect(composite))

	assert.Equal(t, "{}", Inspect(&Boxed{}))
}

func TestInspectColors(t *testing.T) {
	assert.Equal(t, "\x1b[33m1\x1b[39m", Inspect(Number(1), WithColors(true)))
	assert.Equal(t, "\x1b[32m'a'\x1b[39m", Inspect(String("a"), WithColors(true)))
	assert.Equal(t, "\x1b[1mnull\x1b[22m", Inspect(Null, WithColors(true)))
	assert.Equal(t, "\x1b[90mundefined\x1b[39m", Inspect(Undefined, WithColors(true)))

	obj := NewObject()
	for _, k := range []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8"} {
		obj.Set(k, Number(1))
	}
	out := Inspect(obj, WithColors(true))
	assert.NotContains(t, out, "\n", "color codes must not count toward line width")
	assert.Equal(t, "{ k1: 1, k2: 1, k3: 1, k4: 1, k5: 1, k6: 1, k7: 1, k8: 1 }", colorCode.ReplaceAllString(out, ""))
}

func TestInspectConcurrent(t *testing.T) {
	obj := NewObject().Set("name", String("shared"))
	obj.Set("self", obj)
	want := Inspect(obj)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Inspect(obj)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestVisibleWidth(t *testing.T) {
	assert.Equal(t, 3, visibleWidth("abc"))
	assert.Equal(t, 3, visibleWidth("\x1b[33mabc\x1b[39m"))
	assert.Equal(t, 2, visibleWidth("日本"))
	assert.Equal(t, 2, visibleWidth("😀"))
	assert.Equal(t, 3, visibleWidth("a\nb"))
}

func TestInspectLineJoinCountsStringLength(t *testing.T) {
	wide := strings.Repeat("日", 30)
	obj := NewObject().Set("a", String(wide)).Set("b", Number(1))
	assert.Equal(t, "{ a: '"+wide+"', b: 1 }", Inspect(obj))

	wider := strings.Repeat("日", 60)
	obj = NewObject().Set("a", String(wider)).Set("b", Number(1))
	assert.Equal(t, "{ a: '"+wider+"',\n  b: 1 }", Inspect(obj))
}

func negativeZero() float64 {
	var zero float64
	return -zero
}
