package lua

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/convert"
	"github.com/dshills/stormrepl/internal/inspect"
)

// accessorsField is the metatable field holding accessor pairs installed by
// defineProperty.
const accessorsField = "__accessors"

// Handle is the userdata payload for script values without a native Lua
// form: dates, patterns, errors, boxed primitives and symbols.
type Handle struct {
	// Value is the prototype. Composites are copied on every conversion so
	// that fields assigned from Lua never accumulate on it; symbols are
	// returned as is and keep their identity.
	Value inspect.Value

	// Fields holds own properties assigned from Lua.
	Fields *lua.LTable

	// primitive is the wrapped value of a boxed primitive.
	primitive inspect.Value
}

// instantiate returns a fresh copy of the prototype.
func (h *Handle) instantiate() inspect.Value {
	switch v := h.Value.(type) {
	case *inspect.Date:
		if !v.Valid() {
			return inspect.NewInvalidDate()
		}
		return inspect.NewDate(v.Time)
	case *inspect.RegExp:
		return inspect.NewRegExp(v.Source, v.Flags)
	case *inspect.Error:
		return &inspect.Error{Name: v.Name, Message: v.Message}
	case *inspect.Boxed:
		if h.primitive != nil {
			return inspect.NewBoxed(h.primitive)
		}
		return &inspect.Boxed{ValueOf: v.ValueOf}
	default:
		return v
	}
}

// Bridge converts Lua values into inspect values.
//
// A Bridge must only be used on the goroutine that owns its state. Tables,
// functions and handles reached more than once convert to the same
// composite, so cyclic tables stay cyclic.
type Bridge struct {
	L    *lua.LState
	seen map[lua.LValue]inspect.Value
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{
		L:    L,
		seen: make(map[lua.LValue]inspect.Value),
	}
}

// ToInspectValue converts lv with a fresh Bridge.
func ToInspectValue(L *lua.LState, lv lua.LValue) inspect.Value {
	return NewBridge(L).ToInspectValue(lv)
}

// ToInspectValue converts a Lua value to an inspect value.
func (b *Bridge) ToInspectValue(lv lua.LValue) inspect.Value {
	return b.convert(lv, "")
}

// convert converts lv. name is the field lv was read from; anonymous Lua
// functions take it as their display name.
func (b *Bridge) convert(lv lua.LValue, name string) inspect.Value {
	if lv == nil {
		return inspect.Undefined
	}

	switch v := lv.(type) {
	case *lua.LNilType:
		return inspect.Undefined
	case lua.LBool:
		return inspect.Bool(bool(v))
	case lua.LNumber:
		return inspect.Number(float64(v))
	case lua.LString:
		return inspect.String(string(v))
	case *lua.LFunction:
		if cached, ok := b.seen[v]; ok {
			return cached
		}
		fn := inspect.NewFunction(name)
		b.seen[v] = fn
		return fn
	case *lua.LTable:
		return b.convertTable(v)
	case *lua.LUserData:
		return b.convertUserData(v)
	case *lua.LState:
		return inspect.NewObject().Set("type", inspect.String("thread"))
	case lua.LChannel:
		return inspect.NewObject().Set("type", inspect.String("channel"))
	default:
		return inspect.Undefined
	}
}

func (b *Bridge) convertUserData(ud *lua.LUserData) inspect.Value {
	if cached, ok := b.seen[ud]; ok {
		return cached
	}

	h, ok := ud.Value.(*Handle)
	if !ok {
		v := convert.FromGo(ud.Value)
		b.seen[ud] = v
		return v
	}

	v := h.instantiate()
	b.seen[ud] = v
	if c, ok := v.(inspect.Composite); ok && h.Fields != nil {
		b.fill(c.Props(), h.Fields, nil)
	}
	return v
}

func (b *Bridge) convertTable(t *lua.LTable) inspect.Value {
	if cached, ok := b.seen[t]; ok {
		return cached
	}

	accessors := tableAccessors(t)

	if isArrayLike(t) {
		arr := inspect.NewArray()
		b.seen[t] = arr
		b.fill(arr.Props(), t, arr)
		b.defineAccessors(arr.Props(), accessors)
		return arr
	}

	obj := inspect.NewObject()
	b.seen[t] = obj
	b.fill(obj.Props(), t, nil)
	b.defineAccessors(obj.Props(), accessors)
	return obj
}

// fill copies the raw entries of t into props in insertion order. Positive
// integer keys become elements when arr is not nil. A number key whose
// text matches a string key of t is written as [n] so neither is lost.
func (b *Bridge) fill(props *inspect.Properties, t *lua.LTable, arr *inspect.Array) {
	var names map[string]bool
	for k, v := t.Next(lua.LNil); k != lua.LNil; k, v = t.Next(k) {
		if arr != nil {
			if i, ok := arrayIndex(k); ok {
				arr.SetIndex(i-1, b.convert(v, ""))
				continue
			}
		}
		key := b.key(k)
		if _, ok := k.(lua.LNumber); ok {
			if names == nil {
				names = stringKeys(t)
			}
			if names[key.Name()] {
				key = inspect.StringKey("[" + key.Name() + "]")
			}
		}
		props.SetKey(key, b.convert(v, key.Name()))
	}
}

func stringKeys(t *lua.LTable) map[string]bool {
	names := make(map[string]bool)
	for k, _ := t.Next(lua.LNil); k != lua.LNil; k, _ = t.Next(k) {
		if s, ok := k.(lua.LString); ok {
			names[string(s)] = true
		}
	}
	return names
}

func (b *Bridge) defineAccessors(props *inspect.Properties, accessors *lua.LTable) {
	if accessors == nil {
		return
	}
	for k, v := accessors.Next(lua.LNil); k != lua.LNil; k, v = accessors.Next(k) {
		pair, ok := v.(*lua.LTable)
		if !ok {
			continue
		}
		var desc inspect.Descriptor
		if get, ok := pair.RawGetString("get").(*lua.LFunction); ok {
			desc.Get = b.getter(get)
		}
		if set, ok := pair.RawGetString("set").(*lua.LFunction); ok {
			desc.Set = b.setter(set)
		}
		if desc.IsAccessor() {
			props.Define(b.key(k), desc)
		}
	}
}

func (b *Bridge) getter(fn *lua.LFunction) func() inspect.Value {
	L := b.L
	return func() inspect.Value {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
			return inspect.Undefined
		}
		ret := L.Get(-1)
		L.Pop(1)
		return ToInspectValue(L, ret)
	}
}

func (b *Bridge) setter(fn *lua.LFunction) func(inspect.Value) {
	L := b.L
	return func(v inspect.Value) {
		_ = L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, fromPrimitive(v))
	}
}

// key converts a table key to a property key.
func (b *Bridge) key(k lua.LValue) inspect.Key {
	switch v := k.(type) {
	case lua.LString:
		return inspect.StringKey(string(v))
	case lua.LNumber:
		return inspect.StringKey(inspect.FormatNumber(float64(v)))
	case *lua.LUserData:
		if h, ok := v.Value.(*Handle); ok {
			if sym, ok := h.Value.(*inspect.Symbol); ok {
				return inspect.SymbolKey(sym)
			}
		}
	}
	return inspect.StringKey(k.String())
}

// isArrayLike reports whether t reads as a sequence: it has positive integer
// keys and the largest is at most twice their number. A key 0 or a string
// key made only of digits would share a name with an element, so either
// one makes t an object.
func isArrayLike(t *lua.LTable) bool {
	count, highest := 0, 0
	for k, _ := t.Next(lua.LNil); k != lua.LNil; k, _ = t.Next(k) {
		if i, ok := arrayIndex(k); ok {
			count++
			if i > highest {
				highest = i
			}
			continue
		}
		if collidesWithIndex(k) {
			return false
		}
	}
	if accessors := tableAccessors(t); accessors != nil {
		for k, _ := accessors.Next(lua.LNil); k != lua.LNil; k, _ = accessors.Next(k) {
			if _, ok := arrayIndex(k); ok || collidesWithIndex(k) {
				return false
			}
		}
	}
	return count > 0 && highest <= 2*count
}

// collidesWithIndex reports whether a non-element key renders as an
// element name.
func collidesWithIndex(k lua.LValue) bool {
	switch v := k.(type) {
	case lua.LNumber:
		return v == 0
	case lua.LString:
		if v == "" {
			return false
		}
		for i := 0; i < len(v); i++ {
			if v[i] < '0' || v[i] > '9' {
				return false
			}
		}
		return true
	}
	return false
}

func arrayIndex(k lua.LValue) (int, bool) {
	n, ok := k.(lua.LNumber)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func tableAccessors(t *lua.LTable) *lua.LTable {
	mt, ok := t.Metatable.(*lua.LTable)
	if !ok {
		return nil
	}
	accessors, ok := mt.RawGetString(accessorsField).(*lua.LTable)
	if !ok {
		return nil
	}
	return accessors
}

// fromPrimitive converts a primitive inspect value back to Lua. Composites
// have no Lua form and map to nil.
func fromPrimitive(v inspect.Value) lua.LValue {
	switch p := v.(type) {
	case inspect.Bool:
		return lua.LBool(p)
	case inspect.Number:
		return lua.LNumber(p)
	case inspect.String:
		return lua.LString(p)
	default:
		return lua.LNil
	}
}
